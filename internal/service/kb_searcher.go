package service

import (
	"context"

	"etp-authoring-be/internal/repository/unitofwork"
	"etp-authoring-be/pkg/retrieval"
)

// KbSearcher adapts the chunk repository to the retrieval contracts, so
// the hybrid retriever stays ignorant of gorm and pgvector.
type KbSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

var (
	_ retrieval.VectorSearcher  = (*KbSearcher)(nil)
	_ retrieval.LexicalSearcher = (*KbSearcher)(nil)
)

func NewKbSearcher(uowFactory unitofwork.RepositoryFactory) *KbSearcher {
	return &KbSearcher{uowFactory: uowFactory}
}

func (k *KbSearcher) SearchSimilar(ctx context.Context, vector []float32, limit int, threshold float64) ([]retrieval.Snippet, error) {
	uow := k.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KbChunkRepository().SearchSimilarWithScore(ctx, vector, limit, threshold)
	if err != nil {
		return nil, err
	}

	snippets := make([]retrieval.Snippet, len(scored))
	for i, sc := range scored {
		snippets[i] = retrieval.Snippet{
			ChunkId:     sc.Chunk.Id.String(),
			SectionType: sc.Chunk.SectionType,
			Content:     sc.Chunk.Content,
			Score:       sc.Similarity,
		}
	}
	return snippets, nil
}

func (k *KbSearcher) SearchByTokens(ctx context.Context, tokens []string, limit int) ([]retrieval.Snippet, error) {
	uow := k.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.KbChunkRepository().SearchByContent(ctx, tokens, limit)
	if err != nil {
		return nil, err
	}

	snippets := make([]retrieval.Snippet, len(chunks))
	for i, c := range chunks {
		snippets[i] = retrieval.Snippet{
			ChunkId:     c.Id.String(),
			SectionType: c.SectionType,
			Content:     c.Content,
		}
	}
	return snippets, nil
}
