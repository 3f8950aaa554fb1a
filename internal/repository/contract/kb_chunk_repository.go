package contract

import (
	"context"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredKbChunk pairs a chunk with its similarity score from vector search.
type ScoredKbChunk struct {
	Chunk      *entity.KbChunk
	Similarity float64
}

type KbChunkRepository interface {
	Create(ctx context.Context, chunk *entity.KbChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.KbChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KbChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredKbChunk, error)
	SearchByContent(ctx context.Context, tokens []string, limit int) ([]*entity.KbChunk, error)
}
