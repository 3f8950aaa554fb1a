package implementation

import (
	"context"
	"errors"
	"strings"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/mapper"
	"etp-authoring-be/internal/model"
	"etp-authoring-be/internal/repository/contract"
	"etp-authoring-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KbChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EtpMapper
}

func NewKbChunkRepository(db *gorm.DB) contract.KbChunkRepository {
	return &KbChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewEtpMapper(),
	}
}

func (r *KbChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KbChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.KbChunk) error {
	m := r.mapper.KbChunkToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.KbChunkToEntity(m)
	return nil
}

func (r *KbChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KbChunk) error {
	models := make([]*model.KbChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.KbChunkToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.KbChunkToEntity(m)
	}
	return nil
}

func (r *KbChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KbChunk{}, id).Error
}

func (r *KbChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.KbChunk{}).Error
}

func (r *KbChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KbChunk, error) {
	var m model.KbChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.KbChunkToEntity(&m), nil
}

func (r *KbChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbChunk, error) {
	var models []*model.KbChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KbChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.KbChunkToEntity(m)
	}
	return entities, nil
}

func (r *KbChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.KbChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchSimilarWithScore returns chunks with cosine similarity above threshold.
// Cosine distance in pgvector is 1 - cosine_similarity.
func (r *KbChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKbChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KbChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("kb_chunks").
		Select("kb_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKbChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKbChunk{
			Chunk:      r.mapper.KbChunkToEntity(&res.KbChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

// SearchByContent does a keyword match over chunk content with ILIKE, one
// condition per token. Good enough as the lexical leg of hybrid retrieval.
func (r *KbChunkRepositoryImpl) SearchByContent(ctx context.Context, tokens []string, limit int) ([]*entity.KbChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Model(&model.KbChunk{})

	var conditions []string
	var args []interface{}
	for _, token := range tokens {
		conditions = append(conditions, "content ILIKE ?")
		args = append(args, "%"+token+"%")
	}
	query = query.Where(strings.Join(conditions, " OR "), args...)

	var models []*model.KbChunk
	if err := query.Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.KbChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.KbChunkToEntity(m)
	}
	return entities, nil
}
