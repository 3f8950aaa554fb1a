package implementation

import (
	"context"
	"errors"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/mapper"
	"etp-authoring-be/internal/model"
	"etp-authoring-be/internal/repository/contract"
	"etp-authoring-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EtpSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EtpMapper
}

func NewEtpSessionRepository(db *gorm.DB) contract.EtpSessionRepository {
	return &EtpSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewEtpMapper(),
	}
}

func (r *EtpSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EtpSessionRepositoryImpl) Create(ctx context.Context, session *entity.EtpSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *EtpSessionRepositoryImpl) Update(ctx context.Context, session *entity.EtpSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *EtpSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EtpSession{}, id).Error
}

func (r *EtpSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EtpSession, error) {
	var m model.EtpSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *EtpSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EtpSession, error) {
	var models []*model.EtpSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EtpSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *EtpSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.EtpSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
