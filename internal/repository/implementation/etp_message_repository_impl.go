package implementation

import (
	"context"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/mapper"
	"etp-authoring-be/internal/model"
	"etp-authoring-be/internal/repository/contract"
	"etp-authoring-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EtpMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EtpMapper
}

func NewEtpMessageRepository(db *gorm.DB) contract.EtpMessageRepository {
	return &EtpMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewEtpMapper(),
	}
}

func (r *EtpMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EtpMessageRepositoryImpl) Create(ctx context.Context, message *entity.EtpMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *EtpMessageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EtpMessage{}, id).Error
}

func (r *EtpMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("etp_session_id = ?", sessionId).Delete(&model.EtpMessage{}).Error
}

func (r *EtpMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EtpMessage, error) {
	var models []*model.EtpMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EtpMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *EtpMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.EtpMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
