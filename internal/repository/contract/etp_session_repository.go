package contract

import (
	"context"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EtpSessionRepository interface {
	Create(ctx context.Context, session *entity.EtpSession) error
	Update(ctx context.Context, session *entity.EtpSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.EtpSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EtpSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
