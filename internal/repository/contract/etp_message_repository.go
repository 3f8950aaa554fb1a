package contract

import (
	"context"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type EtpMessageRepository interface {
	Create(ctx context.Context, message *entity.EtpMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EtpMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
