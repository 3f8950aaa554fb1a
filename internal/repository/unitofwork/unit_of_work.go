package unitofwork

import (
	"context"

	"etp-authoring-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	EtpSessionRepository() contract.EtpSessionRepository
	EtpMessageRepository() contract.EtpMessageRepository
	KbChunkRepository() contract.KbChunkRepository
}
