package unitofwork

import (
	"context"
	"fmt"

	"etp-authoring-be/internal/repository/contract"
	"etp-authoring-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) EtpSessionRepository() contract.EtpSessionRepository {
	return implementation.NewEtpSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) EtpMessageRepository() contract.EtpMessageRepository {
	return implementation.NewEtpMessageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) KbChunkRepository() contract.KbChunkRepository {
	return implementation.NewKbChunkRepository(u.getDB())
}
