package entity

import (
	"time"

	"github.com/google/uuid"
)

type EtpMessage struct {
	Id           uuid.UUID
	EtpSessionId uuid.UUID
	Role         string // "user" or "assistant"
	Content      string
	Stage        string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
