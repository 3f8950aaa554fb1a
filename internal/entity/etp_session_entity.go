package entity

import (
	"time"

	"etp-authoring-be/pkg/flow"

	"github.com/google/uuid"
)

type EtpSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Stage     string
	State     *flow.Session
	Parts     map[string]string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
