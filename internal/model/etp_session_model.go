package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EtpSession struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Title     string         `gorm:"type:text;not null"`
	Stage     string         `gorm:"type:varchar(64);not null;index"`
	State     datatypes.JSON `gorm:"type:jsonb"` // conversation state: necessity, requirements, answers
	Parts     datatypes.JSON `gorm:"type:jsonb"` // assembled document sections, keyed by section code
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (EtpSession) TableName() string {
	return "etp_sessions"
}
