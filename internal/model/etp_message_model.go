package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EtpMessage struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EtpSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role         string         `gorm:"type:varchar(16);not null"`
	Content      string         `gorm:"type:text;not null"`
	Stage        string         `gorm:"type:varchar(64);not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (EtpMessage) TableName() string {
	return "etp_messages"
}
