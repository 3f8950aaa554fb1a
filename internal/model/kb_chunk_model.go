package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KbChunk struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SectionType string          `gorm:"type:varchar(64);not null;index"`
	Content     string          `gorm:"type:text;not null"`
	ChunkIndex  int             `gorm:"default:0"` // 0-based index for ordering
	Embedding   pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text uses 768 dimensions
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

func (KbChunk) TableName() string {
	return "kb_chunks"
}
