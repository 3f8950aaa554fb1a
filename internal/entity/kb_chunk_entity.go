package entity

import (
	"time"

	"github.com/google/uuid"
)

type KbChunk struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	SectionType string
	Content     string
	ChunkIndex  int
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
