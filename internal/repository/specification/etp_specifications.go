package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByEtpSessionId filters messages by their session
type ByEtpSessionId struct {
	SessionId uuid.UUID
}

func (s ByEtpSessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("etp_session_id = ?", s.SessionId)
}

// ByUserId filters sessions owned by a user
type ByUserId struct {
	UserId uuid.UUID
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// ByStage filters sessions at a given conversation stage
type ByStage struct {
	Stage string
}

func (s ByStage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stage = ?", s.Stage)
}

// BySectionType filters knowledge-base chunks by document section
type BySectionType struct {
	SectionType string
}

func (s BySectionType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("section_type = ?", s.SectionType)
}

// ByDocumentId filters knowledge-base chunks by source document
type ByDocumentId struct {
	DocumentId uuid.UUID
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}
