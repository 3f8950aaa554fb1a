package mapper

import (
	"encoding/json"
	"time"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/model"
	"etp-authoring-be/pkg/flow"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EtpMapper struct{}

func NewEtpMapper() *EtpMapper {
	return &EtpMapper{}
}

// Session Mappers

func (m *EtpMapper) SessionToEntity(s *model.EtpSession) *entity.EtpSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var state *flow.Session
	if len(s.State) > 0 {
		state = &flow.Session{}
		if err := json.Unmarshal(s.State, state); err != nil {
			state = nil
		}
	}

	var parts map[string]string
	if len(s.Parts) > 0 {
		_ = json.Unmarshal(s.Parts, &parts)
	}

	return &entity.EtpSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		Stage:     s.Stage,
		State:     state,
		Parts:     parts,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *EtpMapper) SessionToModel(s *entity.EtpSession) *model.EtpSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	var state datatypes.JSON
	if s.State != nil {
		if data, err := json.Marshal(s.State); err == nil {
			state = data
		}
	}

	var parts datatypes.JSON
	if s.Parts != nil {
		if data, err := json.Marshal(s.Parts); err == nil {
			parts = data
		}
	}

	return &model.EtpSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		Stage:     s.Stage,
		State:     state,
		Parts:     parts,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Message Mappers

func (m *EtpMapper) MessageToEntity(msg *model.EtpMessage) *entity.EtpMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	return &entity.EtpMessage{
		Id:           msg.Id,
		EtpSessionId: msg.EtpSessionId,
		Role:         msg.Role,
		Content:      msg.Content,
		Stage:        msg.Stage,
		CreatedAt:    msg.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    msg.DeletedAt.Valid,
	}
}

func (m *EtpMapper) MessageToModel(msg *entity.EtpMessage) *model.EtpMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	return &model.EtpMessage{
		Id:           msg.Id,
		EtpSessionId: msg.EtpSessionId,
		Role:         msg.Role,
		Content:      msg.Content,
		Stage:        msg.Stage,
		CreatedAt:    msg.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

// KB Chunk Mappers

func (m *EtpMapper) KbChunkToEntity(c *model.KbChunk) *entity.KbChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.KbChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		SectionType: c.SectionType,
		Content:     c.Content,
		ChunkIndex:  c.ChunkIndex,
		Embedding:   c.Embedding.Slice(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   c.DeletedAt.Valid,
	}
}

func (m *EtpMapper) KbChunkToModel(c *entity.KbChunk) *model.KbChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.KbChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		SectionType: c.SectionType,
		Content:     c.Content,
		ChunkIndex:  c.ChunkIndex,
		Embedding:   pgvector.NewVector(c.Embedding),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
