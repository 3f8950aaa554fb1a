package service

import (
	"context"

	"etp-authoring-be/internal/dto"
	"etp-authoring-be/pkg/events"

	"github.com/google/uuid"
)

// IKbService accepts reference documents for the knowledge base. The
// heavy lifting (chunking and embedding) happens asynchronously on the
// consumer side.
type IKbService interface {
	AddDocument(ctx context.Context, req *dto.AddKbDocumentRequest) (*dto.AddKbDocumentResponse, error)
}

type kbService struct {
	publisher IPublisherService
}

func NewKbService(publisher IPublisherService) IKbService {
	return &kbService{publisher: publisher}
}

func (ks *kbService) AddDocument(ctx context.Context, req *dto.AddKbDocumentRequest) (*dto.AddKbDocumentResponse, error) {
	documentId := uuid.New()

	if err := ks.publisher.PublishKbContent(ctx, documentId, req.SectionType, req.Content); err != nil {
		return nil, err
	}

	// best effort: the external bus also learns about the new document
	_ = ks.publisher.PublishEvent(ctx, events.NewKbDocumentAdded(documentId.String(), req.SectionType, req.Content))

	return &dto.AddKbDocumentResponse{DocumentId: documentId}, nil
}
