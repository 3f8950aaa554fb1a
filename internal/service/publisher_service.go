package service

import (
	"context"
	"encoding/json"
	"fmt"

	"etp-authoring-be/internal/pkg/logger"
	"etp-authoring-be/pkg/events"
	natspub "etp-authoring-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IPublisherService fans events out to the NATS bus and feeds the
// in-process knowledge-base embedding queue.
type IPublisherService interface {
	PublishEvent(ctx context.Context, event events.Event) error
	PublishKbContent(ctx context.Context, documentId uuid.UUID, sectionType, content string) error
}

type publisherService struct {
	natsPublisher *natspub.Publisher // nil when NATS is not configured
	busPublisher  message.Publisher
	kbTopic       string
	logger        logger.ILogger
}

func NewPublisherService(
	natsPublisher *natspub.Publisher,
	busPublisher message.Publisher,
	kbTopic string,
	log logger.ILogger,
) IPublisherService {
	return &publisherService{
		natsPublisher: natsPublisher,
		busPublisher:  busPublisher,
		kbTopic:       kbTopic,
		logger:        log,
	}
}

func (p *publisherService) PublishEvent(ctx context.Context, event events.Event) error {
	if p.natsPublisher == nil {
		p.logger.Warn("publisher", "NATS not configured, event dropped", map[string]interface{}{
			"event_type": event.EventType(),
		})
		return nil
	}
	if err := p.natsPublisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}
	return nil
}

// KbContentMessage is the payload carried on the embedding queue.
type KbContentMessage struct {
	DocumentId  uuid.UUID `json:"document_id"`
	SectionType string    `json:"section_type"`
	Content     string    `json:"content"`
}

func (p *publisherService) PublishKbContent(ctx context.Context, documentId uuid.UUID, sectionType, content string) error {
	payload := KbContentMessage{
		DocumentId:  documentId,
		SectionType: sectionType,
		Content:     content,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := p.busPublisher.Publish(p.kbTopic, msg); err != nil {
		return fmt.Errorf("publish kb content: %w", err)
	}

	p.logger.Info("publisher", "kb content queued for embedding", map[string]interface{}{
		"document_id":  documentId.String(),
		"section_type": sectionType,
	})
	return nil
}
