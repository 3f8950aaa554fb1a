package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"etp-authoring-be/internal/entity"
	"etp-authoring-be/internal/repository/unitofwork"
	"etp-authoring-be/pkg/embedding"
	"etp-authoring-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the knowledge-base embedding queue: each message
// carries a document to split, embed and store as searchable chunks.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider // nil stores chunks without vectors
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload KbContentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal kb message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing kb content for DocumentId: %s", payload.DocumentId)

	// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars
	chunks := utils.SplitText(payload.Content, 1500, 200)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newChunks []*entity.KbChunk
	for i, chunk := range chunks {
		vec := make([]float32, 768)
		if cs.embeddingProvider != nil {
			v, err := cs.embeddingProvider.Embed(ctx, chunk)
			if err != nil {
				log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", i, payload.DocumentId, err)
				msg.Nack() // retriable
				return
			}
			vec = v
		}

		newChunks = append(newChunks, &entity.KbChunk{
			Id:          uuid.New(),
			DocumentId:  payload.DocumentId,
			SectionType: payload.SectionType,
			Content:     chunk,
			ChunkIndex:  i,
			Embedding:   vec,
			CreatedAt:   time.Now(),
		})
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.KbChunkRepository().DeleteByDocumentId(ctx, payload.DocumentId); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.KbChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Document processed: %d chunks for DocumentId: %s", len(newChunks), payload.DocumentId)
	msg.Ack()
}
