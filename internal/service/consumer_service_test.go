package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerStoresChunksWithoutEmbedder(t *testing.T) {
	store := newFakeStore()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	consumer := NewConsumerService(pubSub, "test-topic", &fakeUowFactory{store: store}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	docId := uuid.New()
	payload, _ := json.Marshal(KbContentMessage{
		DocumentId:  docId,
		SectionType: "legal_basis",
		Content:     "A Lei 14.133/2021 disciplina as licitações e contratos administrativos.",
	})
	require.NoError(t, pubSub.Publish("test-topic", message.NewMessage(watermill.NewUUID(), payload)))

	deadline := time.After(2 * time.Second)
	for len(store.chunks) == 0 {
		select {
		case <-deadline:
			t.Fatal("consumer never stored the chunks")
		case <-time.After(10 * time.Millisecond):
		}
	}

	require.Len(t, store.chunks, 1)
	chunk := store.chunks[0]
	assert.Equal(t, docId, chunk.DocumentId)
	assert.Equal(t, "legal_basis", chunk.SectionType)
	assert.Equal(t, 0, chunk.ChunkIndex)
	assert.Len(t, chunk.Embedding, 768)
}
