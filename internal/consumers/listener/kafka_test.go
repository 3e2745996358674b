package listener

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trendora/reco/internal/consumers/handler/indexer"
	"github.com/trendora/reco/internal/repositories/embedding"
)

func newListenerWithMocks() (*KafkaListener, *indexer.MockHandler, *embedding.MockProvider) {
	indexerHandler := &indexer.MockHandler{}
	embedder := &embedding.MockProvider{}
	return &KafkaListener{indexerHandler: indexerHandler, embedder: embedder}, indexerHandler, embedder
}

func TestProcessEventsEmbedsUpsertsWithoutVectors(t *testing.T) {
	listener, indexerHandler, embedder := newListenerWithMocks()
	embedder.On("EmbedBatch", mock.Anything, []string{"Trail Shoe outdoor hiking trail"}).
		Return([][]float32{{0.1, 0.2}}, nil)
	indexerHandler.On("Process", mock.MatchedBy(func(event indexer.Event) bool {
		upserts := event.Data[indexer.Upsert]
		if len(upserts) != 2 {
			return false
		}
		// First upsert carried its own embedding, second one was embedded here.
		return len(upserts[0].Vectors) == 3 && len(upserts[1].Vectors) == 2
	})).Return(nil)

	err := listener.processEvents([]ProductEvent{
		{EventType: EventTypeUpsert, ProductId: "p1", Title: "Road Shoe", Embedding: []float32{1, 2, 3}},
		{EventType: EventTypeUpsert, ProductId: "p2", Title: "Trail Shoe", Category: "outdoor", Tags: "hiking trail"},
	})
	assert.NoError(t, err)
	indexerHandler.AssertExpectations(t)
}

func TestProcessEventsRoutesDeletes(t *testing.T) {
	listener, indexerHandler, _ := newListenerWithMocks()
	indexerHandler.On("Process", mock.MatchedBy(func(event indexer.Event) bool {
		deletes := event.Data[indexer.Delete]
		return len(deletes) == 1 && deletes[0].Id == "p9" && len(event.Data[indexer.Upsert]) == 0
	})).Return(nil)

	err := listener.processEvents([]ProductEvent{
		{EventType: EventTypeDelete, ProductId: "p9"},
		{EventType: "UNKNOWN", ProductId: "p10"},
	})
	assert.NoError(t, err)
}

func TestProcessEventsEmbeddingFailureFailsBatch(t *testing.T) {
	listener, indexerHandler, embedder := newListenerWithMocks()
	embedder.On("EmbedBatch", mock.Anything, mock.Anything).Return(nil, embedding.ErrProviderTimeout)

	err := listener.processEvents([]ProductEvent{
		{EventType: EventTypeUpsert, ProductId: "p1", Title: "Shoe"},
	})
	assert.Error(t, err)
	indexerHandler.AssertNotCalled(t, "Process", mock.Anything)
}

func TestProcessEventsEmptyBatch(t *testing.T) {
	listener, indexerHandler, _ := newListenerWithMocks()
	err := listener.processEvents(nil)
	assert.NoError(t, err)
	indexerHandler.AssertNotCalled(t, "Process", mock.Anything)
}

func TestBuildPayload(t *testing.T) {
	payload := buildPayload(ProductEvent{Title: "Shoe", Category: "footwear", Price: 49.9})
	assert.Equal(t, "Shoe", payload["title"])
	assert.Equal(t, "footwear", payload["category"])
	assert.Equal(t, 49.9, payload["price"])
}

func TestEmbeddingTextSkipsEmptyParts(t *testing.T) {
	assert.Equal(t, "Shoe footwear", embeddingText(ProductEvent{Title: "Shoe", Category: "footwear"}))
	assert.Equal(t, "", embeddingText(ProductEvent{}))
}

func TestProcessEventsPropagatesIndexerError(t *testing.T) {
	listener, indexerHandler, _ := newListenerWithMocks()
	indexerHandler.On("Process", mock.Anything).Return(errors.New("unavailable"))

	err := listener.processEvents([]ProductEvent{
		{EventType: EventTypeDelete, ProductId: "p1"},
	})
	assert.Error(t, err)
}
