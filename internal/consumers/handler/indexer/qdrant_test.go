package indexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/trendora/reco/internal/repositories/vector"
)

func TestProcessUpsertsAndDeletes(t *testing.T) {
	vectorDb := &vector.MockDatabase{}
	handler := SetMockIndexerHandler(vectorDb, 1000)

	vectorDb.On("BulkUpsert", mock.MatchedBy(func(req vector.UpsertRequest) bool {
		return len(req.Data) == 2 && req.Data[0].Id == "p1"
	})).Return(nil)
	vectorDb.On("BulkDelete", vector.DeleteRequest{Ids: []string{"p3"}}).Return(nil)

	err := handler.Process(Event{Data: map[EventType][]Data{
		Upsert: {
			{Id: "p1", Vectors: []float32{1, 0}},
			{Id: "p2", Vectors: []float32{0, 1}},
		},
		Delete: {
			{Id: "p3"},
		},
	}})
	assert.NoError(t, err)
	vectorDb.AssertExpectations(t)
}

func TestProcessEmptyEventIsNoop(t *testing.T) {
	vectorDb := &vector.MockDatabase{}
	handler := SetMockIndexerHandler(vectorDb, 1000)

	err := handler.Process(Event{Data: map[EventType][]Data{}})
	assert.NoError(t, err)
	vectorDb.AssertNotCalled(t, "BulkUpsert", mock.Anything)
	vectorDb.AssertNotCalled(t, "BulkDelete", mock.Anything)
}

func TestProcessPropagatesStoreErrors(t *testing.T) {
	vectorDb := &vector.MockDatabase{}
	handler := SetMockIndexerHandler(vectorDb, 1000)
	vectorDb.On("BulkUpsert", mock.Anything).Return(errors.New("unavailable"))

	err := handler.Process(Event{Data: map[EventType][]Data{
		Upsert: {{Id: "p1", Vectors: []float32{1}}},
	}})
	assert.Error(t, err)
}
