package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trendora/reco/internal/repositories/upstream/user"
)

var testWeights = map[string]float32{
	"purchase": 3.0,
	"add_cart": 2.5,
	"like":     2.0,
	"share":    1.5,
	"view":     1.0,
}

func TestAggregateBehaviorVector(t *testing.T) {
	t.Run("weighted mean of item vectors", func(t *testing.T) {
		events := []user.BehaviorEvent{
			{ProductId: "p1", EventType: "purchase"},
			{ProductId: "p2", EventType: "view"},
		}
		itemVectors := map[string][]float32{
			"p1": {1, 0},
			"p2": {0, 1},
		}
		got, err := aggregateBehaviorVector(events, itemVectors, testWeights)
		assert.NoError(t, err)
		// (3*[1,0] + 1*[0,1]) / 4
		assert.InDelta(t, 0.75, got[0], 1e-6)
		assert.InDelta(t, 0.25, got[1], 1e-6)
	})

	t.Run("events without stored vectors are skipped", func(t *testing.T) {
		events := []user.BehaviorEvent{
			{ProductId: "p1", EventType: "purchase"},
			{ProductId: "missing", EventType: "purchase"},
		}
		itemVectors := map[string][]float32{"p1": {2, 4}}
		got, err := aggregateBehaviorVector(events, itemVectors, testWeights)
		assert.NoError(t, err)
		assert.Equal(t, []float32{2, 4}, got)
	})

	t.Run("unknown event types are skipped", func(t *testing.T) {
		events := []user.BehaviorEvent{
			{ProductId: "p1", EventType: "hover"},
		}
		itemVectors := map[string][]float32{"p1": {1, 1}}
		got, err := aggregateBehaviorVector(events, itemVectors, testWeights)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("dimension mismatch is an error", func(t *testing.T) {
		events := []user.BehaviorEvent{
			{ProductId: "p1", EventType: "view"},
			{ProductId: "p2", EventType: "view"},
		}
		itemVectors := map[string][]float32{
			"p1": {1, 0},
			"p2": {1, 0, 0},
		}
		_, err := aggregateBehaviorVector(events, itemVectors, testWeights)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("no events yields nil", func(t *testing.T) {
		got, err := aggregateBehaviorVector(nil, map[string][]float32{}, testWeights)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestFuseVectors(t *testing.T) {
	t.Run("both vectors blend with fusion weights", func(t *testing.T) {
		got, err := fuseVectors([]float32{1, 0}, []float32{0, 1}, 0.6, 0.4)
		assert.NoError(t, err)
		assert.InDelta(t, 0.6, got[0], 1e-6)
		assert.InDelta(t, 0.4, got[1], 1e-6)
	})

	t.Run("behavior only passes through unchanged", func(t *testing.T) {
		behavior := []float32{0.2, 0.8}
		got, err := fuseVectors(behavior, nil, 0.6, 0.4)
		assert.NoError(t, err)
		assert.Equal(t, behavior, got)
	})

	t.Run("interest only passes through unchanged", func(t *testing.T) {
		interest := []float32{0.9, 0.1}
		got, err := fuseVectors(nil, interest, 0.6, 0.4)
		assert.NoError(t, err)
		assert.Equal(t, interest, got)
	})

	t.Run("neither is insufficient signal", func(t *testing.T) {
		_, err := fuseVectors(nil, nil, 0.6, 0.4)
		assert.ErrorIs(t, err, ErrInsufficientSignal)
	})

	t.Run("dimension mismatch is an error", func(t *testing.T) {
		_, err := fuseVectors([]float32{1}, []float32{1, 2}, 0.6, 0.4)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestSearchText(t *testing.T) {
	keywords := []string{"running shoes", "socks", "shorts", "cap", "bottle", "towel"}
	assert.Equal(t, "running shoes socks shorts cap bottle", searchText(keywords, 5))
	assert.Equal(t, "running shoes socks", searchText(keywords[:2], 5))
	assert.Equal(t, "", searchText(nil, 5))
}

func TestDecideRoute(t *testing.T) {
	tests := []struct {
		name     string
		cacheHit bool
		sig      *signals
		expected route
	}{
		{"cache hit wins outright", true, &signals{}, routeCacheHit},
		{"cache hit ignores signals", true, &signals{Behaviors: make([]user.BehaviorEvent, 5)}, routeCacheHit},
		{"qualified signals personalize", false, &signals{Interests: []string{"fitness"}}, routePersonalize},
		{"unqualified signals cold start", false, &signals{Behaviors: make([]user.BehaviorEvent, 2)}, routeColdStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decideRoute(tt.cacheHit, tt.sig, 3))
		})
	}
}

func TestQualifiesForPersonalization(t *testing.T) {
	tests := []struct {
		name     string
		sig      *signals
		expected bool
	}{
		{"enough behaviors", &signals{Behaviors: make([]user.BehaviorEvent, 3)}, true},
		{"too few behaviors", &signals{Behaviors: make([]user.BehaviorEvent, 2)}, false},
		{"interests alone qualify", &signals{Interests: []string{"fitness"}}, true},
		{"keywords alone qualify", &signals{Keywords: []string{"yoga mat"}}, true},
		{"nothing at all", &signals{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, qualifiesForPersonalization(tt.sig, 3))
		})
	}
}
