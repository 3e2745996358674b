package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newManagerWithConfig(cfg *RecoConfig) *RecoManager {
	m := &RecoManager{}
	m.current.Store(cfg)
	return m
}

func TestOnUpdateAppliesValidDocument(t *testing.T) {
	m := newManagerWithConfig(DefaultRecoConfig())

	err := m.onUpdate(`
behavior_weights:
  purchase: 5.0
  view: 0.5
min_score: 0.6
candidate_multiplier: 4
`)
	assert.NoError(t, err)

	cfg := m.GetRecoConfig()
	assert.InDelta(t, 5.0, cfg.BehaviorWeights["purchase"], 1e-6)
	assert.InDelta(t, 0.6, cfg.MinScore, 1e-6)
	assert.Equal(t, 4, cfg.CandidateMultiplier)
	// Fields absent from the document keep their defaults.
	assert.Equal(t, 3, cfg.MinBehaviorCount)
	assert.InDelta(t, 0.6, cfg.BehaviorFusionWeight, 1e-6)
}

func TestOnUpdateRejectsMalformedYaml(t *testing.T) {
	m := newManagerWithConfig(DefaultRecoConfig())
	before := m.GetRecoConfig()

	err := m.onUpdate("behavior_weights: [not a map")
	assert.Error(t, err)
	assert.Same(t, before, m.GetRecoConfig())
}

func TestOnUpdateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative weight", "behavior_weights:\n  view: -1.0"},
		{"min_score above one", "min_score: 1.5"},
		{"zero candidate multiplier", "candidate_multiplier: 0"},
		{"zero min behavior count", "min_behavior_count: 0"},
		{"zero ttl", "vector_cache_ttl_seconds: 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManagerWithConfig(DefaultRecoConfig())
			before := m.GetRecoConfig()
			err := m.onUpdate(tt.doc)
			assert.Error(t, err)
			assert.Same(t, before, m.GetRecoConfig())
		})
	}
}

func TestDefaultRecoConfigIsValid(t *testing.T) {
	assert.NoError(t, validateRecoConfig(DefaultRecoConfig()))
}
