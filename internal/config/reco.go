package config

// RecoConfig holds the tunables of the recommendation pipeline. It lives as a
// single YAML document in the config store and can be changed at runtime.
type RecoConfig struct {
	// BehaviorWeights maps an event type to its contribution weight when
	// aggregating the behavior vector.
	BehaviorWeights map[string]float32 `yaml:"behavior_weights"`

	// BehaviorFusionWeight and InterestFusionWeight blend the behavior and
	// interest vectors. They are used only when both vectors exist.
	BehaviorFusionWeight float32 `yaml:"behavior_fusion_weight"`
	InterestFusionWeight float32 `yaml:"interest_fusion_weight"`

	// MinBehaviorCount is the minimum number of behavior events required for
	// the behavior signal alone to qualify a user for personalization.
	MinBehaviorCount int `yaml:"min_behavior_count"`

	// BehaviorHistoryDays bounds how far back behavior events are fetched.
	BehaviorHistoryDays int `yaml:"behavior_history_days"`

	// MinScore is the similarity floor below which candidates are discarded.
	MinScore float32 `yaml:"min_score"`

	// VectorCacheTTLSeconds is the base TTL for cached user vectors.
	VectorCacheTTLSeconds int `yaml:"vector_cache_ttl_seconds"`

	// CandidateMultiplier scales the requested limit when querying the vector
	// store, leaving headroom for post-filtering of purchased items.
	CandidateMultiplier int `yaml:"candidate_multiplier"`

	// SearchKeywordCount caps how many recent search keywords feed the
	// search signal.
	SearchKeywordCount int `yaml:"search_keyword_count"`
}

// DefaultRecoConfig returns the config used until the config store serves one.
func DefaultRecoConfig() *RecoConfig {
	return &RecoConfig{
		BehaviorWeights: map[string]float32{
			"purchase": 3.0,
			"add_cart": 2.5,
			"like":     2.0,
			"share":    1.5,
			"view":     1.0,
		},
		BehaviorFusionWeight:  0.6,
		InterestFusionWeight:  0.4,
		MinBehaviorCount:      3,
		BehaviorHistoryDays:   30,
		MinScore:              0.45,
		VectorCacheTTLSeconds: 600,
		CandidateMultiplier:   3,
		SearchKeywordCount:    5,
	}
}
