package recommendation

import (
	"github.com/trendora/reco/internal/repositories/upstream/user"
)

const (
	StrategyPersonalized = "personalized"
	StrategyColdStart    = "cold_start"
	StrategyFallback     = "fallback"

	defaultLimit = 10
	maxLimit     = 100
)

type Request struct {
	UserId string
	Limit  int
}

type Response struct {
	UserId   string          `json:"user_id"`
	Strategy string          `json:"strategy"`
	Total    int             `json:"total"`
	Products []ProductResult `json:"products"`
}

type ProductResult struct {
	Id       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageUrl string  `json:"image_url"`
	Score    float32 `json:"score"`
}

// signals is everything we know about a user before aggregation.
type signals struct {
	Behaviors    []user.BehaviorEvent
	Interests    []string
	Keywords     []string
	PurchasedIds []string
}

// userVector is the outcome of signal aggregation, with provenance flags for
// each contributing signal. A vector derived from search keywords alone never
// enters the cache.
type userVector struct {
	Embedding   []float32
	HasBehavior bool
	HasInterest bool
	HasSearch   bool
}

// persistable reports whether the vector represents who the user generally is,
// as opposed to what they searched just now.
func (v *userVector) persistable() bool {
	return v.HasBehavior || v.HasInterest
}
