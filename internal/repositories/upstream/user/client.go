package user

import (
	"context"
	"sync"
	"time"
)

var once sync.Once

// BehaviorEvent is a single interaction a user had with a product.
type BehaviorEvent struct {
	ProductId  string    `json:"product_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Client interface {
	// GetBehaviors returns the user's interaction events within the last
	// `days` days, most recent first.
	GetBehaviors(ctx context.Context, userId string, days int) ([]BehaviorEvent, error)
	// GetInterests returns the user's declared interest tags.
	GetInterests(ctx context.Context, userId string) ([]string, error)
	// GetSearchKeywords returns the user's most recent search keywords,
	// most recent first, capped at limit.
	GetSearchKeywords(ctx context.Context, userId string, limit int) ([]string, error)
	// GetPurchasedProductIds returns ids of products the user already bought.
	GetPurchasedProductIds(ctx context.Context, userId string) ([]string, error)
}
