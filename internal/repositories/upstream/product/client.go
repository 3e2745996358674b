package product

import (
	"context"
	"sync"
)

var once sync.Once

// Product is the catalog view of an item, used to hydrate candidate ids.
type Product struct {
	Id       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageUrl string  `json:"image_url"`
	Tags     string  `json:"tags"`
}

type Client interface {
	// GetHotProducts returns the current best sellers, ranked, capped at limit.
	GetHotProducts(ctx context.Context, limit int) ([]Product, error)
	// GetProductsByIds hydrates the given ids. Unknown ids are skipped, order
	// of known ids is preserved.
	GetProductsByIds(ctx context.Context, ids []string) ([]Product, error)
}
