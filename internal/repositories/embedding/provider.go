package embedding

import (
	"context"
	"errors"
	"sync"
)

var (
	once sync.Once

	// ErrProvider covers non-timeout provider failures (bad status, bad body).
	ErrProvider = errors.New("embedding provider: request failed")
	// ErrProviderTimeout marks deadline exceeded talking to the provider.
	ErrProviderTimeout = errors.New("embedding provider: timed out")
)

type Provider interface {
	// Embed returns the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns embeddings for each text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
