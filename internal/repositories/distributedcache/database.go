package distributedcache

import (
	"context"
	"errors"
	"sync"
)

var (
	once sync.Once

	// ErrCacheMiss is returned when no vector is cached for the user.
	ErrCacheMiss = errors.New("distributed cache: miss")
)

type Database interface {
	// GetUserVector returns the cached user vector, ErrCacheMiss when absent.
	GetUserVector(ctx context.Context, userId string) ([]float32, error)
	// SetUserVector caches the user vector with a jittered TTL.
	SetUserVector(ctx context.Context, userId string, embedding []float32, ttlSeconds int) error
	// DeleteUserVector drops the cached vector, a no-op when absent.
	DeleteUserVector(ctx context.Context, userId string) error
}
