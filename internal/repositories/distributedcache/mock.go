package distributedcache

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Ensure MockDatabase implements Database interface
var _ Database = (*MockDatabase)(nil)

type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) GetUserVector(ctx context.Context, userId string) ([]float32, error) {
	args := m.Called(ctx, userId)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]float32), nil
}

func (m *MockDatabase) SetUserVector(ctx context.Context, userId string, embedding []float32, ttlSeconds int) error {
	args := m.Called(ctx, userId, embedding, ttlSeconds)
	return args.Error(0)
}

func (m *MockDatabase) DeleteUserVector(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}

// SetTestInstance sets the package-level cacheDB singleton to the given mock.
// Use only in tests.
func SetTestInstance(db Database) {
	cacheDB = db
}
