package product

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetHotProducts(ctx context.Context, limit int) ([]Product, error) {
	args := m.Called(ctx, limit)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]Product), nil
}

func (m *MockClient) GetProductsByIds(ctx context.Context, ids []string) ([]Product, error) {
	args := m.Called(ctx, ids)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]Product), nil
}

// SetTestInstance sets the package-level client singleton to the given mock.
// Use only in tests.
func SetTestInstance(c Client) {
	client = c
}
