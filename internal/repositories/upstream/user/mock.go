package user

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetBehaviors(ctx context.Context, userId string, days int) ([]BehaviorEvent, error) {
	args := m.Called(ctx, userId, days)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]BehaviorEvent), nil
}

func (m *MockClient) GetInterests(ctx context.Context, userId string) ([]string, error) {
	args := m.Called(ctx, userId)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]string), nil
}

func (m *MockClient) GetSearchKeywords(ctx context.Context, userId string, limit int) ([]string, error) {
	args := m.Called(ctx, userId, limit)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]string), nil
}

func (m *MockClient) GetPurchasedProductIds(ctx context.Context, userId string) ([]string, error) {
	args := m.Called(ctx, userId)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]string), nil
}

// SetTestInstance sets the package-level client singleton to the given mock.
// Use only in tests.
func SetTestInstance(c Client) {
	client = c
}
