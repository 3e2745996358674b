package embedding

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Ensure MockProvider implements Provider interface
var _ Provider = (*MockProvider)(nil)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([]float32), nil
}

func (m *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).([][]float32), nil
}

// SetTestInstance sets the package-level provider singleton to the given mock.
// Use only in tests.
func SetTestInstance(p Provider) {
	provider = p
}
