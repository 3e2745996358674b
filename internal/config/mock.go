package config

import (
	"github.com/stretchr/testify/mock"
)

// MockManager is a mock implementation of the Manager interface for testing.
type MockManager struct {
	mock.Mock
}

var _ Manager = (*MockManager)(nil)

func (m *MockManager) GetRecoConfig() *RecoConfig {
	args := m.Called()
	return args.Get(0).(*RecoConfig)
}
