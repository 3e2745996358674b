package inmemorycache

import "github.com/stretchr/testify/mock"

// Ensure MockCache implements Cache interface
var _ Cache = (*MockCache)(nil)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]byte), args.Bool(1)
}

func (m *MockCache) Set(key string, data []byte) error {
	args := m.Called(key, data)
	return args.Error(0)
}

func (m *MockCache) Del(key string) {
	m.Called(key)
}

// SetTestInstance sets the package-level cache singleton to the given mock.
// Use only in tests.
func SetTestInstance(c Cache) {
	instance = c
}
