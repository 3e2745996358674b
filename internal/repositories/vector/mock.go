package vector

import "github.com/stretchr/testify/mock"

// Ensure MockDatabase implements Database interface
var _ Database = (*MockDatabase)(nil)

type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) Search(request *SearchRequest, metricTags []string) (*SearchResponse, error) {
	args := m.Called(request, metricTags)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).(*SearchResponse), nil
}

func (m *MockDatabase) GetItemVectors(ids []string) (map[string][]float32, error) {
	args := m.Called(ids)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	return args.Get(0).(map[string][]float32), nil
}

func (m *MockDatabase) BulkUpsert(upsertRequest UpsertRequest) error {
	args := m.Called(upsertRequest)
	return args.Error(0)
}

func (m *MockDatabase) BulkDelete(deleteRequest DeleteRequest) error {
	args := m.Called(deleteRequest)
	return args.Error(0)
}

func (m *MockDatabase) CreateCollection(dimension int) error {
	args := m.Called(dimension)
	return args.Error(0)
}

// SetTestInstance sets the package-level vectorDb singleton to the given mock.
// Use only in tests.
func SetTestInstance(db Database) {
	vectorDb = db
}

// ResetTestInstance clears the package-level vectorDb singleton.
// Use only in tests.
func ResetTestInstance() {
	vectorDb = nil
}
