package etcd

// Etcd abstracts the config store so handlers can be tested against a mock.
type Etcd interface {
	GetValue(path string) (string, error)
	SetValue(path string, value interface{}) error
	IsNodeExist(path string) (bool, error)
	RegisterWatchPathCallback(path string, callback func(value string) error) error
}
