package etcd

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/trendora/reco/internal/config/structs"
)

var (
	instances map[string]Etcd
	appName   string
	initOnce  sync.Once
)

// Init initializes the Etcd client, to be called from main.go
func Init(appConfig structs.Configs) {
	initOnce.Do(func() {
		appName = appConfig.AppName
	})
	if instances == nil {
		instances = make(map[string]Etcd)
		if instances[appName] == nil {
			instances[appName] = newV1Etcd(appConfig)
		}
	}
}

// Instance returns the Etcd client instance. Ensure that Init is called before calling this function
func Instance() map[string]Etcd {
	if instances == nil {
		log.Panic().Msg("etcd client not initialized, call Init first")
	}
	return instances
}

// SetMockInstance sets the mock instance of Etcd client
// This would be handy in places where we are directly using Etcd as etcd.Instance()
func SetMockInstance(mock map[string]Etcd) {
	instances = mock
}
