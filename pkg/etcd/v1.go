package etcd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/trendora/reco/internal/config/structs"
)

const (
	configPath  = "/config/"
	dialTimeout = 5 * time.Second
)

var ErrKeyNotFound = errors.New("etcd: key not found")

type V1 struct {
	conn               *clientv3.Client
	basePath           string
	appName            string
	watchPathCallbacks map[string][]func(value string) error
	mu                 sync.Mutex
}

func newV1Etcd(appConfig structs.Configs) Etcd {
	if appConfig.AppName == "" || appConfig.EtcdServer == "" {
		log.Panic().Msg("APP_NAME or ETCD_SERVER is not set")
	}
	servers := strings.Split(appConfig.EtcdServer, ",")
	etcdBasePath := configPath + appConfig.AppName

	conn, err := clientv3.New(clientv3.Config{
		Endpoints:           servers,
		Username:            appConfig.EtcdUsername,
		Password:            appConfig.EtcdPassword,
		DialTimeout:         dialTimeout,
		DialKeepAliveTime:   dialTimeout,
		PermitWithoutStream: true,
	})
	if err != nil {
		log.Panic().Err(err).Msg("failed to create etcd client")
	}
	v1Etcd := &V1{
		conn:               conn,
		basePath:           etcdBasePath,
		appName:            appConfig.AppName,
		watchPathCallbacks: make(map[string][]func(value string) error),
	}
	if appConfig.EtcdWatcherEnabled {
		v1Etcd.watchPrefix(context.Background(), etcdBasePath)
	}
	return v1Etcd
}

// GetValue reads the value stored at basePath+path.
func (v *V1) GetValue(path string) (string, error) {
	resp, err := v.conn.Get(context.Background(), v.basePath+path)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to get value at node %s", v.basePath+path)
		return "", err
	}
	if len(resp.Kvs) == 0 {
		return "", ErrKeyNotFound
	}
	return string(resp.Kvs[0].Value), nil
}

// SetValue writes the value at basePath+path.
func (v *V1) SetValue(path string, value interface{}) error {
	_, err := v.conn.Put(context.Background(), v.basePath+path, fmt.Sprintf("%v", value))
	if err != nil {
		log.Error().Err(err).Msgf("Failed to set value at node %s", v.basePath+path)
		return err
	}
	return nil
}

// IsNodeExist checks if a node exists at basePath+path.
func (v *V1) IsNodeExist(path string) (bool, error) {
	resp, err := v.conn.Get(context.Background(), v.basePath+path, clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}

// RegisterWatchPathCallback registers a callback invoked with the new value
// whenever a change is detected under the given path
func (v *V1) RegisterWatchPathCallback(path string, callback func(value string) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.watchPathCallbacks[path] = append(v.watchPathCallbacks[path], callback)
	return nil
}

func (v *V1) watchPrefix(ctx context.Context, prefix string) {
	go v.runWatchLoop(ctx, prefix, func(ctx context.Context) clientv3.WatchChan {
		return v.conn.Watch(ctx, prefix, clientv3.WithPrefix())
	}, 5*time.Second)
}

// runWatchLoop drains watch channels until the context ends. The channel is
// re-created on every round, so a server-side close does not stop config
// updates for good.
func (v *V1) runWatchLoop(ctx context.Context, prefix string, watch func(ctx context.Context) clientv3.WatchChan, retryDelay time.Duration) {
	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Msgf("panic in watch prefix: %v", r)
				}
			}()
			for watchResp := range watch(ctx) {
				for _, event := range watchResp.Events {
					log.Debug().Msgf("Key: %s | Type: %s | Value: %s", event.Kv.Key, event.Type.String(), event.Kv.Value)
					v.dispatch(prefix, string(event.Kv.Key), string(event.Kv.Value))
				}
			}
			log.Warn().Msgf("watch channel closed for prefix %s, re-establishing", prefix)
		}()

		//Avoid frequent restarts on panics and channel closes
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}

func (v *V1) dispatch(prefix, eventKey, eventValue string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for path, callbacks := range v.watchPathCallbacks {
		watchPath := prefix + path
		if !strings.HasPrefix(eventKey, watchPath) {
			continue
		}
		for _, callback := range callbacks {
			if err := callback(eventValue); err != nil {
				log.Error().Err(err).Msgf("unable to execute the watch callback for path %s", path)
			}
		}
	}
}
