package config

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/trendora/reco/pkg/etcd"
)

const recoConfigPath = "/reco"

// Manager serves the dynamic recommendation config. Reads are lock free and
// always return a usable config, falling back to defaults when the store has
// nothing yet.
type Manager interface {
	GetRecoConfig() *RecoConfig
}

type RecoManager struct {
	etcdClient etcd.Etcd
	current    atomic.Pointer[RecoConfig]
}

var (
	manager     Manager
	managerOnce sync.Once
)

// InitManager loads the reco config from the store and subscribes to updates.
func InitManager(etcdClient etcd.Etcd) Manager {
	managerOnce.Do(func() {
		m := &RecoManager{etcdClient: etcdClient}
		m.current.Store(DefaultRecoConfig())
		m.load()
		if err := etcdClient.RegisterWatchPathCallback(recoConfigPath, m.onUpdate); err != nil {
			log.Error().Err(err).Msg("failed to register reco config watcher")
		}
		manager = m
	})
	return manager
}

// GetManager returns the config manager. InitManager must be called first.
func GetManager() Manager {
	if manager == nil {
		log.Panic().Msg("config manager not initialized, call InitManager first")
	}
	return manager
}

// SetMockManager overrides the manager singleton in tests.
func SetMockManager(mock Manager) {
	manager = mock
}

func (m *RecoManager) GetRecoConfig() *RecoConfig {
	return m.current.Load()
}

func (m *RecoManager) load() {
	value, err := m.etcdClient.GetValue(recoConfigPath)
	if err != nil {
		if errors.Is(err, etcd.ErrKeyNotFound) {
			log.Warn().Msg("no reco config in store, using defaults")
			return
		}
		log.Error().Err(err).Msg("failed to load reco config, using defaults")
		return
	}
	if err := m.onUpdate(value); err != nil {
		log.Error().Err(err).Msg("stored reco config invalid, using defaults")
	}
}

// onUpdate parses and validates a new config document. The previous config
// stays active when the document is rejected.
func (m *RecoManager) onUpdate(value string) error {
	cfg := DefaultRecoConfig()
	if err := yaml.Unmarshal([]byte(value), cfg); err != nil {
		return err
	}
	if err := validateRecoConfig(cfg); err != nil {
		return err
	}
	m.current.Store(cfg)
	log.Info().Msg("reco config updated")
	return nil
}

func validateRecoConfig(cfg *RecoConfig) error {
	if len(cfg.BehaviorWeights) == 0 {
		return errors.New("behavior_weights cannot be empty")
	}
	for event, weight := range cfg.BehaviorWeights {
		if weight <= 0 {
			return errors.New("behavior weight must be positive for event " + event)
		}
	}
	if cfg.BehaviorFusionWeight <= 0 || cfg.InterestFusionWeight <= 0 {
		return errors.New("fusion weights must be positive")
	}
	if cfg.MinBehaviorCount <= 0 {
		return errors.New("min_behavior_count must be positive")
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return errors.New("min_score must be in [0, 1]")
	}
	if cfg.VectorCacheTTLSeconds <= 0 {
		return errors.New("vector_cache_ttl_seconds must be positive")
	}
	if cfg.CandidateMultiplier <= 0 {
		return errors.New("candidate_multiplier must be positive")
	}
	return nil
}
