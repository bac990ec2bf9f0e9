package pool

import (
	"context"
	"fmt"
	"time"

	"poolmanager/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache read through cache of the pool and user configs
func Cache(store core.IPoolStore, exp time.Duration) core.IPoolStore {
	return &cachePoolStore{
		IPoolStore: store,
		cache:      gcache.New(2048).LRU().Expiration(exp).Build(),
		sf:         &singleflight.Group{},
	}
}

type cachePoolStore struct {
	core.IPoolStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cachePoolStore) FindConfig(ctx context.Context) (*core.PoolConfig, error) {
	key := s.configKey()
	if v, err := s.cache.Get(key); err == nil {
		if cfg, ok := v.(core.PoolConfig); ok {
			return &cfg, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		cfg, err := s.IPoolStore.FindConfig(ctx)
		if err != nil {
			return nil, err
		}

		if cfg.Version > 0 {
			_ = s.cache.Set(key, *cfg)
		}

		return *cfg, nil
	})
	if err != nil {
		return nil, err
	}

	cfg := v.(core.PoolConfig)
	return &cfg, nil
}

func (s *cachePoolStore) FindUserConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error) {
	key := s.userConfigKey(userID)
	if v, err := s.cache.Get(key); err == nil {
		if cfg, ok := v.(core.UserPoolConfig); ok {
			return &cfg, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		cfg, err := s.IPoolStore.FindUserConfig(ctx, userID)
		if err != nil {
			return nil, err
		}

		if cfg.Version > 0 {
			_ = s.cache.Set(key, *cfg)
		}

		return *cfg, nil
	})
	if err != nil {
		return nil, err
	}

	cfg := v.(core.UserPoolConfig)
	return &cfg, nil
}

func (s *cachePoolStore) Commit(ctx context.Context, cs *core.Changeset) error {
	err := s.IPoolStore.Commit(ctx, cs)

	if cs.Config != nil {
		s.cache.Remove(s.configKey())
		if err == nil {
			_ = s.cache.Set(s.configKey(), *cs.Config)
		}
	}

	if cs.UserConfig != nil {
		key := s.userConfigKey(cs.UserConfig.UserID)
		s.cache.Remove(key)
		if err == nil {
			_ = s.cache.Set(key, *cs.UserConfig)
		}
	}

	return err
}

func (s *cachePoolStore) configKey() string {
	return "pool:config"
}

func (s *cachePoolStore) userConfigKey(userID string) string {
	return fmt.Sprintf("pool:user:config:%s", userID)
}
