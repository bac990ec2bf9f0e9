// Package memory in process pool store, used by the dev server and tests
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"poolmanager/core"

	"github.com/fox-one/pkg/store/db"
)

const singletonID = 1

type memoryStore struct {
	mux sync.RWMutex

	config      *core.PoolConfig
	userConfigs map[string]*core.UserPoolConfig
	reserves    map[string]*core.UserReserve
	aggregate   *core.PoolReserve
	profit      *core.ProtocolProfit
	events      []*core.Event
}

// New new in memory pool store
func New() core.IPoolStore {
	return &memoryStore{
		userConfigs: map[string]*core.UserPoolConfig{},
		reserves:    map[string]*core.UserReserve{},
	}
}

func (s *memoryStore) FindConfig(ctx context.Context) (*core.PoolConfig, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if s.config == nil {
		return &core.PoolConfig{ID: singletonID}, nil
	}

	cfg := *s.config
	return &cfg, nil
}

func (s *memoryStore) FindUserConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	cfg, ok := s.userConfigs[userID]
	if !ok {
		return &core.UserPoolConfig{UserID: userID}, nil
	}

	c := *cfg
	return &c, nil
}

func (s *memoryStore) FindUserReserve(ctx context.Context, userID string) (*core.UserReserve, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	reserve, ok := s.reserves[userID]
	if !ok {
		return core.NewUserReserve(userID), nil
	}

	return reserve.Clone(), nil
}

func (s *memoryStore) FindAggregate(ctx context.Context) (*core.PoolReserve, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if s.aggregate == nil {
		return core.NewPoolReserve(singletonID), nil
	}

	return s.aggregate.Clone(), nil
}

func (s *memoryStore) FindProfit(ctx context.Context) (*core.ProtocolProfit, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if s.profit == nil {
		return core.NewProtocolProfit(singletonID), nil
	}

	return s.profit.Clone(), nil
}

func (s *memoryStore) ListUserReserves(ctx context.Context, fromUserID string, limit int) ([]*core.UserReserve, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	ids := make([]string, 0, len(s.reserves))
	for id := range s.reserves {
		if id > fromUserID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	reserves := make([]*core.UserReserve, 0, len(ids))
	for _, id := range ids {
		reserves = append(reserves, s.reserves[id].Clone())
	}

	return reserves, nil
}

func (s *memoryStore) ListEvents(ctx context.Context, userID string, fromID int64, limit int) ([]*core.Event, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	var events []*core.Event
	for _, e := range s.events {
		if e.ID <= fromID || (userID != "" && e.UserID != userID) {
			continue
		}

		event := *e
		events = append(events, &event)
		if limit > 0 && len(events) >= limit {
			break
		}
	}

	return events, nil
}

func (s *memoryStore) Commit(ctx context.Context, cs *core.Changeset) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.fresh(cs) {
		return db.ErrOptimisticLock
	}

	now := time.Now()

	if cfg := cs.Config; cfg != nil {
		cfg.ID = singletonID
		cfg.Version++
		cfg.UpdatedAt = now
		c := *cfg
		s.config = &c
	}

	if cfg := cs.UserConfig; cfg != nil {
		cfg.Version++
		cfg.UpdatedAt = now
		c := *cfg
		s.userConfigs[cfg.UserID] = &c
	}

	if reserve := cs.Reserve; reserve != nil {
		reserve.Version++
		reserve.UpdatedAt = now
		s.reserves[reserve.UserID] = reserve.Clone()
	}

	if aggregate := cs.Aggregate; aggregate != nil {
		aggregate.ID = singletonID
		aggregate.Version++
		aggregate.UpdatedAt = now
		s.aggregate = aggregate.Clone()
	}

	if profit := cs.Profit; profit != nil {
		profit.ID = singletonID
		profit.Version++
		profit.UpdatedAt = now
		s.profit = profit.Clone()
	}

	for _, e := range cs.Events {
		e.ID = int64(len(s.events)) + 1
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		event := *e
		s.events = append(s.events, &event)
	}

	return nil
}

// fresh every row of cs was read at the stored version, missing rows are version 0
func (s *memoryStore) fresh(cs *core.Changeset) bool {
	if cfg := cs.Config; cfg != nil {
		var version int64
		if s.config != nil {
			version = s.config.Version
		}

		if version != cfg.Version {
			return false
		}
	}

	if cfg := cs.UserConfig; cfg != nil {
		var version int64
		if current, ok := s.userConfigs[cfg.UserID]; ok {
			version = current.Version
		}

		if version != cfg.Version {
			return false
		}
	}

	if reserve := cs.Reserve; reserve != nil {
		var version int64
		if current, ok := s.reserves[reserve.UserID]; ok {
			version = current.Version
		}

		if version != reserve.Version {
			return false
		}
	}

	if aggregate := cs.Aggregate; aggregate != nil {
		var version int64
		if s.aggregate != nil {
			version = s.aggregate.Version
		}

		if version != aggregate.Version {
			return false
		}
	}

	if profit := cs.Profit; profit != nil {
		var version int64
		if s.profit != nil {
			version = s.profit.Version
		}

		if version != profit.Version {
			return false
		}
	}

	return true
}
