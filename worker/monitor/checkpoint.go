package monitor

import (
	"context"
	"sync"

	"github.com/fox-one/pkg/property"
)

// Checkpoint persisted scan cursor
type Checkpoint interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, cursor string) error
}

type propertyCheckpoint struct {
	store property.Store
	key   string
}

// PropertyCheckpoint keep the cursor in the property store under key
func PropertyCheckpoint(store property.Store, key string) Checkpoint {
	return &propertyCheckpoint{store: store, key: key}
}

func (c *propertyCheckpoint) Load(ctx context.Context) (string, error) {
	v, err := c.store.Get(ctx, c.key)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (c *propertyCheckpoint) Save(ctx context.Context, cursor string) error {
	return c.store.Save(ctx, c.key, cursor)
}

type memoryCheckpoint struct {
	mux    sync.Mutex
	cursor string
}

// MemoryCheckpoint process local cursor, lost on restart
func MemoryCheckpoint() Checkpoint {
	return &memoryCheckpoint{}
}

func (c *memoryCheckpoint) Load(_ context.Context) (string, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.cursor, nil
}

func (c *memoryCheckpoint) Save(_ context.Context, cursor string) error {
	c.mux.Lock()
	c.cursor = cursor
	c.mux.Unlock()
	return nil
}
