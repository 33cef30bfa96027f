package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/porthorian/tokengate/pkg/cache"
)

type Adapter struct {
	mu      sync.RWMutex
	records map[string]cache.Record
}

var _ cache.ProfileStore = (*Adapter)(nil)

func NewAdapter() *Adapter {
	return &Adapter{
		records: map[string]cache.Record{},
	}
}

func (a *Adapter) Get(ctx context.Context, token string) (cache.Record, bool, error) {
	a.mu.RLock()
	record, ok := a.records[token]
	a.mu.RUnlock()
	if !ok {
		return cache.Record{}, false, nil
	}

	return cloneRecord(record), true, nil
}

func (a *Adapter) Put(ctx context.Context, token string, record cache.Record) error {
	if token == "" {
		return errors.New("memory cache: token is required")
	}

	a.mu.Lock()
	a.records[token] = cloneRecord(record)
	a.mu.Unlock()
	return nil
}

func cloneRecord(record cache.Record) cache.Record {
	record.Emails = append([]string(nil), record.Emails...)
	record.Photos = append([]string(nil), record.Photos...)
	return record
}
