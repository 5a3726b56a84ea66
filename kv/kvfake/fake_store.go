package kvfake

import (
	"context"
	"sort"
	"strings"
	"sync"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/kv"
)

var _ kv.Store = (*FakeStore)(nil)

// FakeStore is an in-memory kv.Store. A positive quota bounds the summed
// size of keys and values the way a browser bounds local storage.
type FakeStore struct {
	kv.Notifier

	entries map[string]string
	size    int64
	quota   int64
	lock    sync.RWMutex

	failWrites error
}

func NewFakeStore() *FakeStore {
	return NewFakeStoreWithQuota(0)
}

func NewFakeStoreWithQuota(quota int64) *FakeStore {
	return &FakeStore{
		entries: make(map[string]string),
		quota:   quota,
	}
}

// FailWrites makes every following Set and Delete return err (nil resets).
func (fs *FakeStore) FailWrites(err error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failWrites = err
}

func (fs *FakeStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	value, ok := fs.entries[key]
	return value, ok, nil
}

func (fs *FakeStore) Set(_ context.Context, key, value string) error {
	if err := fs.set(key, value); err != nil {
		return err
	}
	fs.Notify(kv.Event{Key: key})
	return nil
}

func (fs *FakeStore) set(key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failWrites != nil {
		return fs.failWrites
	}

	newSize := fs.size + kv.EntrySize(key, value)
	if old, ok := fs.entries[key]; ok {
		newSize -= kv.EntrySize(key, old)
	}
	if fs.quota > 0 && newSize > fs.quota {
		return sferrors.ErrQuotaExceeded
	}
	fs.entries[key] = value
	fs.size = newSize
	return nil
}

func (fs *FakeStore) Delete(_ context.Context, key string) error {
	existed, err := fs.delete(key)
	if err != nil {
		return err
	}
	if existed {
		fs.Notify(kv.Event{Key: key, Deleted: true})
	}
	return nil
}

func (fs *FakeStore) delete(key string) (bool, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failWrites != nil {
		return false, fs.failWrites
	}
	old, ok := fs.entries[key]
	if !ok {
		return false, nil
	}
	fs.size -= kv.EntrySize(key, old)
	delete(fs.entries, key)
	return true, nil
}

func (fs *FakeStore) Keys(_ context.Context, prefix string) ([]string, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	keys := make([]string, 0)
	for key := range fs.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
