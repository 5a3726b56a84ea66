// Package kv is the durable local key-value storage the storefront keeps on
// the customer's side: carts, the customer token and the instructor token.
// It plays the part browser local storage plays for the web client.
package kv

import (
	"context"
	"sync"
)

// Store is string-keyed, string-valued storage. Implementations must notify
// subscribers after every successful Set or Delete.
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces the value for key
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Keys lists keys starting with prefix in ascending order
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Subscribe registers fn for change events and returns its cancel func
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Event describes one change to a key.
type Event struct {
	Key     string
	Deleted bool
}

// Notifier fans change events out to subscribers. Store implementations
// embed it and call Notify outside their own locks so handlers may read
// the store.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func (n *Notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(Event))
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
		})
	}
}

func (n *Notifier) Notify(event Event) {
	n.mu.RLock()
	handlers := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		handlers = append(handlers, fn)
	}
	n.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}

// EntrySize is what an entry counts against a storage quota.
func EntrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
