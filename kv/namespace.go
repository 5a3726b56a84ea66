package kv

import (
	"context"
	"strings"
)

type namespaced struct {
	prefix string
	inner  Store
}

var _ Store = (*namespaced)(nil)

// Namespace returns a view of inner in which every key is stored under
// prefix. Events from other namespaces are not delivered, and delivered keys
// have the prefix removed. The gateway gives each browser profile its own
// namespace of one shared store.
func Namespace(inner Store, prefix string) Store {
	return &namespaced{prefix: prefix, inner: inner}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := n.inner.Keys(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, strings.TrimPrefix(key, n.prefix))
	}
	return out, nil
}

func (n *namespaced) Subscribe(fn func(Event)) func() {
	return n.inner.Subscribe(func(event Event) {
		if !strings.HasPrefix(event.Key, n.prefix) {
			return
		}
		fn(Event{Key: strings.TrimPrefix(event.Key, n.prefix), Deleted: event.Deleted})
	})
}

// ProfileKeyPrefix starts every key that belongs to a profile namespace.
const ProfileKeyPrefix = "profile:"

// ProfilePrefix is the key prefix of one browser or CLI profile.
func ProfilePrefix(profile string) string {
	return ProfileKeyPrefix + profile + ":"
}

// QuotaScope is the prefix of the entries that share key's storage quota:
// the key's profile namespace, or "" for keys outside every profile. Each
// profile stands for one browser, so each gets a quota of its own.
func QuotaScope(key string) string {
	rest, ok := strings.CutPrefix(key, ProfileKeyPrefix)
	if !ok {
		return ""
	}
	profile, _, found := strings.Cut(rest, ":")
	if !found {
		return ""
	}
	return ProfilePrefix(profile)
}

// ForProfile is the namespace of inner that belongs to profile.
func ForProfile(inner Store, profile string) Store {
	return Namespace(inner, ProfilePrefix(profile))
}
