// Package keylock provides context-aware mutual exclusion keyed by string.
//
// Each key owns a one-slot channel used as a mutex, so waiting for a key can be
// abandoned when the caller's context is cancelled or its deadline passes.
// Entries are reference counted and dropped once no goroutine holds or waits on them.
package keylock

import (
	"context"
	"sort"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Locker serializes work per key. The zero value is not usable; call New.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock acquires the lock for key. The returned func releases it and must be called
// exactly once. If ctx ends first, ctx.Err() is returned and nothing is held.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.releaseEntry(key)
		})
	}, nil
}

// LockAll acquires every key in ascending order, which keeps concurrent callers
// with overlapping key sets from deadlocking. Duplicate keys are locked once.
func (l *Locker) LockAll(ctx context.Context, keys []string) (func(), error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	unlocks := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	for _, k := range sorted {
		unlock, err := l.Lock(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return releaseAll, nil
}

func (l *Locker) acquireEntry(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseEntry(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
