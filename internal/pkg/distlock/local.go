package distlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalTable holds leases for one process. It only excludes holders inside
// the same process.
type LocalTable struct {
	mu     sync.Mutex
	leases map[string]localEntry
	now    func() time.Time
}

type localEntry struct {
	holder  string
	expires time.Time
}

// NewLocalTable creates an empty lease table.
func NewLocalTable() *LocalTable {
	return &LocalTable{leases: make(map[string]localEntry), now: time.Now}
}

// Lock returns a handle on name with a fresh holder id.
func (t *LocalTable) Lock(name string, ttl time.Duration) *LocalLock {
	return &LocalLock{table: t, name: name, holder: uuid.NewString(), ttl: ttl}
}

// LocalLock implements DistLock over a LocalTable.
type LocalLock struct {
	table  *LocalTable
	name   string
	holder string
	ttl    time.Duration
}

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	t := l.table
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if e, ok := t.leases[l.name]; ok && e.holder != l.holder && now.Before(e.expires) {
		return false, nil
	}
	t.leases[l.name] = localEntry{holder: l.holder, expires: now.Add(l.ttl)}
	return true, nil
}

func (l *LocalLock) Extend(context.Context) error {
	t := l.table
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.leases[l.name]
	now := t.now()
	if !ok || e.holder != l.holder || !now.Before(e.expires) {
		return ErrLockLost
	}
	t.leases[l.name] = localEntry{holder: l.holder, expires: now.Add(l.ttl)}
	return nil
}

func (l *LocalLock) Release(context.Context) error {
	t := l.table
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.leases[l.name]; ok && e.holder == l.holder {
		delete(t.leases, l.name)
	}
	return nil
}
