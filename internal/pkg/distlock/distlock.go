// Package distlock provides short-lived named leases shared across processes.
//
// Two backends exist: Redis (SET NX with a TTL) when a client is configured,
// and a PostgreSQL lease row otherwise. Both expire on their own, so a crashed
// holder never blocks the name for longer than the TTL.
package distlock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by Extend when the lease expired or was taken over.
var ErrLockLost = errors.New("distlock: lease no longer held")

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Extend pushes the expiry out by the lock's TTL.
	Extend(ctx context.Context) error
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Factory builds a lock for a name. The runner takes one so tests can swap backends.
type Factory func(key string) DistLock

// NewFactory returns a Factory using the best available backend: Redis when
// a client is given, else the Postgres lease table, else an in-process table
// for single-instance development setups.
func NewFactory(redisClient *redis.Client, db *sql.DB, ttl time.Duration) Factory {
	local := NewLocalTable()
	return func(key string) DistLock {
		switch {
		case redisClient != nil:
			return NewRedisLock(redisClient, key, ttl)
		case db != nil:
			return NewPGLease(db, key, ttl)
		}
		return local.Lock(key, ttl)
	}
}

// LeaseTableDDL creates the table backing PGLease. The repository schema
// applies it together with the application tables.
const LeaseTableDDL = `
CREATE TABLE IF NOT EXISTS run_leases (
	name          TEXT PRIMARY KEY,
	holder        TEXT NOT NULL,
	running_since TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PGLease implements DistLock with a row in run_leases. A lease is free when
// no row exists or its running_since is older than the TTL.
type PGLease struct {
	db     *sql.DB
	name   string
	holder string
	ttl    time.Duration
}

// NewPGLease creates a lease handle with a fresh holder id.
func NewPGLease(db *sql.DB, name string, ttl time.Duration) *PGLease {
	return &PGLease{db: db, name: name, holder: uuid.NewString(), ttl: ttl}
}

// Acquire claims the lease in one statement: insert, or take over an expired row.
func (l *PGLease) Acquire(ctx context.Context) (bool, error) {
	var holder string
	err := l.db.QueryRowContext(ctx, `
		INSERT INTO run_leases (name, holder, running_since)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
			SET holder = EXCLUDED.holder, running_since = EXCLUDED.running_since
			WHERE run_leases.running_since < NOW() - ($3 * INTERVAL '1 millisecond')
		RETURNING holder
	`, l.name, l.holder, l.ttl.Milliseconds()).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", l.name, err)
	}
	return holder == l.holder, nil
}

// Extend refreshes running_since while we still hold the lease.
func (l *PGLease) Extend(ctx context.Context) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE run_leases SET running_since = NOW() WHERE name = $1 AND holder = $2`,
		l.name, l.holder,
	)
	if err != nil {
		return fmt.Errorf("extend lease %s: %w", l.name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLockLost
	}
	return nil
}

// Release deletes the lease row if it is still ours.
func (l *PGLease) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM run_leases WHERE name = $1 AND holder = $2`,
		l.name, l.holder,
	)
	if err != nil {
		return fmt.Errorf("release lease %s: %w", l.name, err)
	}
	return nil
}
