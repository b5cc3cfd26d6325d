// Package importlock serializes spreadsheet imports so two batches never race
// on the same roster totals.
package importlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/callpay-backend/pkg/db/models"
)

const defaultLockTTL = 15 * time.Minute

// Lock coordinates exclusive import runs. Acquire returns a token that
// identifies this holder; Release only frees the lock while that token
// still owns it.
type Lock interface {
	Acquire(ctx context.Context) (token string, ok bool, err error)
	Release(ctx context.Context, token string) error
}

// redisStore defines the operations used by RedisLock.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
}

// RedisLock implements Lock using Redis SETNX + TTL so imports are exclusive
// across every API and CLI process sharing the Redis instance.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return "", false, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes the key only if it still holds token. After a TTL expiry
// the key belongs to someone else and is left alone.
func (l *RedisLock) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := l.client.DeleteIfValue(ctx, l.key, token); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}

// DBLock implements Lock with a lease row in import_locks. Every process
// sharing the database is excluded, so it is the fallback when Redis is not
// configured.
type DBLock struct {
	db   *gorm.DB
	name string
	ttl  time.Duration
	now  func() time.Time
}

// NewDBLock constructs a lease-row lock named name.
func NewDBLock(conn *gorm.DB, name string, ttl time.Duration) (*DBLock, error) {
	if conn == nil {
		return nil, errors.New("database connection required for lock")
	}
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &DBLock{db: conn, name: name, ttl: ttl, now: time.Now}, nil
}

// Acquire clears an expired lease, then inserts a fresh one. The primary key
// lets exactly one concurrent insert win.
func (l *DBLock) Acquire(ctx context.Context) (string, bool, error) {
	now := l.now().UTC()
	conn := l.db.WithContext(ctx)

	if err := conn.Where("name = ? AND expires_at <= ?", l.name, now).Delete(&models.ImportLock{}).Error; err != nil {
		return "", false, fmt.Errorf("clear expired lock: %w", err)
	}

	lease := models.ImportLock{Name: l.name, Token: uuid.NewString(), ExpiresAt: now.Add(l.ttl)}
	res := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&lease)
	if res.Error != nil {
		return "", false, fmt.Errorf("insert lock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return lease.Token, true, nil
}

// Release deletes the lease only while token still owns it.
func (l *DBLock) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := l.db.WithContext(ctx).
		Where("name = ? AND token = ?", l.name, token).
		Delete(&models.ImportLock{}).Error
	if err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}
