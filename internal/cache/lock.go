// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// lock.go provides per-name reservations. A reservation is held from the
// uniqueness check until the site is persisted so that two requests for the
// same name cannot both reach the CDN.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// lockKeyPrefix is the Valkey key prefix for site name reservations.
	lockKeyPrefix = "sitename:lock:"

	// DefaultLockTTL bounds how long a crashed holder can block a name.
	DefaultLockTTL = 2 * time.Minute
)

// NameLocker reserves site names for the duration of a build.
//
// Acquire returns ok=false without error when another holder already has the
// name. The release func is safe to call more than once.
type NameLocker interface {
	Acquire(ctx context.Context, name string) (release func(), ok bool, err error)
}

// releaseScript deletes the key only if it still holds our token, so an
// expired holder never frees a reservation that now belongs to someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements NameLocker with SET NX PX on Valkey.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a locker backed by the given Valkey client.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire tries to reserve name.
func (l *RedisLocker) Acquire(ctx context.Context, name string) (func(), bool, error) {
	key := lockKeyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire name lock: %w", err)
	}
	if !ok {
		return func() {}, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// The request context may already be cancelled by the time we
			// release, so use a fresh one.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				slog.Warn("name lock release error", "site_name", name, "error", err)
			}
		})
	}
	return release, true, nil
}

// LocalLocker implements NameLocker in process memory. It only coordinates
// requests served by a single instance.
type LocalLocker struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewLocalLocker creates an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{names: make(map[string]struct{})}
}

// Acquire tries to reserve name.
func (l *LocalLocker) Acquire(_ context.Context, name string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.names[name]; held {
		return func() {}, false, nil
	}
	l.names[name] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.names, name)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
