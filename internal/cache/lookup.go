// Package cache keeps doctors' working hours in Redis in front of the directory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appointment/internal/metrics"
	"appointment/internal/validation"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "doctor:working_hours:"

type entry struct {
	Hours string `json:"hours"`
	Found bool   `json:"found"`
}

// Lookup is a read-through cache for a validation.DoctorLookup.
type Lookup struct {
	next   validation.DoctorLookup
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

// NewLookup wraps next. A nil client or non-positive ttl disables caching.
func NewLookup(next validation.DoctorLookup, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Lookup {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Lookup{next: next, redis: rdb, ttl: ttl, logger: logger}
}

func (l *Lookup) enabled() bool {
	return l.redis != nil && l.ttl > 0
}

// WorkingHours serves from Redis when possible. Not-found answers are cached too.
func (l *Lookup) WorkingHours(ctx context.Context, doctorID string) (string, bool, error) {
	key := keyPrefix + doctorID

	if e, ok := l.readCache(ctx, key); ok {
		metrics.IncCacheLookup("hit")
		return e.Hours, e.Found, nil
	}
	if l.enabled() {
		metrics.IncCacheLookup("miss")
	}

	hours, found, err := l.next.WorkingHours(ctx, doctorID)
	if err != nil {
		return "", false, err
	}

	l.writeCache(ctx, key, entry{Hours: hours, Found: found})
	return hours, found, nil
}

// Ping checks the Redis connection; a disabled cache is always ready.
func (l *Lookup) Ping(ctx context.Context) error {
	if l.redis == nil {
		return nil
	}
	return l.redis.Ping(ctx).Err()
}

// Purge drops every cached working-hours entry.
func (l *Lookup) Purge(ctx context.Context) (int, error) {
	if l.redis == nil {
		return 0, nil
	}

	deleted := 0
	iter := l.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := l.redis.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan cache: %w", err)
	}
	return deleted, nil
}

func (l *Lookup) readCache(ctx context.Context, key string) (entry, bool) {
	var e entry
	if !l.enabled() {
		return e, false
	}
	val, err := l.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return e, false
	}
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return e, false
	}
	return e, true
}

func (l *Lookup) writeCache(ctx context.Context, key string, e entry) {
	if !l.enabled() {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, key, data, l.ttl).Err(); err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
