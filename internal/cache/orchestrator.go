package cache

import (
	"context"
	"encoding/json"
	"ticket-waitlist/internal/metrics"
	"ticket-waitlist/pkg/logger"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Orchestrator wraps a Store with get-or-populate semantics. Loader errors
// propagate to the caller; store errors never do (the Store contract already
// swallows them).
type Orchestrator struct {
	store          Store
	refreshTimeout time.Duration
	sf             singleflight.Group
	log            *zap.Logger
}

func NewOrchestrator(store Store) *Orchestrator {
	return &Orchestrator{
		store:          store,
		refreshTimeout: 10 * time.Second,
		log:            logger.WithComponent("cache"),
	}
}

// Invalidate drops a key, best effort.
func (o *Orchestrator) Invalidate(ctx context.Context, key string) {
	o.store.Delete(ctx, key)
}

type LoadFunc[T any] func(ctx context.Context) (T, error)

// GetOrLoad is the read-through path. With bypass set the store is refreshed
// but not consulted. An undecodable cached value is discarded and reloaded.
func GetOrLoad[T any](ctx context.Context, o *Orchestrator, key string, ttl time.Duration, bypass bool, load LoadFunc[T]) (T, error) {
	var zero T

	if !bypass {
		if raw, ok := o.store.Get(ctx, key); ok {
			var v T
			if err := json.Unmarshal([]byte(raw), &v); err == nil {
				metrics.CacheRequests.WithLabelValues("hit").Inc()
				return v, nil
			}
			o.log.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}

	if b, err := json.Marshal(v); err == nil {
		o.store.Set(ctx, key, string(b), ttl)
	} else {
		o.log.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))
	}

	return v, nil
}

// envelope carries the cached value with its population time so staleness
// can be judged against the fresh TTL.
type envelope struct {
	Value    json.RawMessage `json:"v"`
	CachedAt int64           `json:"at"` // unix nanoseconds
}

// GetOrLoadStale is the stale-while-revalidate path. Entries live in the
// store for staleTTL. A hit younger than freshTTL is returned as-is. A hit
// older than freshTTL is still returned immediately, but a background
// refresh is kicked off so a later caller sees a fresh value. Misses and
// refreshes are de-duplicated per key, so N concurrent callers cost one
// load call.
func GetOrLoadStale[T any](ctx context.Context, o *Orchestrator, key string, freshTTL, staleTTL time.Duration, load LoadFunc[T]) (T, error) {
	var zero T

	if raw, ok := o.store.Get(ctx, key); ok {
		var env envelope
		if err := json.Unmarshal([]byte(raw), &env); err == nil {
			var v T
			if err := json.Unmarshal(env.Value, &v); err == nil {
				age := time.Since(time.Unix(0, env.CachedAt))
				if age <= freshTTL {
					metrics.CacheRequests.WithLabelValues("hit").Inc()
					return v, nil
				}
				metrics.CacheRequests.WithLabelValues("stale").Inc()
				o.refreshAsync(key, staleTTL, func(rctx context.Context) (any, error) {
					return load(rctx)
				})
				return v, nil
			}
		}
		o.log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	res, err, _ := o.sf.Do(key, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		o.storeEnvelope(ctx, key, v, staleTTL)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

// refreshAsync repopulates a key without blocking the caller. The refresh
// runs on a background context: cancelling the request that noticed the
// staleness must not abort the repopulation.
func (o *Orchestrator) refreshAsync(key string, ttl time.Duration, load func(ctx context.Context) (any, error)) {
	metrics.CacheRefreshes.Inc()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.refreshTimeout)
		defer cancel()

		_, err, _ := o.sf.Do(key, func() (interface{}, error) {
			v, err := load(ctx)
			if err != nil {
				return nil, err
			}
			o.storeEnvelope(ctx, key, v, ttl)
			return v, nil
		})
		if err != nil {
			o.log.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (o *Orchestrator) storeEnvelope(ctx context.Context, key string, v any, ttl time.Duration) {
	value, err := json.Marshal(v)
	if err != nil {
		o.log.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))
		return
	}
	b, err := json.Marshal(envelope{Value: value, CachedAt: time.Now().UnixNano()})
	if err != nil {
		return
	}
	o.store.Set(ctx, key, string(b), ttl)
}
