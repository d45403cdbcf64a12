package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/osintkit/platform-scheduler/scheduler"
)

// ensure that RedisRecorder satisfies the Recorder interface
var _ scheduler.Recorder = &RedisRecorder{}

// RedisRecorder persists admission counters to Redis. The total hash is
// cumulative and never expires; minute buckets and per-key hashes carry a
// TTL. It is an observation sink only, never read back for admission.
type RedisRecorder struct {
	client *redis.Client

	prefix        string
	ttl           time.Duration
	minuteBuckets bool
}

type RedisOption func(*RedisRecorder)

func WithPrefix(prefix string) RedisOption {
	return func(r *RedisRecorder) { r.prefix = strings.Trim(prefix, ":") }
}

func WithTTL(d time.Duration) RedisOption {
	return func(r *RedisRecorder) { r.ttl = d }
}

func WithMinuteBuckets(enabled bool) RedisOption {
	return func(r *RedisRecorder) { r.minuteBuckets = enabled }
}

func NewRedisRecorder(client *redis.Client, opts ...RedisOption) *RedisRecorder {
	r := &RedisRecorder{
		client:        client,
		prefix:        "scheduler:stats",
		ttl:           24 * time.Hour,
		minuteBuckets: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRecorder) Record(ctx context.Context, ev scheduler.Event) error {
	if r == nil || r.client == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "queued"
	if ev.Admitted {
		field = "admitted"
	}

	// Using a Redis pipeline to optimize network performance
	p := r.client.Pipeline()
	p.HIncrBy(ctx, r.prefix+":total", field, 1)

	if r.minuteBuckets {
		bucketKey := fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
		p.HIncrBy(ctx, bucketKey, field, 1)
		if r.ttl > 0 {
			p.Expire(ctx, bucketKey, r.ttl)
		}
	}

	if key := strings.TrimSpace(ev.Key); key != "" {
		keyKey := r.prefix + ":key:" + key
		p.HIncrBy(ctx, keyKey, field, 1)
		if r.ttl > 0 {
			p.Expire(ctx, keyKey, r.ttl)
		}
	}

	_, err := p.Exec(ctx)
	return err
}
