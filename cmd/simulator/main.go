package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/osintkit/platform-scheduler/log"
	"github.com/osintkit/platform-scheduler/scheduler"
	"github.com/osintkit/platform-scheduler/stats"
)

// Drives the scheduler with simulated per-platform profile lookups. Set
// REDIS_ADDR to also persist admission counters to Redis.
func main() {
	var opts []scheduler.Option
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		opts = append(opts, scheduler.WithRecorder(stats.NewRedisRecorder(client)))
	}
	sched := scheduler.New(opts...)

	platforms := map[string]struct {
		limit  uint64
		window time.Duration
	}{
		"instagram": {limit: 2, window: time.Second},
		"linkedin":  {limit: 5, window: 2 * time.Second},
		"github":    {limit: 10, window: time.Second},
	}
	for name, cfg := range platforms {
		if err := sched.Initialize(name, cfg.limit, cfg.window); err != nil {
			log.Logger().Fatal("failed to initialize platform",
				zap.String("platform", name), zap.Error(err))
		}
	}

	var wg sync.WaitGroup
	for name := range platforms {
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func(platform string, n int) {
				defer wg.Done()
				result, err := sched.Schedule(context.Background(), platform, simulatedLookup(platform, n))
				if err != nil {
					log.Logger().Error("lookup failed",
						zap.String("platform", platform), zap.Error(err))
					return
				}
				log.Logger().Info("lookup finished",
					zap.String("platform", platform), zap.Any("result", result))
			}(name, i)
		}
	}
	wg.Wait()

	for platform, st := range sched.AllStatuses() {
		log.Logger().Info("final status",
			zap.String("platform", platform),
			zap.Uint64("used", st.Used),
			zap.Uint64("remaining", st.Remaining),
			zap.Int("queued", st.QueueLength))
	}
}

// simulatedLookup stands in for a wrapped profile search against the
// platform's API.
func simulatedLookup(platform string, n int) scheduler.Task {
	return func() (interface{}, error) {
		time.Sleep(time.Duration(20+rand.Intn(60)) * time.Millisecond)
		return fmt.Sprintf("%s/profile-%d", platform, n), nil
	}
}
