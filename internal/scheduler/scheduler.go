package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Task func(ctx context.Context) error

// Every runs task on each tick until ctx is done. With immediate set the
// first run starts right away instead of after one interval. Runs never
// overlap: a tick that fires during a slow run is dropped by the ticker.
func Every(ctx context.Context, interval time.Duration, name string, immediate bool, task Task) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error().Err(err).Str("task", name).Msg("scheduled run failed")
			return
		}
		log.Debug().Str("task", name).Dur("took", time.Since(start)).Msg("scheduled run done")
	}

	if immediate {
		run()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
