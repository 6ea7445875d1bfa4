package service

import (
	"context"
	"sync"
	"time"

	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/logger"
)

type syncJob struct {
	engine   SyncEngine
	monitor  connectivity.Monitor
	interval time.Duration

	mu          sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	logger *logger.Logger
}

// NewSyncJob creates a syncJob that drains the queue on connectivity
// transitions, on a periodic safety-net ticker and on Wake messages. The job
// is idle until Start is called. If interval is zero or negative it defaults
// to 2 minutes.
func NewSyncJob(engine SyncEngine, monitor connectivity.Monitor, interval time.Duration, logger *logger.Logger) SyncJob {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &syncJob{
		engine:   engine,
		monitor:  monitor,
		interval: interval,
		logger:   logger,
	}
}

// Start implements SyncJob. It stops any previously running job, subscribes
// to connectivity transitions, launches the ticker goroutine and runs an
// immediate drain attempt. The goroutine exits when ctx is cancelled or Stop
// is called.
func (j *syncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	// both transitions funnel into the same drain entry point: when offline
	// the engine only recomputes the pending count and publishes the status
	j.unsubscribe = j.monitor.Subscribe(
		func() { go j.engine.ProcessSyncQueue(jobCtx) },
		func() { go j.engine.ProcessSyncQueue(jobCtx) },
	)
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		// startup drain catches mutations queued before this run
		j.engine.ProcessSyncQueue(jobCtx)

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if j.monitor.Online() {
					j.engine.ProcessSyncQueue(jobCtx)
				}
			}
		}
	}()

	j.logger.Info().
		Str("func", "syncJob.Start").
		Dur("interval", j.interval).
		Msg("sync job started")
}

// Stop implements SyncJob. It unsubscribes from connectivity transitions,
// cancels the ticker goroutine's context and blocks until the goroutine has
// fully exited. Safe to call when the job is not running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	unsubscribe := j.unsubscribe
	j.cancel = nil
	j.unsubscribe = nil
	j.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel == nil {
		return
	}
	cancel()
	j.wg.Wait()

	j.logger.Info().Str("func", "syncJob.Stop").Msg("sync job stopped")
}

// Wake implements SyncJob. A background wake message means a sync opportunity
// arose; the only reaction is invoking the drain entry point.
func (j *syncJob) Wake() {
	ctx := j.logger.WithContext(context.Background())
	go j.engine.ProcessSyncQueue(ctx)
}
