package workers

import (
	"context"

	"github.com/nutrisync/nutrisync/internal/connectivity"
	"github.com/nutrisync/nutrisync/internal/service"
)

// Workers runs a set of background workers as a unit.
type Workers struct {
	workers []Worker
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start starts the workers in registration order.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops the workers in reverse registration order, so that consumers
// shut down before the components they depend on.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// ForMonitor adapts the connectivity monitor to the Worker lifecycle.
func ForMonitor(monitor connectivity.Monitor) Worker {
	return monitorWorker{monitor: monitor}
}

type monitorWorker struct {
	monitor connectivity.Monitor
}

func (w monitorWorker) Start(_ context.Context) { w.monitor.Start() }
func (w monitorWorker) Stop()                   { w.monitor.Stop() }

// ForSyncJob adapts the periodic sync job to the Worker lifecycle.
func ForSyncJob(job service.SyncJob) Worker {
	return syncJobWorker{job: job}
}

type syncJobWorker struct {
	job service.SyncJob
}

func (w syncJobWorker) Start(ctx context.Context) { w.job.Start(ctx) }
func (w syncJobWorker) Stop()                     { w.job.Stop() }
