package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/nutrisync/nutrisync/internal/mock"
)

type recordingWorker struct {
	id    int
	log   *[]int
	stops *[]int
}

func (w *recordingWorker) Start(context.Context) { *w.log = append(*w.log, w.id) }
func (w *recordingWorker) Stop()                 { *w.stops = append(*w.stops, w.id) }

func TestWorkers_StartOrderAndStopReversed(t *testing.T) {
	var starts, stops []int

	ws := New(
		&recordingWorker{id: 1, log: &starts, stops: &stops},
		&recordingWorker{id: 2, log: &starts, stops: &stops},
		&recordingWorker{id: 3, log: &starts, stops: &stops},
	)

	ws.Start(context.Background())
	ws.Stop()

	assert.Equal(t, []int{1, 2, 3}, starts)
	assert.Equal(t, []int{3, 2, 1}, stops)
}

func TestWorkers_Empty(t *testing.T) {
	ws := New()

	ws.Start(context.Background())
	ws.Stop()
}

func TestForMonitor(t *testing.T) {
	ctrl := gomock.NewController(t)
	monitor := mock.NewMockMonitor(ctrl)

	monitor.EXPECT().Start()
	monitor.EXPECT().Stop()

	w := ForMonitor(monitor)
	w.Start(context.Background())
	w.Stop()
}

func TestForSyncJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := mock.NewMockSyncJob(ctrl)

	ctx := context.Background()
	job.EXPECT().Start(ctx)
	job.EXPECT().Stop()

	w := ForSyncJob(job)
	w.Start(ctx)
	w.Stop()
}
