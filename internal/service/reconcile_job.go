package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
)

// defaultReconcileInterval is used when the job is given a non-positive one.
const defaultReconcileInterval = 15 * time.Minute

// ReconcileJob runs Reconciler.FullSync on a ticker while the device is
// online. The queue manager's drains cover single operations; this job picks
// up changes other devices made to the remote record.
type ReconcileJob struct {
	reconciler Reconciler
	online     func() bool
	interval   time.Duration

	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconcileJob creates an idle job. online may be nil, in which case
// every tick syncs.
func NewReconcileJob(reconciler Reconciler, online func() bool, interval time.Duration, logger *logger.Logger) *ReconcileJob {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &ReconcileJob{
		reconciler: reconciler,
		online:     online,
		interval:   interval,
		logger:     logger,
	}
}

// Start stops any previously running loop, then launches a goroutine that
// syncs every interval until ctx is cancelled or Stop is called.
func (j *ReconcileJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.tick(jobCtx)
			}
		}
	}()
}

// Stop cancels the loop and blocks until it has exited. Safe to call when
// the job is not running.
func (j *ReconcileJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *ReconcileJob) tick(ctx context.Context) {
	if j.online != nil && !j.online() {
		return
	}
	if _, err := j.reconciler.FullSync(ctx); err != nil {
		j.logger.Warn().Err(err).Str("func", "*ReconcileJob.tick").Msg("periodic full sync failed")
	}
}
