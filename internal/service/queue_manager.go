package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// DrainResult summarises one pass over the queue.
type DrainResult struct {
	// Started is false when the call was a no-op: empty queue, or a guard
	// error was returned.
	Started bool

	Applied int
	Retried int
	Dropped int

	// Exhausted counts the dropped operations that ran out of attempts
	// rather than being rejected outright.
	Exhausted int

	// Deferred counts operations skipped because an earlier operation of the
	// same entity type is still pending.
	Deferred int

	// Aborted is set when connectivity was lost or ctx was cancelled before
	// the snapshot was processed.
	Aborted bool

	// Remaining is the queue length when the drain finished.
	Remaining int
}

// Failed reports whether the drain hit transient failures: an operation
// left for retry or one that used up its attempts.
func (r DrainResult) Failed() bool {
	return r.Retried > 0 || r.Exhausted > 0
}

type queueManager struct {
	cfg       config.ClientSync
	store     store.QueueStore
	applier   OperationApplier
	cache     store.RecordCache
	scheduler Scheduler
	ids       IDGenerator
	validator validators.Validator

	logger *logger.Logger

	mu         sync.Mutex
	started    bool
	closed     bool
	connected  bool
	draining   bool
	queue      []models.SyncOperation
	errs       []models.SyncError
	lastRecord *models.AggregateRecord

	lastAttemptAt time.Time
	lastSuccessAt time.Time

	backoff  *drainBackoff
	timer    Timer
	timerGen uint64

	runCtx context.Context
	cancel context.CancelFunc
	drains sync.WaitGroup
}

// QueueManagerOption customises [NewSyncQueueManager].
type QueueManagerOption func(*queueManager)

// WithScheduler replaces the wall-clock scheduler, e.g. with a
// [FakeScheduler] in tests.
func WithScheduler(s Scheduler) QueueManagerOption {
	return func(m *queueManager) { m.scheduler = s }
}

// WithRecordCache makes the manager refresh the local record with the last
// record it wrote once the queue is fully drained.
func WithRecordCache(cache store.RecordCache) QueueManagerOption {
	return func(m *queueManager) { m.cache = cache }
}

// WithIDGenerator replaces the UUIDv7 operation id source.
func WithIDGenerator(ids IDGenerator) QueueManagerOption {
	return func(m *queueManager) { m.ids = ids }
}

// NewSyncQueueManager builds the queue manager of one account session. It
// starts offline; the connectivity monitor reports the first edge.
func NewSyncQueueManager(cfg config.ClientSync, queueStore store.QueueStore, applier OperationApplier, logger *logger.Logger, opts ...QueueManagerOption) (SyncQueueManager, error) {
	if cfg.AccountID == "" {
		return nil, ErrEmptyAccountID
	}
	if queueStore == nil || applier == nil {
		return nil, ErrNilDependency
	}

	m := &queueManager{
		cfg:       withSyncDefaults(cfg),
		store:     queueStore,
		applier:   applier,
		scheduler: NewRealScheduler(),
		ids:       utils.NewUUIDGenerator(),
		validator: validators.NewRecordValidator(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.backoff = newDrainBackoff(m.cfg.BaseRetryInterval, m.cfg.MaxRetryInterval)

	return m, nil
}

func withSyncDefaults(cfg config.ClientSync) config.ClientSync {
	d := config.Defaults().Sync
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = d.MaxAttempts
	}
	if cfg.BaseRetryInterval <= 0 {
		cfg.BaseRetryInterval = d.BaseRetryInterval
	}
	if cfg.MaxRetryInterval < cfg.BaseRetryInterval {
		cfg.MaxRetryInterval = max(d.MaxRetryInterval, cfg.BaseRetryInterval)
	}
	if cfg.PeriodicInterval <= 0 {
		cfg.PeriodicInterval = d.PeriodicInterval
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = d.MaxErrors
	}
	return cfg
}

func (m *queueManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerShutDown
	}
	if m.started {
		m.mu.Unlock()
		return ErrManagerStarted
	}

	ops, err := m.store.Load(ctx)
	if err != nil {
		m.mu.Unlock()
		m.logger.Err(err).Str("func", "*queueManager.Start").Msg("error loading persisted queue")
		return fmt.Errorf("load queue: %w", err)
	}

	m.queue = ops
	m.started = true
	m.runCtx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	trigger := m.connected && len(m.queue) > 0
	m.armTimerLocked()
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "*queueManager.Start").
		Str("account_id", m.cfg.AccountID).
		Int("pending", len(ops)).
		Msg("sync queue manager started")

	if trigger {
		m.triggerDrain()
	}
	return nil
}

func (m *queueManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.stopTimerLocked()
	cancel := m.cancel
	m.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		m.drains.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("wait for running drain: %w", ctx.Err())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persistLocked(ctx); err != nil {
		return err
	}

	m.logger.Info().Str("func", "*queueManager.Shutdown").Int("pending", len(m.queue)).Msg("sync queue manager stopped")
	return nil
}

func (m *queueManager) Enqueue(ctx context.Context, entityType models.EntityType, action models.Action, payload json.RawMessage) (models.SyncOperation, error) {
	op := models.SyncOperation{
		ID:         m.ids.Generate(),
		EntityType: entityType,
		Action:     action,
		Payload:    slices.Clone(payload),
		EnqueuedAt: m.scheduler.Now(),
	}
	if err := m.validator.Validate(ctx, op, validators.FieldID, validators.FieldEntityType, validators.FieldAction); err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	m.mu.Lock()
	if err := m.checkRunningLocked(); err != nil {
		m.mu.Unlock()
		return models.SyncOperation{}, err
	}

	m.queue = append(m.queue, op)
	if err := m.persistLocked(ctx); err != nil {
		m.queue = m.queue[:len(m.queue)-1]
		m.mu.Unlock()
		return models.SyncOperation{}, err
	}
	trigger := m.connected && !m.draining
	m.armTimerLocked()
	pending := len(m.queue)
	m.mu.Unlock()

	m.logger.Debug().
		Str("func", "*queueManager.Enqueue").
		Str("op_id", op.ID).
		Str("entity_type", string(op.EntityType)).
		Str("action", string(op.Action)).
		Int("pending", pending).
		Msg("operation enqueued")

	if trigger {
		m.triggerDrain()
	}
	return op, nil
}

func (m *queueManager) ManualSync(ctx context.Context) (DrainResult, error) {
	m.logger.Info().Str("func", "*queueManager.ManualSync").Msg("manual sync requested")
	return m.Drain(ctx)
}

func (m *queueManager) Drain(ctx context.Context) (result DrainResult, err error) {
	m.mu.Lock()
	if err = m.checkRunningLocked(); err != nil {
		m.mu.Unlock()
		return result, err
	}
	switch {
	case !m.connected:
		m.mu.Unlock()
		return result, ErrOffline
	case m.draining:
		m.mu.Unlock()
		return result, ErrDrainInProgress
	case len(m.queue) == 0:
		m.mu.Unlock()
		return result, nil
	}

	m.draining = true
	m.drains.Add(1)
	m.lastAttemptAt = m.scheduler.Now()
	snapshot := slices.Clone(m.queue)
	m.mu.Unlock()

	result.Started = true
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrDrainFailed, r)
		}
		m.finishDrain(ctx, &result, err)
		m.drains.Done()
	}()

	err = m.drainSnapshot(ctx, snapshot, &result)
	return result, err
}

// drainSnapshot processes the operations present when the drain started, in
// batches. A retryable failure blocks the rest of its entity type for this
// pass so per-type order is kept.
func (m *queueManager) drainSnapshot(ctx context.Context, snapshot []models.SyncOperation, result *DrainResult) error {
	blocked := make(map[models.EntityType]bool)

	for start := 0; start < len(snapshot); start += m.cfg.BatchSize {
		if start > 0 && !m.isConnected() {
			result.Aborted = true
			m.logger.Info().Str("func", "*queueManager.drainSnapshot").Int("processed", start).Msg("connectivity lost, drain aborted")
			return nil
		}

		end := min(start+m.cfg.BatchSize, len(snapshot))
		for _, op := range snapshot[start:end] {
			if ctx.Err() != nil {
				result.Aborted = true
				return nil
			}
			if blocked[op.EntityType] {
				result.Deferred++
				continue
			}

			record, applyErr := m.applier.Apply(ctx, m.cfg.AccountID, op)
			if applyErr != nil && ctx.Err() != nil {
				result.Aborted = true
				return nil
			}

			retried, err := m.settle(ctx, op, record, applyErr, result)
			if retried {
				blocked[op.EntityType] = true
			}
			if err != nil {
				return fmt.Errorf("%w: %w", ErrDrainFailed, err)
			}
		}
	}

	return nil
}

func (m *queueManager) settle(ctx context.Context, op models.SyncOperation, record models.AggregateRecord, applyErr error, result *DrainResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	retried := m.settleLocked(op, record, applyErr, result)
	return retried, m.persistLocked(ctx)
}

// settleLocked moves op to its next state and reports whether it stays
// pending after a retryable failure.
func (m *queueManager) settleLocked(op models.SyncOperation, record models.AggregateRecord, applyErr error, result *DrainResult) bool {
	log := m.logger.With().
		Str("func", "*queueManager.settleLocked").
		Str("op_id", op.ID).
		Str("entity_type", string(op.EntityType)).
		Logger()

	idx := slices.IndexFunc(m.queue, func(queued models.SyncOperation) bool { return queued.ID == op.ID })
	if idx < 0 {
		return false
	}

	switch {
	case applyErr == nil:
		m.queue = slices.Delete(m.queue, idx, idx+1)
		m.lastSuccessAt = m.scheduler.Now()
		m.lastRecord = &record
		result.Applied++
		log.Debug().Msg("operation delivered")
		return false

	case IsTerminal(applyErr):
		m.queue = slices.Delete(m.queue, idx, idx+1)
		m.recordErrorLocked(op, op.Attempt+1, applyErr)
		result.Dropped++
		return false
	}

	m.queue[idx].Attempt++
	attempt := m.queue[idx].Attempt
	if attempt >= m.cfg.MaxAttempts {
		m.queue = slices.Delete(m.queue, idx, idx+1)
		m.recordErrorLocked(op, attempt, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, applyErr))
		result.Dropped++
		result.Exhausted++
		return false
	}

	result.Retried++
	log.Warn().Err(applyErr).Int("attempt", attempt).Msg("delivery failed, will retry")
	return true
}

func (m *queueManager) recordErrorLocked(op models.SyncOperation, attempts int, err error) {
	m.errs = append(m.errs, models.SyncError{
		OperationID: op.ID,
		EntityType:  op.EntityType,
		Action:      op.Action,
		Attempts:    attempts,
		Reason:      err.Error(),
		At:          m.scheduler.Now(),
	})
	if over := len(m.errs) - m.cfg.MaxErrors; over > 0 {
		m.errs = append(m.errs[:0], m.errs[over:]...)
	}

	m.logger.Error().
		Err(err).
		Str("func", "*queueManager.recordErrorLocked").
		Str("op_id", op.ID).
		Str("entity_type", string(op.EntityType)).
		Int("attempt", attempts).
		Msg("operation dropped")
}

// finishDrain clears the draining flag and decides when the next drain runs:
// after the backoff delay if this one failed, after the periodic interval if
// work remains, never while offline. The backoff only resets after a drain
// with no transient failures.
func (m *queueManager) finishDrain(ctx context.Context, result *DrainResult, drainErr error) {
	m.mu.Lock()
	m.draining = false
	result.Remaining = len(m.queue)
	failed := drainErr != nil || result.Failed()

	var refreshed *models.AggregateRecord
	if drainErr == nil && result.Retried == 0 && len(m.queue) == 0 && m.cache != nil {
		refreshed = m.lastRecord
	}
	m.lastRecord = nil

	var next time.Duration
	switch {
	case m.closed || !m.connected:
		m.stopTimerLocked()
	case failed && drainErr == nil && len(m.queue) == 0:
		// Only exhausted operations failed; the backoff keeps its position
		// for the next drain.
		m.stopTimerLocked()
	case failed:
		next = m.backoff.Next()
		m.scheduleLocked(next)
	default:
		m.backoff.Reset()
		if len(m.queue) > 0 {
			next = m.cfg.PeriodicInterval
			m.scheduleLocked(next)
		} else {
			m.stopTimerLocked()
		}
	}
	m.mu.Unlock()

	log := m.logger.Info()
	if failed {
		log = m.logger.Warn().Err(drainErr)
	}
	log.Str("func", "*queueManager.finishDrain").
		Int("applied", result.Applied).
		Int("retried", result.Retried).
		Int("dropped", result.Dropped).
		Int("exhausted", result.Exhausted).
		Int("remaining", result.Remaining).
		Dur("next_drain_in", next).
		Msg("drain finished")

	if refreshed != nil {
		if err := m.cache.SaveRecord(context.WithoutCancel(ctx), *refreshed); err != nil {
			m.logger.Err(err).Str("func", "*queueManager.finishDrain").Msg("error refreshing local record")
		}
	}
}

func (m *queueManager) OnOnline() {
	m.mu.Lock()
	if m.connected {
		m.mu.Unlock()
		return
	}
	m.connected = true
	running := m.started && !m.closed
	trigger := running && len(m.queue) > 0 && !m.draining
	if running {
		m.armTimerLocked()
	}
	m.mu.Unlock()

	m.logger.Info().Str("func", "*queueManager.OnOnline").Msg("online")
	if trigger {
		m.triggerDrain()
	}
}

func (m *queueManager) OnOffline() {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return
	}
	m.connected = false
	m.stopTimerLocked()
	m.mu.Unlock()

	m.logger.Info().Str("func", "*queueManager.OnOffline").Msg("offline")
}

func (m *queueManager) Snapshot() models.SyncSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return models.SyncSnapshot{
		Connected:     m.connected,
		Syncing:       m.draining,
		PendingCount:  len(m.queue),
		LastAttemptAt: m.lastAttemptAt,
		LastSuccessAt: m.lastSuccessAt,
		RetryInterval: m.backoff.Current(),
		RecentErrors:  slices.Clone(m.errs),
	}
}

func (m *queueManager) Pending() []models.SyncOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.queue)
}

func (m *queueManager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *queueManager) DismissErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = nil
}

func (m *queueManager) triggerDrain() {
	m.mu.Lock()
	ctx := m.runCtx
	m.mu.Unlock()

	m.scheduler.Go(func() {
		if _, err := m.Drain(ctx); err != nil && !errors.Is(err, ErrDrainInProgress) {
			m.logger.Debug().Err(err).Str("func", "*queueManager.triggerDrain").Msg("background drain")
		}
	})
}

// armTimerLocked starts the periodic drain timer if the manager is online,
// has work and no timer is pending.
func (m *queueManager) armTimerLocked() {
	if m.connected && !m.closed && m.timer == nil && len(m.queue) > 0 {
		m.scheduleLocked(m.cfg.PeriodicInterval)
	}
}

func (m *queueManager) scheduleLocked(d time.Duration) {
	m.stopTimerLocked()
	gen := m.timerGen
	m.timer = m.scheduler.ScheduleAfter(d, func() { m.onTimer(gen) })
}

func (m *queueManager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerGen++
}

func (m *queueManager) onTimer(gen uint64) {
	m.mu.Lock()
	if gen != m.timerGen {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	ctx := m.runCtx
	m.mu.Unlock()

	if _, err := m.Drain(ctx); err != nil && !errors.Is(err, ErrDrainInProgress) {
		m.logger.Debug().Err(err).Str("func", "*queueManager.onTimer").Msg("scheduled drain")
	}
}

func (m *queueManager) isConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *queueManager) checkRunningLocked() error {
	if !m.started {
		return ErrManagerNotStarted
	}
	if m.closed {
		return ErrManagerShutDown
	}
	return nil
}

func (m *queueManager) persistLocked(ctx context.Context) error {
	if err := m.store.Save(ctx, slices.Clone(m.queue)); err != nil {
		m.logger.Err(err).Str("func", "*queueManager.persistLocked").Msg("error persisting queue")
		return fmt.Errorf("%w: %w", ErrPersistingQueue, err)
	}
	return nil
}
