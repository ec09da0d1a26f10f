// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/mock"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAccount = "acc-1"

var (
	testStart    = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	errTransient = fmt.Errorf("%w: connection refused", ErrTransientIO)
)

// ─────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("op-%03d", s.n)
}

type applyFunc func(ctx context.Context, accountID string, op models.SyncOperation, call int) (models.AggregateRecord, error)

// countingApplier records every Apply call and delegates to fn.
type countingApplier struct {
	mu    sync.Mutex
	calls []models.SyncOperation
	fn    applyFunc
}

func (a *countingApplier) Apply(ctx context.Context, accountID string, op models.SyncOperation) (models.AggregateRecord, error) {
	a.mu.Lock()
	a.calls = append(a.calls, op)
	n := len(a.calls)
	fn := a.fn
	a.mu.Unlock()

	if fn == nil {
		return models.AggregateRecord{AccountID: accountID}, nil
	}
	return fn(ctx, accountID, op, n)
}

func (a *countingApplier) setFn(fn applyFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fn = fn
}

func (a *countingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func failing(err error) applyFunc {
	return func(context.Context, string, models.SyncOperation, int) (models.AggregateRecord, error) {
		return models.AggregateRecord{}, err
	}
}

func delegate(inner OperationApplier) applyFunc {
	return func(ctx context.Context, accountID string, op models.SyncOperation, _ int) (models.AggregateRecord, error) {
		return inner.Apply(ctx, accountID, op)
	}
}

// manualScheduler never runs Go tasks so tests can call Drain themselves.
type manualScheduler struct {
	*FakeScheduler
}

func (manualScheduler) Go(func()) {}

func expensePayload(id, amount string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id":%q,"amount":%q,"currency":"USD","date":"2026-03-10T09:00:00Z"}`, id, amount))
}

func incomePayload(id, amount string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id":%q,"amount":%q,"currency":"USD","date":"2026-03-10T09:00:00Z"}`, id, amount))
}

func expenseIDs(r models.AggregateRecord) []string {
	ids := make([]string, 0, len(r.Expenses))
	for _, e := range r.Expenses {
		ids = append(ids, e.ID)
	}
	return ids
}

func newManager(t *testing.T, qs store.QueueStore, applier OperationApplier, sched Scheduler, mutate ...func(*config.ClientSync)) *queueManager {
	t.Helper()

	cfg := config.ClientSync{AccountID: testAccount}
	for _, fn := range mutate {
		fn(&cfg)
	}

	mgr, err := NewSyncQueueManager(cfg, qs, applier, logger.Nop(), WithScheduler(sched), WithIDGenerator(&seqIDs{}))
	require.NoError(t, err)
	return mgr.(*queueManager)
}

func newStartedManager(t *testing.T, applier OperationApplier, mutate ...func(*config.ClientSync)) (*queueManager, *FakeScheduler, *store.MemoryQueueStore) {
	t.Helper()

	sched := NewFakeScheduler(testStart)
	qs := store.NewMemoryQueueStore()
	m := newManager(t, qs, applier, sched, mutate...)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	return m, sched, qs
}

func enqueueExpenses(t *testing.T, m *queueManager, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := m.Enqueue(context.Background(), models.EntityExpense, models.ActionCreate, expensePayload(id, "10.00"))
		require.NoError(t, err)
	}
}

// ─────────────────────────────────────────────
// construction and lifecycle
// ─────────────────────────────────────────────

func TestNewSyncQueueManager_Validation(t *testing.T) {
	qs := store.NewMemoryQueueStore()
	applier := &countingApplier{}

	_, err := NewSyncQueueManager(config.ClientSync{}, qs, applier, logger.Nop())
	assert.ErrorIs(t, err, ErrEmptyAccountID)

	_, err = NewSyncQueueManager(config.ClientSync{AccountID: testAccount}, nil, applier, logger.Nop())
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = NewSyncQueueManager(config.ClientSync{AccountID: testAccount}, qs, nil, logger.Nop())
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestNewSyncQueueManager_AppliesDefaults(t *testing.T) {
	m := newManager(t, store.NewMemoryQueueStore(), &countingApplier{}, NewFakeScheduler(testStart))

	assert.Equal(t, 10, m.cfg.BatchSize)
	assert.Equal(t, 3, m.cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, m.cfg.BaseRetryInterval)
	assert.Equal(t, 60*time.Second, m.cfg.MaxRetryInterval)
	assert.Equal(t, 30*time.Second, m.cfg.PeriodicInterval)
	assert.Equal(t, 20, m.cfg.MaxErrors)
}

func TestQueueManager_RequiresStart(t *testing.T) {
	m := newManager(t, store.NewMemoryQueueStore(), &countingApplier{}, NewFakeScheduler(testStart))
	ctx := context.Background()

	_, err := m.Enqueue(ctx, models.EntityExpense, models.ActionCreate, expensePayload("e1", "1"))
	assert.ErrorIs(t, err, ErrManagerNotStarted)

	_, err = m.Drain(ctx)
	assert.ErrorIs(t, err, ErrManagerNotStarted)

	assert.ErrorIs(t, m.Shutdown(ctx), ErrManagerNotStarted)
}

func TestQueueManager_StartTwice(t *testing.T) {
	m, _, _ := newStartedManager(t, &countingApplier{})
	assert.ErrorIs(t, m.Start(context.Background()), ErrManagerStarted)
}

func TestQueueManager_StartLoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	qs := mock.NewMockQueueStore(ctrl)
	qs.EXPECT().Load(gomock.Any()).Return(nil, store.ErrUnsupportedQueueVersion)

	m := newManager(t, qs, &countingApplier{}, NewFakeScheduler(testStart))

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnsupportedQueueVersion)
}

func TestQueueManager_StartDrainsPersistedQueueWhenOnline(t *testing.T) {
	qs := store.NewMemoryQueueStore(models.SyncOperation{
		ID: "op-persisted", EntityType: models.EntityExpense, Action: models.ActionCreate,
		Payload: expensePayload("e1", "3"), EnqueuedAt: testStart.Add(-time.Hour),
	})
	applier := &countingApplier{}
	m := newManager(t, qs, applier, NewFakeScheduler(testStart))

	m.OnOnline()
	assert.Zero(t, applier.count(), "nothing is drained before Start")

	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	assert.Equal(t, 1, applier.count())
	assert.Equal(t, "op-persisted", applier.calls[0].ID)
	assert.Zero(t, m.PendingCount())
}

func TestQueueManager_Shutdown(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(failing(errTransient))
	m, sched, _ := newStartedManager(t, applier, func(c *config.ClientSync) { c.MaxAttempts = 10 })
	ctx := context.Background()

	enqueueExpenses(t, m, "e1")
	m.OnOnline()
	require.NotEmpty(t, sched.Pending())

	require.NoError(t, m.Shutdown(ctx))
	assert.Empty(t, sched.Pending(), "shutdown cancels timers")

	_, err := m.Enqueue(ctx, models.EntityExpense, models.ActionCreate, expensePayload("e2", "1"))
	assert.ErrorIs(t, err, ErrManagerShutDown)

	assert.NoError(t, m.Shutdown(ctx), "second shutdown is a no-op")
}

// ─────────────────────────────────────────────
// enqueue
// ─────────────────────────────────────────────

func TestQueueManager_EnqueuePersistsBeforeReturning(t *testing.T) {
	applier := &countingApplier{}
	m, _, qs := newStartedManager(t, applier)
	ctx := context.Background()

	op, err := m.Enqueue(ctx, models.EntityExpense, models.ActionCreate, expensePayload("e1", "4.50"))
	require.NoError(t, err)

	assert.Equal(t, "op-001", op.ID)
	assert.Equal(t, 0, op.Attempt)
	assert.Equal(t, testStart, op.EnqueuedAt)

	persisted, err := qs.Load(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, op.ID, persisted[0].ID)

	assert.Zero(t, applier.count(), "offline enqueue never touches the network")
	assert.Equal(t, 1, m.Snapshot().PendingCount)
}

func TestQueueManager_EnqueueRejectsUnknownEntityType(t *testing.T) {
	m, _, _ := newStartedManager(t, &countingApplier{})

	_, err := m.Enqueue(context.Background(), models.EntityType("loan"), models.ActionCreate, expensePayload("e1", "1"))
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Zero(t, m.PendingCount())
}

func TestQueueManager_EnqueuePersistFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	qs := mock.NewMockQueueStore(ctrl)
	qs.EXPECT().Load(gomock.Any()).Return(nil, nil)
	qs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	qs.EXPECT().Save(gomock.Any(), gomock.Len(0)).Return(nil).AnyTimes()

	m := newManager(t, qs, &countingApplier{}, NewFakeScheduler(testStart))
	require.NoError(t, m.Start(context.Background()))

	_, err := m.Enqueue(context.Background(), models.EntityExpense, models.ActionCreate, expensePayload("e1", "1"))
	assert.ErrorIs(t, err, ErrPersistingQueue)
	assert.Empty(t, m.Pending())

	require.NoError(t, m.Shutdown(context.Background()))
}

func TestQueueManager_EnqueueWhileOnlineDrainsImmediately(t *testing.T) {
	remote := adapter.NewMemoryRemoteStore()
	applier := NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())
	m, _, _ := newStartedManager(t, applier)

	m.OnOnline()
	enqueueExpenses(t, m, "e1")

	record, err := remote.GetRecord(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, expenseIDs(record))
	assert.Zero(t, m.PendingCount())
	assert.Equal(t, testStart, m.Snapshot().LastSuccessAt)
}

// ─────────────────────────────────────────────
// drain
// ─────────────────────────────────────────────

func TestQueueManager_OfflineEnqueueThenOnline(t *testing.T) {
	remote := adapter.NewMemoryRemoteStore()
	applier := NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())
	m, _, qs := newStartedManager(t, applier)
	ctx := context.Background()

	enqueueExpenses(t, m, "e1", "e2", "e3")

	_, err := remote.GetRecord(ctx, testAccount)
	require.ErrorIs(t, err, adapter.ErrNotFound)

	m.OnOnline()

	record, err := remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, expenseIDs(record))

	persisted, err := qs.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestQueueManager_DrainWhileOffline(t *testing.T) {
	m, _, _ := newStartedManager(t, &countingApplier{})
	enqueueExpenses(t, m, "e1")

	res, err := m.Drain(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
	assert.False(t, res.Started)
}

func TestQueueManager_DrainEmptyQueueIsNoop(t *testing.T) {
	applier := &countingApplier{}
	m, sched, _ := newStartedManager(t, applier)
	m.OnOnline()

	res, err := m.Drain(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Started)
	assert.Zero(t, applier.count())
	assert.Empty(t, sched.Pending())
}

func TestQueueManager_ConcurrentDrainIsNoop(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	applier := &countingApplier{}
	applier.setFn(func(_ context.Context, accountID string, _ models.SyncOperation, _ int) (models.AggregateRecord, error) {
		entered <- struct{}{}
		<-release
		return models.AggregateRecord{AccountID: accountID}, nil
	})
	m, _, _ := newStartedManager(t, applier)
	ctx := context.Background()

	enqueueExpenses(t, m, "e1")

	done := make(chan struct{})
	go func() {
		m.OnOnline()
		close(done)
	}()
	<-entered

	assert.True(t, m.Snapshot().Syncing)

	res, err := m.Drain(ctx)
	assert.ErrorIs(t, err, ErrDrainInProgress)
	assert.False(t, res.Started)

	res, err = m.ManualSync(ctx)
	assert.ErrorIs(t, err, ErrDrainInProgress)
	assert.False(t, res.Started)

	close(release)
	<-done

	assert.Equal(t, 1, applier.count(), "operation applied exactly once")
	assert.False(t, m.Snapshot().Syncing)
	assert.Zero(t, m.PendingCount())
}

func TestQueueManager_DuplicateOnlineEdges(t *testing.T) {
	applier := &countingApplier{}
	m, _, _ := newStartedManager(t, applier)

	enqueueExpenses(t, m, "e1", "e2")
	m.OnOnline()
	m.OnOnline()
	m.OnOffline()
	m.OnOffline()

	assert.Equal(t, 2, applier.count())
	assert.False(t, m.Snapshot().Connected)
}

func TestQueueManager_FIFOAcrossBatches(t *testing.T) {
	remote := adapter.NewMemoryRemoteStore()
	applier := NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())
	m, _, _ := newStartedManager(t, applier)

	want := make([]string, 0, 25)
	for i := range 25 {
		want = append(want, fmt.Sprintf("e%02d", i))
	}
	enqueueExpenses(t, m, want...)

	m.OnOnline()

	record, err := remote.GetRecord(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, want, expenseIDs(record))
}

func TestQueueManager_FIFOPerEntityTypeAfterFailure(t *testing.T) {
	remote := adapter.NewMemoryRemoteStore()
	inner := NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())

	var failedOnce bool
	applier := &countingApplier{}
	applier.setFn(func(ctx context.Context, accountID string, op models.SyncOperation, call int) (models.AggregateRecord, error) {
		if op.ID == "op-001" && !failedOnce {
			failedOnce = true
			return models.AggregateRecord{}, errTransient
		}
		return inner.Apply(ctx, accountID, op)
	})
	m, sched, _ := newStartedManager(t, applier)
	ctx := context.Background()

	enqueueExpenses(t, m, "e1")
	_, err := m.Enqueue(ctx, models.EntityIncome, models.ActionCreate, incomePayload("i1", "100"))
	require.NoError(t, err)
	enqueueExpenses(t, m, "e2", "e3")

	m.OnOnline()

	record, err := remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Empty(t, record.Expenses, "later expenses wait for the failed one")
	require.Len(t, record.Incomes, 1, "other entity types are not blocked")
	assert.Equal(t, 3, m.PendingCount())

	sched.Advance(5 * time.Second)

	record, err = remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, expenseIDs(record))
	assert.Zero(t, m.PendingCount())
}

func TestQueueManager_RetryBound(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(failing(errTransient))
	m, sched, qs := newStartedManager(t, applier)

	enqueueExpenses(t, m, "e1")
	m.OnOnline()

	assert.Equal(t, 1, applier.count())
	assert.Equal(t, []time.Duration{5 * time.Second}, sched.Pending())
	assert.Equal(t, 1, m.Pending()[0].Attempt)

	sched.Advance(5 * time.Second)
	assert.Equal(t, 2, applier.count())
	assert.Equal(t, []time.Duration{10 * time.Second}, sched.Pending())

	sched.Advance(10 * time.Second)
	assert.Equal(t, 3, applier.count())
	assert.Empty(t, sched.Pending())

	sched.Advance(10 * time.Minute)
	assert.Equal(t, 3, applier.count(), "dropped operation is never retried")

	snap := m.Snapshot()
	assert.Zero(t, snap.PendingCount)
	require.Len(t, snap.RecentErrors, 1)
	assert.Equal(t, "op-001", snap.RecentErrors[0].OperationID)
	assert.Equal(t, 3, snap.RecentErrors[0].Attempts)
	assert.Contains(t, snap.RecentErrors[0].Reason, ErrMaxRetriesExceeded.Error())

	persisted, err := qs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestQueueManager_BackoffGrowthAndReset(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(failing(errTransient))
	m, sched, _ := newStartedManager(t, applier, func(c *config.ClientSync) { c.MaxAttempts = 100 })

	enqueueExpenses(t, m, "e1")
	m.OnOnline()

	want := []time.Duration{5, 10, 20, 40, 60, 60}
	for i, w := range want {
		w *= time.Second
		require.Equal(t, []time.Duration{w}, sched.Pending(), "after failed drain %d", i+1)
		assert.Equal(t, w, m.Snapshot().RetryInterval)
		sched.Advance(w)
	}
	assert.Equal(t, len(want)+1, applier.count())

	applier.setFn(nil)
	sched.Advance(60 * time.Second)
	assert.Zero(t, m.PendingCount())
	assert.Empty(t, sched.Pending())
	assert.Equal(t, 5*time.Second, m.Snapshot().RetryInterval)

	applier.setFn(failing(errTransient))
	enqueueExpenses(t, m, "e2")
	assert.Equal(t, []time.Duration{5 * time.Second}, sched.Pending(), "backoff restarts from the base")
}

func TestQueueManager_ExhaustedRetriesKeepBackoff(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(failing(errTransient))
	m, sched, _ := newStartedManager(t, applier)

	enqueueExpenses(t, m, "e1")
	m.OnOnline()
	sched.Advance(5 * time.Second)
	sched.Advance(10 * time.Second)

	require.Equal(t, 3, applier.count())
	require.Zero(t, m.PendingCount())
	assert.Empty(t, sched.Pending(), "nothing left to retry")
	assert.Equal(t, 10*time.Second, m.Snapshot().RetryInterval, "backoff is not reset by an exhausted drop")

	enqueueExpenses(t, m, "e2")
	assert.Equal(t, []time.Duration{20 * time.Second}, sched.Pending())
}

func TestDrainResult_Failed(t *testing.T) {
	assert.False(t, DrainResult{Started: true, Applied: 2}.Failed())
	assert.False(t, DrainResult{Started: true, Dropped: 1}.Failed(), "rejected operations are not transient failures")
	assert.True(t, DrainResult{Started: true, Retried: 1}.Failed())
	assert.True(t, DrainResult{Started: true, Dropped: 1, Exhausted: 1}.Failed())
}

func TestQueueManager_RejectedIsTerminal(t *testing.T) {
	remote := adapter.NewMemoryRemoteStore()
	applier := &countingApplier{}
	applier.setFn(delegate(NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())))
	m, sched, _ := newStartedManager(t, applier)
	ctx := context.Background()

	_, err := m.Enqueue(ctx, models.EntityExpense, models.ActionUpdate, json.RawMessage(`{"amount":"5"}`))
	require.NoError(t, err)

	m.OnOnline()

	snap := m.Snapshot()
	assert.Zero(t, snap.PendingCount)
	require.Len(t, snap.RecentErrors, 1)
	assert.Equal(t, 1, snap.RecentErrors[0].Attempts)
	assert.Equal(t, models.ActionUpdate, snap.RecentErrors[0].Action)
	assert.Empty(t, sched.Pending(), "a terminal drop does not schedule a retry")

	sched.Advance(10 * time.Minute)
	assert.Equal(t, 1, applier.count(), "no retry occurred")
}

func TestQueueManager_ErrorsAreBounded(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(failing(fmt.Errorf("%w: bad payload", ErrRejected)))
	m, _, _ := newStartedManager(t, applier, func(c *config.ClientSync) { c.MaxErrors = 2 })

	enqueueExpenses(t, m, "e1", "e2", "e3")
	m.OnOnline()

	errs := m.Snapshot().RecentErrors
	require.Len(t, errs, 2)
	assert.Equal(t, "op-002", errs[0].OperationID)
	assert.Equal(t, "op-003", errs[1].OperationID)

	m.DismissErrors()
	assert.Empty(t, m.Snapshot().RecentErrors)
}

func TestQueueManager_DisconnectAbortsRemainingBatches(t *testing.T) {
	applier := &countingApplier{}
	m, sched, _ := newStartedManager(t, applier)
	applier.setFn(func(_ context.Context, accountID string, _ models.SyncOperation, call int) (models.AggregateRecord, error) {
		if call == 10 {
			m.OnOffline()
		}
		return models.AggregateRecord{AccountID: accountID}, nil
	})

	ids := make([]string, 0, 15)
	for i := range 15 {
		ids = append(ids, fmt.Sprintf("e%02d", i))
	}
	enqueueExpenses(t, m, ids...)

	m.OnOnline()

	assert.Equal(t, 10, applier.count(), "the running batch completes")
	assert.Equal(t, 5, m.PendingCount())
	assert.Empty(t, sched.Pending(), "nothing is scheduled while offline")

	m.OnOnline()
	assert.Equal(t, 15, applier.count())
	assert.Zero(t, m.PendingCount())
}

func TestQueueManager_EnqueueDuringDrainWaitsForNextRun(t *testing.T) {
	applier := &countingApplier{}
	m, sched, _ := newStartedManager(t, applier)
	applier.setFn(func(ctx context.Context, accountID string, _ models.SyncOperation, call int) (models.AggregateRecord, error) {
		if call == 1 {
			_, err := m.Enqueue(ctx, models.EntityExpense, models.ActionCreate, expensePayload("e2", "1"))
			require.NoError(t, err)
		}
		return models.AggregateRecord{AccountID: accountID}, nil
	})

	enqueueExpenses(t, m, "e1")
	m.OnOnline()

	assert.Equal(t, 1, applier.count(), "the running drain works on its snapshot")
	assert.Equal(t, 1, m.PendingCount())
	assert.Equal(t, []time.Duration{30 * time.Second}, sched.Pending())

	sched.Advance(30 * time.Second)
	assert.Equal(t, 2, applier.count())
	assert.Zero(t, m.PendingCount())
	assert.Empty(t, sched.Pending())
}

func TestQueueManager_OfflineCancelsTimers(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(failing(errTransient))
	m, sched, _ := newStartedManager(t, applier)

	enqueueExpenses(t, m, "e1")
	m.OnOnline()
	require.Len(t, sched.Pending(), 1)

	m.OnOffline()
	assert.Empty(t, sched.Pending())

	sched.Advance(time.Hour)
	assert.Equal(t, 1, applier.count())
}

func TestQueueManager_PanicBecomesBackoffRetry(t *testing.T) {
	applier := &countingApplier{}
	applier.setFn(func(_ context.Context, accountID string, _ models.SyncOperation, call int) (models.AggregateRecord, error) {
		if call == 1 {
			panic("boom")
		}
		return models.AggregateRecord{AccountID: accountID}, nil
	})

	fake := NewFakeScheduler(testStart)
	m := newManager(t, store.NewMemoryQueueStore(), applier, manualScheduler{fake})
	require.NoError(t, m.Start(context.Background()))

	enqueueExpenses(t, m, "e1")
	m.OnOnline()

	res, err := m.Drain(context.Background())
	assert.ErrorIs(t, err, ErrDrainFailed)
	assert.True(t, res.Started)
	assert.Equal(t, 1, m.PendingCount())
	assert.Equal(t, []time.Duration{5 * time.Second}, fake.Pending())

	fake.Advance(5 * time.Second)
	assert.Zero(t, m.PendingCount())
}

// crashingQueueStore panics on the n-th Save.
type crashingQueueStore struct {
	*store.MemoryQueueStore

	mu      sync.Mutex
	saves   int
	crashOn int
}

func (s *crashingQueueStore) Save(ctx context.Context, ops []models.SyncOperation) error {
	s.mu.Lock()
	s.saves++
	n := s.saves
	s.mu.Unlock()

	if n == s.crashOn {
		panic("queue file corrupted")
	}
	return s.MemoryQueueStore.Save(ctx, ops)
}

func TestQueueManager_PanicWhilePersistingReleasesLock(t *testing.T) {
	qs := &crashingQueueStore{MemoryQueueStore: store.NewMemoryQueueStore(), crashOn: 2}
	fake := NewFakeScheduler(testStart)
	m := newManager(t, qs, &countingApplier{}, manualScheduler{fake})
	require.NoError(t, m.Start(context.Background()))

	enqueueExpenses(t, m, "e1")
	m.OnOnline()

	var (
		res DrainResult
		err error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err = m.Drain(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manager stayed locked after a panic in the queue store")
	}

	assert.ErrorIs(t, err, ErrDrainFailed)
	assert.Equal(t, 1, res.Applied)
	assert.False(t, m.Snapshot().Syncing)

	enqueueExpenses(t, m, "e2")
	assert.Equal(t, 1, m.PendingCount())
	assert.Equal(t, []time.Duration{5 * time.Second}, fake.Pending())

	require.NoError(t, m.Shutdown(context.Background()))
}

func TestQueueManager_PersistFailureDuringDrain(t *testing.T) {
	ctrl := gomock.NewController(t)
	qs := mock.NewMockQueueStore(ctrl)
	qs.EXPECT().Load(gomock.Any()).Return(nil, nil)
	qs.EXPECT().Save(gomock.Any(), gomock.Len(1)).Return(nil)
	qs.EXPECT().Save(gomock.Any(), gomock.Len(0)).Return(errors.New("disk full"))
	qs.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	fake := NewFakeScheduler(testStart)
	m := newManager(t, qs, &countingApplier{}, manualScheduler{fake})
	require.NoError(t, m.Start(context.Background()))

	enqueueExpenses(t, m, "e1")
	m.OnOnline()

	res, err := m.Drain(context.Background())
	assert.ErrorIs(t, err, ErrDrainFailed)
	assert.ErrorIs(t, err, ErrPersistingQueue)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, []time.Duration{5 * time.Second}, fake.Pending())

	require.NoError(t, m.Shutdown(context.Background()))
}

func TestQueueManager_RefreshesRecordCacheWhenDrained(t *testing.T) {
	remote := adapter.NewMemoryRemoteStore()
	cache := store.NewMemoryRecordCache()
	applier := NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())

	sched := NewFakeScheduler(testStart)
	cfg := config.ClientSync{AccountID: testAccount}
	mgr, err := NewSyncQueueManager(cfg, store.NewMemoryQueueStore(), applier, logger.Nop(),
		WithScheduler(sched), WithRecordCache(cache))
	require.NoError(t, err)
	require.NoError(t, mgr.Start(context.Background()))
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

	for _, id := range []string{"e1", "e2"} {
		_, err = mgr.Enqueue(context.Background(), models.EntityExpense, models.ActionCreate, expensePayload(id, "2"))
		require.NoError(t, err)
	}
	mgr.OnOnline()

	cached, err := cache.LoadRecord(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, expenseIDs(cached))
}
