// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

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

type fixedPending int

func (p fixedPending) PendingCount() int { return int(p) }

func newTestReconciler(remote adapter.RemoteStore, cache store.RecordCache, pending int) Reconciler {
	return NewReconciler(testAccount, remote, cache, fixedPending(pending), NewFakeScheduler(mergeTime), logger.Nop())
}

func TestReconciler_UploadsWhenRemoteAbsent(t *testing.T) {
	ctx := context.Background()
	remote := adapter.NewMemoryRemoteStore()
	cache := store.NewMemoryRecordCache()
	require.NoError(t, cache.SaveRecord(ctx, models.AggregateRecord{AccountID: testAccount, Expenses: []models.Expense{expense("l1", 5)}}))

	got, err := newTestReconciler(remote, cache, 0).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, mergeTime, got.LastSync)

	stored, err := remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, expenseIDs(stored))

	cached, err := cache.LoadRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, mergeTime, cached.LastSync)
}

func TestReconciler_FirstSyncMergesLocalData(t *testing.T) {
	ctx := context.Background()
	remote := adapter.NewMemoryRemoteStore()
	require.NoError(t, remote.PutRecord(ctx, testAccount, models.AggregateRecord{
		Expenses: []models.Expense{expense("r1", 30)},
		LastSync: testStart,
	}))
	cache := store.NewMemoryRecordCache()
	require.NoError(t, cache.SaveRecord(ctx, models.AggregateRecord{
		AccountID: testAccount,
		Expenses:  []models.Expense{expense("l1", 10), expense("l2", 20)},
	}))

	got, err := newTestReconciler(remote, cache, 0).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2", "r1"}, expenseIDs(got))

	stored, err := remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Len(t, stored.Expenses, 3, "zero transactions lost")

	cached, err := cache.LoadRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Len(t, cached.Expenses, 3)
}

func TestReconciler_KeepsLocalWhilePending(t *testing.T) {
	ctx := context.Background()
	local := models.AggregateRecord{AccountID: testAccount, Expenses: []models.Expense{expense("l1", 10)}, LastSync: testStart}

	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	remote.EXPECT().GetRecord(gomock.Any(), testAccount).Return(models.AggregateRecord{AccountID: testAccount}, nil)
	cache := mock.NewMockRecordCache(ctrl)
	cache.EXPECT().LoadRecord(gomock.Any(), testAccount).Return(local, nil)

	got, err := newTestReconciler(remote, cache, 2).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, expenseIDs(got))
}

func TestReconciler_PendingWinsOverFirstSync(t *testing.T) {
	ctx := context.Background()
	local := models.AggregateRecord{AccountID: testAccount, Expenses: []models.Expense{expense("l1", 10)}}

	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	remote.EXPECT().GetRecord(gomock.Any(), testAccount).Return(models.AggregateRecord{
		AccountID: testAccount,
		Expenses:  []models.Expense{expense("l1", 10)},
	}, nil)
	cache := mock.NewMockRecordCache(ctrl)
	cache.EXPECT().LoadRecord(gomock.Any(), testAccount).Return(local, nil)

	got, err := newTestReconciler(remote, cache, 1).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, expenseIDs(got))
	assert.True(t, got.LastSync.IsZero(), "nothing is written while operations are queued")
}

func TestReconciler_FullSyncAfterDrainDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	remote := adapter.NewMemoryRemoteStore()
	cache := store.NewMemoryRecordCache()
	applier := NewRemoteSyncAdapter(remote, validators.NewRecordValidator(), logger.Nop())

	mgr, err := NewSyncQueueManager(config.ClientSync{AccountID: testAccount}, store.NewMemoryQueueStore(), applier, logger.Nop(),
		WithScheduler(NewFakeScheduler(testStart)), WithRecordCache(cache))
	require.NoError(t, err)
	require.NoError(t, mgr.Start(ctx))
	t.Cleanup(func() { _ = mgr.Shutdown(context.Background()) })

	ledger := NewLedgerService(testAccount, cache, mgr, validators.NewRecordValidator(), logger.Nop())
	for _, id := range []string{"e1", "e2"} {
		_, err = ledger.Create(ctx, models.EntityExpense, expense(id, 10))
		require.NoError(t, err)
	}

	mgr.OnOnline()
	require.Zero(t, mgr.PendingCount())

	cached, err := cache.LoadRecord(ctx, testAccount)
	require.NoError(t, err)
	require.False(t, cached.LastSync.IsZero(), "a delivered operation marks the record as synced")

	got, err := NewReconciler(testAccount, remote, cache, mgr, NewFakeScheduler(mergeTime), logger.Nop()).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, expenseIDs(got))

	stored, err := remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, expenseIDs(stored))

	cached, err = cache.LoadRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, expenseIDs(cached))
}

func TestReconciler_AdoptsRemote(t *testing.T) {
	ctx := context.Background()
	remote := adapter.NewMemoryRemoteStore()
	require.NoError(t, remote.PutRecord(ctx, testAccount, models.AggregateRecord{
		Expenses: []models.Expense{expense("r1", 30), expense("l1", 10)},
		LastSync: mergeTime,
	}))
	cache := store.NewMemoryRecordCache()
	require.NoError(t, cache.SaveRecord(ctx, models.AggregateRecord{
		AccountID: testAccount,
		Expenses:  []models.Expense{expense("l1", 10)},
		LastSync:  testStart,
	}))

	got, err := newTestReconciler(remote, cache, 0).FullSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "l1"}, expenseIDs(got))

	cached, err := cache.LoadRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "l1"}, expenseIDs(cached))
}

func TestReconciler_RemoteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	remote.EXPECT().GetRecord(gomock.Any(), testAccount).Return(models.AggregateRecord{}, adapter.ErrServiceUnavailable)

	_, err := newTestReconciler(remote, store.NewMemoryRecordCache(), 0).FullSync(context.Background())
	assert.ErrorIs(t, err, ErrTransientIO)
}

func TestReconciler_ForceMerge(t *testing.T) {
	ctx := context.Background()
	remote := adapter.NewMemoryRemoteStore()
	require.NoError(t, remote.PutRecord(ctx, testAccount, models.AggregateRecord{
		Expenses:    []models.Expense{expense("r1", 30)},
		HouseholdID: models.Ptr("h-remote"),
	}))
	cache := store.NewMemoryRecordCache()
	require.NoError(t, cache.SaveRecord(ctx, models.AggregateRecord{
		AccountID:   testAccount,
		Expenses:    []models.Expense{expense("l1", 10)},
		HouseholdID: models.Ptr("h-local"),
		LastSync:    testStart,
	}))

	got, err := newTestReconciler(remote, cache, 3).ForceMerge(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"l1", "r1"}, expenseIDs(got))
	require.NotNil(t, got.HouseholdID)
	assert.Equal(t, "h-remote", *got.HouseholdID)
	assert.Equal(t, mergeTime, got.LastSync)

	stored, err := remote.GetRecord(ctx, testAccount)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "r1"}, expenseIDs(stored))
}

func TestReconciler_ForceMergeWithoutAnyData(t *testing.T) {
	ctx := context.Background()
	remote := adapter.NewMemoryRemoteStore()
	cache := store.NewMemoryRecordCache()

	got, err := newTestReconciler(remote, cache, 0).ForceMerge(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAccount, got.AccountID)
	assert.True(t, got.IsEmpty())

	_, err = remote.GetRecord(ctx, testAccount)
	assert.NoError(t, err)
}
