package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFin(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_FILE_PATH", filepath.Join(t.TempDir(), "fin.log"))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var offlineFlags = []string{"--offline", "--ephemeral", "--account", "acc-1"}

func TestAddExpenseOffline(t *testing.T) {
	out, err := runFin(t, append([]string{"add", "expense", "12.5", "--category", "food", "--date", "2026-03-01"}, offlineFlags...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Added expense")
	assert.Contains(t, out, "$12.50")
	assert.Contains(t, out, "1 pending, offline")
}

func TestAddRejectsBadAmount(t *testing.T) {
	_, err := runFin(t, append([]string{"add", "income", "abc"}, offlineFlags...)...)
	assert.ErrorIs(t, err, errInvalidAmount)
}

func TestDeleteUnknownType(t *testing.T) {
	_, err := runFin(t, append([]string{"delete", "invoice", "x1"}, offlineFlags...)...)
	assert.ErrorIs(t, err, errUnknownEntity)
}

func TestEditWithoutChanges(t *testing.T) {
	_, err := runFin(t, append([]string{"edit", "expense", "e1"}, offlineFlags...)...)
	assert.ErrorIs(t, err, errNothingToChange)
}

func TestEditMissingEntry(t *testing.T) {
	_, err := runFin(t, append([]string{"edit", "income", "nope", "--amount", "3"}, offlineFlags...)...)
	assert.ErrorIs(t, err, errEntityNotFound)
}

func TestStatusJSONOffline(t *testing.T) {
	out, err := runFin(t, append([]string{"status", "--json"}, offlineFlags...)...)
	require.NoError(t, err)

	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Snapshot.Connected)
	assert.Empty(t, report.Pending)
}

func TestHouseholdWithoutID(t *testing.T) {
	_, err := runFin(t, append([]string{"household"}, offlineFlags...)...)
	assert.ErrorIs(t, err, errNoHouseholdID)
}

func TestVersion(t *testing.T) {
	out, err := runFin(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: N/A")
}

func TestPrintStatus(t *testing.T) {
	var b bytes.Buffer
	printStatus(&b, models.SyncSnapshot{
		Connected:    true,
		PendingCount: 1,
		RecentErrors: []models.SyncError{{OperationID: "op-9", EntityType: models.EntityBudget, Action: models.ActionUpdate, Attempts: 3, Reason: "max retries exceeded"}},
	}, []models.SyncOperation{{ID: "op-1", EntityType: models.EntityExpense, Action: models.ActionCreate}})

	out := b.String()
	assert.Contains(t, out, "Connection:   online")
	assert.Contains(t, out, "Last success: never")
	assert.Contains(t, out, "op-1 create expense (attempt 0")
	assert.Contains(t, out, "[budget/update] op-9 after 3 attempt(s): max retries exceeded")
}

func TestPrintHousehold(t *testing.T) {
	var b bytes.Buffer
	printHousehold(&b, "hh-1", []string{"acc-1", "acc-2"}, models.HouseholdTotals{
		TotalExpenses:   decimal.RequireFromString("100"),
		TotalIncome:     decimal.RequireFromString("250.5"),
		MonthlyExpenses: decimal.RequireFromString("10"),
		MonthlyIncome:   decimal.Zero,
		Members:         2,
	}, "USD")

	out := b.String()
	assert.Contains(t, out, "Household hh-1: 2 member(s)")
	assert.Contains(t, out, "This month: expenses $10.00, income $0.00")
	assert.Contains(t, out, "All time:   expenses $100.00, income $250.50")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "never", formatTime(time.Time{}))
}
