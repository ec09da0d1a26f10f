package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sampleRecord() models.AggregateRecord {
	return models.AggregateRecord{
		AccountID: testAccount,
		Expenses: []models.Expense{
			{ID: "e1", Amount: decimal.RequireFromString("12.50"), Currency: "USD", Category: "Food"},
		},
		Categories:  []models.Category{{ID: "c1", Name: "Food"}},
		HouseholdID: models.Ptr("h1"),
	}
}

func putBody(t *testing.T, record models.AggregateRecord, hash string) string {
	t.Helper()
	body, err := json.Marshal(models.PutRecordRequest{Record: record, Hash: hash})
	require.NoError(t, err)
	return string(body)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")

	rr := env.do(t, http.MethodGet, healthPath, "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, models.HealthResponse{Status: "ok", Version: testVersion}, health)
}

func TestGetRecord(t *testing.T) {
	env := newTestEnv(t, "")
	want := sampleRecord()
	env.repo.EXPECT().GetRecord(gomock.Any(), testAccount).Return(want, nil)

	// household members read each other's records
	rr := env.do(t, http.MethodGet, recordsPath, env.bearer(t, "another-member"), "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.AggregateRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "e1", got.Expenses[0].ID)
	assert.True(t, got.Expenses[0].Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestGetRecord_Errors(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{name: "not found", repoErr: store.ErrRecordNotFound, wantStatus: http.StatusNotFound},
		{name: "retryable", repoErr: store.ErrTemporarilyUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "other", repoErr: store.ErrDecodingDocument, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.repo.EXPECT().GetRecord(gomock.Any(), testAccount).Return(models.AggregateRecord{}, tt.repoErr)

			rr := env.do(t, http.MethodGet, recordsPath, env.bearer(t, testAccount), "")
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestPutRecord(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.EXPECT().PutRecord(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r models.AggregateRecord) error {
		assert.Equal(t, testAccount, r.AccountID)
		assert.Len(t, r.Expenses, 1)
		return nil
	})

	rr := env.do(t, http.MethodPut, recordsPath, env.bearer(t, testAccount), putBody(t, sampleRecord(), ""))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestPutRecord_Errors(t *testing.T) {
	invalid := sampleRecord()
	invalid.Expenses[0].Amount = decimal.RequireFromString("-1")

	tests := []struct {
		name       string
		caller     string
		body       string
		wantStatus int
	}{
		{name: "malformed json", caller: testAccount, body: "{not json", wantStatus: http.StatusBadRequest},
		{name: "validation failure", caller: testAccount, body: putBody(t, invalid, ""), wantStatus: http.StatusUnprocessableEntity},
		{name: "foreign account", caller: "intruder", body: putBody(t, sampleRecord(), ""), wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			rr := env.do(t, http.MethodPut, recordsPath, env.bearer(t, tt.caller), tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestPutRecord_RetryableStoreError(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.EXPECT().PutRecord(gomock.Any(), gomock.Any()).
		Return(store.ErrTemporarilyUnavailable)

	rr := env.do(t, http.MethodPut, recordsPath, env.bearer(t, testAccount), putBody(t, sampleRecord(), ""))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestQueryRecords(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.EXPECT().QueryByField(gomock.Any(), adapter.FieldHouseholdID, "h1").
		Return([]models.AggregateRecord{sampleRecord(), {AccountID: "acc-2"}}, nil)

	rr := env.do(t, http.MethodGet, recordsQuery, env.bearer(t, testAccount), "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.QueryRecordsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Length)
	assert.Equal(t, "acc-2", resp.Records[1].AccountID)
}

func TestQueryRecords_EmptyResultIsAnArray(t *testing.T) {
	env := newTestEnv(t, "")
	env.repo.EXPECT().QueryByField(gomock.Any(), adapter.FieldHouseholdID, "h1").Return(nil, nil)

	rr := env.do(t, http.MethodGet, recordsQuery, env.bearer(t, testAccount), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"records":[],"length":0}`, rr.Body.String())
}

func TestQueryRecords_Errors(t *testing.T) {
	t.Run("missing value", func(t *testing.T) {
		env := newTestEnv(t, "")
		rr := env.do(t, http.MethodGet, "/api/records?collection=records&field=householdId", env.bearer(t, testAccount), "")
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("unsupported field", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.repo.EXPECT().QueryByField(gomock.Any(), "displayName", "x").Return(nil, store.ErrUnsupportedField)

		rr := env.do(t, http.MethodGet, "/api/records?collection=records&field=displayName&value=x", env.bearer(t, testAccount), "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
