// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRecordHashing(t *testing.T) {
	env := newTestEnv(t, testHashKey)

	record := sampleRecord()
	hash, err := utils.HashJSON(record)
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCalled bool
	}{
		{name: "matching hash", body: putBody(t, record, hash), wantStatus: http.StatusOK, wantCalled: true},
		{name: "tampered record", body: putBody(t, models.AggregateRecord{AccountID: testAccount}, hash), wantStatus: http.StatusBadRequest},
		{name: "missing hash", body: putBody(t, record, ""), wantStatus: http.StatusBadRequest},
		{name: "invalid json", body: "{", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var forwarded string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				forwarded = string(b)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPut, recordsPath, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			env.handler.recordHashing(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCalled {
				assert.Equal(t, tt.body, forwarded, "body must be restored for the next handler")
			} else {
				assert.Empty(t, forwarded)
			}
		})
	}
}

func TestRecordHashing_WiredOnPut(t *testing.T) {
	env := newTestEnv(t, testHashKey)
	env.repo.EXPECT().PutRecord(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, models.AggregateRecord) error { return nil })

	record := sampleRecord()
	hash, err := utils.HashJSON(record)
	require.NoError(t, err)

	rr := env.do(t, http.MethodPut, recordsPath, env.bearer(t, testAccount), putBody(t, record, "bad"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPut, recordsPath, env.bearer(t, testAccount), putBody(t, record, hash))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
