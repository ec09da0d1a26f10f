package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-fin-keeper/internal/app"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/go-chi/chi/v5"
)

// getRecord serves GET /api/records/{accountID}. Any authenticated device may
// read any record: household members read each other's.
func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	record, err := h.services.RecordService.GetRecord(r.Context(), accountID)
	if err != nil {
		writeError(w, r, err, "*Handler.getRecord")
		return
	}

	utils.WriteJSON(w, record, http.StatusOK)
}

// putRecord serves PUT /api/records/{accountID} and replaces the whole
// record.
func (h *Handler) putRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	accountID := chi.URLParam(r, "accountID")

	var req models.PutRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.putRecord").Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	if err := h.services.RecordService.PutRecord(r.Context(), accountID, req.Record); err != nil {
		writeError(w, r, err, "*Handler.putRecord")
		return
	}

	log.Debug().Str("func", "*Handler.putRecord").
		Str("account_id", accountID).
		Int("expenses", len(req.Record.Expenses)).
		Int("incomes", len(req.Record.Incomes)).
		Msg("record stored")
	w.WriteHeader(http.StatusNoContent)
}

// queryRecords serves GET /api/records?collection=&field=&value=.
func (h *Handler) queryRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	records, err := h.services.RecordService.QueryByField(r.Context(), q.Get("collection"), q.Get("field"), q.Get("value"))
	if err != nil {
		writeError(w, r, err, "*Handler.queryRecords")
		return
	}
	if records == nil {
		records = []models.AggregateRecord{}
	}

	utils.WriteJSON(w, models.QueryRecordsResponse{Records: records, Length: len(records)}, http.StatusOK)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, models.HealthResponse{
		Status:  "ok",
		Version: h.services.AppInfoService.GetAppVersion(r.Context()),
	}, http.StatusOK)
}
