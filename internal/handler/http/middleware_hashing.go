package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/MKhiriev/go-fin-keeper/internal/app"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// recordHashing verifies the HMAC carried by a PUT record request. The body
// is restored for the next handler.
func (h *Handler) recordHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debug().Str("func", "*Handler.recordHashing").Msg("checking hash begins")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.logger.Err(err).Str("func", "*Handler.recordHashing").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req models.PutRecordRequest
		if err = json.Unmarshal(body, &req); err != nil {
			h.logger.Err(err).Str("func", "*Handler.recordHashing").Msg("failed to decode JSON")
			http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
			return
		}

		hashedRecord, err := utils.HashJSON(req.Record)
		if err != nil {
			h.logger.Err(err).Str("func", "*Handler.recordHashing").Msg("failed to marshal record")
			http.Error(w, app.MsgInternalServerError, http.StatusInternalServerError)
			return
		}

		if hashedRecord != req.Hash {
			h.logger.Error().Str("func", "*Handler.recordHashing").
				Str("hash from request", req.Hash).
				Str("hashed record", hashedRecord).
				Msg("hashes are not equal")
			http.Error(w, app.MsgIntegrityCheckFailed, http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
