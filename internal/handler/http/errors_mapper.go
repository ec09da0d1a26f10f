package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-fin-keeper/internal/app"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
)

type errorStatus struct {
	err     error
	status  int
	message string
}

// errorStatuses is checked in order: a retryable store error also wraps the
// low-level sentinel and must win over it.
var errorStatuses = []errorStatus{
	{store.ErrTemporarilyUnavailable, http.StatusServiceUnavailable, app.MsgTemporarilyUnavailable},
	{service.ErrInvalidDataProvided, http.StatusUnprocessableEntity, app.MsgInvalidDataProvided},
	{service.ErrAccountMismatch, http.StatusForbidden, app.MsgAccessDenied},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},
	{store.ErrRecordNotFound, http.StatusNotFound, app.MsgRecordNotFound},
	{store.ErrUnsupportedField, http.StatusBadRequest, app.MsgUnsupportedField},
}

// statusFromError maps a service or store error to an HTTP status and a
// response message. Unknown errors are 500.
func statusFromError(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.message
		}
	}
	return http.StatusInternalServerError, app.MsgInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fn string) {
	status, message := statusFromError(err)

	event := logger.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		event = logger.FromRequest(r).Error()
	}
	event.Err(err).Str("func", fn).Int("status", status).Msg("request failed")

	http.Error(w, message, status)
}
