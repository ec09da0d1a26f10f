package tui

import (
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type refreshedMsg struct {
	snapshot models.SyncSnapshot
	record   models.AggregateRecord
	err      error
}

type tickMsg struct{}

type syncDoneMsg struct {
	result service.DrainResult
	err    error
}

type copiedMsg struct {
	err error
}
