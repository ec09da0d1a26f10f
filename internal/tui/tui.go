package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/models"
	tea "github.com/charmbracelet/bubbletea"
)

// SyncStatus is the part of the queue manager the status view drives.
type SyncStatus interface {
	Snapshot() models.SyncSnapshot
	ManualSync(ctx context.Context) (service.DrainResult, error)
	DismissErrors()
}

// RecordReader returns the device-local record.
type RecordReader interface {
	Record(ctx context.Context) (models.AggregateRecord, error)
}

type TUI struct {
	sync   SyncStatus
	ledger RecordReader
	info   models.AppBuildInfo
	logger *logger.Logger
}

func New(sync SyncStatus, ledger RecordReader, info models.AppBuildInfo, logger *logger.Logger) *TUI {
	return &TUI{sync: sync, ledger: ledger, info: info, logger: logger}
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	model := newStatusModel(ctx, t.sync, t.ledger, t.info)
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		t.logger.Info().Msg("status view closed by context")
		return nil
	}
	return err
}
