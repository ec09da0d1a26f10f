package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/connectivity"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/tui"
	"github.com/MKhiriev/go-fin-keeper/internal/workers"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// Options select how the runtime is assembled.
type Options struct {
	// Offline pins connectivity to offline. Mutations are only queued.
	Offline bool

	// Ephemeral keeps the queue and the record cache in memory.
	Ephemeral bool

	// Interactive also runs the periodic full sync, for long-lived
	// sessions such as the status UI.
	Interactive bool
}

type App struct {
	cfg      *config.ClientConfig
	info     models.AppBuildInfo
	storages *store.ClientStorages
	remote   adapter.RemoteStore
	services *service.ClientServices
	provider connectivity.Provider
	monitor  *connectivity.Monitor
	workers  *workers.Workers
	logger   *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp builds the runtime from an already loaded configuration. Nothing
// runs until Start.
func NewApp(ctx context.Context, cfg *config.ClientConfig, opts Options, info models.AppBuildInfo, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create remote store: %w", err)
	}

	var storages *store.ClientStorages
	if opts.Ephemeral {
		storages = store.NewEphemeralClientStorages()
	} else {
		storages, err = store.NewClientStorages(ctx, cfg.Storage, log)
		if err != nil {
			return nil, fmt.Errorf("create client storages: %w", err)
		}
	}

	services, err := service.NewClientServices(storages, remote, *cfg, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create client services: %w", err)
	}

	var (
		provider   connectivity.Provider
		background []workers.Worker
	)
	if opts.Offline {
		provider = connectivity.NewManualProvider(false)
	} else {
		probe := connectivity.NewHTTPProbe(remote, cfg.Sync.ProbeInterval, log)
		provider = probe
		background = append(background, probe)
	}
	if opts.Interactive {
		background = append(background, services.ReconcileJob)
	}

	return &App{
		cfg:      cfg,
		info:     info,
		storages: storages,
		remote:   remote,
		services: services,
		provider: provider,
		monitor:  connectivity.NewMonitor(provider, log, services.Manager),
		workers:  workers.NewWorkers(background...),
		logger:   log,
	}, nil
}

// Start loads the queue, attaches the manager to connectivity edges and
// starts the background workers. The probe checks the server once before
// Start returns.
func (a *App) Start(ctx context.Context) error {
	if err := a.services.Manager.Start(ctx); err != nil {
		return fmt.Errorf("start sync queue manager: %w", err)
	}

	a.monitor.Start()
	a.workers.Start(ctx)

	a.logger.Info().
		Str("account_id", a.cfg.Sync.AccountID).
		Int("pending", a.services.Manager.PendingCount()).
		Bool("online", a.provider.IsOnline()).
		Msg("client started")
	return nil
}

// Shutdown stops in reverse start order. Errors are joined so storage is
// released even when the manager did not stop in time.
func (a *App) Shutdown(ctx context.Context) error {
	a.workers.Stop()
	a.monitor.Stop()

	var errs []error
	if err := a.services.Manager.Shutdown(ctx); err != nil && !errors.Is(err, service.ErrManagerNotStarted) {
		errs = append(errs, fmt.Errorf("shutdown sync queue manager: %w", err))
	}
	if err := a.storages.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close client storages: %w", err))
	}

	a.logger.Info().Msg("client stopped")
	return errors.Join(errs...)
}

// RunUI blocks in the status view until the user quits.
func (a *App) RunUI(ctx context.Context) error {
	return tui.New(a.services.Manager, a.services.Ledger, a.info, a.logger).Run(ctx)
}

// Online reports the current connectivity state.
func (a *App) Online() bool {
	return a.monitor.IsOnline()
}

func (a *App) Config() *config.ClientConfig {
	return a.cfg
}

func (a *App) Manager() service.SyncQueueManager {
	return a.services.Manager
}

func (a *App) Ledger() service.LedgerService {
	return a.services.Ledger
}

func (a *App) Reconciler() service.Reconciler {
	return a.services.Reconciler
}

func (a *App) Household() service.HouseholdService {
	return a.services.Household
}
