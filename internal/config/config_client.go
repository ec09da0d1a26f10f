package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// HashKey keys the record integrity hash sent with uploads.
	HashKey string
	Version string
}

// ClientAdapter holds the remote store address, timeout and token.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	Token          string
}

// ClientStorage holds on-device persistence settings.
type ClientStorage struct {
	DSN       string
	QueueFile string
}

// ClientSync holds queue manager tuning.
type ClientSync struct {
	AccountID         string
	BatchSize         int
	MaxAttempts       int
	BaseRetryInterval time.Duration
	MaxRetryInterval  time.Duration
	PeriodicInterval  time.Duration
	ProbeInterval     time.Duration
	MaxErrors         int
	ReconcileInterval time.Duration
}

// ClientLog holds the log file settings.
type ClientLog struct {
	FilePath string
	Level    string
}

// ClientConfig is the client's projection of [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Sync    ClientSync
	Log     ClientLog
}

// GetClientConfig merges environment variables, the overrides collected by
// the CLI (nil is allowed), the JSON file and defaults, then validates the
// client view.
func GetClientConfig(overrides *StructuredConfig) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withConfig(overrides).
		withJSON().
		withDefaults().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DSN:       cfg.Storage.Local.DSN,
			QueueFile: cfg.Storage.Local.QueueFile,
		},
		Sync: ClientSync{
			AccountID:         cfg.Sync.AccountID,
			BatchSize:         cfg.Sync.BatchSize,
			MaxAttempts:       cfg.Sync.MaxAttempts,
			BaseRetryInterval: cfg.Sync.BaseRetryInterval,
			MaxRetryInterval:  cfg.Sync.MaxRetryInterval,
			PeriodicInterval:  cfg.Sync.PeriodicInterval,
			ProbeInterval:     cfg.Sync.ProbeInterval,
			MaxErrors:         cfg.Sync.MaxErrors,
			ReconcileInterval: cfg.Sync.ReconcileInterval,
		},
		Log: ClientLog{
			FilePath: cfg.Log.FilePath,
			Level:    cfg.Log.Level,
		},
	}
}
