package main

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/client"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configPath string
	server     string
	account    string
	token      string
	offline    bool
	ephemeral  bool
}

// overrides holds only what was set on the command line. Empty values leave
// env and JSON settings in place.
func (o *rootOptions) overrides() *config.StructuredConfig {
	return &config.StructuredConfig{
		JSONFilePath: o.configPath,
		Adapter: config.Adapter{
			HTTPAddress: o.server,
			Token:       o.token,
		},
		Sync: config.Sync{AccountID: o.account},
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fin",
		Short: "Offline-first personal and household finance tracker",
		Long: `fin records expenses, incomes, budgets and categories on this device and
syncs them to the record server whenever it is reachable.

Every change is applied locally first and queued. The queue survives
restarts and is replayed in order once the server answers its health check.

Example usage:
  fin add expense 12.50 --category food --date yesterday
  fin status
  fin sync
  fin ui`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to JSON config file")
	flags.StringVar(&opts.server, "server", "", "record server address (host:port or URL)")
	flags.StringVar(&opts.account, "account", "", "account id this device writes for")
	flags.StringVar(&opts.token, "token", "", "device bearer token")
	flags.BoolVar(&opts.offline, "offline", false, "do not contact the server; only queue changes")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep the queue and local record in memory")

	cmd.AddCommand(
		newAddCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newSyncCmd(opts),
		newStatusCmd(opts),
		newMergeCmd(opts),
		newHouseholdCmd(opts),
		newUICmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// withApp loads the client configuration, starts the runtime, runs fn and
// shuts the runtime down. Shutdown waits for a drain triggered by fn.
func withApp(cmd *cobra.Command, opts *rootOptions, interactive bool, fn func(ctx context.Context, app *client.App) error) (err error) {
	ctx := cmd.Context()

	cfg, err := config.GetClientConfig(opts.overrides())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewClientLogger("fin", cfg.Log.FilePath, cfg.Log.Level)
	app, err := client.NewApp(ctx, cfg, client.Options{
		Offline:     opts.offline,
		Ephemeral:   opts.ephemeral,
		Interactive: interactive,
	}, buildInfo(), log)
	if err != nil {
		return err
	}

	if err = app.Start(ctx); err != nil {
		_ = app.Shutdown(ctx)
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := app.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	return fn(ctx, app)
}

func connectionLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
