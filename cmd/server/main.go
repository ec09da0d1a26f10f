package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/handler"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/server"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const tokenCommand = "token"

func main() {
	fmt.Println(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit).String())

	log := logger.NewLogger("fin-server")

	args := os.Args[1:]
	if len(args) > 0 && args[0] == tokenCommand {
		if err := mintToken(args[1:], log); err != nil {
			log.Fatal().Err(err).Msg("error minting token")
		}
		return
	}

	cfg, err := config.GetServerConfig(args)
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if buildVersion != "" && cfg.App.Version == config.Defaults().App.Version {
		cfg.App.Version = buildVersion
	}

	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()

	if err = storages.Close(); err != nil {
		log.Error().Err(err).Msg("error closing storages")
	}
}

// mintToken prints a device token for the account given as the first
// argument. The remaining arguments are regular server flags.
func mintToken(args []string, log *logger.Logger) error {
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("usage: fin-server %s ACCOUNT_ID [flags]", tokenCommand)
	}

	cfg, err := config.GetServerConfig(args[1:])
	if err != nil {
		return err
	}

	token, err := service.NewAuthService(cfg.App, log).CreateToken(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(token.SignedString)
	return nil
}
