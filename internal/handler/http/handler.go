package http

import (
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/service"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
)

type Handler struct {
	services *service.Services

	// checkHashes enables the record integrity middleware on PUT.
	checkHashes bool

	logger *logger.Logger
}

// NewHandler builds the HTTP handler. A non-empty hashKey makes every record
// upload carry a matching HMAC.
func NewHandler(services *service.Services, hashKey string, logger *logger.Logger) *Handler {
	if hashKey != "" {
		utils.InitHasherPool(hashKey)
	}

	logger.Info().Bool("integrity_check", hashKey != "").Msg("http handler created")
	return &Handler{
		services:    services,
		checkHashes: hashKey != "",
		logger:      logger,
	}
}
