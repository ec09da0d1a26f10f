package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type recordService struct {
	repository store.RecordRepository

	logger *logger.Logger
}

// NewRecordService returns the server's RecordService over repository.
func NewRecordService(repository store.RecordRepository, logger *logger.Logger) RecordService {
	return &recordService{
		repository: repository,
		logger:     logger,
	}
}

func (s *recordService) GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	return s.repository.GetRecord(ctx, accountID)
}

// PutRecord overwrites the record of accountID. A caller authenticated as a
// different account gets ErrAccountMismatch.
func (s *recordService) PutRecord(ctx context.Context, accountID string, record models.AggregateRecord) error {
	if caller, ok := utils.GetAccountIDFromContext(ctx); ok && caller != accountID {
		logger.FromContext(ctx).Warn().
			Str("func", "*recordService.PutRecord").
			Str("account_id", accountID).
			Str("caller", caller).
			Msg("write to another account refused")
		return ErrAccountMismatch
	}

	record.AccountID = accountID
	return s.repository.PutRecord(ctx, record)
}

func (s *recordService) QueryByField(ctx context.Context, collection, field, value string) ([]models.AggregateRecord, error) {
	if collection != adapter.RecordsCollection {
		return nil, fmt.Errorf("%w: unknown collection %q", ErrInvalidDataProvided, collection)
	}
	return s.repository.QueryByField(ctx, field, value)
}
