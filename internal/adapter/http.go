package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/utils"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/go-resty/resty/v2"
)

// RecordsCollection is the only collection the record server exposes.
const RecordsCollection = "records"

// HTTPRemoteStore is the resty-based [RemoteStore] for the fin-keeper record
// server.
type HTTPRemoteStore struct {
	client *utils.HTTPClient

	hashKey string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteStore normalises adapterCfg.HTTPAddress, configures the HTTP
// client and initialises the HMAC pool used for record integrity hashes.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (*HTTPRemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	store := &HTTPRemoteStore{
		client:  utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		hashKey: appCfg.HashKey,
		logger:  logger,
	}
	store.SetToken(adapterCfg.Token)

	return store, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken stores the bearer token attached to every request.
func (h *HTTPRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token returns the current bearer token.
func (h *HTTPRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// GetRecord implements [RemoteStore] via GET /api/records/{accountID}.
func (h *HTTPRemoteStore) GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	resp, err := h.authedRequest(ctx).
		SetPathParam("accountID", accountID).
		Get("/api/records/{accountID}")
	if err != nil {
		return models.AggregateRecord{}, fmt.Errorf("%w: get record: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AggregateRecord{}, err
	}

	var record models.AggregateRecord
	if err = json.Unmarshal(resp.Body(), &record); err != nil {
		return models.AggregateRecord{}, fmt.Errorf("%w: decode record: %w", ErrMalformedResponse, err)
	}

	return record, nil
}

// PutRecord implements [RemoteStore] via PUT /api/records/{accountID}. The
// body carries an HMAC of the record when a hash key is configured.
func (h *HTTPRemoteStore) PutRecord(ctx context.Context, accountID string, record models.AggregateRecord) error {
	req := models.PutRecordRequest{Record: record}
	if h.hashKey != "" {
		hash, err := utils.HashJSON(record)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		req.Hash = hash
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("accountID", accountID).
		SetBody(req).
		Put("/api/records/{accountID}")
	if err != nil {
		return fmt.Errorf("%w: put record: %w", ErrTransport, err)
	}

	h.logger.Debug().
		Str("account_id", accountID).
		Int("status", resp.StatusCode()).
		Msg("record written")

	return mapHTTPError(resp)
}

// QueryByField implements [RemoteStore] via
// GET /api/records?collection=&field=&value=.
func (h *HTTPRemoteStore) QueryByField(ctx context.Context, collection, field, value string) ([]models.AggregateRecord, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParams(map[string]string{
			"collection": collection,
			"field":      field,
			"value":      value,
		}).
		Get("/api/records")
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var qr models.QueryRecordsResponse
	if err = json.Unmarshal(resp.Body(), &qr); err != nil {
		return nil, fmt.Errorf("%w: decode query response: %w", ErrMalformedResponse, err)
	}

	return qr.Records, nil
}

// Ping implements [HealthChecker] via GET /api/health.
func (h *HTTPRemoteStore) Ping(ctx context.Context) (models.HealthResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return models.HealthResponse{}, fmt.Errorf("%w: health: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.HealthResponse{}, err
	}

	// The body is decoded whatever Content-Type the server sent.
	var health models.HealthResponse
	if err = json.Unmarshal(resp.Body(), &health); err != nil {
		return models.HealthResponse{}, fmt.Errorf("%w: decode health response: %w", ErrMalformedResponse, err)
	}

	return health, nil
}

func (h *HTTPRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
