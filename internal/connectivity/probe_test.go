package connectivity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/mock"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHTTPProbe_CheckSignalsChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mock.NewMockHealthChecker(ctrl)
	gomock.InOrder(
		checker.EXPECT().Ping(gomock.Any()).Return(models.HealthResponse{Status: "ok"}, nil),
		checker.EXPECT().Ping(gomock.Any()).Return(models.HealthResponse{Status: "ok"}, nil),
		checker.EXPECT().Ping(gomock.Any()).Return(models.HealthResponse{}, adapter.ErrTransport),
	)

	probe := NewHTTPProbe(checker, time.Minute, logger.Nop())
	var signals []bool
	probe.Subscribe(func(online bool) { signals = append(signals, online) })

	ctx := context.Background()
	assert.True(t, probe.Check(ctx))
	assert.True(t, probe.Check(ctx))
	assert.False(t, probe.Check(ctx))

	assert.Equal(t, []bool{true, false}, signals)
	assert.False(t, probe.IsOnline())
}

func TestHTTPProbe_DefaultInterval(t *testing.T) {
	probe := NewHTTPProbe(adapter.NewMemoryRemoteStore(), 0, logger.Nop())
	assert.Equal(t, defaultProbeInterval, probe.interval)
	assert.Equal(t, probeTimeout, probe.timeout)
}

func TestHTTPProbe_StartChecksImmediately(t *testing.T) {
	probe := NewHTTPProbe(adapter.NewMemoryRemoteStore(), time.Hour, logger.Nop())
	probe.Start(context.Background())
	defer probe.Stop()

	assert.True(t, probe.IsOnline())
}

func TestHTTPProbe_DrivesMonitorAgainstServer(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"test"}`))
	}))
	defer srv.Close()

	remote, err := adapter.NewHTTPRemoteStore(
		config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: time.Second},
		config.ClientApp{},
		logger.Nop(),
	)
	require.NoError(t, err)

	probe := NewHTTPProbe(remote, 10*time.Millisecond, logger.Nop())
	l := &recordingListener{}
	m := NewMonitor(probe, logger.Nop(), l)

	probe.Start(context.Background())
	defer probe.Stop()
	m.Start()
	defer m.Stop()

	assert.Equal(t, []string{"online"}, l.got())

	healthy.Store(false)
	assert.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)

	healthy.Store(true)
	assert.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"online", "offline", "online"}, l.got())
}

func TestHTTPProbe_StopIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mock.NewMockHealthChecker(ctrl)
	checker.EXPECT().Ping(gomock.Any()).Return(models.HealthResponse{}, errors.New("down")).AnyTimes()

	probe := NewHTTPProbe(checker, 5*time.Millisecond, logger.Nop())
	probe.Stop()
	probe.Start(context.Background())
	probe.Stop()
	probe.Stop()

	assert.False(t, probe.IsOnline())
}
