package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
)

const (
	defaultProbeInterval = 10 * time.Second
	probeTimeout         = 3 * time.Second
)

// HTTPProbe is a Provider that pings the record server on an interval.
// A successful ping means online; any error means offline. Subscribers are
// signalled when the state changes.
type HTTPProbe struct {
	checker  adapter.HealthChecker
	interval time.Duration
	timeout  time.Duration

	logger *logger.Logger

	stateMu sync.Mutex
	online  bool
	subs    broadcaster

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHTTPProbe returns a stopped probe that starts out offline.
func NewHTTPProbe(checker adapter.HealthChecker, interval time.Duration, logger *logger.Logger) *HTTPProbe {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &HTTPProbe{
		checker:  checker,
		interval: interval,
		timeout:  min(probeTimeout, interval),
		logger:   logger,
	}
}

func (p *HTTPProbe) IsOnline() bool {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.online
}

func (p *HTTPProbe) Subscribe(fn func(online bool)) func() {
	return p.subs.subscribe(fn)
}

// Check pings once and returns the resulting state.
func (p *HTTPProbe) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.checker.Ping(pingCtx)
	online := err == nil

	p.stateMu.Lock()
	changed := p.online != online
	p.online = online
	p.stateMu.Unlock()

	if changed {
		log := p.logger.Info().Str("func", "*HTTPProbe.Check").Bool("online", online)
		if err != nil {
			log = log.Err(err)
		} else {
			log = log.Str("server_version", resp.Version)
		}
		log.Msg("reachability changed")
		p.subs.publish(online)
	}
	return online
}

// Start runs a first check synchronously, so IsOnline is meaningful when it
// returns, then keeps probing in the background until Stop or ctx is done.
func (p *HTTPProbe) Start(ctx context.Context) {
	p.Stop()
	p.Check(ctx)

	p.mu.Lock()
	probeCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		t := time.NewTicker(p.interval)
		defer t.Stop()

		for {
			select {
			case <-probeCtx.Done():
				return
			case <-t.C:
				p.Check(probeCtx)
			}
		}
	}()
}

// Stop halts probing and waits for the loop to exit.
func (p *HTTPProbe) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}
