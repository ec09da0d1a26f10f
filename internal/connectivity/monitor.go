package connectivity

import (
	"sync"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
)

// Monitor derives one boolean from a Provider and forwards edges to its
// listeners. Repeated signals for the current state are swallowed.
type Monitor struct {
	provider  Provider
	listeners []Listener

	logger *logger.Logger

	// mu also serialises listener calls so edges are delivered in order.
	mu          sync.Mutex
	online      bool
	started     bool
	unsubscribe func()
}

func NewMonitor(provider Provider, logger *logger.Logger, listeners ...Listener) *Monitor {
	return &Monitor{
		provider:  provider,
		listeners: listeners,
		logger:    logger,
	}
}

// Start reads the provider's state, reports it to every listener as the
// first edge and subscribes for changes. Calling Start twice is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true
	m.unsubscribe = m.provider.Subscribe(m.handle)
	m.online = m.provider.IsOnline()
	m.notifyLocked(m.online)
}

// Stop detaches from the provider. Listeners get no further edges.
func (m *Monitor) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.started = false
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Monitor) handle(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started || m.online == online {
		return
	}
	m.online = online
	m.notifyLocked(online)
}

func (m *Monitor) notifyLocked(online bool) {
	m.logger.Debug().Str("func", "*Monitor.notify").Bool("online", online).Msg("connectivity edge")
	for _, l := range m.listeners {
		if online {
			l.OnOnline()
		} else {
			l.OnOffline()
		}
	}
}
