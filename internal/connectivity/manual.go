package connectivity

import "sync/atomic"

// ManualProvider is a Provider whose state is set by the caller. It backs
// the client's --offline flag and tests.
type ManualProvider struct {
	online atomic.Bool
	subs   broadcaster
}

func NewManualProvider(online bool) *ManualProvider {
	p := &ManualProvider{}
	p.online.Store(online)
	return p
}

func (p *ManualProvider) IsOnline() bool {
	return p.online.Load()
}

func (p *ManualProvider) Subscribe(fn func(online bool)) func() {
	return p.subs.subscribe(fn)
}

// SetOnline stores the state and signals every subscriber, even when the
// state did not change.
func (p *ManualProvider) SetOnline(online bool) {
	p.online.Store(online)
	p.subs.publish(online)
}
