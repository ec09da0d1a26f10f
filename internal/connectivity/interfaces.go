package connectivity

// Provider is a source of reachability signals.
type Provider interface {
	// IsOnline returns the current state synchronously.
	IsOnline() bool

	// Subscribe registers fn for state signals. Signals may repeat; callers
	// that need edges should go through a Monitor. The returned function
	// removes the subscription.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Listener receives connectivity edges from a Monitor.
type Listener interface {
	OnOnline()
	OnOffline()
}
