// Package workers runs the client's background loops (reachability probe,
// periodic full sync) as one unit.
package workers

import "context"

// Worker is a background loop. Start must return promptly, spawning
// goroutines as needed; Stop must block until they have exited.
//
// Example implementation:
//
//	type MyWorker struct{ cancel context.CancelFunc }
//
//	func (w *MyWorker) Start(ctx context.Context) { ... go w.loop(ctx) }
//	func (w *MyWorker) Stop()                     { w.cancel() }
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
