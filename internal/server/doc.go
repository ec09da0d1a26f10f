// Package server runs the record server's HTTP transport: startup, signal
// handling and graceful shutdown.
package server
