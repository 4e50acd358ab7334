// Package transport defines the interface for the network listeners voicegate
// exposes.
//
// Each transport (HTTP speech APIs, gRPC health) implements this interface and
// is started and stopped by main in the same way.
package transport

import "context"

// Transport is the interface that every listener must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting requests. It blocks until the context is
	// cancelled or the listener fails.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
