// Package timeouts collects the durations arena processes share.
package timeouts

import "time"

const (
	// Connect bounds dialing a peer and waiting for it to serve.
	Connect = 3 * time.Second
	// Request bounds one remote simulation call.
	Request = 30 * time.Second
	// ReadHeader bounds reading HTTP request headers.
	ReadHeader = 5 * time.Second
	// Shutdown bounds graceful server shutdown.
	Shutdown = 5 * time.Second
)
