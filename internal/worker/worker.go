// Package worker provides the proxy's background tasks and the runner that
// supervises them.
package worker

import "context"

// Worker is a long-running background task.
type Worker interface {
	// Run blocks until ctx is cancelled or an unrecoverable error occurs.
	Run(ctx context.Context) error
}

// Namer is implemented by workers that report a name for logging.
type Namer interface {
	Name() string
}
