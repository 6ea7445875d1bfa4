// Package workers manages the client's long-running background components.
// It defines the Worker lifecycle contract and a Workers aggregate that
// starts and stops a set of workers as a unit.
package workers

import "context"

// Worker is a long-running background component with an explicit lifecycle.
//
// Start must not block; implementations spawn their goroutines internally
// and shut them down on Stop.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
