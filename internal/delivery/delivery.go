// Package delivery defines the contract shared by every serving process.
package delivery

import "context"

// Delivery is a long-running server started by the composition root. Serve
// blocks until the server stops; shutdown happens through fx lifecycle hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
