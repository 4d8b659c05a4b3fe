package browser

import (
	"context"
)

// Launcher starts a browser that exposes the Chrome DevTools Protocol.
type Launcher interface {
	// Start brings the browser up and returns its DevTools endpoint. It
	// blocks until the endpoint answers or ctx is done.
	Start(ctx context.Context) (cdpURL string, err error)
	// Close stops the browser and releases its resources.
	Close() error
}
