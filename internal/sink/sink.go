// Package sink writes finished documents to the remote document store, or to
// local disk when operating without remote connectivity.
package sink

import "context"

// Sink accepts finished documents. Implementations overwrite existing
// documents at the same path; callers must not assume a given Publish call
// had an observable effect (the remote sink is a no-op without a token).
type Sink interface {
	Publish(ctx context.Context, path string, content []byte) error
}
