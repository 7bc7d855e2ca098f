// Package collector holds the change sources that feed each daemon's
// snapshot store.
package collector

import "context"

// Collector is a change source. Run blocks until ctx is cancelled,
// pushing fresh observations into its daemon's store as they happen.
type Collector interface {
	Name() string
	Run(ctx context.Context) error
}
