package deque

import "github.com/nobletooth/deque/pkg/utils"

type options struct {
	name     string // Metrics label; metrics are disabled when empty.
	maxNodes int    // Upper bound on live nodes; zero means the arena limit.
}

// Option customizes a deque created with New.
type Option func(*options)

// WithName labels the deque's operation and node metrics with `name`.
// Deques sharing a name aggregate into the same series.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMaxNodes caps the number of live nodes. Pushes beyond the cap fail with ErrAllocationFailed.
func WithMaxNodes(maxNodes int) Option {
	return func(o *options) {
		if maxNodes <= 0 || maxNodes > maxArenaNodes {
			utils.RaiseInvariant("deque", "invalid_max_nodes",
				"Invalid node budget has been given to deque.", "maxNodes", maxNodes)
			maxNodes = maxArenaNodes
		}
		o.maxNodes = maxNodes
	}
}

func (o options) nodeLimit() int {
	if o.maxNodes == 0 {
		return maxArenaNodes
	}
	return o.maxNodes
}
