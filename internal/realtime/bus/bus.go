// Package bus fans SSE messages across server instances. A single-instance
// deployment runs without one; when REDIS_ADDR is set the redis bus relays
// every broadcast so clients connected to any instance see it.
package bus

import (
	"context"

	"github.com/dermatch/dermatch-go/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
