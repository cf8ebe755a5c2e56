package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

type SSEClient struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Channels  map[string]bool
	Outbound  chan SSEMessage
	done      chan struct{}
	closeOnce sync.Once
	Logger    *logger.Logger
}

// Done is closed when the client is removed from the hub; the serving loop
// selects on it to stop writing.
func (c *SSEClient) Done() <-chan struct{} { return c.done }
