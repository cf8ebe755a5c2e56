package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/realtime"
	"github.com/dermatch/dermatch-go/internal/realtime/bus"
)

// Notifier announces quiz lifecycle events on the user's realtime channel.
// Payloads carry ids only; subscribers re-fetch whatever state they need.
type Notifier interface {
	QuizCompleted(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID)
	LatestProfileChanged(ctx context.Context, userID uuid.UUID)
}

type sseNotifier struct {
	log      *logger.Logger
	hub      *realtime.SSEHub
	eventBus bus.Bus
}

// NewSSENotifier emits events through the hub, or through the cross-instance
// bus when one is configured. With a bus every instance (this one included)
// receives the message via the forwarder, so publishing to both would
// duplicate delivery.
func NewSSENotifier(log *logger.Logger, hub *realtime.SSEHub, eventBus bus.Bus) Notifier {
	return &sseNotifier{
		log:      log.With("service", "QuizNotifier"),
		hub:      hub,
		eventBus: eventBus,
	}
}

func (n *sseNotifier) QuizCompleted(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) {
	n.emit(ctx, realtime.SSEMessage{
		Channel: userID.String(),
		Event:   realtime.SSEEventQuizCompleted,
		Data:    map[string]string{"session_id": sessionID.String()},
	})
}

func (n *sseNotifier) LatestProfileChanged(ctx context.Context, userID uuid.UUID) {
	n.emit(ctx, realtime.SSEMessage{
		Channel: userID.String(),
		Event:   realtime.SSEEventLatestProfileChanged,
	})
}

func (n *sseNotifier) emit(ctx context.Context, msg realtime.SSEMessage) {
	if n.eventBus != nil {
		if err := n.eventBus.Publish(ctx, msg); err != nil {
			n.log.Warn("event bus publish failed, falling back to local hub",
				"event", msg.Event, "error", err)
			n.hub.Broadcast(msg)
		}
		return
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}

// NopNotifier drops every event; tests that don't assert on realtime
// delivery use it.
type NopNotifier struct{}

func (NopNotifier) QuizCompleted(context.Context, uuid.UUID, uuid.UUID) {}
func (NopNotifier) LatestProfileChanged(context.Context, uuid.UUID)     {}
