package services

import (
	"context"

	"github.com/verdantry/canopy-backend/internal/platform/logger"
	"github.com/verdantry/canopy-backend/internal/realtime"
	"github.com/verdantry/canopy-backend/internal/realtime/bus"
)

// Notifier delivers realtime events to the local hub and, when a bus is
// configured, to every other instance. Publish failures are logged and
// swallowed: realtime delivery is best effort and never fails the
// operation that triggered it.
type Notifier interface {
	Publish(ctx context.Context, msg realtime.SSEMessage)
}

type notifier struct {
	log *logger.Logger
	hub *realtime.SSEHub
	bus bus.Bus
}

func NewNotifier(baseLog *logger.Logger, hub *realtime.SSEHub, b bus.Bus) Notifier {
	return &notifier{
		log: baseLog.With("service", "Notifier"),
		hub: hub,
		bus: b,
	}
}

func (n *notifier) Publish(ctx context.Context, msg realtime.SSEMessage) {
	if n.bus != nil {
		// The forwarder loops bus messages back into the hub, local
		// broadcasts included, so publish to exactly one of the two.
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("bus publish failed; falling back to local hub",
				"channel", msg.Channel, "event", msg.Event, "error", err)
			n.hub.Broadcast(msg)
		}
		return
	}
	n.hub.Broadcast(msg)
}
