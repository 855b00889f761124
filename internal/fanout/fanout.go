package fanout

import (
	"context"
	"fmt"

	"pulsechat/internal/events"
	"pulsechat/internal/websocket"
	chat_errors "pulsechat/pkg/errors"
	"pulsechat/pkg/logger"

	"github.com/google/uuid"
)

// Publisher delivers an event to every active connection on a user's channel.
// Publishing to a channel with no connections is a silent no-op; delivery is
// best-effort and never blocks or fails the mutation that triggered it.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, eventType string, payload any)
}

// UserChannel is the addressable per-user channel name; the user ID is the
// channel's sole address.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// HubPublisher publishes envelopes through the in-process websocket hub.
type HubPublisher struct {
	hub *websocket.Hub
	log *logger.Logger
}

func NewHubPublisher(hub *websocket.Hub, log *logger.Logger) *HubPublisher {
	return &HubPublisher{hub: hub, log: log}
}

// Publish logs and swallows delivery failures; the durable write that
// produced the event already committed.
func (p *HubPublisher) Publish(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	if err := p.deliver(userID, eventType, payload); err != nil {
		if p.log != nil {
			p.log.ErrorfCtx(ctx, "fanout: %v", err)
		}
	}
}

func (p *HubPublisher) deliver(userID uuid.UUID, eventType string, payload any) error {
	data, err := events.NewEnvelope(eventType, payload)
	if err != nil {
		return fmt.Errorf("%w: encode %s for %s: %v", chat_errors.ErrDeliveryFailed, eventType, userID, err)
	}
	p.hub.Broadcast(UserChannel(userID), data)
	return nil
}
