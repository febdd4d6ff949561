package service

import (
	"context"
	"strings"

	"ai-butler-be/internal/pkg/logger"
	"ai-butler-be/pkg/events"
	pktNats "ai-butler-be/pkg/nats"
)

// EventDelivery pushes bus events to connected clients. Implemented by
// the websocket hub.
type EventDelivery interface {
	Notify(eventType string, payload map[string]interface{})
}

// NotificationService bridges the NATS event bus to the websocket hub
// so the UI can surface what the assistant did in the background
// (notes stored, mail sent, index rebuilds).
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "butler-notifier", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(_ context.Context, event events.Event) error {
	// NATS subjects carry the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	s.logger.Info("NotificationService", "Forwarding event", map[string]interface{}{"type": typeCode})

	if s.delivery != nil {
		s.delivery.Notify(typeCode, event.Payload())
	}
	return nil
}
