package service

import (
	"context"
	"fmt"
	"time"

	"ai-butler-be/internal/constant"
	"ai-butler-be/pkg/assistant/session"
	"ai-butler-be/pkg/events"
	"ai-butler-be/pkg/googleapi"
	pktNats "ai-butler-be/pkg/nats"
)

type ICalendarClient interface {
	ListEventsBetween(ctx context.Context, startDate, endDate string) ([]googleapi.Event, error)
	CreateEvent(ctx context.Context, summary, startTime, endTime, description string, attendees []string) (*googleapi.Event, error)
}

type ICalendarService interface {
	EventsBetween(ctx context.Context, startDate, endDate string) ([]googleapi.Event, error)
	Create(ctx context.Context, draft *session.DraftEvent) (*googleapi.Event, error)
}

type calendarService struct {
	calendar       ICalendarClient
	eventPublisher *pktNats.Publisher
}

func NewCalendarService(calendar ICalendarClient, eventPublisher *pktNats.Publisher) ICalendarService {
	return &calendarService{
		calendar:       calendar,
		eventPublisher: eventPublisher,
	}
}

func (s *calendarService) EventsBetween(ctx context.Context, startDate, endDate string) ([]googleapi.Event, error) {
	if s.calendar == nil {
		return nil, fmt.Errorf("calendar is not configured")
	}
	return s.calendar.ListEventsBetween(ctx, startDate, endDate)
}

func (s *calendarService) Create(ctx context.Context, draft *session.DraftEvent) (*googleapi.Event, error) {
	if s.calendar == nil {
		return nil, fmt.Errorf("calendar is not configured")
	}
	if draft == nil {
		return nil, fmt.Errorf("no event draft to create")
	}
	if draft.Summary == "" || draft.Start == "" || draft.End == "" {
		return nil, fmt.Errorf("event draft needs a summary, a start and an end")
	}

	created, err := s.calendar.CreateEvent(ctx, draft.Summary, draft.Start, draft.End, draft.Description, draft.Attendees)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventEventCreated,
			Data: map[string]interface{}{
				"summary": draft.Summary,
				"start":   draft.Start,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", constant.EventEventCreated, err)
		}
	}
	return created, nil
}
