package service

import (
	"context"
	"fmt"
	"time"

	"ai-butler-be/internal/constant"
	"ai-butler-be/internal/pkg/mailer"
	"ai-butler-be/pkg/assistant/session"
	"ai-butler-be/pkg/events"
	"ai-butler-be/pkg/googleapi"
	pktNats "ai-butler-be/pkg/nats"
)

// IGmailClient is the slice of the Google client the mail service
// depends on.
type IGmailClient interface {
	ListEmails(ctx context.Context, query string, maxResults int) ([]googleapi.Email, error)
	GetEmail(ctx context.Context, id string) (*googleapi.Email, error)
	MarkRead(ctx context.Context, id string) error
	StarEmail(ctx context.Context, id string) error
	SendEmail(ctx context.Context, to []string, cc []string, subject, body string) error
}

type IMailService interface {
	Inbox(ctx context.Context, query string, limit int) ([]googleapi.Email, error)
	View(ctx context.Context, id string) (*googleapi.Email, error)
	MarkRead(ctx context.Context, id string) error
	Star(ctx context.Context, id string) error
	Send(ctx context.Context, draft *session.DraftEmail) error
}

// mailService reads mail through the Gmail API and sends through Gmail
// when available, falling back to plain SMTP.
type mailService struct {
	gmail          IGmailClient
	smtp           mailer.IEmailService
	eventPublisher *pktNats.Publisher
}

func NewMailService(gmail IGmailClient, smtp mailer.IEmailService, eventPublisher *pktNats.Publisher) IMailService {
	return &mailService{
		gmail:          gmail,
		smtp:           smtp,
		eventPublisher: eventPublisher,
	}
}

func (s *mailService) Inbox(ctx context.Context, query string, limit int) ([]googleapi.Email, error) {
	if s.gmail == nil {
		return nil, fmt.Errorf("gmail is not configured")
	}
	return s.gmail.ListEmails(ctx, query, limit)
}

func (s *mailService) View(ctx context.Context, id string) (*googleapi.Email, error) {
	if s.gmail == nil {
		return nil, fmt.Errorf("gmail is not configured")
	}
	return s.gmail.GetEmail(ctx, id)
}

func (s *mailService) MarkRead(ctx context.Context, id string) error {
	if s.gmail == nil {
		return fmt.Errorf("gmail is not configured")
	}
	return s.gmail.MarkRead(ctx, id)
}

func (s *mailService) Star(ctx context.Context, id string) error {
	if s.gmail == nil {
		return fmt.Errorf("gmail is not configured")
	}
	return s.gmail.StarEmail(ctx, id)
}

func (s *mailService) Send(ctx context.Context, draft *session.DraftEmail) error {
	if draft == nil {
		return fmt.Errorf("no email draft to send")
	}
	if draft.To == "" {
		return fmt.Errorf("email draft has no recipient")
	}

	to := []string{draft.To}

	var err error
	switch {
	case s.gmail != nil:
		err = s.gmail.SendEmail(ctx, to, draft.CC, draft.Subject, draft.Body)
	case s.smtp != nil:
		err = s.smtp.Send(to, draft.CC, draft.Subject, draft.Body)
	default:
		return fmt.Errorf("no mail transport configured")
	}
	if err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: constant.EventEmailSent,
			Data: map[string]interface{}{
				"to":      to,
				"subject": draft.Subject,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", constant.EventEmailSent, err)
		}
	}
	return nil
}
