package googleapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const calendarBaseURL = "https://www.googleapis.com/calendar/v3/calendars/primary"

type Event struct {
	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Link    string `json:"link,omitempty"`
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t eventTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

type eventResource struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Start       eventTime  `json:"start"`
	End         eventTime  `json:"end"`
	Attendees   []attendee `json:"attendees,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
}

type attendee struct {
	Email string `json:"email"`
}

type eventListResponse struct {
	Items []eventResource `json:"items"`
}

// ListEventsBetween returns calendar events between two dates given as
// YYYY-MM-DD, ordered by start time.
func (c *Client) ListEventsBetween(ctx context.Context, startDate, endDate string) ([]Event, error) {
	params := url.Values{}
	params.Set("timeMin", startDate+"T00:00:00Z")
	params.Set("timeMax", endDate+"T23:59:59Z")
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	var list eventListResponse
	if err := c.do(ctx, "GET", calendarBaseURL+"/events?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		summary := item.Summary
		if summary == "" {
			summary = "(No Title)"
		}
		events = append(events, Event{
			Summary: summary,
			Start:   item.Start.value(),
			End:     item.End.value(),
		})
	}
	return events, nil
}

// CreateEvent inserts an event on the primary calendar and invites the
// given attendees. When a Zoom room is configured its link is appended
// to the description.
func (c *Client) CreateEvent(ctx context.Context, summary, startTime, endTime, description string, attendees []string) (*Event, error) {
	fullDescription := strings.TrimSpace(description)
	if c.cfg.ZoomRoomURL != "" {
		fullDescription = fmt.Sprintf("%s\n\nZoom Link: %s", fullDescription, c.cfg.ZoomRoomURL)
	}

	resource := eventResource{
		Summary:     summary,
		Description: fullDescription,
		Start:       eventTime{DateTime: startTime, TimeZone: c.cfg.Timezone},
		End:         eventTime{DateTime: endTime, TimeZone: c.cfg.Timezone},
	}
	for _, email := range attendees {
		email = strings.TrimSpace(email)
		if email != "" {
			resource.Attendees = append(resource.Attendees, attendee{Email: email})
		}
	}

	var created eventResource
	if err := c.do(ctx, "POST", calendarBaseURL+"/events?sendUpdates=all", resource, &created); err != nil {
		return nil, err
	}

	return &Event{
		Summary: created.Summary,
		Start:   created.Start.value(),
		End:     created.End.value(),
		Link:    created.HTMLLink,
	}, nil
}
