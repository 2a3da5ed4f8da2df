package calendarsync

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleEvents implements EventsAPI on the Google Calendar v3 API.
type GoogleEvents struct {
	srv        *calendar.Service
	calendarID string
}

func NewGoogleEvents(srv *calendar.Service, calendarID string) *GoogleEvents {
	return &GoogleEvents{srv: srv, calendarID: calendarID}
}

// Upsert patches the event carrying ev's task id or inserts a new one.
func (g *GoogleEvents) Upsert(ctx context.Context, ev Event) error {
	existing, err := g.find(ctx, ev.TaskID)
	if err != nil {
		return err
	}

	body := toGoogleEvent(ev)
	if len(existing) > 0 {
		if _, err := g.srv.Events.Patch(g.calendarID, existing[0].Id, body).Context(ctx).Do(); err != nil {
			return fmt.Errorf("patch event: %w", err)
		}
		return nil
	}

	if _, err := g.srv.Events.Insert(g.calendarID, body).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Delete removes every event carrying taskID.
func (g *GoogleEvents) Delete(ctx context.Context, taskID int64) error {
	existing, err := g.find(ctx, taskID)
	if err != nil {
		return err
	}
	for _, ev := range existing {
		if err := g.srv.Events.Delete(g.calendarID, ev.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("delete event %s: %w", ev.Id, err)
		}
	}
	return nil
}

func (g *GoogleEvents) find(ctx context.Context, taskID int64) ([]*calendar.Event, error) {
	events, err := g.srv.Events.List(g.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%d", PropertyKey, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events.Items, nil
}

func toGoogleEvent(ev Event) *calendar.Event {
	return &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventTime(ev.Start),
		End:         eventTime(ev.End),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{PropertyKey: strconv.FormatInt(ev.TaskID, 10)},
		},
	}
}

// HTTPClients returns an authorized client for a viewer session, or
// ErrNoCredentials.
type HTTPClients interface {
	HTTPClient(ctx context.Context, session string) (*http.Client, error)
}

// HTTPClientsFunc adapts a function to HTTPClients.
type HTTPClientsFunc func(ctx context.Context, session string) (*http.Client, error)

func (f HTTPClientsFunc) HTTPClient(ctx context.Context, session string) (*http.Client, error) {
	return f(ctx, session)
}

// GoogleSource builds a calendar service per session from its OAuth token.
type GoogleSource struct {
	clients    HTTPClients
	calendarID string
	opts       []option.ClientOption
}

func NewGoogleSource(clients HTTPClients, calendarID string, opts ...option.ClientOption) *GoogleSource {
	return &GoogleSource{clients: clients, calendarID: calendarID, opts: opts}
}

func (s *GoogleSource) For(ctx context.Context, session string) (EventsAPI, error) {
	client, err := s.clients.HTTPClient(ctx, session)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return NewGoogleEvents(srv, s.calendarID), nil
}

// eventTime carries the zone name only when it is an IANA name Google can
// resolve. The RFC3339 offset is always present.
func eventTime(t time.Time) *calendar.EventDateTime {
	dt := &calendar.EventDateTime{DateTime: t.Format(time.RFC3339)}
	if name := t.Location().String(); name != "Local" {
		dt.TimeZone = name
	}
	return dt
}
