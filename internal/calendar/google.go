package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultAPIBase  = "https://www.googleapis.com/calendar/v3"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	// TokenURL and APIBase default to Google's endpoints; tests point them
	// at a local server.
	TokenURL string
	APIBase  string
	// HTTPClient, when set, is used as the base transport under the OAuth
	// token source.
	HTTPClient *http.Client
}

// GoogleClient talks to the Google Calendar v3 REST API on behalf of a
// seller, authenticating each call with the seller's refresh token.
type GoogleClient struct {
	cfg GoogleConfig
}

func NewGoogleClient(cfg GoogleConfig) *GoogleClient {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	return &GoogleClient{cfg: cfg}
}

func (c *GoogleClient) httpFor(ctx context.Context, credential string) *http.Client {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: c.cfg.TokenURL},
	}
	if c.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.cfg.HTTPClient)
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, &oauth2.Token{RefreshToken: credential}))
}

func (c *GoogleClient) VerifyConnection(ctx context.Context, credential string) error {
	if credential == "" {
		return ErrNotConnected
	}
	q := url.Values{"maxResults": {"1"}, "fields": {"items(id)"}}
	var out struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	return c.doJSON(ctx, credential, http.MethodGet, "/users/me/calendarList?"+q.Encode(), nil, &out, "verify connection")
}

func (c *GoogleClient) ListBusyIntervals(ctx context.Context, credential string, rangeStart, rangeEnd time.Time) ([]BusyPeriod, error) {
	body := map[string]any{
		"timeMin": rangeStart.Format(time.RFC3339),
		"timeMax": rangeEnd.Format(time.RFC3339),
		"items":   []map[string]string{{"id": "primary"}},
	}
	var out struct {
		Calendars map[string]struct {
			Busy []struct {
				Start *time.Time `json:"start"`
				End   *time.Time `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}
	if err := c.doJSON(ctx, credential, http.MethodPost, "/freeBusy", body, &out, "freebusy query"); err != nil {
		return nil, err
	}

	periods := make([]BusyPeriod, 0, len(out.Calendars["primary"].Busy))
	for _, b := range out.Calendars["primary"].Busy {
		periods = append(periods, BusyPeriod{Start: b.Start, End: b.End})
	}
	return periods, nil
}

type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t googleEventTime) toTime() time.Time {
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

type googleEvent struct {
	ID             string            `json:"id,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Description    string            `json:"description,omitempty"`
	Status         string            `json:"status,omitempty"`
	Start          *googleEventTime  `json:"start,omitempty"`
	End            *googleEventTime  `json:"end,omitempty"`
	HangoutLink    string            `json:"hangoutLink,omitempty"`
	Attendees      []googleAttendee  `json:"attendees,omitempty"`
	ConferenceData *googleConference `json:"conferenceData,omitempty"`
	Reminders      *googleReminders  `json:"reminders,omitempty"`
}

type googleAttendee struct {
	Email string `json:"email"`
}

type googleConference struct {
	CreateRequest *struct {
		RequestID             string `json:"requestId"`
		ConferenceSolutionKey struct {
			Type string `json:"type"`
		} `json:"conferenceSolutionKey"`
	} `json:"createRequest,omitempty"`
	EntryPoints []struct {
		URI string `json:"uri"`
	} `json:"entryPoints,omitempty"`
}

type googleReminders struct {
	UseDefault bool `json:"useDefault"`
	Overrides  []struct {
		Method  string `json:"method"`
		Minutes int    `json:"minutes"`
	} `json:"overrides,omitempty"`
}

func (c *GoogleClient) CreateEvent(ctx context.Context, credential string, details EventDetails) (CreatedEvent, error) {
	conf := &googleConference{}
	conf.CreateRequest = &struct {
		RequestID             string `json:"requestId"`
		ConferenceSolutionKey struct {
			Type string `json:"type"`
		} `json:"conferenceSolutionKey"`
	}{RequestID: "meet-" + strconv.FormatInt(time.Now().UnixNano(), 10)}
	conf.CreateRequest.ConferenceSolutionKey.Type = "hangoutsMeet"

	attendees := make([]googleAttendee, 0, len(details.Attendees))
	for _, email := range details.Attendees {
		attendees = append(attendees, googleAttendee{Email: email})
	}

	body := googleEvent{
		Summary:     details.Summary,
		Description: details.Description,
		Start:       &googleEventTime{DateTime: details.Start.Format(time.RFC3339), TimeZone: details.TimeZone},
		End:         &googleEventTime{DateTime: details.End.Format(time.RFC3339), TimeZone: details.TimeZone},
		Attendees:   attendees,
		ConferenceData: conf,
		Reminders: &googleReminders{
			UseDefault: false,
			Overrides: []struct {
				Method  string `json:"method"`
				Minutes int    `json:"minutes"`
			}{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
		},
	}

	var out googleEvent
	path := "/calendars/primary/events?conferenceDataVersion=1&sendUpdates=all"
	if err := c.doJSON(ctx, credential, http.MethodPost, path, body, &out, "create event"); err != nil {
		return CreatedEvent{}, err
	}

	created := CreatedEvent{EventID: out.ID, MeetingLink: out.HangoutLink}
	if created.MeetingLink == "" && out.ConferenceData != nil && len(out.ConferenceData.EntryPoints) > 0 {
		created.MeetingLink = out.ConferenceData.EntryPoints[0].URI
	}
	return created, nil
}

func (c *GoogleClient) UpdateEvent(ctx context.Context, credential string, eventID string, update EventUpdate) error {
	body := googleEvent{}
	if update.Summary != nil {
		body.Summary = *update.Summary
	}
	if update.Description != nil {
		body.Description = *update.Description
	}
	if update.Start != nil {
		body.Start = &googleEventTime{DateTime: update.Start.Format(time.RFC3339), TimeZone: update.TimeZone}
	}
	if update.End != nil {
		body.End = &googleEventTime{DateTime: update.End.Format(time.RFC3339), TimeZone: update.TimeZone}
	}

	var out googleEvent
	path := "/calendars/primary/events/" + url.PathEscape(eventID) + "?sendUpdates=all"
	return c.doJSON(ctx, credential, http.MethodPatch, path, body, &out, "update event")
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, credential string, eventID string) error {
	path := "/calendars/primary/events/" + url.PathEscape(eventID) + "?sendUpdates=all"
	err := c.doJSON(ctx, credential, http.MethodDelete, path, nil, nil, "delete event")
	// A vanished event is as deleted as it gets.
	var pErr *ProviderError
	if errors.As(err, &pErr) && (pErr.status == http.StatusNotFound || pErr.status == http.StatusGone) {
		return nil
	}
	return err
}

func (c *GoogleClient) ListUpcomingEvents(ctx context.Context, credential string, maxResults int) ([]Event, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	q := url.Values{
		"timeMin":      {time.Now().UTC().Format(time.RFC3339)},
		"maxResults":   {strconv.Itoa(maxResults)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	var out struct {
		Items []googleEvent `json:"items"`
	}
	if err := c.doJSON(ctx, credential, http.MethodGet, "/calendars/primary/events?"+q.Encode(), nil, &out, "list events"); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(out.Items))
	for _, item := range out.Items {
		ev := Event{
			ID:          item.ID,
			Summary:     item.Summary,
			Description: item.Description,
			Status:      item.Status,
			MeetingLink: item.HangoutLink,
		}
		if item.Start != nil {
			ev.Start = item.Start.toTime()
		}
		if item.End != nil {
			ev.End = item.End.toTime()
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *GoogleClient) doJSON(ctx context.Context, credential, method, path string, body, out any, op string) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &ProviderError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIBase+path, reqBody)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpFor(ctx, credential).Do(req)
	if err != nil {
		// A rejected refresh token surfaces as a token-retrieval failure.
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			return ErrNotConnected
		}
		return &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNotConnected
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ProviderError{
			Op:     op,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(payload)),
			status: resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &ProviderError{Op: op, Err: err}
	}
	return nil
}
