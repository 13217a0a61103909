package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient runs a stub Google backend: the token endpoint on /token,
// the calendar API on everything else.
func newTestClient(t *testing.T, api http.HandlerFunc) (*GoogleClient, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.Form.Get("refresh_token") == "revoked-token" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/", api)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewGoogleClient(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     srv.URL + "/token",
		APIBase:      srv.URL,
	})
	return client, srv
}

func TestGoogleClientListBusyIntervals(t *testing.T) {
	var gotAuth, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"calendars": {
				"primary": {
					"busy": [
						{"start": "2026-03-02T10:00:00Z", "end": "2026-03-02T11:00:00Z"},
						{"end": "2026-03-02T09:00:00Z"}
					]
				}
			}
		}`))
	})

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	periods, err := client.ListBusyIntervals(context.Background(), "good-token", rangeStart, rangeStart.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListBusyIntervals error: %v", err)
	}
	if gotAuth != "Bearer test-access" {
		t.Fatalf("authorization = %q, want bearer access token", gotAuth)
	}
	if gotPath != "/freeBusy" {
		t.Fatalf("path = %q, want /freeBusy", gotPath)
	}
	if len(periods) != 2 {
		t.Fatalf("period count = %d, want 2", len(periods))
	}
	if periods[0].Start == nil || !periods[0].Start.Equal(rangeStart.Add(10*time.Hour)) {
		t.Fatalf("period[0].Start = %v", periods[0].Start)
	}
	if periods[1].Start != nil {
		t.Fatalf("period[1].Start = %v, want nil for open-ended block", periods[1].Start)
	}
}

func TestGoogleClientCreateEvent(t *testing.T) {
	var gotBody googleEvent
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-123","hangoutLink":"https://meet.example/abc"}`))
	})

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	created, err := client.CreateEvent(context.Background(), "good-token", EventDetails{
		Summary:   "Intro call",
		Start:     start,
		End:       start.Add(30 * time.Minute),
		TimeZone:  "UTC",
		Attendees: []string{"buyer@example.com", "seller@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	if created.EventID != "evt-123" || created.MeetingLink != "https://meet.example/abc" {
		t.Fatalf("created = %+v", created)
	}
	if !strings.Contains(gotQuery, "conferenceDataVersion=1") || !strings.Contains(gotQuery, "sendUpdates=all") {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(gotBody.Attendees) != 2 {
		t.Fatalf("attendee count = %d, want 2", len(gotBody.Attendees))
	}
	if gotBody.ConferenceData == nil || gotBody.ConferenceData.CreateRequest == nil {
		t.Fatalf("conference create request missing: %+v", gotBody.ConferenceData)
	}
	if gotBody.ConferenceData.CreateRequest.ConferenceSolutionKey.Type != "hangoutsMeet" {
		t.Fatalf("conference type = %q", gotBody.ConferenceData.CreateRequest.ConferenceSolutionKey.Type)
	}
}

func TestGoogleClientRevokedTokenIsNotConnected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("API should not be reached with a revoked token")
	})

	err := client.VerifyConnection(context.Background(), "revoked-token")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("error = %v, want ErrNotConnected", err)
	}
}

func TestGoogleClientUnauthorizedIsNotConnected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.VerifyConnection(context.Background(), "good-token")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("error = %v, want ErrNotConnected", err)
	}
}

func TestGoogleClientUpstreamFailureIsProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend sad", http.StatusInternalServerError)
	})

	_, err := client.ListBusyIntervals(context.Background(), "good-token", time.Now(), time.Now().Add(time.Hour))
	var pErr *ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *ProviderError", err)
	}
}

func TestGoogleClientDeleteEventToleratesGone(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})

	if err := client.DeleteEvent(context.Background(), "good-token", "evt-1"); err != nil {
		t.Fatalf("DeleteEvent error: %v, want nil for an already-deleted event", err)
	}
}

func TestGoogleClientEmptyCredential(t *testing.T) {
	client := NewGoogleClient(GoogleConfig{})
	if err := client.VerifyConnection(context.Background(), ""); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("error = %v, want ErrNotConnected", err)
	}
}
