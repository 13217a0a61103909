package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/scheduling"
	"bookable/backend/internal/store"
)

const testJWTSecret = "test-secret"

type fakeService struct {
	getAvailabilityFn    func(ctx context.Context, q scheduling.AvailabilityQuery) (scheduling.Availability, error)
	bookFn               func(ctx context.Context, in scheduling.BookInput) (scheduling.BookingResult, error)
	connectCalendarFn    func(ctx context.Context, email, name, refreshToken string) (domain.Seller, error)
	disconnectCalendarFn func(ctx context.Context, email string) error
	upcomingEventsFn     func(ctx context.Context, sellerEmail string, maxResults int) ([]calendar.Event, error)
	rescheduleFn         func(ctx context.Context, actor scheduling.Actor, in scheduling.RescheduleInput) (domain.Appointment, error)
	deleteEventFn        func(ctx context.Context, actor scheduling.Actor, eventID string) error
	listAppointmentsFn   func(ctx context.Context, actor scheduling.Actor, upcomingOnly bool) ([]domain.Appointment, error)
	getAppointmentFn     func(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)
	updateStatusFn       func(ctx context.Context, actor scheduling.Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
	deleteAppointmentFn  func(ctx context.Context, actor scheduling.Actor, id uuid.UUID) error
	listSellersFn        func(ctx context.Context) ([]domain.Seller, error)
	getSellerFn          func(ctx context.Context, id uuid.UUID) (domain.Seller, error)
}

func (f *fakeService) GetAvailability(ctx context.Context, q scheduling.AvailabilityQuery) (scheduling.Availability, error) {
	if f.getAvailabilityFn == nil {
		panic("GetAvailability not configured")
	}
	return f.getAvailabilityFn(ctx, q)
}

func (f *fakeService) Book(ctx context.Context, in scheduling.BookInput) (scheduling.BookingResult, error) {
	if f.bookFn == nil {
		panic("Book not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeService) ConnectCalendar(ctx context.Context, email, name, refreshToken string) (domain.Seller, error) {
	if f.connectCalendarFn == nil {
		panic("ConnectCalendar not configured")
	}
	return f.connectCalendarFn(ctx, email, name, refreshToken)
}

func (f *fakeService) DisconnectCalendar(ctx context.Context, email string) error {
	if f.disconnectCalendarFn == nil {
		panic("DisconnectCalendar not configured")
	}
	return f.disconnectCalendarFn(ctx, email)
}

func (f *fakeService) UpcomingEvents(ctx context.Context, sellerEmail string, maxResults int) ([]calendar.Event, error) {
	if f.upcomingEventsFn == nil {
		panic("UpcomingEvents not configured")
	}
	return f.upcomingEventsFn(ctx, sellerEmail, maxResults)
}

func (f *fakeService) Reschedule(ctx context.Context, actor scheduling.Actor, in scheduling.RescheduleInput) (domain.Appointment, error) {
	if f.rescheduleFn == nil {
		panic("Reschedule not configured")
	}
	return f.rescheduleFn(ctx, actor, in)
}

func (f *fakeService) DeleteEvent(ctx context.Context, actor scheduling.Actor, eventID string) error {
	if f.deleteEventFn == nil {
		panic("DeleteEvent not configured")
	}
	return f.deleteEventFn(ctx, actor, eventID)
}

func (f *fakeService) ListAppointments(ctx context.Context, actor scheduling.Actor, upcomingOnly bool) ([]domain.Appointment, error) {
	if f.listAppointmentsFn == nil {
		panic("ListAppointments not configured")
	}
	return f.listAppointmentsFn(ctx, actor, upcomingOnly)
}

func (f *fakeService) GetAppointment(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error) {
	if f.getAppointmentFn == nil {
		panic("GetAppointment not configured")
	}
	return f.getAppointmentFn(ctx, actor, id)
}

func (f *fakeService) UpdateStatus(ctx context.Context, actor scheduling.Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if f.updateStatusFn == nil {
		panic("UpdateStatus not configured")
	}
	return f.updateStatusFn(ctx, actor, id, status)
}

func (f *fakeService) DeleteAppointment(ctx context.Context, actor scheduling.Actor, id uuid.UUID) error {
	if f.deleteAppointmentFn == nil {
		panic("DeleteAppointment not configured")
	}
	return f.deleteAppointmentFn(ctx, actor, id)
}

func (f *fakeService) ListSellers(ctx context.Context) ([]domain.Seller, error) {
	if f.listSellersFn == nil {
		panic("ListSellers not configured")
	}
	return f.listSellersFn(ctx)
}

func (f *fakeService) GetSeller(ctx context.Context, id uuid.UUID) (domain.Seller, error) {
	if f.getSellerFn == nil {
		panic("GetSeller not configured")
	}
	return f.getSellerFn(ctx, id)
}

func newTestRouter(t *testing.T, svc *fakeService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(NewServer(svc, nil), RouterConfig{JWTSecret: testJWTSecret}, nil)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func buyerToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"sub":   "buyer-1",
		"email": "buyer@example.com",
		"name":  "Bea Buyer",
		"role":  "buyer",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

func sellerToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"sub":   "seller-1",
		"email": "seller@example.com",
		"name":  "Sam Seller",
		"role":  "seller",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthzIsOpen(t *testing.T) {
	router := newTestRouter(t, &fakeService{})
	w := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	router := newTestRouter(t, &fakeService{})

	w := doRequest(t, router, http.MethodGet, "/api/appointments", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}

	badToken := signToken(t, jwt.MapClaims{"sub": "x"}) // no email/role claims
	w = doRequest(t, router, http.MethodGet, "/api/appointments", badToken, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with incomplete claims = %d, want 401", w.Code)
	}

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "x", "email": "x@example.com", "role": "buyer",
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	w = doRequest(t, router, http.MethodGet, "/api/appointments", wrongKey, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status with wrong signature = %d, want 401", w.Code)
	}
}

func TestGetAvailabilityHandler(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	svc := &fakeService{
		getAvailabilityFn: func(ctx context.Context, q scheduling.AvailabilityQuery) (scheduling.Availability, error) {
			if q.SellerEmail != "seller@example.com" {
				t.Errorf("sellerEmail = %q", q.SellerEmail)
			}
			if q.SlotDurationMinutes != 60 {
				t.Errorf("duration = %d, want 60", q.SlotDurationMinutes)
			}
			return scheduling.Availability{
				Slots: []domain.AvailabilitySlot{{
					Start:     start.Add(9 * time.Hour),
					End:       start.Add(10 * time.Hour),
					Available: true,
				}},
				Busy: []domain.TimeInterval{{Start: start.Add(10 * time.Hour), End: start.Add(11 * time.Hour)}},
			}, nil
		},
	}
	router := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet,
		"/api/calendar/availability?sellerEmail=seller@example.com&startDate=2026-03-02&endDate=2026-03-06&duration=60",
		buyerToken(t), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp availabilityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 1 || len(resp.BusyTimes) != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Slots[0].IsFallback {
		t.Fatalf("slot marked fallback: %+v", resp.Slots[0])
	}
}

func TestGetAvailabilityHandler_BadDates(t *testing.T) {
	router := newTestRouter(t, &fakeService{})

	w := doRequest(t, router, http.MethodGet,
		"/api/calendar/availability?sellerEmail=s@example.com&startDate=yesterday&endDate=2026-03-06",
		buyerToken(t), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetAvailabilityHandler_NotConnectedBody(t *testing.T) {
	svc := &fakeService{
		getAvailabilityFn: func(ctx context.Context, q scheduling.AvailabilityQuery) (scheduling.Availability, error) {
			return scheduling.Availability{}, calendar.ErrNotConnected
		},
	}
	router := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet,
		"/api/calendar/availability?sellerEmail=s@example.com&startDate=2026-03-02&endDate=2026-03-06",
		buyerToken(t), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["code"] != "CALENDAR_NOT_CONNECTED" {
		t.Fatalf("body = %v, want CALENDAR_NOT_CONNECTED code", body)
	}
}

func TestGetAvailabilityHandler_ProviderErrorIsBadGateway(t *testing.T) {
	svc := &fakeService{
		getAvailabilityFn: func(ctx context.Context, q scheduling.AvailabilityQuery) (scheduling.Availability, error) {
			return scheduling.Availability{}, &calendar.ProviderError{Op: "freebusy query", Err: errors.New("down")}
		},
	}
	router := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet,
		"/api/calendar/availability?sellerEmail=s@example.com&startDate=2026-03-02&endDate=2026-03-06",
		buyerToken(t), "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestBookHandler(t *testing.T) {
	svc := &fakeService{
		bookFn: func(ctx context.Context, in scheduling.BookInput) (scheduling.BookingResult, error) {
			if in.BuyerEmail != "buyer@example.com" || in.BuyerID != "buyer-1" {
				t.Errorf("buyer identity = %q / %q, want token claims", in.BuyerID, in.BuyerEmail)
			}
			appt := domain.Appointment{
				ID:          uuid.MustParse("00000000-0000-0000-0000-000000000099"),
				Title:       in.Title,
				Status:      domain.AppointmentStatusScheduled,
				StartTime:   in.StartTime,
				EndTime:     in.EndTime,
				BuyerEmail:  in.BuyerEmail,
				SellerEmail: in.SellerEmail,
				EventID:     "evt-1",
			}
			return scheduling.BookingResult{Appointment: appt, EventID: "evt-1", MeetingLink: "https://meet.example/x"}, nil
		},
	}
	router := newTestRouter(t, svc)

	body := `{
		"sellerEmail": "seller@example.com",
		"title": "Intro call",
		"startTime": "2026-03-02T10:00:00Z",
		"endTime": "2026-03-02T10:30:00Z"
	}`
	w := doRequest(t, router, http.MethodPost, "/api/calendar/book", buyerToken(t), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp bookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EventID != "evt-1" || resp.Appointment.Status != "scheduled" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestBookHandler_MissingFields(t *testing.T) {
	router := newTestRouter(t, &fakeService{})

	w := doRequest(t, router, http.MethodPost, "/api/calendar/book", buyerToken(t), `{"title": "no times"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateAppointmentStatusHandler_Invalid(t *testing.T) {
	svc := &fakeService{
		updateStatusFn: func(ctx context.Context, actor scheduling.Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
			return domain.Appointment{}, scheduling.ErrForbidden
		},
	}
	router := newTestRouter(t, svc)

	id := uuid.MustParse("00000000-0000-0000-0000-000000000042")
	w := doRequest(t, router, http.MethodPatch, "/api/appointments/"+id.String(), buyerToken(t), `{"status":"completed"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	w = doRequest(t, router, http.MethodPatch, "/api/appointments/not-a-uuid", buyerToken(t), `{"status":"completed"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status for bad uuid = %d, want 400", w.Code)
	}
}

func TestGetAppointmentHandler_NotFound(t *testing.T) {
	svc := &fakeService{
		getAppointmentFn: func(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrNotFound
		},
	}
	router := newTestRouter(t, svc)

	id := uuid.MustParse("00000000-0000-0000-0000-000000000042")
	w := doRequest(t, router, http.MethodGet, "/api/appointments/"+id.String(), buyerToken(t), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteEventHandler(t *testing.T) {
	var gotEventID string
	svc := &fakeService{
		deleteEventFn: func(ctx context.Context, actor scheduling.Actor, eventID string) error {
			gotEventID = eventID
			return nil
		},
	}
	router := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodDelete, "/api/calendar/events/evt-1", buyerToken(t), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if gotEventID != "evt-1" {
		t.Fatalf("event id = %q, want evt-1", gotEventID)
	}
}

func TestConnectCalendarHandler_UsesTokenIdentity(t *testing.T) {
	var gotEmail, gotName string
	svc := &fakeService{
		connectCalendarFn: func(ctx context.Context, email, name, refreshToken string) (domain.Seller, error) {
			gotEmail, gotName = email, name
			return domain.Seller{Email: email, Name: name, CalendarConnected: true}, nil
		},
	}
	router := newTestRouter(t, svc)

	// A body email must not redirect the stored credential.
	body := `{"refreshToken":"tok","email":"victim@example.com","name":"Someone Else"}`
	w := doRequest(t, router, http.MethodPost, "/api/calendar/connect", sellerToken(t), body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if gotEmail != "seller@example.com" || gotName != "Sam Seller" {
		t.Fatalf("identity = %q / %q, want token claims", gotEmail, gotName)
	}
	if strings.Contains(w.Body.String(), "refreshToken") {
		t.Fatalf("response leaks the refresh token: %s", w.Body.String())
	}
}

func TestConnectCalendarHandler_RejectsNonSellers(t *testing.T) {
	// The fake's ConnectCalendar/DisconnectCalendar are deliberately left
	// unconfigured: reaching the service with a buyer token would panic.
	router := newTestRouter(t, &fakeService{})

	w := doRequest(t, router, http.MethodPost, "/api/calendar/connect", buyerToken(t), `{"refreshToken":"tok"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("connect status = %d, want 403", w.Code)
	}

	w = doRequest(t, router, http.MethodDelete, "/api/calendar/connect", buyerToken(t), "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("disconnect status = %d, want 403", w.Code)
	}
}

func TestListSellersHandler(t *testing.T) {
	svc := &fakeService{
		listSellersFn: func(ctx context.Context) ([]domain.Seller, error) {
			return []domain.Seller{{
				ID:                uuid.MustParse("00000000-0000-0000-0000-000000000001"),
				Email:             "seller@example.com",
				CalendarConnected: true,
			}}, nil
		},
	}
	router := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet, "/api/sellers", buyerToken(t), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Sellers []sellerDTO `json:"sellers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Sellers) != 1 || !resp.Sellers[0].CalendarConnected {
		t.Fatalf("response = %+v", resp)
	}
}
