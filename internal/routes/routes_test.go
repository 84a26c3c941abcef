package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jk-calendar/internal/calendar"
	"jk-calendar/internal/config"
	"jk-calendar/internal/storage"
)

// newTestRouter wires a router exactly like the server does, over a fresh
// SQLite store with the registries seeded.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Storage{
		SQLite: &config.SQLiteStorage{Path: filepath.Join(t.TempDir(), "routes.db")},
	}
	store := storage.NewProvider(cfg)
	if store == nil {
		t.Fatal("failed to initialize test store")
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, code := range calendar.DefaultPermissions {
		if _, err := store.CreatePermission(ctx, string(code)); err != nil {
			t.Fatalf("seed permission %q: %v", code, err)
		}
	}
	for _, code := range calendar.DefaultStatuses {
		if _, err := store.CreateStatus(ctx, string(code)); err != nil {
			t.Fatalf("seed status %q: %v", code, err)
		}
	}

	svc := calendar.NewService(store, 5*time.Second)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("Calendar", svc)
		c.Next()
	})
	RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func onboard(t *testing.T, r *gin.Engine, email string) storage.Onboarding {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/users", fmt.Sprintf(`{"email":%q}`, email), 0)
	if w.Code != http.StatusCreated {
		t.Fatalf("onboard %s: status %d, body %s", email, w.Code, w.Body.String())
	}

	var ob storage.Onboarding
	decode(t, w, &ob)
	return ob
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", 0)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if body.Message != "pong" {
		t.Errorf("health message = %q", body.Message)
	}
}

func TestOnboardRoute(t *testing.T) {
	r := newTestRouter(t)

	ob := onboard(t, r, "sally@gmail.com")
	if ob.User.ID == 0 || ob.Calendar.ID == 0 {
		t.Fatalf("onboarding = %+v", ob)
	}
	if ob.Calendar.Name != "sally@gmail.com" {
		t.Errorf("calendar name = %q", ob.Calendar.Name)
	}

	// Duplicate email conflicts
	w := doJSON(t, r, http.MethodPost, "/api/users", `{"email":"sally@gmail.com"}`, 0)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate onboard status = %d, want 409", w.Code)
	}

	// Invalid email is a client error
	w = doJSON(t, r, http.MethodPost, "/api/users", `{"email":"nope"}`, 0)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad email status = %d, want 400", w.Code)
	}
}

func TestGetUserRoute(t *testing.T) {
	r := newTestRouter(t)
	ob := onboard(t, r, "sally@gmail.com")

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", ob.User.ID), "", 0)
	if w.Code != http.StatusOK {
		t.Fatalf("get user status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/9999", "", 0)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing user status = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/abc", "", 0)
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", w.Code)
	}
}

func TestWeekRoute(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")

	// Create the dinner event
	body := `{"title":"dinner","start":"2017-11-14T15:30:00Z","end":"2017-11-14T16:30:00Z"}`
	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/events", sally.Calendar.ID), body, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event status = %d, body %s", w.Code, w.Body.String())
	}

	// The week of Thursday the 16th includes it
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/calendars/%d/week?date=2017-11-16", sally.Calendar.ID), "", sally.User.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("week status = %d, body %s", w.Code, w.Body.String())
	}

	var week struct {
		WeekStart string          `json:"week_start"`
		WeekEnd   string          `json:"week_end"`
		Events    []storage.Event `json:"events"`
	}
	decode(t, w, &week)

	if week.WeekStart != "2017-11-13" || week.WeekEnd != "2017-11-19" {
		t.Errorf("week bounds = %s..%s", week.WeekStart, week.WeekEnd)
	}
	if len(week.Events) != 1 || week.Events[0].Title != "dinner" {
		t.Errorf("week events = %+v", week.Events)
	}

	// December's month view excludes it
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/calendars/%d/month?year=2017&month=12", sally.Calendar.ID), "", sally.User.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("month status = %d", w.Code)
	}

	var month struct {
		Events []storage.Event `json:"events"`
	}
	decode(t, w, &month)
	if len(month.Events) != 0 {
		t.Errorf("December events = %+v, want empty", month.Events)
	}
}

func TestWeekRoute_AccessControl(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")
	bill := onboard(t, r, "bill@gmail.com")

	path := fmt.Sprintf("/api/calendars/%d/week?date=2017-11-16", sally.Calendar.ID)

	// No caller header
	w := doJSON(t, r, http.MethodGet, path, "", 0)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous week status = %d, want 401", w.Code)
	}

	// A stranger
	w = doJSON(t, r, http.MethodGet, path, "", bill.User.ID)
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger week status = %d, want 403", w.Code)
	}

	// Grant view, then it works
	grant := fmt.Sprintf(`{"user_id":%d,"permission":"view"}`, bill.User.ID)
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/grants", sally.Calendar.ID), grant, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("grant status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, path, "", bill.User.ID)
	if w.Code != http.StatusOK {
		t.Errorf("granted week status = %d, want 200", w.Code)
	}

	// View is not enough to create events
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/events", sally.Calendar.ID),
		`{"title":"intrusion"}`, bill.User.ID)
	if w.Code != http.StatusForbidden {
		t.Errorf("view-level create status = %d, want 403", w.Code)
	}
}

func TestGrantRoute_OwnerOnly(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")
	bill := onboard(t, r, "bill@gmail.com")
	alice := onboard(t, r, "alice@gmail.com")

	// Bill has edit, which is not enough to share
	grant := fmt.Sprintf(`{"user_id":%d,"permission":"edit"}`, bill.User.ID)
	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/grants", sally.Calendar.ID), grant, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("grant status = %d", w.Code)
	}

	regrant := fmt.Sprintf(`{"user_id":%d,"permission":"view"}`, alice.User.ID)
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/grants", sally.Calendar.ID), regrant, bill.User.ID)
	if w.Code != http.StatusForbidden {
		t.Errorf("editor sharing status = %d, want 403", w.Code)
	}

	// Unknown permission code
	bad := fmt.Sprintf(`{"user_id":%d,"permission":"superadmin"}`, alice.User.ID)
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/grants", sally.Calendar.ID), bad, sally.User.ID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown permission status = %d, want 400", w.Code)
	}
}

func TestInviteFlow(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")
	bill := onboard(t, r, "bill@gmail.com")

	// Sally creates an event on her calendar
	body := `{"title":"dinner","start":"2017-11-14T15:30:00Z","end":"2017-11-14T16:30:00Z"}`
	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/events", sally.Calendar.ID), body, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event status = %d", w.Code)
	}
	var event storage.Event
	decode(t, w, &event)

	// ...and invites Bill's calendar
	invite := fmt.Sprintf(`{"calendar_id":%d}`, bill.Calendar.ID)
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/events/%d/invites", event.ID), invite, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("invite status = %d, body %s", w.Code, w.Body.String())
	}
	var created storage.Invite
	decode(t, w, &created)

	if created.StatusCode != "awaiting response" {
		t.Errorf("fresh invite status = %q", created.StatusCode)
	}
	if created.TimeUpdated != nil {
		t.Errorf("fresh invite already modified: %v", created.TimeUpdated)
	}

	// Bill sees it on his calendar
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/calendars/%d/invites", bill.Calendar.ID), "", bill.User.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("list invites status = %d", w.Code)
	}
	var listing struct {
		Invites []storage.Invite `json:"invites"`
	}
	decode(t, w, &listing)
	if len(listing.Invites) != 1 {
		t.Fatalf("invites = %+v", listing.Invites)
	}

	// Sally cannot respond on Bill's behalf
	w = doJSON(t, r, http.MethodPatch,
		fmt.Sprintf("/api/invites/%d", created.ID), `{"status":"accepted"}`, sally.User.ID)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign respond status = %d, want 403", w.Code)
	}

	// Bill accepts
	w = doJSON(t, r, http.MethodPatch,
		fmt.Sprintf("/api/invites/%d", created.ID), `{"status":"accepted"}`, bill.User.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("respond status = %d, body %s", w.Code, w.Body.String())
	}
	var updated storage.Invite
	decode(t, w, &updated)

	if updated.StatusCode != "accepted" {
		t.Errorf("responded status = %q", updated.StatusCode)
	}
	if updated.TimeUpdated == nil {
		t.Error("response left no last-modified marker")
	}

	// Unknown status code
	w = doJSON(t, r, http.MethodPatch,
		fmt.Sprintf("/api/invites/%d", created.ID), `{"status":"maybe"}`, bill.User.ID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status code = %d, want 400", w.Code)
	}

	// Inviting through a missing event is a 404
	w = doJSON(t, r, http.MethodPost, "/api/events/9999/invites", invite, sally.User.ID)
	if w.Code != http.StatusNotFound {
		t.Errorf("invite on missing event status = %d, want 404", w.Code)
	}
}

func TestImportRoute(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")

	csv := "Title,Start,End\n" +
		"dinner,2017-11-14 15:30,2017-11-14 16:30\n"

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/import", sally.Calendar.ID), strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-User-ID", fmt.Sprintf("%d", sally.User.ID))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}

	var result struct {
		Created int `json:"created"`
	}
	decode(t, w, &result)
	if result.Created != 1 {
		t.Errorf("imported %d events, want 1", result.Created)
	}
}

func TestQRRoute(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")

	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/events", sally.Calendar.ID),
		`{"title":"dinner"}`, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event status = %d", w.Code)
	}
	var event storage.Event
	decode(t, w, &event)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/events/%d/qr", event.ID), "", 0)
	if w.Code != http.StatusOK {
		t.Fatalf("qr status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("qr body is empty")
	}

	w = doJSON(t, r, http.MethodGet, "/api/events/9999/qr", "", 0)
	if w.Code != http.StatusNotFound {
		t.Errorf("qr for missing event status = %d, want 404", w.Code)
	}
}

func TestRevokeRoute(t *testing.T) {
	r := newTestRouter(t)
	sally := onboard(t, r, "sally@gmail.com")
	bill := onboard(t, r, "bill@gmail.com")

	grant := fmt.Sprintf(`{"user_id":%d,"permission":"view"}`, bill.User.ID)
	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/calendars/%d/grants", sally.Calendar.ID), grant, sally.User.ID)
	if w.Code != http.StatusCreated {
		t.Fatalf("grant status = %d", w.Code)
	}
	var granted struct {
		GrantID int64 `json:"cal_user_id"`
	}
	decode(t, w, &granted)

	w = doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/grants/%d", granted.GrantID), "", sally.User.ID)
	if w.Code != http.StatusNoContent {
		t.Fatalf("revoke status = %d", w.Code)
	}

	// Second revoke finds nothing
	w = doJSON(t, r, http.MethodDelete,
		fmt.Sprintf("/api/grants/%d", granted.GrantID), "", sally.User.ID)
	if w.Code != http.StatusNotFound {
		t.Errorf("double revoke status = %d, want 404", w.Code)
	}
}
