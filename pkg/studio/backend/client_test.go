package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/monumento/studio/pkg/core/types"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/v1"
	return New(cfg), srv
}

func TestCreateSession(t *testing.T) {
	var gotReq SessionRequest
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Session{ID: "srv-1", Vibe: gotReq.Vibe, Mode: gotReq.Mode})
	}))
	defer srv.Close()

	s, err := c.CreateSession(context.Background(), SessionRequest{
		Vibe:            string(types.VibeJester),
		Mode:            string(types.ModeAutoPilot),
		DurationMinutes: 20,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID != "srv-1" {
		t.Errorf("session id = %q, want srv-1", s.ID)
	}
	if gotReq.DurationMinutes != 20 {
		t.Errorf("request duration = %d", gotReq.DurationMinutes)
	}
}

func TestCreateSessionServerError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := c.CreateSession(context.Background(), SessionRequest{Vibe: "x", Mode: "y"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusPaymentRequired {
		t.Errorf("status = %d", apiErr.Status)
	}
}

func TestListSessionsPagination(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "10" {
			t.Errorf("size = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Page[Session]{
			Content:       []Session{{ID: "a"}, {ID: "b"}},
			TotalPages:    5,
			TotalElements: 42,
		})
	}))
	defer srv.Close()

	page, err := c.ListSessions(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(page.Content) != 2 || page.TotalElements != 42 {
		t.Errorf("page = %+v", page)
	}
}

func TestCreateMessageRoleMapping(t *testing.T) {
	var gotReq MessageRequest
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/s1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Message{ID: "m1", SessionID: "s1", Role: gotReq.Role})
	}))
	defer srv.Close()

	m, err := c.CreateMessage(context.Background(), "s1", MessageRequest{
		Role:           WireRole(types.RoleHost),
		Text:           "hello",
		RelativeOffset: 1200,
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if gotReq.Role != "ai" {
		t.Errorf("wire role = %q, want ai", gotReq.Role)
	}
	if CoreRole(m.Role) != types.RoleHost {
		t.Errorf("core role = %q", CoreRole(m.Role))
	}
}

func TestUploadAudioMultipart(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "s1_m1.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn/audio/s1_m1.wav"})
	}))
	defer srv.Close()

	url, err := c.UploadAudio(context.Background(), "s1", "m1", []byte("RIFFdata"))
	if err != nil {
		t.Fatalf("UploadAudio: %v", err)
	}
	if url != "https://cdn/audio/s1_m1.wav" {
		t.Errorf("url = %q", url)
	}
}

func TestGenerateSummary(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/s1/generate-summary" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"summary": "A good talk.", "message": "ok"})
	}))
	defer srv.Close()

	summary, err := c.GenerateSummary(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	if summary != "A good talk." {
		t.Errorf("summary = %q", summary)
	}
}

func TestWireRoleRoundTrip(t *testing.T) {
	if WireRole(types.RoleGuest) != "user" || WireRole(types.RoleHost) != "ai" {
		t.Error("wire role mapping broken")
	}
	if CoreRole("user") != types.RoleGuest || CoreRole("ai") != types.RoleHost {
		t.Error("core role mapping broken")
	}
}
