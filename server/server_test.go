package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirinut/regibot/agent/engine"
	"github.com/sirinut/regibot/agent/record"
	statex "github.com/sirinut/regibot/agent/state"
)

func newTestServer(t *testing.T) (*httptest.Server, *record.MemoryStore, *statex.MemoryStore) {
	t.Helper()

	records := record.NewMemoryStore()
	sessions := statex.NewMemoryStore()

	eng, err := engine.New(records, nil)
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}

	srv := httptest.NewServer(New(eng, sessions).Handler())
	t.Cleanup(srv.Close)
	return srv, records, sessions
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeChat(t *testing.T, resp *http.Response) chatResponse {
	t.Helper()
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestChatAssignsSessionID(t *testing.T) {
	t.Parallel()

	srv, _, sessions := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chat", chatRequest{Message: "help"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	out := decodeChat(t, resp)
	if out.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if !strings.Contains(out.Response, "What would you like to do?") {
		t.Fatalf("unexpected reply %q", out.Response)
	}

	if _, err := sessions.Load(context.Background(), out.SessionID); err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
}

func TestChatConversationAcrossRequests(t *testing.T) {
	t.Parallel()

	srv, records, _ := newTestServer(t)
	url := srv.URL + "/api/chat"

	first := decodeChat(t, postJSON(t, url, chatRequest{Message: "I want to register"}))
	if !strings.Contains(first.Response, "full name") {
		t.Fatalf("expected full-name prompt, got %q", first.Response)
	}
	sessionID := first.SessionID

	for _, msg := range []string{"Alice Johnson", "alice@example.com", "+14155552671", "1995-03-20"} {
		out := decodeChat(t, postJSON(t, url, chatRequest{Message: msg, SessionID: sessionID}))
		if out.SessionID != sessionID {
			t.Fatalf("session id changed: %q -> %q", sessionID, out.SessionID)
		}
	}

	final := decodeChat(t, postJSON(t, url, chatRequest{Message: "456 Oak Ave", SessionID: sessionID}))
	if !strings.Contains(final.Response, "created successfully") {
		t.Fatalf("expected creation confirmation, got %q", final.Response)
	}

	rec, err := records.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.FullName != "Alice Johnson" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestChatSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	url := srv.URL + "/api/chat"

	a := decodeChat(t, postJSON(t, url, chatRequest{Message: "register"}))
	b := decodeChat(t, postJSON(t, url, chatRequest{Message: "help"}))

	if a.SessionID == b.SessionID {
		t.Fatal("independent requests must get distinct sessions")
	}

	// Session B is not mid-collection, so a name-like message lands in help.
	out := decodeChat(t, postJSON(t, url, chatRequest{Message: "Alice Johnson", SessionID: b.SessionID}))
	if strings.Contains(out.Response, "Email Address") && strings.Contains(out.Response, "Great!") {
		t.Fatalf("session B leaked session A's collection: %q", out.Response)
	}
}

func TestChatRejectsBadRequests(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	url := srv.URL + "/api/chat"

	resp := postJSON(t, url, chatRequest{Message: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank message: unexpected status %d", resp.StatusCode)
	}

	raw, err := http.Post(url, "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer raw.Body.Close()
	if raw.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: unexpected status %d", raw.StatusCode)
	}
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	srv, _, sessions := newTestServer(t)

	chat := decodeChat(t, postJSON(t, srv.URL+"/api/chat", chatRequest{Message: "register"}))

	resp := postJSON(t, srv.URL+"/api/clear", clearRequest{SessionID: chat.SessionID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var out clearResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode clear response: %v", err)
	}
	if !out.Cleared || out.SessionID != chat.SessionID {
		t.Fatalf("unexpected clear response %+v", out)
	}

	if _, err := sessions.Load(context.Background(), chat.SessionID); err == nil {
		t.Fatal("session should be gone after clear")
	}

	// A fresh message on the same id starts over rather than resuming.
	again := decodeChat(t, postJSON(t, srv.URL+"/api/chat", chatRequest{Message: "help", SessionID: chat.SessionID}))
	if !strings.Contains(again.Response, "What would you like to do?") {
		t.Fatalf("expected a fresh session, got %q", again.Response)
	}
}

func TestClearEvictsSessionLock(t *testing.T) {
	t.Parallel()

	eng, err := engine.New(record.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	s := New(eng, statex.NewMemoryStore())

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	chat := decodeChat(t, postJSON(t, srv.URL+"/api/chat", chatRequest{Message: "help"}))

	s.mu.Lock()
	_, held := s.locks[chat.SessionID]
	s.mu.Unlock()
	if !held {
		t.Fatal("expected a lock entry for the active session")
	}

	resp := postJSON(t, srv.URL+"/api/clear", clearRequest{SessionID: chat.SessionID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	s.mu.Lock()
	_, held = s.locks[chat.SessionID]
	s.mu.Unlock()
	if held {
		t.Fatal("lock entry should be evicted with the session")
	}
}

func TestClearRequiresSessionID(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t)
	resp := postJSON(t, srv.URL+"/api/clear", clearRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestSessionStoreFailureIsReported(t *testing.T) {
	t.Parallel()

	records := record.NewMemoryStore()
	eng, err := engine.New(records, nil)
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}

	// An Upstash store pointed at a dead endpoint: loads fail hard.
	dead, err := statex.NewUpstashRedisStore(statex.UpstashRedisConfig{
		URL:     "http://127.0.0.1:1",
		Token:   "x",
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}

	srv := httptest.NewServer(New(eng, dead).Handler())
	t.Cleanup(srv.Close)

	resp := postJSON(t, srv.URL+"/api/chat", chatRequest{Message: "help", SessionID: "s1"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}
