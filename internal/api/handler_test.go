package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avereev/interview-coach/internal/chatlog"
	"github.com/avereev/interview-coach/internal/coach"
	"github.com/avereev/interview-coach/internal/llm"
	"github.com/avereev/interview-coach/internal/scoring"
	"github.com/avereev/interview-coach/internal/session"
)

func newTestRouter(t *testing.T) (chi.Router, *session.Store) {
	t.Helper()
	store := session.NewStore()
	client := llm.NewMock()
	engine := coach.NewEngine(store, client, scoring.NewEvaluator(client))
	h := NewHandler(engine, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, store
}

func postMessage(t *testing.T, r chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestHandleMessageFirstContact(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	rec := postMessage(t, r, `{"message": "next", "mode": "training"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasPrefix(resp.SessionID, "s_") {
		t.Errorf("sessionId = %q, want generated key", resp.SessionID)
	}
	if !strings.Contains(resp.Reply, "Lesson 1:") {
		t.Errorf("reply = %q, want first lesson", resp.Reply)
	}
	if len(resp.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
	if resp.Evaluation != nil {
		t.Error("unexpected evaluation on a lesson turn")
	}
}

func TestHandleMessageKeepsSession(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	rec := postMessage(t, r, `{"message": "next"}`)
	var first messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec = postMessage(t, r, `{"sessionId": "`+first.SessionID+`", "message": "next"}`)
	var second messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("sessionId changed across turns: %q -> %q", first.SessionID, second.SessionID)
	}
	if !strings.Contains(second.Reply, "Lesson 2:") {
		t.Errorf("reply = %q, want second lesson", second.Reply)
	}
}

func TestHandleMessageEvaluation(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	rec := postMessage(t, r, `{"message": "evaluate"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Evaluation == nil {
		t.Fatal("expected evaluation payload")
	}
	if resp.Evaluation.Overall < 0 || resp.Evaluation.Overall > 100 {
		t.Errorf("overall = %d, out of range", resp.Evaluation.Overall)
	}
}

func TestHandleMessageInvalidBody(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	rec := postMessage(t, r, `{"message": `)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["reply"] == "" {
		t.Error("error response missing reply field")
	}
}

func TestHandleMessageBodyTooLarge(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	huge := `{"message": "` + strings.Repeat("a", maxRequestBodySize+1) + `"}`
	rec := postMessage(t, r, huge)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMessageRateLimit(t *testing.T) {
	t.Parallel()

	r, _ := newTestRouter(t)
	body := `{"sessionId": "s_limited", "message": "hello"}`

	limited := false
	for i := 0; i < rateLimitRequests*2; i++ {
		rec := postMessage(t, r, body)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !strings.Contains(resp["reply"], "Too many requests") {
				t.Errorf("reply = %q", resp["reply"])
			}
			break
		}
	}
	if !limited {
		t.Error("rate limiter never triggered")
	}
}

func TestRateLimitSurvivesSessionIDRotation(t *testing.T) {
	t.Parallel()

	r, store := newTestRouter(t)

	// A client minting a fresh session ID per request must stay pinned to
	// its address window, and refused requests must not leave sessions
	// behind in the store.
	limited := false
	for i := 0; i < rateLimitRequests*3; i++ {
		body := fmt.Sprintf(`{"sessionId": "s_rotated%04d", "message": "hello"}`, i)
		rec := postMessage(t, r, body)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("rotating session IDs bypassed the rate limit")
	}
	if store.Len() > rateLimitRequests {
		t.Errorf("store holds %d sessions, want at most %d", store.Len(), rateLimitRequests)
	}
}

func TestFailedTurnStillReachesTranscript(t *testing.T) {
	t.Parallel()

	store := session.NewStore()
	client := &llm.MockClient{Err: llm.ErrCompletion}
	engine := coach.NewEngine(store, client, scoring.NewEvaluator(client))

	dir := t.TempDir()
	chatLog, err := chatlog.New(chatlog.Config{Enabled: true, Dir: dir}, nil)
	if err != nil {
		t.Fatalf("chatlog.New: %v", err)
	}
	h := NewHandler(engine, chatLog)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := postMessage(t, r, `{"sessionId": "s_failing", "message": "how should I prepare?"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if err := chatLog.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "s_failing.ndjson"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	var ev chatlog.Event
	if err := json.Unmarshal([]byte(strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)[0]), &ev); err != nil {
		t.Fatalf("unmarshal transcript line: %v", err)
	}
	if ev.EventType != chatlog.EventUserMessage {
		t.Errorf("event type = %q, want %q", ev.EventType, chatlog.EventUserMessage)
	}
	if ev.Content != "how should I prepare?" {
		t.Errorf("content = %q", ev.Content)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("k") || !rl.Allow("k") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("k") {
		t.Error("third request within window should be rejected")
	}
	if !rl.Allow("other") {
		t.Error("separate keys must not share a window")
	}
}
