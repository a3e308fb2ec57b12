// Package api provides HTTP handlers for the interview coach API.
package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/avereev/interview-coach/internal/chatlog"
	"github.com/avereev/interview-coach/internal/coach"
	"github.com/avereev/interview-coach/internal/domain"
	"github.com/avereev/interview-coach/internal/scoring"
	"github.com/avereev/interview-coach/internal/session"
)

const (
	maxRequestBodySize = 64 << 10

	rateLimitRequests = 30
	rateLimitWindow   = time.Minute

	defaultRole = "Software Engineer"
)

// messageRequest is the body of POST /api/message.
type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Role      string `json:"role"`
	Mode      string `json:"mode"`
}

// messageResponse is the normal reply; Evaluation rides along only on
// evaluation-bearing turns.
type messageResponse struct {
	SessionID   string              `json:"sessionId"`
	Reply       string              `json:"reply"`
	Suggestions []string            `json:"suggestions"`
	Evaluation  *scoring.Evaluation `json:"evaluation,omitempty"`
}

// Handler serves the message endpoint and the service status page.
type Handler struct {
	engine  *coach.Engine
	log     chatlog.Logger
	limiter *RateLimiter
}

// NewHandler creates a Handler. A nil chat logger disables transcript
// logging.
func NewHandler(engine *coach.Engine, chatLog chatlog.Logger) *Handler {
	if chatLog == nil {
		chatLog = chatlog.Noop{}
	}
	return &Handler{
		engine:  engine,
		log:     chatLog,
		limiter: NewRateLimiter(rateLimitRequests, rateLimitWindow),
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleStatus)
	r.Post("/api/message", h.HandleMessage)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"reply": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// ErrorReply writes a non-success response in the protocol's error shape.
// The UI renders the reply text as a chat bubble, so it carries the warning
// marker instead of a bare error string.
func ErrorReply(w http.ResponseWriter, status int, reply string) {
	JSON(w, status, map[string]string{"reply": reply})
}

// HandleStatus reports service liveness.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview-coach-backend",
	})
}

// clientIP strips the port from the request's remote address. Behind the
// RealIP middleware this is the originating client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HandleMessage processes one conversation turn.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorReply(w, http.StatusBadRequest, "⚠️ Invalid request body.")
		return
	}

	if req.Role == "" {
		req.Role = defaultRole
	}
	if req.Mode == "" {
		req.Mode = string(domain.ModeTraining)
	}
	if req.SessionID == "" {
		req.SessionID = session.NewKey()
	}

	// Rate-limit by client address. A session key that is already resident
	// takes over as the limit key so one runaway conversation cannot drain
	// the LLM quota. The key is never taken from the request alone: a client
	// rotating made-up session IDs stays pinned to its address window.
	limitKey := clientIP(r)
	if h.engine.HasSession(req.SessionID) {
		limitKey = req.SessionID
	}
	if !h.limiter.Allow(limitKey) {
		ErrorReply(w, http.StatusTooManyRequests, "⚠️ Too many requests, please slow down.")
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	slog.Info("Message received",
		"session_id", req.SessionID,
		"mode", req.Mode,
		"message_length", len(req.Message),
		"request_id", reqID,
	)

	// The user turn is logged before the engine runs so failed turns still
	// leave a transcript trace.
	h.log.Log(chatlog.Event{
		SessionID: req.SessionID,
		EventType: chatlog.EventUserMessage,
		Role:      domain.RoleUser,
		Content:   req.Message,
		Meta:      map[string]any{"request_id": reqID, "mode": req.Mode},
	})

	reply, err := h.engine.HandleMessage(r.Context(), coach.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
		Role:      req.Role,
		Mode:      domain.Mode(req.Mode),
	})
	if err != nil {
		slog.Error("Message handling failed", "session_id", req.SessionID, "error", err, "request_id", reqID)
		ErrorReply(w, http.StatusInternalServerError, "⚠️ Server error: "+err.Error())
		return
	}

	h.log.Log(chatlog.Event{
		SessionID: reply.SessionID,
		EventType: chatlog.EventAssistantReply,
		Role:      domain.RoleAssistant,
		Content:   reply.Reply,
		Meta:      map[string]any{"request_id": reqID},
	})
	if reply.Evaluation != nil {
		h.log.Log(chatlog.Event{
			SessionID: reply.SessionID,
			EventType: chatlog.EventEvaluation,
			Content:   reply.Evaluation.LLMFeedback,
			Meta: map[string]any{
				"request_id": reqID,
				"overall":    reply.Evaluation.Overall,
				"source":     string(reply.Evaluation.FeedbackSource),
			},
		})
	}

	JSON(w, http.StatusOK, messageResponse{
		SessionID:   reply.SessionID,
		Reply:       reply.Reply,
		Suggestions: reply.Suggestions,
		Evaluation:  reply.Evaluation,
	})
}
