// Package chatlog writes conversation transcripts as NDJSON, one file per
// session, through an asynchronous queue so request handling never blocks on
// disk I/O. These files are observability output only; the server never
// reads them back.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one NDJSON line of a session transcript.
type Event struct {
	Timestamp string         `json:"ts"`
	SessionID string         `json:"session_id"`
	EventType string         `json:"event_type"`
	Role      string         `json:"role,omitempty"`
	Content   string         `json:"content"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Event types written by the API layer.
const (
	EventUserMessage    = "user_message"
	EventAssistantReply = "assistant_reply"
	EventEvaluation     = "evaluation"
)

// Logger accepts transcript events. Implementations must be safe for
// concurrent use and must never block the caller.
type Logger interface {
	Log(Event)
	Close() error
}

// Noop discards all events.
type Noop struct{}

func (Noop) Log(Event)    {}
func (Noop) Close() error { return nil }

// Config mirrors the chat-log section of the application configuration.
type Config struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// FileLogger appends events to <dir>/<session_id>.ndjson and, optionally, to
// a single global stream. Events are dropped (with a warning) when the queue
// is full rather than stalling a request.
type FileLogger struct {
	cfg   Config
	log   *slog.Logger
	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool

	files  map[string]*os.File
	global *os.File
}

// New creates the log directory and starts the writer goroutine.
func New(cfg Config, log *slog.Logger) (*FileLogger, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create chat log dir: %w", err)
		}
	}

	l := &FileLogger{
		cfg:   cfg,
		log:   log,
		queue: make(chan Event, cfg.QueueSize),
		done:  make(chan struct{}),
		files: make(map[string]*os.File),
	}

	if cfg.GlobalEnabled {
		if err := os.MkdirAll(filepath.Dir(cfg.GlobalPath), 0o755); err != nil {
			return nil, fmt.Errorf("create global chat log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.GlobalPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open global chat log: %w", err)
		}
		l.global = f
	}

	go l.drain()
	return l, nil
}

// Log enqueues an event, stamping the timestamp when absent.
func (l *FileLogger) Log(ev Event) {
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- ev:
	default:
		l.log.Warn("chat log queue full, dropping event",
			"session_id", ev.SessionID, "event_type", ev.EventType)
	}
}

// Close stops the writer, flushes queued events, and closes all files.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.queue)
	<-l.done

	for _, f := range l.files {
		_ = f.Close()
	}
	if l.global != nil {
		_ = l.global.Close()
	}
	return nil
}

func (l *FileLogger) drain() {
	defer close(l.done)
	for ev := range l.queue {
		line, err := json.Marshal(ev)
		if err != nil {
			l.log.Warn("failed to marshal chat log event", "error", err)
			continue
		}
		line = append(line, '\n')

		if l.cfg.Enabled {
			if f := l.sessionFile(ev.SessionID); f != nil {
				if _, err := f.Write(line); err != nil {
					l.log.Warn("failed to write session chat log", "session_id", ev.SessionID, "error", err)
				}
			}
		}
		if l.global != nil {
			if _, err := l.global.Write(line); err != nil {
				l.log.Warn("failed to write global chat log", "error", err)
			}
		}
	}
}

// sessionFile lazily opens the per-session NDJSON file. Only called from the
// writer goroutine, so no locking is needed around the cache.
func (l *FileLogger) sessionFile(sessionID string) *os.File {
	if sessionID == "" {
		sessionID = "unknown"
	}
	if f, ok := l.files[sessionID]; ok {
		return f
	}
	path := filepath.Join(l.cfg.Dir, sessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l.log.Warn("failed to open session chat log", "path", path, "error", err)
		return nil
	}
	l.files[sessionID] = f
	return f
}
