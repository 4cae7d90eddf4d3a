package sitekit

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/xpertai/sitekit/backend"
	"github.com/xpertai/sitekit/chatflow"
)

const visitorSessionName = "visitor_session"

// chatEntry pairs a visitor's conversation state machine with a backend
// chat session holding its own cookie jar, so the backend's cookie-based
// conversation affinity is isolated per visitor.
type chatEntry struct {
	conv *chatflow.Conversation
	api  *backend.ChatSession
	seen time.Time
}

// chatRegistry keeps per-visitor conversations in memory, evicting idle
// ones after the TTL.
type chatRegistry struct {
	mu      sync.Mutex
	entries map[string]*chatEntry
	ttl     time.Duration
}

func newChatRegistry(ttl time.Duration) *chatRegistry {
	r := &chatRegistry{
		entries: make(map[string]*chatEntry),
		ttl:     ttl,
	}
	go r.cleanup()
	return r
}

func (r *chatRegistry) cleanup() {
	ticker := time.NewTicker(r.ttl)
	for range ticker.C {
		cutoff := time.Now().Add(-r.ttl)
		r.mu.Lock()
		for id, e := range r.entries {
			if e.seen.Before(cutoff) {
				delete(r.entries, id)
			}
		}
		r.mu.Unlock()
	}
}

func (r *chatRegistry) get(id string, newAPI func() *backend.ChatSession) *chatEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		e = &chatEntry{conv: chatflow.New(), api: newAPI()}
		r.entries[id] = e
	}
	e.seen = time.Now()
	return e
}

func (r *chatRegistry) reset(id string, newAPI func() *backend.ChatSession) *chatEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &chatEntry{conv: chatflow.New(), api: newAPI(), seen: time.Now()}
	r.entries[id] = e
	return e
}

// visitorID returns a stable random id for this browser, minting one into
// the visitor session on first use.
func visitorID(c echo.Context) (string, error) {
	sess, err := session.Get(visitorSessionName, c)
	if err != nil {
		return "", err
	}
	if id, ok := sess.Values["chat_id"].(string); ok && id != "" {
		return id, nil
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	id := hex.EncodeToString(b)
	sess.Values["chat_id"] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}
	return id, nil
}

// chatState is the widget-facing view of a conversation.
type chatState struct {
	Messages      []chatflow.Message `json:"messages"`
	CurrentField  string             `json:"current_field,omitempty"`
	InputDisabled bool               `json:"input_disabled"`
	Complete      bool               `json:"complete"`
}

func stateOf(conv *chatflow.Conversation) chatState {
	return chatState{
		Messages:      conv.Transcript(),
		CurrentField:  conv.CurrentField(),
		InputDisabled: conv.InputDisabled(),
		Complete:      conv.Complete(),
	}
}

func (a *App) handleChatStart(c echo.Context) error {
	if !a.chatLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests."})
	}
	var req struct {
		Restart bool `json:"restart"`
	}
	_ = c.Bind(&req)

	id, err := visitorID(c)
	if err != nil {
		return err
	}
	newAPI := func() *backend.ChatSession { return a.Backend.NewChatSession() }
	var entry *chatEntry
	if req.Restart {
		entry = a.chats.reset(id, newAPI)
	} else {
		entry = a.chats.get(id, newAPI)
		// Reopening the widget resumes a live or finished conversation.
		// One that never got its first question falls through and
		// retries the begin signal.
		if entry.conv.CurrentField() != "" || entry.conv.Complete() {
			return c.JSON(http.StatusOK, stateOf(entry.conv))
		}
	}

	// Errors are already folded into the transcript; the widget renders
	// them like any other message.
	_ = entry.conv.Start(c.Request().Context(), entry.api, req.Restart)
	return c.JSON(http.StatusOK, stateOf(entry.conv))
}

func (a *App) handleChatMessage(c echo.Context) error {
	if !a.chatLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests."})
	}
	var req struct {
		Answer string `json:"answer"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request."})
	}

	id, err := visitorID(c)
	if err != nil {
		return err
	}
	entry := a.chats.get(id, func() *backend.ChatSession { return a.Backend.NewChatSession() })
	if err := entry.conv.Send(c.Request().Context(), entry.api, req.Answer); err == chatflow.ErrInputDisabled {
		return c.JSON(http.StatusConflict, stateOf(entry.conv))
	}
	metricChatMessages.Inc()
	return c.JSON(http.StatusOK, stateOf(entry.conv))
}
