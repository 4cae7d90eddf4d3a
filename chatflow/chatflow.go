// Package chatflow is the client side of the scripted lead-capture chat.
// The conversation script lives entirely on the server: the client never
// decides what comes next, it only echoes back the field name the server
// last asked for, together with the visitor's answer.
package chatflow

import (
	"context"
	"errors"
	"sync"

	"github.com/xpertai/sitekit/backend"
)

// Sender identifies who produced a transcript line.
type Sender string

const (
	Bot  Sender = "bot"
	User Sender = "user"
)

// Message is one transcript line. Error marks a bot message that should be
// rendered in the error style (a rejected answer, or a transport failure).
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Error  bool   `json:"error,omitempty"`
}

// API is the one backend operation the chat needs. *backend.ChatSession
// satisfies it.
type API interface {
	Message(ctx context.Context, currentField, answer *string) (backend.ChatReply, error)
}

// ErrInputDisabled is returned by Send while a request is in flight or after
// the flow has completed.
var ErrInputDisabled = errors.New("chatflow: input is disabled")

const (
	welcomeText   = "Hi! I'm the XpertAI assistant. Tell me a little about your project and I'll get you to the right people."
	restartText   = "No problem, let's start over."
	transportText = "Something went wrong. Please try again."
)

// Conversation holds the only state the client keeps: the transcript and the
// name of the field the server is waiting on.
type Conversation struct {
	mu           sync.Mutex
	transcript   []Message
	currentField *string
	started      bool
	busy         bool
}

// New returns an empty, unstarted conversation.
func New() *Conversation {
	return &Conversation{}
}

// Start sends the opening "begin" signal (both fields null) and appends the
// welcome line, an optional restart line, and the server's first question.
// A transport failure appends a generic error line and leaves the
// conversation restartable; calling Start again retries the begin signal
// without repeating the welcome.
func (c *Conversation) Start(ctx context.Context, api API, restart bool) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrInputDisabled
	}
	c.busy = true
	if restart {
		c.transcript = nil
		c.currentField = nil
		c.started = false
	}
	if len(c.transcript) == 0 {
		c.transcript = append(c.transcript, Message{Sender: Bot, Text: welcomeText})
	}
	if restart {
		c.transcript = append(c.transcript, Message{Sender: Bot, Text: restartText})
	}
	c.mu.Unlock()

	reply, err := api.Message(ctx, nil, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.transcript = append(c.transcript, Message{Sender: Bot, Text: transportText, Error: true})
		return err
	}
	c.started = true
	c.apply(reply)
	return nil
}

// Send posts the visitor's answer for the field the server last asked for.
// The answer is appended to the transcript before the network call so the
// visitor's own message never appears to stall on latency. An error payload
// from the server does not advance the field; the visitor retries the same
// question. A transport failure likewise leaves the field unchanged.
func (c *Conversation) Send(ctx context.Context, api API, answer string) error {
	c.mu.Lock()
	if c.busy || c.currentField == nil {
		c.mu.Unlock()
		return ErrInputDisabled
	}
	field := *c.currentField
	c.busy = true
	c.transcript = append(c.transcript, Message{Sender: User, Text: answer})
	c.mu.Unlock()

	reply, err := api.Message(ctx, &field, &answer)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.transcript = append(c.transcript, Message{Sender: Bot, Text: transportText, Error: true})
		return err
	}
	c.apply(reply)
	return nil
}

// apply folds a server reply into the transcript. Caller holds the lock.
func (c *Conversation) apply(reply backend.ChatReply) {
	if reply.Error != "" {
		c.transcript = append(c.transcript, Message{Sender: Bot, Text: reply.Error, Error: true})
		return
	}
	if reply.NextQuestion != "" {
		c.transcript = append(c.transcript, Message{Sender: Bot, Text: reply.NextQuestion})
	}
	c.currentField = reply.NextField
}

// Transcript returns a copy of the transcript so far.
func (c *Conversation) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// CurrentField returns the field the server is waiting on, or "" when the
// flow is complete or not yet started.
func (c *Conversation) CurrentField() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentField == nil {
		return ""
	}
	return *c.currentField
}

// Complete reports whether the flow has finished: the conversation started
// and the server stopped asking for fields.
func (c *Conversation) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && c.currentField == nil
}

// InputDisabled reports whether the input box should be disabled: a request
// is in flight, the flow has not produced a field yet, or it has completed.
func (c *Conversation) InputDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy || c.currentField == nil
}
