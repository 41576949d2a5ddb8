// Package model abstracts the chat-completion provider behind a small
// streaming interface so the conversation engine can be tested without
// network access.
package model

import (
	"context"
	"errors"
)

var (
	// ErrNoCredential is returned when no API key is configured
	ErrNoCredential = errors.New("model API key not configured")
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a conversation transcript
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // assistant messages that requested tools
	ToolCallID string     // tool messages answering a specific call
}

// ToolCall is a fully assembled tool invocation request
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON
}

// ToolDef describes one tool offered to the model
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

// ToolCallDelta is one streamed fragment of a tool call. Index groups
// fragments of the same call; ID and Name arrive on the first fragment,
// Arguments accumulate across fragments.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Delta is one streamed chunk of a completion
type Delta struct {
	Text      string
	ToolCalls []ToolCallDelta
}

// Stream yields completion deltas. Next reports whether a delta is
// available; after it returns false, Err distinguishes clean end of
// stream from transport failure.
type Stream interface {
	Next() bool
	Current() Delta
	Err() error
	Close() error
}

// CompletionRequest carries everything one model call needs
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolDef
	JSONObject  bool // request a JSON object response
	Temperature float64
	MaxTokens   int64
}

// Provider is a chat-completion backend
type Provider interface {
	// StreamCompletion starts a streamed completion
	StreamCompletion(ctx context.Context, req CompletionRequest) (Stream, error)
	// Complete runs a non-streamed completion and returns the full text
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
