package agent

import (
	"context"
	"sync"

	"github.com/mentorlabs/mentor/internal/model"
)

// fakeStream replays scripted deltas and then reports failErr, if any
type fakeStream struct {
	deltas  []model.Delta
	failErr error
	pos     int
	closed  bool
}

func (s *fakeStream) Next() bool {
	if s.pos >= len(s.deltas) {
		return false
	}
	s.pos++
	return true
}

func (s *fakeStream) Current() model.Delta {
	return s.deltas[s.pos-1]
}

func (s *fakeStream) Err() error {
	if s.pos >= len(s.deltas) {
		return s.failErr
	}
	return nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeProvider replays one scripted stream per StreamCompletion call and
// records the requests it saw.
type fakeProvider struct {
	mu       sync.Mutex
	streams  []*fakeStream
	openErrs []error
	requests []model.CompletionRequest
}

func (p *fakeProvider) StreamCompletion(ctx context.Context, req model.CompletionRequest) (model.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)

	call := len(p.requests) - 1
	if call < len(p.openErrs) && p.openErrs[call] != nil {
		return nil, p.openErrs[call]
	}
	if call >= len(p.streams) {
		return &fakeStream{}, nil
	}
	return p.streams[call], nil
}

func (p *fakeProvider) Complete(ctx context.Context, req model.CompletionRequest) (string, error) {
	return "", nil
}

// textDeltas splits text into one delta per rune group for stream scripts
func textDeltas(fragments ...string) []model.Delta {
	deltas := make([]model.Delta, len(fragments))
	for i, fragment := range fragments {
		deltas[i] = model.Delta{Text: fragment}
	}
	return deltas
}

// collectEvents returns an EmitFunc that appends into the given slice
func collectEvents(events *[]Event) EmitFunc {
	return func(event Event) {
		*events = append(*events, event)
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, event := range events {
		types[i] = event.Type
	}
	return types
}
