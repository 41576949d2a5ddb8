// Package memory defines the long-term memory interface. The default
// implementation is a no-op; a vector store can slot in behind the same
// interface later.
package memory

import "context"

// Entry is one retrieved memory
type Entry struct {
	Text  string
	Tags  []string
	Score float64
}

// LongTerm stores and retrieves durable facts about a learner
type LongTerm interface {
	Store(ctx context.Context, userID, text string, tags []string) error
	Retrieve(ctx context.Context, userID, query string, limit int) ([]Entry, error)
}

// Noop discards writes and retrieves nothing
type Noop struct{}

// NewNoop creates a no-op memory
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Store(ctx context.Context, userID, text string, tags []string) error {
	return nil
}

func (n *Noop) Retrieve(ctx context.Context, userID, query string, limit int) ([]Entry, error) {
	return nil, nil
}
