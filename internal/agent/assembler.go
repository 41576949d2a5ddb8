package agent

import (
	"fmt"
	"strings"

	"github.com/mentorlabs/mentor/internal/model"
)

// Assembler reconstructs the text and tool calls of one streamed
// completion from its deltas. Fragments of the same tool call share a
// stream index; the call's ID and name arrive on the first fragment and
// its argument JSON accumulates across the rest. The result is the same
// no matter how the provider slices the stream.
type Assembler struct {
	text  strings.Builder
	calls map[int]*partialCall
	order []int // indices in first-appearance order
}

type partialCall struct {
	id   string
	name string
	args strings.Builder
}

// NewAssembler creates an empty assembler
func NewAssembler() *Assembler {
	return &Assembler{calls: map[int]*partialCall{}}
}

// Feed folds one delta into the assembly. onText is invoked for each
// non-empty text fragment, in arrival order; it may be nil.
func (a *Assembler) Feed(delta model.Delta, onText func(string)) {
	if delta.Text != "" {
		a.text.WriteString(delta.Text)
		if onText != nil {
			onText(delta.Text)
		}
	}

	for _, fragment := range delta.ToolCalls {
		call, ok := a.calls[fragment.Index]
		if !ok {
			call = &partialCall{}
			a.calls[fragment.Index] = call
			a.order = append(a.order, fragment.Index)
		}
		if fragment.ID != "" {
			call.id = fragment.ID
		}
		if fragment.Name != "" {
			call.name = fragment.Name
		}
		call.args.WriteString(fragment.Arguments)
	}
}

// Text returns the concatenated text so far
func (a *Assembler) Text() string {
	return a.text.String()
}

// Calls returns the assembled tool calls in first-appearance order
func (a *Assembler) Calls() []model.ToolCall {
	calls := make([]model.ToolCall, 0, len(a.order))
	for _, index := range a.order {
		partial := a.calls[index]
		calls = append(calls, model.ToolCall{
			ID:        partial.id,
			Name:      partial.name,
			Arguments: partial.args.String(),
		})
	}
	return calls
}

// CollectTurn drains a completion stream into its final text and tool
// calls. A transport failure discards all partial state and returns the
// error alone.
func CollectTurn(stream model.Stream, onText func(string)) (string, []model.ToolCall, error) {
	defer func() { _ = stream.Close() }()

	assembler := NewAssembler()
	for stream.Next() {
		assembler.Feed(stream.Current(), onText)
	}
	if err := stream.Err(); err != nil {
		return "", nil, fmt.Errorf("completion stream failed: %w", err)
	}
	return assembler.Text(), assembler.Calls(), nil
}
