package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/memory"
	"github.com/mentorlabs/mentor/internal/metrics"
	"github.com/mentorlabs/mentor/internal/model"
)

// Outcome is what one conversation turn produced, for persistence after
// the stream closes.
type Outcome struct {
	Narrative string       // concatenated agent text across both phases
	Results   []ToolResult // dispatched tool results, input order
}

// Orchestrator drives one conversation turn end to end.
//
//	user message
//	     │
//	first completion (tool catalogue offered) ──▶ chat_start + chat_chunks
//	     │
//	  tool calls? ──no──▶ chat_end
//	     │yes
//	dispatch (status per call, concurrent, joined)
//	     │
//	plan/resources events, input order
//	     │
//	second completion (no catalogue) ──▶ chat_chunks ──▶ chat_end
//
// Transport failures and a missing credential abort the flow with a
// single error event. Everything that goes wrong inside one tool call
// stays inside that tool call.
type Orchestrator struct {
	provider   model.Provider
	registry   *Registry
	dispatcher *Dispatcher
	memory     memory.LongTerm
	chatModel  string
}

// NewOrchestrator wires the conversation engine
func NewOrchestrator(provider model.Provider, registry *Registry, mem memory.LongTerm, chatModel string) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		registry:   registry,
		dispatcher: NewDispatcher(registry),
		memory:     mem,
		chatModel:  chatModel,
	}
}

// Run executes one conversation turn, forwarding events to emit as they
// are produced. The returned error reflects flow-fatal conditions only;
// in that case exactly one error event has already been emitted and no
// chat_end follows.
func (o *Orchestrator) Run(ctx context.Context, principal Principal, bundle *ContextBundle, userMessage string, emit EmitFunc) (*Outcome, error) {
	emit = countingEmit(emit)

	messages := []model.Message{
		{Role: model.RoleSystem, Content: bundle.SystemPrompt()},
		{Role: model.RoleUser, Content: userMessage},
	}

	emit(statusEvent("Thinking..."))

	stream, err := o.provider.StreamCompletion(ctx, model.CompletionRequest{
		Model:    o.chatModel,
		Messages: messages,
		Tools:    o.registry.Catalogue(),
	})
	if err != nil {
		return nil, o.fatal(ctx, emit, err)
	}

	emit(chatStart())

	text, calls, err := CollectTurn(stream, func(fragment string) {
		emit(chatChunk(fragment))
	})
	if err != nil {
		return nil, o.fatal(ctx, emit, err)
	}

	narrative := text

	if len(calls) == 0 {
		emit(chatEnd(narrative))
		return &Outcome{Narrative: narrative}, nil
	}

	results := o.dispatcher.Dispatch(ctx, principal, calls, emit)

	for _, result := range results {
		if result.Kind == "" || result.Err != nil {
			continue
		}
		emit(structuredEvent(EventType(result.Kind), result.Payload))
	}

	o.remember(ctx, principal, results)

	messages = append(messages, model.Message{
		Role:      model.RoleAssistant,
		Content:   text,
		ToolCalls: calls,
	})
	for _, call := range calls {
		messages = append(messages, model.Message{
			Role:       model.RoleTool,
			ToolCallID: call.ID,
			Content:    toolResultContent(findResult(results, call.ID)),
		})
	}

	emit(statusEvent("Wrapping up..."))

	stream, err = o.provider.StreamCompletion(ctx, model.CompletionRequest{
		Model:    o.chatModel,
		Messages: messages,
	})
	if err != nil {
		return nil, o.fatal(ctx, emit, err)
	}

	followUp, _, err := CollectTurn(stream, func(fragment string) {
		emit(chatChunk(fragment))
	})
	if err != nil {
		return nil, o.fatal(ctx, emit, err)
	}

	narrative += followUp
	emit(chatEnd(narrative))

	return &Outcome{Narrative: narrative, Results: results}, nil
}

// fatal emits the single error event for a flow-fatal condition
func (o *Orchestrator) fatal(ctx context.Context, emit EmitFunc, err error) error {
	logger.ErrorContext(ctx, "conversation turn failed", "error", err)
	if errors.Is(err, model.ErrNoCredential) {
		emit(errorEvent("The model API key is not configured. Set MENTOR_API_KEY and restart."))
	} else {
		emit(errorEvent("Something went wrong while talking to the model. Please try again."))
	}
	return err
}

// remember records generated plans in long-term memory
func (o *Orchestrator) remember(ctx context.Context, principal Principal, results []ToolResult) {
	for _, result := range results {
		if result.Kind != ResultPlan || result.Err != nil {
			continue
		}
		data, err := json.Marshal(result.Payload)
		if err != nil {
			continue
		}
		if err := o.memory.Store(ctx, principal.UserID, string(data), []string{"plan"}); err != nil {
			logger.WarnContext(ctx, "failed to store plan memory", "error", err)
		}
	}
}

func findResult(results []ToolResult, callID string) *ToolResult {
	for i := range results {
		if results[i].CallID == callID {
			return &results[i]
		}
	}
	return nil
}

// toolResultContent renders a result as the tool message fed back to the
// model. Failed and dropped calls still get an answer so the transcript
// stays well-formed.
func toolResultContent(result *ToolResult) string {
	if result == nil {
		return `{"error": "tool not available"}`
	}
	if result.Err != nil {
		return fmt.Sprintf(`{"error": %q}`, result.Err.Error())
	}
	data, err := json.Marshal(result.Payload)
	if err != nil {
		return `{"error": "unencodable result"}`
	}
	return string(data)
}

func countingEmit(emit EmitFunc) EmitFunc {
	return func(event Event) {
		metrics.RecordEvent(string(event.Type))
		emit(event)
	}
}
