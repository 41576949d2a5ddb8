package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/metrics"
	"github.com/mentorlabs/mentor/internal/model"
)

// ToolResult is the outcome of one dispatched tool call. Err is set when
// the handler failed; the call still produces a result entry so the model
// sees every invocation answered.
type ToolResult struct {
	CallID  string
	Name    string
	Kind    ResultKind
	Payload any
	Err     error
}

// Dispatcher runs resolved tool calls concurrently and joins on all of
// them before returning.
//
//	calls ──▶ resolve ──▶ status event per call
//	                │
//	                ├─▶ goroutine per call (panic-isolated)
//	                │
//	          WaitGroup join ──▶ results in input order
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over the given registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch executes the calls. Unknown names are dropped without a
// result. One failing or panicking handler never affects its siblings,
// and results come back in the same order the calls went in.
func (d *Dispatcher) Dispatch(ctx context.Context, principal Principal, calls []model.ToolCall, emit EmitFunc) []ToolResult {
	type resolved struct {
		call   model.ToolCall
		action *Action
	}

	var work []resolved
	for _, call := range calls {
		action, ok := d.registry.Lookup(call.Name)
		if !ok {
			logger.WarnContext(ctx, "dropping unknown tool call", "tool", call.Name)
			metrics.RecordToolCall(call.Name, "unknown")
			continue
		}
		work = append(work, resolved{call: call, action: action})
	}

	if len(work) == 0 {
		return nil
	}

	for _, item := range work {
		status := item.action.Status
		if status == "" {
			status = fmt.Sprintf("Running %s...", item.action.Name)
		}
		emit(statusEvent(status))
	}

	results := make([]ToolResult, len(work))
	var wg sync.WaitGroup
	for i, item := range work {
		wg.Add(1)
		go func(slot int, call model.ToolCall, action *Action) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "tool handler panicked", "tool", call.Name, "panic", r)
					results[slot] = ToolResult{
						CallID: call.ID,
						Name:   call.Name,
						Kind:   action.Kind,
						Err:    fmt.Errorf("%s failed unexpectedly", call.Name),
					}
				}
			}()

			payload, err := action.Handler(ctx, principal, []byte(call.Arguments))
			results[slot] = ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Kind:    action.Kind,
				Payload: payload,
				Err:     err,
			}
		}(i, item.call, item.action)
	}
	wg.Wait()

	for _, result := range results {
		status := "ok"
		if result.Err != nil {
			status = "error"
		}
		metrics.RecordToolCall(result.Name, status)
	}
	return results
}
