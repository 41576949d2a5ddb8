package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mentorlabs/mentor/internal/model"
)

// Principal identifies whose conversation an action runs inside
type Principal struct {
	UserID    string
	SessionID string
}

// ResultKind routes an action's result to a client event. Empty means the
// result feeds back to the model only.
type ResultKind string

const (
	ResultPlan      ResultKind = ResultKind(EventPlan)
	ResultResources ResultKind = ResultKind(EventResources)
)

// HandlerFunc executes one action. args is the raw argument JSON from the
// model; handlers do their own unmarshalling and validation.
type HandlerFunc func(ctx context.Context, principal Principal, args json.RawMessage) (any, error)

// Action is one named capability the agent can invoke
type Action struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	// Advertise controls whether the action appears in the tool
	// catalogue offered to the model. Unadvertised actions remain
	// dispatchable if the model names them anyway.
	Advertise bool
	// Status is the progress line shown while the action runs
	Status  string
	Kind    ResultKind
	Handler HandlerFunc
}

// Registry is the static action table. Registration happens once at
// startup; lookups afterwards are read-only.
type Registry struct {
	actions map[string]*Action
	order   []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{actions: map[string]*Action{}}
}

// Register adds an action. Duplicate names are a programming error.
func (r *Registry) Register(action *Action) error {
	if action.Name == "" {
		return fmt.Errorf("action name cannot be empty")
	}
	if action.Handler == nil {
		return fmt.Errorf("action %s has no handler", action.Name)
	}
	if _, exists := r.actions[action.Name]; exists {
		return fmt.Errorf("action %s already registered", action.Name)
	}
	r.actions[action.Name] = action
	r.order = append(r.order, action.Name)
	return nil
}

// Lookup resolves an action by name
func (r *Registry) Lookup(name string) (*Action, bool) {
	action, ok := r.actions[name]
	return action, ok
}

// Names returns registered action names in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Catalogue returns the tool definitions advertised to the model, in
// registration order.
func (r *Registry) Catalogue() []model.ToolDef {
	var defs []model.ToolDef
	for _, name := range r.order {
		action := r.actions[name]
		if !action.Advertise {
			continue
		}
		defs = append(defs, model.ToolDef{
			Name:        action.Name,
			Description: action.Description,
			Parameters:  schemaToMap(action.Schema),
		})
	}
	return defs
}

func schemaToMap(schema *jsonschema.Schema) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	return out
}
