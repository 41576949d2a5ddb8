package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/audit"
	"github.com/mentorlabs/mentor/internal/store"
)

type progressArgs struct {
	CompletedTasks int `json:"completed_tasks"`
}

func (d *Deps) updateGoalProgress(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed progressArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.CompletedTasks < 0 {
		return nil, fmt.Errorf("completed_tasks cannot be negative")
	}

	goal, err := d.Store.SessionGoal(principal.SessionID)
	if err == store.ErrGoalNotFound {
		return nil, fmt.Errorf("no goal is tracked for this conversation yet")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}

	updated, err := d.Store.UpdateGoalProgress(goal.ID, parsed.CompletedTasks)
	if err != nil {
		audit.LogFailure(audit.OpGoalProgress, principal.UserID, principal.SessionID, goal.ID, err)
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	audit.LogSuccess(audit.OpGoalProgress, principal.UserID, principal.SessionID, goal.ID)

	return map[string]any{
		"goal":            updated.Text,
		"progress":        updated.Progress,
		"completed_tasks": updated.CompletedTasks,
		"total_tasks":     updated.TotalTasks,
		"status":          updated.Status,
	}, nil
}
