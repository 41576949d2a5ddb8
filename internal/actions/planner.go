package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/model"
)

// Plan is the structured study plan produced for a learning goal
type Plan struct {
	Overview       string     `json:"overview"`
	Duration       string     `json:"duration"`
	WeeklySchedule []PlanWeek `json:"weekly_schedule"`
	Tips           []string   `json:"tips"`
}

// PlanWeek is one week of a study plan
type PlanWeek struct {
	Week       int      `json:"week"`
	Topics     []string `json:"topics"`
	Activities []string `json:"activities"`
}

type planArgs struct {
	Goal          string `json:"goal"`
	DurationWeeks int    `json:"duration_weeks"`
	HoursPerWeek  int    `json:"hours_per_week"`
}

// Planner generates study plans with a JSON-mode model call, falling back
// to a deterministic plan when the model is unavailable.
type Planner struct {
	provider model.Provider
	model    string
}

// NewPlanner creates a planner against the given model
func NewPlanner(provider model.Provider, modelName string) *Planner {
	return &Planner{provider: provider, model: modelName}
}

// Generate builds a plan for the goal
func (p *Planner) Generate(ctx context.Context, args planArgs) *Plan {
	weeks := args.DurationWeeks
	if weeks <= 0 {
		weeks = 4
	}

	prompt := fmt.Sprintf(`Create a study plan for the goal: %q.
Duration: %d weeks. Respond with a JSON object with exactly these keys:
"overview" (string), "duration" (string like "%d weeks"),
"weekly_schedule" (array of {"week": int, "topics": [string], "activities": [string]}),
"tips" (array of strings). Each week needs 2-4 concrete activities.`,
		args.Goal, weeks, weeks)

	raw, err := p.provider.Complete(ctx, model.CompletionRequest{
		Model: p.model,
		Messages: []model.Message{
			{Role: model.RoleSystem, Content: "You design structured study plans. Respond with JSON only."},
			{Role: model.RoleUser, Content: prompt},
		},
		JSONObject:  true,
		Temperature: 0.3,
	})
	if err != nil {
		logger.WarnContext(ctx, "plan generation fell back", "error", err)
		return fallbackPlan(args.Goal, weeks)
	}

	var plan Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil || plan.Overview == "" || len(plan.WeeklySchedule) == 0 {
		logger.WarnContext(ctx, "plan generation returned malformed JSON", "error", err)
		return fallbackPlan(args.Goal, weeks)
	}
	return &plan
}

// fallbackPlan is the deterministic plan used when the model cannot help
func fallbackPlan(goal string, weeks int) *Plan {
	plan := &Plan{
		Overview: fmt.Sprintf("A %d-week structured plan to work toward: %s", weeks, goal),
		Duration: fmt.Sprintf("%d weeks", weeks),
		Tips: []string{
			"Study in short, regular sessions rather than long cramming blocks",
			"Review the previous week's material before starting new topics",
			"Track what you finish so your progress stays visible",
		},
	}
	for week := 1; week <= weeks; week++ {
		plan.WeeklySchedule = append(plan.WeeklySchedule, PlanWeek{
			Week:   week,
			Topics: []string{fmt.Sprintf("%s: stage %d fundamentals", goal, week)},
			Activities: []string{
				fmt.Sprintf("Read or watch introductory material for stage %d", week),
				"Practice with hands-on exercises",
				"Write a short summary of what you learned",
			},
		})
	}
	return plan
}

// DeriveGoal extracts the goal row a plan implies: the goal text from the
// overview (truncated), the task total from the scheduled activities, and
// the deadline from the plan duration.
func DeriveGoal(plan *Plan, now time.Time) (text string, totalTasks int, deadline *time.Time) {
	text = plan.Overview
	if len(text) > 150 {
		text = text[:150]
	}

	for _, week := range plan.WeeklySchedule {
		totalTasks += len(week.Activities)
	}

	if d, ok := parsePlanDuration(plan.Duration); ok {
		deadlineAt := now.Add(d)
		deadline = &deadlineAt
	}
	return text, totalTasks, deadline
}

// parsePlanDuration understands "N weeks" and "N months"
func parsePlanDuration(duration string) (time.Duration, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(duration)))
	if len(fields) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	switch {
	case strings.HasPrefix(fields[1], "week"):
		return time.Duration(n) * 7 * 24 * time.Hour, true
	case strings.HasPrefix(fields[1], "month"):
		return time.Duration(n) * 30 * 24 * time.Hour, true
	case strings.HasPrefix(fields[1], "day"):
		return time.Duration(n) * 24 * time.Hour, true
	}
	return 0, false
}

func (d *Deps) generateStudyPlan(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed planArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Goal) == "" {
		return nil, fmt.Errorf("goal is required")
	}
	return d.Planner.Generate(ctx, parsed), nil
}

func (d *Deps) retrieveCurrentPlan(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	content, err := d.Store.LatestPlanContent(principal.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if content == nil {
		return map[string]any{"plan": nil, "message": "no plan exists for this conversation yet"}, nil
	}
	var plan Plan
	if err := json.Unmarshal(content, &plan); err != nil {
		return nil, fmt.Errorf("stored plan is unreadable: %w", err)
	}
	return &plan, nil
}
