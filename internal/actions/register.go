// Package actions implements the handlers behind the agent's tool
// catalogue: planning, resource search, goal tracking, quizzes,
// scheduling, and notifications.
package actions

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/model"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/store"
)

// Deps carries the shared dependencies action handlers close over
type Deps struct {
	Store    *store.Store
	Schedule *schedule.Store
	Planner  *Planner
}

// NewDeps wires the handler dependencies
func NewDeps(s *store.Store, sched *schedule.Store, provider model.Provider, plannerModel string) *Deps {
	return &Deps{
		Store:    s,
		Schedule: sched,
		Planner:  NewPlanner(provider, plannerModel),
	}
}

// RegisterAll installs every action into the registry. Seven actions are
// advertised to the model; search_web_resources, retrieve_current_plan,
// and set_reminder resolve only when the model names them unprompted.
func (d *Deps) RegisterAll(registry *agent.Registry) error {
	actions := []*agent.Action{
		{
			Name:        "generate_study_plan",
			Description: "Create a structured week-by-week study plan for a learning goal",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"goal":           {Type: "string", Description: "The learning goal to plan for"},
				"duration_weeks": {Type: "integer", Description: "Plan length in weeks (default 4)"},
				"hours_per_week": {Type: "integer", Description: "Hours the learner can commit per week"},
			}, "goal"),
			Advertise: true,
			Status:    "Generating your study plan...",
			Kind:      agent.ResultPlan,
			Handler:   d.generateStudyPlan,
		},
		{
			Name:        "search_youtube_resources",
			Description: "Find video tutorials and courses for a topic",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"query":       {Type: "string", Description: "Topic to search for"},
				"max_results": {Type: "integer", Description: "Maximum number of results"},
			}, "query"),
			Advertise: true,
			Status:    "Finding video resources...",
			Kind:      agent.ResultResources,
			Handler:   d.searchYouTubeResources,
		},
		{
			Name:        "search_web_resources",
			Description: "Find articles, docs, and courses for a topic",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"query":       {Type: "string", Description: "Topic to search for"},
				"max_results": {Type: "integer", Description: "Maximum number of results"},
			}, "query"),
			Advertise: false,
			Status:    "Finding reading material...",
			Kind:      agent.ResultResources,
			Handler:   d.searchWebResources,
		},
		{
			Name:        "update_goal_progress",
			Description: "Record how many tasks of the current goal the learner has completed",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"completed_tasks": {Type: "integer", Description: "Total tasks completed so far"},
			}, "completed_tasks"),
			Advertise: true,
			Status:    "Updating your progress...",
			Handler:   d.updateGoalProgress,
		},
		{
			Name:        "retrieve_current_plan",
			Description: "Fetch the study plan already generated in this conversation",
			Schema:      objectSchema(nil),
			Advertise:   false,
			Status:      "Looking up your plan...",
			Kind:        agent.ResultPlan,
			Handler:     d.retrieveCurrentPlan,
		},
		{
			Name:        "conduct_quiz",
			Description: "Quiz the learner on a topic to check understanding",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"topic":         {Type: "string", Description: "Topic to quiz on"},
				"num_questions": {Type: "integer", Description: "Number of questions (default 3)"},
			}, "topic"),
			Advertise: true,
			Status:    "Preparing a quiz...",
			Handler:   d.conductQuiz,
		},
		{
			Name:        "schedule_learning_session",
			Description: "Put a study session on the learner's calendar",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"title":            {Type: "string", Description: "Session title"},
				"description":      {Type: "string", Description: "What the session covers"},
				"start_time":       {Type: "string", Description: "Start time, RFC 3339"},
				"duration_minutes": {Type: "integer", Description: "Session length in minutes"},
			}, "title", "start_time"),
			Advertise: true,
			Status:    "Scheduling your session...",
			Handler:   d.scheduleLearningSession,
		},
		{
			Name:        "get_user_schedule",
			Description: "Look up the learner's upcoming study sessions",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"days": {Type: "integer", Description: "How many days ahead to look (default 7)"},
			}),
			Advertise: true,
			Status:    "Checking your schedule...",
			Handler:   d.getUserSchedule,
		},
		{
			Name:        "create_notification",
			Description: "Send the learner a notification, now or at a scheduled time",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"title":         {Type: "string", Description: "Notification title"},
				"message":       {Type: "string", Description: "Notification body"},
				"type":          {Type: "string", Enum: []any{"daily_task", "reminder", "system"}},
				"scheduled_for": {Type: "string", Description: "Optional delivery time, RFC 3339"},
			}, "title", "message"),
			Advertise: true,
			Status:    "Creating a notification...",
			Handler:   d.createNotification,
		},
		{
			Name:        "set_reminder",
			Description: "Set a recurring study reminder",
			Schema: objectSchema(map[string]*jsonschema.Schema{
				"title":   {Type: "string", Description: "Reminder title"},
				"message": {Type: "string", Description: "Reminder body"},
				"cron":    {Type: "string", Description: "5-field cron expression (default daily 9am)"},
			}, "title"),
			Advertise: false,
			Status:    "Setting your reminder...",
			Handler:   d.setReminder,
		},
	}

	for _, action := range actions {
		if err := registry.Register(action); err != nil {
			return err
		}
	}
	return nil
}

func objectSchema(properties map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: "object"}
	if properties != nil {
		schema.Properties = properties
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}
