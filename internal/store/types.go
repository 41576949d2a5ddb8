package store

import (
	"encoding/json"
	"time"
)

// User is a learner account
type User struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ChatSession groups the turns of one conversation thread
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Turn message types
const (
	TurnTypeChat      = "chat"
	TurnTypePlan      = "plan"
	TurnTypeResources = "resources"
	TurnTypeError     = "error"
)

// Turn roles
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Turn is one persisted message in a chat session. Content carries the
// structured payload for plan/resources turns.
type Turn struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Role      string          `json:"role"`
	MsgType   string          `json:"msg_type"`
	Text      string          `json:"text"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Goal statuses
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalPaused    = "paused"
)

// Goal is a learning objective tracked per session
type Goal struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SessionID      string     `json:"session_id,omitempty"`
	Text           string     `json:"text"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"`
	CompletedTasks int        `json:"completed_tasks"`
	TotalTasks     int        `json:"total_tasks"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// GoalStats summarizes a user's goals
type GoalStats struct {
	Total           int `json:"total"`
	Active          int `json:"active"`
	Completed       int `json:"completed"`
	Paused          int `json:"paused"`
	AverageProgress int `json:"average_progress"`
}

// CalendarEvent is a scheduled learning session
type CalendarEvent struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Completed   bool       `json:"completed"`
	GoalID      string     `json:"goal_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Notification types
const (
	NotifyDailyTask = "daily_task"
	NotifyReminder  = "reminder"
	NotifySystem    = "system"
)

// Notification is a message surfaced to the learner outside the chat stream
type Notification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	Read         bool       `json:"read"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
