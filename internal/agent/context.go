package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/mentorlabs/mentor/internal/store"
)

// GoalInfo is the slice of a goal the prompt needs
type GoalInfo struct {
	Text     string
	Status   string
	Progress int
}

// Exchange is one prior message included as context
type Exchange struct {
	Role string
	Text string
}

// ContextBundle is everything the system prompt is built from
type ContextBundle struct {
	Goal         *GoalInfo // nil when the session has no goal yet
	OtherGoals   []GoalInfo
	SessionTurns []Exchange // chronological
	CrossTurns   []Exchange // chronological, other sessions
	Now          time.Time
}

// ContextBuilder assembles a ContextBundle from the store
type ContextBuilder struct {
	store         *store.Store
	sessionWindow int
	crossWindow   int
}

// NewContextBuilder creates a builder with the given history windows
func NewContextBuilder(s *store.Store, sessionWindow, crossWindow int) *ContextBuilder {
	return &ContextBuilder{store: s, sessionWindow: sessionWindow, crossWindow: crossWindow}
}

// Build gathers the conversation context for one principal
func (b *ContextBuilder) Build(principal Principal) (*ContextBundle, error) {
	bundle := &ContextBundle{Now: time.Now()}

	goal, err := b.store.SessionGoal(principal.SessionID)
	if err != nil && err != store.ErrGoalNotFound {
		return nil, err
	}
	if goal != nil {
		bundle.Goal = &GoalInfo{Text: goal.Text, Status: goal.Status, Progress: goal.Progress}
	}

	goals, err := b.store.ListGoals(principal.UserID)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		if g.SessionID == principal.SessionID {
			continue
		}
		bundle.OtherGoals = append(bundle.OtherGoals, GoalInfo{
			Text: g.Text, Status: g.Status, Progress: g.Progress,
		})
	}

	sessionTurns, err := b.store.RecentSessionTurns(principal.SessionID, b.sessionWindow)
	if err != nil {
		return nil, err
	}
	for _, turn := range sessionTurns {
		if turn.MsgType != store.TurnTypeChat {
			continue
		}
		bundle.SessionTurns = append(bundle.SessionTurns, Exchange{Role: turn.Role, Text: turn.Text})
	}

	crossTurns, err := b.store.RecentUserTurns(principal.UserID, principal.SessionID, b.crossWindow)
	if err != nil {
		return nil, err
	}
	for _, turn := range crossTurns {
		bundle.CrossTurns = append(bundle.CrossTurns, Exchange{Role: turn.Role, Text: turn.Text})
	}

	return bundle, nil
}

// SystemPrompt renders the bundle into the instruction block for the model
func (b *ContextBundle) SystemPrompt() string {
	var sb strings.Builder

	sb.WriteString(`You are Mentor, an autonomous learning coach. You help people define
learning goals, build study plans, find resources, track progress, and
stay on schedule. Be encouraging but concrete. Use your tools whenever
they help: generate a study plan when the learner states a goal, look up
resources when they ask what to read or watch, record progress when they
report finishing work, and schedule sessions when they commit to times.
Keep answers focused on the learner's current goal.`)

	sb.WriteString(fmt.Sprintf("\n\nCurrent date and time: %s\n", b.Now.Format("Monday, January 2, 2006 at 15:04")))

	if b.Goal != nil {
		sb.WriteString(fmt.Sprintf("\nCurrent learning goal: %s (status: %s, progress: %d%%)\n",
			b.Goal.Text, b.Goal.Status, b.Goal.Progress))
	} else {
		sb.WriteString("\nThe learner has not set a goal in this conversation yet.\n")
	}

	if len(b.OtherGoals) > 0 {
		sb.WriteString("\nOther goals this learner is working on:\n")
		for _, goal := range b.OtherGoals {
			sb.WriteString(fmt.Sprintf("- %s (%s, %d%%)\n", goal.Text, goal.Status, goal.Progress))
		}
	}

	writeExchanges := func(header string, exchanges []Exchange) {
		if len(exchanges) == 0 {
			return
		}
		sb.WriteString("\n" + header + "\n")
		for _, exchange := range exchanges {
			sb.WriteString(fmt.Sprintf("%s: %s\n", exchange.Role, exchange.Text))
		}
	}
	writeExchanges("Earlier conversations with this learner:", b.CrossTurns)
	writeExchanges("Conversation so far:", b.SessionTurns)

	return sb.String()
}
