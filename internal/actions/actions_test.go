package actions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/model"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/store"
)

// scriptedProvider returns a fixed completion or error
type scriptedProvider struct {
	response string
	err      error
}

func (p *scriptedProvider) StreamCompletion(ctx context.Context, req model.CompletionRequest) (model.Stream, error) {
	return nil, errors.New("not used")
}

func (p *scriptedProvider) Complete(ctx context.Context, req model.CompletionRequest) (string, error) {
	return p.response, p.err
}

func testDeps(t *testing.T, provider model.Provider) (*Deps, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.New(dir)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	sched, err := schedule.NewStore(dir)
	if err != nil {
		t.Fatalf("schedule.NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = sched.Close() })

	if provider == nil {
		provider = &scriptedProvider{err: errors.New("offline")}
	}
	return NewDeps(s, sched, provider, "mistral-small-latest"), s
}

func principalFixture(t *testing.T, s *store.Store) agent.Principal {
	t.Helper()
	user, err := s.CreateUser("test", "t@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	session, err := s.CreateSession(user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return agent.Principal{UserID: user.ID, SessionID: session.ID}
}

func TestGenerateStudyPlan_ModelResponse(t *testing.T) {
	planJSON := `{
		"overview": "Master Go in four weeks",
		"duration": "4 weeks",
		"weekly_schedule": [
			{"week": 1, "topics": ["syntax"], "activities": ["read the tour", "write a CLI"]},
			{"week": 2, "topics": ["concurrency"], "activities": ["goroutines lab"]}
		],
		"tips": ["practice daily"]
	}`
	deps, s := testDeps(t, &scriptedProvider{response: planJSON})
	principal := principalFixture(t, s)

	result, err := deps.generateStudyPlan(context.Background(), principal, []byte(`{"goal":"learn go","duration_weeks":4}`))
	if err != nil {
		t.Fatalf("generateStudyPlan() error = %v", err)
	}

	plan, ok := result.(*Plan)
	if !ok {
		t.Fatalf("result type = %T, want *Plan", result)
	}
	if plan.Overview != "Master Go in four weeks" {
		t.Errorf("Overview = %q", plan.Overview)
	}
	if len(plan.WeeklySchedule) != 2 {
		t.Errorf("weeks = %d, want 2", len(plan.WeeklySchedule))
	}
}

func TestGenerateStudyPlan_FallbackOnModelError(t *testing.T) {
	deps, s := testDeps(t, &scriptedProvider{err: errors.New("rate limited")})
	principal := principalFixture(t, s)

	result, err := deps.generateStudyPlan(context.Background(), principal, []byte(`{"goal":"learn piano","duration_weeks":2}`))
	if err != nil {
		t.Fatalf("generateStudyPlan() error = %v, fallback expected instead", err)
	}

	plan := result.(*Plan)
	if !strings.Contains(plan.Overview, "learn piano") {
		t.Errorf("fallback overview = %q, want goal mentioned", plan.Overview)
	}
	if len(plan.WeeklySchedule) != 2 {
		t.Errorf("fallback weeks = %d, want 2", len(plan.WeeklySchedule))
	}
	if plan.Duration != "2 weeks" {
		t.Errorf("fallback duration = %q", plan.Duration)
	}
}

func TestGenerateStudyPlan_FallbackOnMalformedJSON(t *testing.T) {
	deps, s := testDeps(t, &scriptedProvider{response: `{"not": "a plan"}`})
	principal := principalFixture(t, s)

	result, err := deps.generateStudyPlan(context.Background(), principal, []byte(`{"goal":"learn sql"}`))
	if err != nil {
		t.Fatalf("generateStudyPlan() error = %v", err)
	}
	plan := result.(*Plan)
	if len(plan.WeeklySchedule) == 0 {
		t.Error("fallback plan has no weeks")
	}
}

func TestGenerateStudyPlan_BadArgs(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	if _, err := deps.generateStudyPlan(context.Background(), principal, []byte(`{"goal": tru`)); err == nil {
		t.Error("malformed JSON args error = nil, want error")
	}
	if _, err := deps.generateStudyPlan(context.Background(), principal, []byte(`{"goal":"  "}`)); err == nil {
		t.Error("empty goal error = nil, want error")
	}
}

func TestDeriveGoal(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	plan := &Plan{
		Overview: strings.Repeat("x", 200),
		Duration: "4 weeks",
		WeeklySchedule: []PlanWeek{
			{Week: 1, Activities: []string{"a", "b", "c"}},
			{Week: 2, Activities: []string{"d", "e"}},
		},
	}

	text, total, deadline := DeriveGoal(plan, now)
	if len(text) != 150 {
		t.Errorf("goal text length = %d, want truncation to 150", len(text))
	}
	if total != 5 {
		t.Errorf("total tasks = %d, want 5", total)
	}
	if deadline == nil {
		t.Fatal("deadline = nil, want 4 weeks out")
	}
	if want := now.Add(28 * 24 * time.Hour); !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
}

func TestParsePlanDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"4 weeks", 28 * 24 * time.Hour, true},
		{"1 week", 7 * 24 * time.Hour, true},
		{"2 months", 60 * 24 * time.Hour, true},
		{"10 days", 10 * 24 * time.Hour, true},
		{"soon", 0, false},
		{"", 0, false},
		{"-3 weeks", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePlanDuration(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parsePlanDuration(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRetrieveCurrentPlan(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	result, err := deps.retrieveCurrentPlan(context.Background(), principal, nil)
	if err != nil {
		t.Fatalf("retrieveCurrentPlan() error = %v", err)
	}
	if m, ok := result.(map[string]any); !ok || m["plan"] != nil {
		t.Errorf("result with no plan = %v, want nil plan marker", result)
	}

	planJSON := []byte(`{"overview":"Learn Go","duration":"4 weeks","weekly_schedule":[{"week":1,"topics":["t"],"activities":["a"]}],"tips":[]}`)
	if _, err := s.AppendTurn(principal.SessionID, principal.UserID, store.RoleAgent, store.TurnTypePlan, "", planJSON); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	result, err = deps.retrieveCurrentPlan(context.Background(), principal, nil)
	if err != nil {
		t.Fatalf("retrieveCurrentPlan() error = %v", err)
	}
	plan, ok := result.(*Plan)
	if !ok || plan.Overview != "Learn Go" {
		t.Errorf("result = %v, want the stored plan", result)
	}
}

func TestSearchResources(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	result, err := deps.searchYouTubeResources(context.Background(), principal, []byte(`{"query":"learn go concurrency"}`))
	if err != nil {
		t.Fatalf("searchYouTubeResources() error = %v", err)
	}
	resources := result.(map[string]any)["resources"].([]Resource)
	if len(resources) == 0 {
		t.Fatal("no curated resources for a go query")
	}
	for _, r := range resources {
		if !strings.Contains(r.URL, "youtube.com") {
			t.Errorf("resource URL = %q, want youtube", r.URL)
		}
	}

	// Unknown topic falls back to a search link
	result, err = deps.searchWebResources(context.Background(), principal, []byte(`{"query":"medieval falconry"}`))
	if err != nil {
		t.Fatalf("searchWebResources() error = %v", err)
	}
	resources = result.(map[string]any)["resources"].([]Resource)
	if len(resources) != 1 || !strings.Contains(resources[0].URL, "falconry") {
		t.Errorf("fallback resources = %+v", resources)
	}

	if _, err := deps.searchWebResources(context.Background(), principal, []byte(`{"query":""}`)); err == nil {
		t.Error("empty query error = nil, want error")
	}
}

func TestUpdateGoalProgress(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	// No goal yet
	if _, err := deps.updateGoalProgress(context.Background(), principal, []byte(`{"completed_tasks":3}`)); err == nil {
		t.Error("progress without goal error = nil, want error")
	}

	if _, err := s.UpsertSessionGoal(principal.UserID, principal.SessionID, "Learn Go", nil, 10); err != nil {
		t.Fatalf("UpsertSessionGoal() error = %v", err)
	}

	result, err := deps.updateGoalProgress(context.Background(), principal, []byte(`{"completed_tasks":5}`))
	if err != nil {
		t.Fatalf("updateGoalProgress() error = %v", err)
	}
	got := result.(map[string]any)
	if got["progress"] != 50 {
		t.Errorf("progress = %v, want 50", got["progress"])
	}

	if _, err := deps.updateGoalProgress(context.Background(), principal, []byte(`{"completed_tasks":-1}`)); err == nil {
		t.Error("negative completed_tasks error = nil, want error")
	}
}

func TestScheduleAndReadBack(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	start := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	args := []byte(`{"title":"Go practice","description":"chapters 3-4","start_time":"` + start + `","duration_minutes":60}`)
	result, err := deps.scheduleLearningSession(context.Background(), principal, args)
	if err != nil {
		t.Fatalf("scheduleLearningSession() error = %v", err)
	}
	if result.(map[string]any)["scheduled"] != true {
		t.Errorf("result = %v", result)
	}

	scheduleResult, err := deps.getUserSchedule(context.Background(), principal, []byte(`{"days":7}`))
	if err != nil {
		t.Fatalf("getUserSchedule() error = %v", err)
	}
	events := scheduleResult.(map[string]any)["events"].([]map[string]any)
	if len(events) != 1 || events[0]["title"] != "Go practice" {
		t.Errorf("events = %+v, want the scheduled session", events)
	}

	if _, err := deps.scheduleLearningSession(context.Background(), principal, []byte(`{"title":"x","start_time":"tomorrow"}`)); err == nil {
		t.Error("non-RFC3339 start_time error = nil, want error")
	}
}

func TestConductQuiz_Fallback(t *testing.T) {
	deps, s := testDeps(t, &scriptedProvider{err: errors.New("offline")})
	principal := principalFixture(t, s)

	result, err := deps.conductQuiz(context.Background(), principal, []byte(`{"topic":"go"}`))
	if err != nil {
		t.Fatalf("conductQuiz() error = %v", err)
	}
	quiz := result.(*Quiz)
	if quiz.Topic != "go" || len(quiz.Questions) == 0 {
		t.Errorf("fallback quiz = %+v", quiz)
	}
	for _, q := range quiz.Questions {
		var found bool
		for _, opt := range q.Options {
			if opt == q.Answer {
				found = true
			}
		}
		if !found {
			t.Errorf("answer %q not among options", q.Answer)
		}
	}
}

func TestCreateNotification(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	result, err := deps.createNotification(context.Background(), principal, []byte(`{"title":"Reminder","message":"Study tonight","type":"reminder"}`))
	if err != nil {
		t.Fatalf("createNotification() error = %v", err)
	}
	if result.(map[string]any)["created"] != true {
		t.Errorf("result = %v", result)
	}

	notifications, err := s.ListNotifications(principal.UserID, true)
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != store.NotifyReminder {
		t.Errorf("notifications = %+v", notifications)
	}

	if _, err := deps.createNotification(context.Background(), principal, []byte(`{"title":"x","message":"y","type":"loud"}`)); err == nil {
		t.Error("invalid type error = nil, want error")
	}
}

func TestSetReminder(t *testing.T) {
	deps, s := testDeps(t, nil)
	principal := principalFixture(t, s)

	result, err := deps.setReminder(context.Background(), principal, []byte(`{"title":"Evening study","cron":"30 19 * * *"}`))
	if err != nil {
		t.Fatalf("setReminder() error = %v", err)
	}
	got := result.(map[string]any)
	if got["created"] != true || got["cron"] != "30 19 * * *" {
		t.Errorf("result = %v", got)
	}

	reminders, err := deps.Schedule.List(principal.UserID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(reminders) != 1 || reminders[0].Message != "Evening study" {
		t.Errorf("reminders = %+v, want message defaulted from title", reminders)
	}

	if _, err := deps.setReminder(context.Background(), principal, []byte(`{"title":"x","cron":"whenever"}`)); err == nil {
		t.Error("invalid cron error = nil, want error")
	}
}

func TestRegisterAll(t *testing.T) {
	deps, _ := testDeps(t, nil)
	registry := agent.NewRegistry()

	if err := deps.RegisterAll(registry); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}

	catalogue := registry.Catalogue()
	var advertised []string
	for _, def := range catalogue {
		advertised = append(advertised, def.Name)
	}
	want := []string{
		"generate_study_plan",
		"search_youtube_resources",
		"update_goal_progress",
		"conduct_quiz",
		"schedule_learning_session",
		"get_user_schedule",
		"create_notification",
	}
	if len(advertised) != len(want) {
		t.Fatalf("advertised = %v, want %v", advertised, want)
	}
	for i, name := range want {
		if advertised[i] != name {
			t.Errorf("advertised[%d] = %q, want %q", i, advertised[i], name)
		}
	}

	for _, hidden := range []string{"search_web_resources", "retrieve_current_plan", "set_reminder"} {
		if _, ok := registry.Lookup(hidden); !ok {
			t.Errorf("hidden action %s not dispatchable", hidden)
		}
	}

	// Argument schemas survive the catalogue round trip
	params := catalogue[0].Parameters
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatalf("catalogue[0] properties missing: %v", params)
	}
	if _, ok := props["goal"]; !ok {
		t.Error("generate_study_plan schema missing goal property")
	}
}
