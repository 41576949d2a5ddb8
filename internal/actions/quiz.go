package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/model"
)

// Quiz is a short knowledge check on a topic
type Quiz struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizQuestion is one multiple-choice question
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type quizArgs struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
}

func (d *Deps) conductQuiz(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed quizArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	count := parsed.NumQuestions
	if count <= 0 || count > 10 {
		count = 3
	}

	prompt := fmt.Sprintf(`Write a quiz with %d multiple-choice questions on %q.
Respond with a JSON object: {"topic": string, "questions": [{"question": string,
"options": [4 strings], "answer": string matching one option}]}.`, count, parsed.Topic)

	raw, err := d.Planner.provider.Complete(ctx, model.CompletionRequest{
		Model: d.Planner.model,
		Messages: []model.Message{
			{Role: model.RoleSystem, Content: "You write short quizzes. Respond with JSON only."},
			{Role: model.RoleUser, Content: prompt},
		},
		JSONObject: true,
	})
	if err != nil {
		logger.WarnContext(ctx, "quiz generation fell back", "error", err)
		return fallbackQuiz(parsed.Topic), nil
	}

	var quiz Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil || len(quiz.Questions) == 0 {
		logger.WarnContext(ctx, "quiz generation returned malformed JSON", "error", err)
		return fallbackQuiz(parsed.Topic), nil
	}
	return &quiz, nil
}

func fallbackQuiz(topic string) *Quiz {
	return &Quiz{
		Topic: topic,
		Questions: []QuizQuestion{
			{
				Question: fmt.Sprintf("Which study habit helps most when learning %s?", topic),
				Options: []string{
					"Regular short practice sessions",
					"One long session the night before",
					"Reading without taking notes",
					"Skipping review entirely",
				},
				Answer: "Regular short practice sessions",
			},
			{
				Question: fmt.Sprintf("What should you do after finishing a %s study session?", topic),
				Options: []string{
					"Summarize what you learned",
					"Forget about it until next week",
					"Delete your notes",
					"Start an unrelated topic immediately",
				},
				Answer: "Summarize what you learned",
			},
		},
	}
}
