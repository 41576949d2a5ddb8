package model

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/openai/openai-go/v3/shared"

	"github.com/mentorlabs/mentor/internal/metrics"
)

// OpenAIProvider talks to any OpenAI-compatible chat-completions API,
// including Mistral's.
type OpenAIProvider struct {
	client openai.Client
	hasKey bool
}

// NewOpenAI creates a provider for the given endpoint. An empty apiKey is
// allowed at construction time; calls will fail with ErrNoCredential.
func NewOpenAI(apiKey, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		hasKey: apiKey != "",
	}
}

// StreamCompletion starts a streamed completion
func (p *OpenAIProvider) StreamCompletion(ctx context.Context, req CompletionRequest) (Stream, error) {
	if !p.hasKey {
		return nil, ErrNoCredential
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildParams(req))
	metrics.RecordModelRequest(req.Model, "stream")
	return &openaiStream{inner: stream}, nil
}

// Complete runs a non-streamed completion
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !p.hasKey {
		return "", ErrNoCredential
	}

	completion, err := p.client.Chat.Completions.New(ctx, p.buildParams(req))
	if err != nil {
		metrics.RecordModelRequest(req.Model, "error")
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	metrics.RecordModelRequest(req.Model, "ok")

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) buildParams(req CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: convertMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}
	if req.JSONObject {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}
	return params
}

func convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				calls = append(calls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      call.Name,
							Arguments: call.Arguments,
						},
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if msg.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(msg.Content),
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		}
	}
	return out
}

func convertTools(tools []ToolDef) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  shared.FunctionParameters(tool.Parameters),
		}))
	}
	return out
}

// openaiStream adapts the SDK stream to the Stream interface
type openaiStream struct {
	inner   *ssestream.Stream[openai.ChatCompletionChunk]
	current Delta
}

func (s *openaiStream) Next() bool {
	for s.inner.Next() {
		chunk := s.inner.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		current := Delta{Text: delta.Content}
		for _, call := range delta.ToolCalls {
			current.ToolCalls = append(current.ToolCalls, ToolCallDelta{
				Index:     int(call.Index),
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
		if current.Text == "" && len(current.ToolCalls) == 0 {
			continue
		}
		s.current = current
		return true
	}
	return false
}

func (s *openaiStream) Current() Delta {
	return s.current
}

func (s *openaiStream) Err() error {
	return s.inner.Err()
}

func (s *openaiStream) Close() error {
	return s.inner.Close()
}
