// Package ai turns free text into task drafts with an OpenAI chat model.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/team-task-board/internal/models"
)

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("no response from the language model")

// Draft is a task suggested by the model. Nothing is persisted.
type Draft struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *models.Date `json:"due_date"`
	Tags        []string     `json:"tags"`
}

// Drafter calls the chat completion endpoint.
type Drafter struct {
	client *openai.Client
	model  string
}

// NewDrafter builds a client for apiKey. A non-empty baseURL replaces the
// public endpoint, e.g. for a proxy or a compatible server.
func NewDrafter(apiKey, baseURL string) *Drafter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Drafter{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4oMini,
	}
}

// DraftRequest is the context a draft is produced in.
type DraftRequest struct {
	Text     string
	Today    models.Date
	TeamName string
}

type draftEnvelope struct {
	Tasks []rawDraft `json:"tasks"`
}

// rawDraft keeps the due date as a string so one bad date does not sink the batch.
type rawDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *string  `json:"due_date"`
	Tags        []string `json:"tags"`
}

// DraftTasks extracts tasks from req.Text. Dates the model gets wrong are
// dropped rather than failing the whole request.
func (d *Drafter) DraftTasks(ctx context.Context, req DraftRequest) ([]Draft, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return parseDrafts(resp.Choices[0].Message.Content)
}

func parseDrafts(content string) ([]Draft, error) {
	var envelope draftEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	drafts := make([]Draft, 0, len(envelope.Tasks))
	for _, raw := range envelope.Tasks {
		draft := Draft{
			Title:       strings.TrimSpace(raw.Title),
			Description: strings.TrimSpace(raw.Description),
			Tags:        raw.Tags,
		}
		if raw.DueDate != nil {
			if due, err := models.ParseDate(*raw.DueDate); err == nil {
				draft.DueDate = &due
			}
		}
		if draft.Tags == nil {
			draft.Tags = []string{}
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

const systemPrompt = `You extract actionable tasks from free text for a team task board.
Answer with a JSON object of the form
{"tasks": [{"title": "...", "description": "...", "due_date": "YYYY-MM-DD" or null, "tags": ["..."]}]}.
Keep titles short. Convert relative deadlines ("tomorrow", "next Friday") to calendar dates.
Use null when no deadline is stated. Return {"tasks": []} when there is nothing to do.`

func userPrompt(req DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", req.Today)
	if req.TeamName != "" {
		fmt.Fprintf(&b, "The tasks are for the team %q.\n", req.TeamName)
	}
	b.WriteString("\nText:\n")
	b.WriteString(req.Text)
	return b.String()
}
