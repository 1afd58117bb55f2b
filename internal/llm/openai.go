// Package llm backs the assistant, moderation, and summarization capability
// interfaces with the OpenAI API.
package llm

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	msgdomain "medgate/backend/internal/message/domain"
)

// systemPrompt steers assistant replies for patient conversations: gather
// information, no diagnosis, one short question at a time.
const systemPrompt = "You are a friendly medical conversation assistant. " +
	"Help the patient describe their main complaint and collect relevant details " +
	"(complaint and duration, current condition, medications and doses, allergies, " +
	"medical and surgical history) without giving a definitive diagnosis or treatment advice. " +
	"Ask one short follow-up question at a time and keep an empathetic tone."

// summaryInstruction asks for a machine-readable summary; the caller stores
// the JSON payload verbatim and extracts text_summary and token_count.
const summaryInstruction = "Summarize the following patient conversation. " +
	"Respond with a single JSON object containing at least: " +
	`"text_summary" (a readable summary of at most 120 words), ` +
	`"token_count" (an integer estimate of tokens used), ` +
	`and any structured fields you can extract (complaint, duration, medications, allergies). ` +
	"Respond with JSON only, no surrounding text."

// Client calls the OpenAI API for assistant replies, content moderation, and
// transcript summarization. It satisfies the Moderator, Assistant, and
// summary Collaborator interfaces consumed by the pipeline services.
type Client struct {
	api          *openai.Client
	chatModel    string
	summaryModel string
}

// NewClient returns an OpenAI-backed collaborator client. summaryModel falls
// back to chatModel when empty.
func NewClient(apiKey, chatModel, summaryModel string) *Client {
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	if summaryModel == "" {
		summaryModel = chatModel
	}
	return &Client{
		api:          openai.NewClient(apiKey),
		chatModel:    chatModel,
		summaryModel: summaryModel,
	}
}

// Reply sends the moderated requester message to the chat completion API and
// returns the assistant's reply.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Check screens text via the moderation endpoint and reports whether it was
// flagged. Transport errors are returned to the caller, which applies the
// fail-open/fail-closed policy.
func (c *Client) Check(ctx context.Context, text string) (bool, error) {
	resp, err := c.api.Moderations(ctx, openai.ModerationRequest{Input: text})
	if err != nil {
		return false, err
	}
	for _, r := range resp.Results {
		if r.Flagged {
			return true, nil
		}
	}
	return false, nil
}

// Summarize submits the ordered transcript and returns the raw JSON payload
// produced by the model.
func (c *Client) Summarize(ctx context.Context, transcript []msgdomain.TranscriptEntry) (string, error) {
	encoded, err := json.Marshal(transcript)
	if err != nil {
		return "", err
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.summaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summaryInstruction},
			{Role: openai.ChatMessageRoleUser, Content: string(encoded)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
