// Package chat issues chat-completion calls against whichever
// OpenAI-compatible endpoint the active profile points at.
package chat

import (
	"context"
	"errors"
	"fmt"

	"parley/internal/models"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// RequestError is an HTTP-level failure from the completion endpoint. The
// status code and response body are kept so the transcript can show what the
// server actually said.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("request failed: status %d — %s", e.StatusCode, e.Body)
	}
	return "request failed: " + e.Body
}

// Classify turns a transport error into a RequestError, picking up the
// status code and body when the SDK surfaced an API error.
func Classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		body := apierr.Message
		if body == "" {
			body = apierr.RawJSON()
		}
		return &RequestError{StatusCode: apierr.StatusCode, Body: body}
	}
	return &RequestError{Body: err.Error()}
}

// StreamDelta is one fragment of a streamed response. A delta with Err set
// is the last one delivered; the channel closing with no Err means the
// stream completed normally.
type StreamDelta struct {
	Fragment string
	Err      error
}

func NewClient(profile models.ApiProfile) openai.Client {
	// Retries are off: a failed exchange is reported to the transcript and
	// resubmission is always a fresh user action.
	return openai.NewClient(
		option.WithAPIKey(profile.APIKey),
		option.WithBaseURL(profile.BaseURL),
		option.WithMaxRetries(0),
	)
}

// SendChatRequest issues a single-shot completion and returns the top
// choice's message content.
func SendChatRequest(ctx context.Context, profile models.ApiProfile, model, message string, history []models.ChatMessage) (string, error) {
	client := NewClient(profile)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    model,
		Messages: buildMessages(history, message),
	})
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &RequestError{Body: "empty response from model"}
	}
	return resp.Choices[0].Message.Content, nil
}

// SendStreamChatRequest issues a streamed completion and returns a channel
// of content fragments in arrival order. The channel is closed when the
// stream finishes; a mid-stream failure is delivered as a final delta with
// Err set.
func SendStreamChatRequest(ctx context.Context, profile models.ApiProfile, model, message string, history []models.ChatMessage) <-chan StreamDelta {
	client := NewClient(profile)
	ch := make(chan StreamDelta)

	go func() {
		defer close(ch)

		stream := client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
			Model:    model,
			Messages: buildMessages(history, message),
		})
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			fragment := chunk.Choices[0].Delta.Content
			if fragment == "" {
				continue
			}
			select {
			case ch <- StreamDelta{Fragment: fragment}:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case ch <- StreamDelta{Err: Classify(err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}

// buildMessages converts the history snapshot plus the new user message into
// the wire format. Assistant messages that never completed (failed or still
// pending when the snapshot was taken) carry error text or a sentinel, not
// model output, so they are not replayed.
func buildMessages(history []models.ChatMessage, message string) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, msg := range history {
		switch {
		case msg.IsUser:
			out = append(out, openai.UserMessage(msg.Content))
		case msg.State == models.StateCompleted:
			out = append(out, openai.AssistantMessage(msg.Content))
		}
	}
	out = append(out, openai.UserMessage(message))
	return out
}
