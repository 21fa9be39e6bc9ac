// Package session holds the in-memory state for one chat screen and the
// transition functions that move an exchange through its lifecycle:
// Pending -> Streaming* -> {Completed, Failed}. Transitions mutate nothing
// outside the State and return the side-effect intents the presentation
// layer must act on, so the whole machine is testable without a UI.
package session

import (
	"errors"
	"time"

	"parley/internal/models"
)

var (
	// ErrEmptyInput rejects a submit with nothing to send. No-op.
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy rejects a submit while a response is in flight. No-op, not
	// queued.
	ErrBusy = errors.New("response already in flight")
	// ErrNoProfiles means no API profile exists at all; the caller must
	// surface a blocking notice and abort before any message is appended.
	ErrNoProfiles = errors.New("no API profile configured")
)

// Effect is a side-effect intent emitted by a transition.
type Effect int

const (
	// EffectNotify asks the view to re-render from the new state.
	EffectNotify Effect = iota
	// EffectScrollToEnd asks the transcript to scroll to its end, after a
	// short debounce so layout can settle first.
	EffectScrollToEnd
)

var renderEffects = []Effect{EffectNotify, EffectScrollToEnd}

// State is the session for one screen lifetime. Messages are append-only
// except for the single in-flight assistant message, which is addressed by
// id until it reaches a terminal state.
type State struct {
	Messages  []models.ChatMessage
	ProfileID int64
	Model     string
	Waiting   bool
	Streaming bool
}

func New() State {
	return State{Streaming: true}
}

// Exchange identifies the in-flight request started by Begin.
type Exchange struct {
	PlaceholderID string
	// Context is the history snapshot taken before Begin mutated the
	// session; it never contains the user message Begin appended.
	Context []models.ChatMessage
}

// Begin stages a new exchange: it validates the guards, snapshots the
// history, appends the user message and a pending assistant placeholder, and
// marks the session as waiting. On ErrEmptyInput or ErrBusy the state is
// unchanged.
func (s *State) Begin(userText, modelName string, now time.Time) (Exchange, []Effect, error) {
	if userText == "" {
		return Exchange{}, nil, ErrEmptyInput
	}
	if s.Waiting {
		return Exchange{}, nil, ErrBusy
	}

	snapshot := make([]models.ChatMessage, len(s.Messages))
	copy(snapshot, s.Messages)

	placeholder := models.NewPendingMessage(modelName, now)
	s.Messages = append(s.Messages, models.NewUserMessage(userText, now), placeholder)
	s.Waiting = true

	return Exchange{PlaceholderID: placeholder.ID, Context: snapshot}, renderEffects, nil
}

// ApplyFragment appends one streamed fragment to the in-flight message, in
// arrival order. The first fragment replaces the pending sentinel and moves
// the message to Streaming. Fragments for unknown or terminal messages are
// dropped.
func (s *State) ApplyFragment(id, fragment string) []Effect {
	msg := s.find(id)
	if msg == nil || msg.State.Terminal() {
		return nil
	}
	if msg.State == models.StatePending {
		msg.Content = ""
		msg.State = models.StateStreaming
	}
	msg.Content += fragment
	return renderEffects
}

// Complete overwrites the in-flight message with the final content and
// clears the waiting flag. For a streamed exchange content is "", keeping
// whatever the fragments accumulated.
func (s *State) Complete(id, content string) []Effect {
	msg := s.find(id)
	if msg == nil || msg.State.Terminal() {
		return nil
	}
	if content != "" || msg.State == models.StatePending {
		msg.Content = content
	}
	msg.State = models.StateCompleted
	s.Waiting = false
	return renderEffects
}

// Fail replaces the in-flight message's content with the error description.
// Used by the non-streaming branch: the placeholder is replaced in place,
// never appended after.
func (s *State) Fail(id, errText string) []Effect {
	msg := s.find(id)
	if msg == nil || msg.State.Terminal() {
		return nil
	}
	msg.Content = errText
	msg.State = models.StateFailed
	s.Waiting = false
	return renderEffects
}

// FailStream marks a mid-stream failure. Fragments already applied stay
// visible; the error description is appended below them. There is no
// rollback.
func (s *State) FailStream(id, errText string) []Effect {
	msg := s.find(id)
	if msg == nil || msg.State.Terminal() {
		return nil
	}
	if msg.State == models.StateStreaming && msg.Content != "" {
		msg.Content += "\n\n" + errText
	} else {
		msg.Content = errText
	}
	msg.State = models.StateFailed
	s.Waiting = false
	return renderEffects
}

// Reset discards the transcript and any in-flight bookkeeping. An already
// issued request is abandoned, not cancelled; its late outcome will address
// a message id that no longer exists and be dropped.
func (s *State) Reset() []Effect {
	s.Messages = nil
	s.Waiting = false
	return renderEffects
}

func (s *State) find(id string) *models.ChatMessage {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}
