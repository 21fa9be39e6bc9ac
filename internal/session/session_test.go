package session

import (
	"testing"
	"time"

	"parley/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestBeginAppendsUserAndPlaceholder(t *testing.T) {
	s := New()

	ex, effects, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)

	require.Len(t, s.Messages, 2)
	assert.True(t, s.Messages[0].IsUser)
	assert.Equal(t, "hello", s.Messages[0].Content)
	assert.False(t, s.Messages[1].IsUser)
	assert.Equal(t, models.PendingContent, s.Messages[1].Content)
	assert.Equal(t, models.StatePending, s.Messages[1].State)
	assert.Equal(t, "gpt-a", s.Messages[1].ModelName)
	assert.Equal(t, s.Messages[1].ID, ex.PlaceholderID)
	assert.True(t, s.Waiting)
	assert.Contains(t, effects, EffectNotify)
	assert.Contains(t, effects, EffectScrollToEnd)
}

func TestBeginRejectsEmptyInput(t *testing.T) {
	s := New()

	_, _, err := s.Begin("", "gpt-a", testTime)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, s.Messages)
	assert.False(t, s.Waiting)
}

func TestSingleFlight(t *testing.T) {
	s := New()

	_, _, err := s.Begin("first", "gpt-a", testTime)
	require.NoError(t, err)
	before := len(s.Messages)

	_, _, err = s.Begin("second", "gpt-a", testTime)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, s.Messages, before)
}

func TestHistorySnapshotExcludesOwnMessage(t *testing.T) {
	s := New()

	ex1, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)
	assert.Empty(t, ex1.Context)

	s.Complete(ex1.PlaceholderID, "hi there")

	ex2, _, err := s.Begin("how are you", "gpt-a", testTime)
	require.NoError(t, err)
	require.Len(t, ex2.Context, 2)
	for _, msg := range ex2.Context {
		assert.NotEqual(t, "how are you", msg.Content)
	}
}

func TestStreamingMonotonicity(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)

	fragments := []string{"Hel", "lo ", "wor", "ld"}
	var want string
	for _, f := range fragments {
		s.ApplyFragment(ex.PlaceholderID, f)
		want += f
		assert.Equal(t, want, s.placeholder(t, ex).Content)
		assert.Equal(t, models.StateStreaming, s.placeholder(t, ex).State)
	}

	s.Complete(ex.PlaceholderID, "")
	assert.Equal(t, "Hello world", s.placeholder(t, ex).Content)
	assert.Equal(t, models.StateCompleted, s.placeholder(t, ex).State)
	assert.False(t, s.Waiting)
}

func TestNonStreamingCompleteOverwritesPlaceholder(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)

	s.Complete(ex.PlaceholderID, "hi there")
	assert.Equal(t, "hi there", s.placeholder(t, ex).Content)
	assert.Equal(t, models.StateCompleted, s.placeholder(t, ex).State)
	assert.False(t, s.Waiting)
}

func TestFailReplacesNotAppends(t *testing.T) {
	s := New()
	before := len(s.Messages)

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)

	s.Fail(ex.PlaceholderID, "request failed: status 500 — boom")

	assert.Len(t, s.Messages, before+2)
	assert.Equal(t, "request failed: status 500 — boom", s.placeholder(t, ex).Content)
	assert.Equal(t, models.StateFailed, s.placeholder(t, ex).State)
	assert.False(t, s.Waiting)
}

func TestFailStreamKeepsPartialContent(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)

	s.ApplyFragment(ex.PlaceholderID, "partial out")
	s.FailStream(ex.PlaceholderID, "request failed: connection reset")

	got := s.placeholder(t, ex).Content
	assert.Contains(t, got, "partial out")
	assert.Contains(t, got, "request failed: connection reset")
	assert.Equal(t, models.StateFailed, s.placeholder(t, ex).State)
	assert.False(t, s.Waiting)
}

func TestFailStreamWithNoFragments(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)

	s.FailStream(ex.PlaceholderID, "request failed: connection refused")
	got := s.placeholder(t, ex).Content
	assert.Equal(t, "request failed: connection refused", got)
	assert.NotContains(t, got, models.PendingContent)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)
	s.Complete(ex.PlaceholderID, "done")

	assert.Nil(t, s.ApplyFragment(ex.PlaceholderID, "late fragment"))
	assert.Nil(t, s.Fail(ex.PlaceholderID, "late error"))
	assert.Nil(t, s.Complete(ex.PlaceholderID, "other"))
	assert.Equal(t, "done", s.placeholder(t, ex).Content)
}

func TestOutcomeForUnknownIDIsDropped(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)
	s.Reset()

	// The abandoned exchange's late outcome must not resurrect anything.
	assert.Nil(t, s.Complete(ex.PlaceholderID, "late"))
	assert.Nil(t, s.ApplyFragment(ex.PlaceholderID, "late"))
	assert.Empty(t, s.Messages)
	assert.False(t, s.Waiting)
}

func TestTerminalClearingAllowsResubmit(t *testing.T) {
	s := New()

	ex, _, err := s.Begin("hello", "gpt-a", testTime)
	require.NoError(t, err)
	s.Fail(ex.PlaceholderID, "request failed: nope")
	assert.False(t, s.Waiting)

	_, _, err = s.Begin("again", "gpt-a", testTime)
	assert.NoError(t, err)
}

func TestReconcileProfileFallbacks(t *testing.T) {
	a := models.ApiProfile{ID: 1, ServiceName: "A", Models: "m1,m2"}
	b := models.ApiProfile{ID: 2, ServiceName: "B", Models: "m3"}
	profiles := []models.ApiProfile{a, b}

	got, err := ReconcileProfile(profiles, 0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = ReconcileProfile(profiles, 2)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	// Deleted selection falls back to the first profile.
	got, err = ReconcileProfile(profiles, 99)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = ReconcileProfile(nil, 1)
	assert.ErrorIs(t, err, ErrNoProfiles)
}

func TestReconcileModelFallbacks(t *testing.T) {
	p := models.ApiProfile{ID: 1, Models: "m1, m2 ,m3"}

	assert.Equal(t, "m2", ReconcileModel(p, "m2"))
	assert.Equal(t, "m1", ReconcileModel(p, ""))
	assert.Equal(t, "m1", ReconcileModel(p, "gone"))
	assert.Equal(t, "", ReconcileModel(models.ApiProfile{}, "m1"))
}

func TestFallbackSelectionOnSubmit(t *testing.T) {
	a := models.ApiProfile{ID: 1, ServiceName: "A", Models: "m1,m2"}
	b := models.ApiProfile{ID: 2, ServiceName: "B", Models: "m3"}

	s := New()
	profile, err := ReconcileProfile([]models.ApiProfile{a, b}, s.ProfileID)
	require.NoError(t, err)
	model := ReconcileModel(profile, s.Model)

	assert.Equal(t, int64(1), profile.ID)
	assert.Equal(t, "m1", model)
}

// End-to-end over the non-streaming branch with a canned transport result.
func TestNonStreamingExchange(t *testing.T) {
	profiles := []models.ApiProfile{{ID: 1, ServiceName: "OpenRouter", Models: "gpt-a,gpt-b"}}

	s := New()
	s.Streaming = false

	profile, err := ReconcileProfile(profiles, s.ProfileID)
	require.NoError(t, err)
	s.ProfileID = profile.ID
	s.Model = ReconcileModel(profile, s.Model)
	require.Equal(t, "gpt-a", s.Model)

	ex, _, err := s.Begin("hello", s.Model, testTime)
	require.NoError(t, err)
	assert.Empty(t, ex.Context)

	// What the transport extracts from {choices:[{message:{content:"hi there"}}]}.
	s.Complete(ex.PlaceholderID, "hi there")

	require.Len(t, s.Messages, 2)
	assert.True(t, s.Messages[0].IsUser)
	assert.Equal(t, "hello", s.Messages[0].Content)
	assert.False(t, s.Messages[1].IsUser)
	assert.Equal(t, "hi there", s.Messages[1].Content)
	assert.False(t, s.Waiting)
}

func (s *State) placeholder(t *testing.T, ex Exchange) models.ChatMessage {
	t.Helper()
	msg := s.find(ex.PlaceholderID)
	require.NotNil(t, msg)
	return *msg
}
