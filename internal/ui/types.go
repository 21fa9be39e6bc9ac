package ui

import (
	"database/sql"
	"time"

	"parley/internal/chat"
	"parley/internal/models"
	"parley/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

const (
	MaxChatWidth = 100

	// ScrollDebounce is the fixed delay between a transcript change and the
	// scroll-to-end, so layout settles before the viewport measures itself.
	ScrollDebounce = 50 * time.Millisecond
)

var ModalWidth = 60

type ErrMsg error

// ResponseMsg carries the single-shot result for the placeholder message ID.
type ResponseMsg struct {
	ID      string
	Content string
}

// RequestFailedMsg carries a non-streaming failure for the placeholder ID.
type RequestFailedMsg struct {
	ID  string
	Err error
}

// StreamFragmentMsg delivers one streamed fragment. Next is the channel the
// follow-up read command pulls from, so fragments arrive one per Update in
// delivery order.
type StreamFragmentMsg struct {
	ID       string
	Fragment string
	Next     <-chan chat.StreamDelta
}

// StreamDoneMsg signals the stream closed without an error.
type StreamDoneMsg struct {
	ID string
}

// StreamFailedMsg signals a mid-stream failure; fragments already applied
// stay on screen.
type StreamFailedMsg struct {
	ID  string
	Err error
}

// ScrollTickMsg fires after ScrollDebounce to jump the transcript to its end.
type ScrollTickMsg struct{}

type Model struct {
	Viewport      viewport.Model
	ModalViewport viewport.Model
	TextInput     textarea.Model
	Spinner       spinner.Model
	Renderer      *glamour.TermRenderer

	DB    *sql.DB
	DBErr error

	Session  session.State
	Profiles []models.ApiProfile

	ProfileSelectorOpen  bool
	SelectedProfileIndex int
	ModelSelectorOpen    bool
	SelectedModelIndex   int
	ShortcutsOpen        bool

	// Notice is a blocking notice (e.g. no profile configured); any key
	// dismisses it.
	Notice string

	Err error

	WindowWidth  int
	WindowHeight int
}
