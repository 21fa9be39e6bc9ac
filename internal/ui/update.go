package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parley/internal/chat"
	"parley/internal/models"
	"parley/internal/session"
	"parley/internal/store"
	"parley/internal/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Session.Waiting {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.KeyMsg:
		if m.Notice != "" {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			default:
				m.Notice = ""
				return m, nil
			}
		}

		if m.ProfileSelectorOpen {
			return m.updateProfileSelector(msg)
		}

		if m.ModelSelectorOpen {
			return m.updateModelSelector(msg)
		}

		if m.ShortcutsOpen {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "ctrl+s":
				m.ShortcutsOpen = false
				return m, nil
			}
			return m, nil
		}

		if isNewlineShortcut(msg) {
			m.TextInput.InsertString("\n")
			m.updateInputLayout()
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			effects := m.Session.Reset()
			m.TextInput.Reset()
			m.updateInputLayout()
			return m, m.runEffects(effects)

		case tea.KeyCtrlT:
			if !m.Session.Waiting {
				m.Session.Streaming = !m.Session.Streaming
			}
			return m, nil

		case tea.KeyCtrlP:
			m.RefreshProfiles()
			m.ProfileSelectorOpen = true
			m.ModelSelectorOpen = false
			m.ShortcutsOpen = false
			m.SelectedProfileIndex = m.activeProfileIndex()
			return m, nil

		case tea.KeyCtrlB:
			m.RefreshProfiles()
			if _, err := m.reconcileSelection(); err != nil {
				m.Notice = noProfileNotice
				return m, nil
			}
			m.ModelSelectorOpen = true
			m.ProfileSelectorOpen = false
			m.ShortcutsOpen = false
			m.SelectedModelIndex = m.activeModelIndex()
			m.UpdateModelSelectorContent()
			m.SyncModelViewportScroll()
			return m, nil

		case tea.KeyCtrlS:
			m.ShortcutsOpen = true
			m.ProfileSelectorOpen = false
			m.ModelSelectorOpen = false
			return m, nil

		case tea.KeyEnter:
			return m.submit()
		}

	case ResponseMsg:
		effects := m.Session.Complete(msg.ID, msg.Content)
		return m, m.runEffects(effects)

	case RequestFailedMsg:
		effects := m.Session.Fail(msg.ID, msg.Err.Error())
		return m, m.runEffects(effects)

	case StreamFragmentMsg:
		effects := m.Session.ApplyFragment(msg.ID, msg.Fragment)
		return m, tea.Batch(m.runEffects(effects), readDeltaCmd(msg.ID, msg.Next))

	case StreamDoneMsg:
		effects := m.Session.Complete(msg.ID, "")
		return m, m.runEffects(effects)

	case StreamFailedMsg:
		effects := m.Session.FailStream(msg.ID, msg.Err.Error())
		return m, m.runEffects(effects)

	case ScrollTickMsg:
		m.Viewport.GotoBottom()
		return m, nil

	case ErrMsg:
		m.Err = msg
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		ModalWidth = msg.Width - 10
		if ModalWidth > 60 {
			ModalWidth = 60
		}
		if ModalWidth < 30 {
			ModalWidth = 30
		}
		styles.ContentWidth = ModalWidth - 6

		m.ModalViewport.Width = styles.ContentWidth
		m.ModalViewport.Height = msg.Height - 15
		if m.ModalViewport.Height > 20 {
			m.ModalViewport.Height = 20
		}
		if m.ModalViewport.Height < 5 {
			m.ModalViewport.Height = 5
		}

		chatWidth := msg.Width - 2
		if chatWidth > MaxChatWidth {
			chatWidth = MaxChatWidth
		}
		m.Viewport.Width = chatWidth - 2

		m.updateInputLayout()
		glamourStyle := "dark"
		if !lipgloss.HasDarkBackground() {
			glamourStyle = "light"
		}
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(glamourStyle),
			glamour.WithWordWrap(chatWidth-6),
		)
		m.UpdateViewport()
		return m, tea.Batch(tiCmd, vpCmd)
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Filter terminal background color queries that leak into the input.
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

const noProfileNotice = "No API profile configured.\n\nSet OPENROUTER_API_KEY and restart to seed a default profile."

// submit runs the full dispatch path: refetch profiles, reconcile the
// selection, stage the exchange, then issue the transport call for the
// branch the streaming toggle selects.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.TextInput.Value())
	if input == "" || m.Session.Waiting {
		return m, nil
	}

	if input == "/clear" || input == "/reset" {
		effects := m.Session.Reset()
		m.TextInput.Reset()
		m.updateInputLayout()
		return m, m.runEffects(effects)
	}

	m.RefreshProfiles()
	profile, err := m.reconcileSelection()
	if err != nil {
		if errors.Is(err, session.ErrNoProfiles) {
			m.Notice = noProfileNotice
		} else {
			m.Notice = fmt.Sprintf("Profile store error: %v", err)
		}
		return m, nil
	}

	ex, effects, err := m.Session.Begin(input, m.Session.Model, time.Now())
	if err != nil {
		// ErrEmptyInput / ErrBusy are no-ops; both are already guarded
		// above, so nothing to surface.
		return m, nil
	}

	m.TextInput.Reset()
	m.updateInputLayout()

	if m.Session.Streaming {
		ch := chat.SendStreamChatRequest(context.Background(), profile, m.Session.Model, input, ex.Context)
		return m, tea.Batch(m.runEffects(effects), readDeltaCmd(ex.PlaceholderID, ch), m.Spinner.Tick)
	}
	return m, tea.Batch(m.runEffects(effects), sendChatCmd(profile, m.Session.Model, input, ex), m.Spinner.Tick)
}

func (m *Model) updateProfileSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+p":
		m.ProfileSelectorOpen = false
		return m, nil
	case "up", "k":
		if len(m.Profiles) == 0 {
			return m, nil
		}
		m.SelectedProfileIndex--
		if m.SelectedProfileIndex < 0 {
			m.SelectedProfileIndex = len(m.Profiles) - 1
		}
		return m, nil
	case "down", "j":
		if len(m.Profiles) == 0 {
			return m, nil
		}
		m.SelectedProfileIndex++
		if m.SelectedProfileIndex >= len(m.Profiles) {
			m.SelectedProfileIndex = 0
		}
		return m, nil
	case "ctrl+d":
		if len(m.Profiles) == 0 || m.DB == nil {
			return m, nil
		}
		doomed := m.Profiles[m.SelectedProfileIndex]
		if err := store.DeleteProfile(m.DB, doomed.ID); err != nil && !errors.Is(err, store.ErrProfileNotFound) {
			m.Notice = fmt.Sprintf("Profile store error: %v", err)
			return m, nil
		}
		m.RefreshProfiles()
		if m.SelectedProfileIndex >= len(m.Profiles) {
			m.SelectedProfileIndex = 0
		}
		_, _ = m.reconcileSelection()
		return m, nil
	case "enter":
		if len(m.Profiles) == 0 {
			return m, nil
		}
		selected := m.Profiles[m.SelectedProfileIndex]
		m.Session.ProfileID = selected.ID
		m.Session.Model = session.ReconcileModel(selected, m.Session.Model)
		m.ProfileSelectorOpen = false
		return m, nil
	}
	return m, nil
}

func (m *Model) updateModelSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modelList := m.activeModelList()
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+b":
		m.ModelSelectorOpen = false
		return m, nil
	case "up", "k":
		if len(modelList) == 0 {
			return m, nil
		}
		m.SelectedModelIndex--
		if m.SelectedModelIndex < 0 {
			m.SelectedModelIndex = len(modelList) - 1
		}
		m.SyncModelViewportScroll()
		m.UpdateModelSelectorContent()
		return m, nil
	case "down", "j":
		if len(modelList) == 0 {
			return m, nil
		}
		m.SelectedModelIndex++
		if m.SelectedModelIndex >= len(modelList) {
			m.SelectedModelIndex = 0
		}
		m.SyncModelViewportScroll()
		m.UpdateModelSelectorContent()
		return m, nil
	case "enter":
		if len(modelList) > 0 && m.SelectedModelIndex < len(modelList) {
			m.Session.Model = modelList[m.SelectedModelIndex]
		}
		m.ModelSelectorOpen = false
		return m, nil
	}
	return m, nil
}

// sendChatCmd issues the single-shot branch off the UI goroutine and maps
// the outcome onto the placeholder id.
func sendChatCmd(profile models.ApiProfile, model, input string, ex session.Exchange) tea.Cmd {
	return func() tea.Msg {
		content, err := chat.SendChatRequest(context.Background(), profile, model, input, ex.Context)
		if err != nil {
			return RequestFailedMsg{ID: ex.PlaceholderID, Err: err}
		}
		return ResponseMsg{ID: ex.PlaceholderID, Content: content}
	}
}

// readDeltaCmd blocks on the stream channel and returns exactly one
// message, chaining the next read from the Update handler so fragments are
// applied one at a time in delivery order.
func readDeltaCmd(id string, ch <-chan chat.StreamDelta) tea.Cmd {
	return func() tea.Msg {
		delta, ok := <-ch
		if !ok {
			return StreamDoneMsg{ID: id}
		}
		if delta.Err != nil {
			return StreamFailedMsg{ID: id, Err: delta.Err}
		}
		return StreamFragmentMsg{ID: id, Fragment: delta.Fragment, Next: ch}
	}
}

func (m *Model) runEffects(effects []session.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range effects {
		switch e {
		case session.EffectNotify:
			m.UpdateViewport()
		case session.EffectScrollToEnd:
			cmds = append(cmds, tea.Tick(ScrollDebounce, func(time.Time) tea.Msg {
				return ScrollTickMsg{}
			}))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) RefreshProfiles() {
	if m.DBErr != nil || m.DB == nil {
		m.Profiles = nil
		return
	}
	profiles, err := store.ListProfiles(m.DB)
	if err != nil {
		m.Profiles = nil
		m.Err = err
		return
	}
	m.Profiles = profiles
}

// reconcileSelection runs the profile and model fallback chains against the
// last fetched profile list and records the result in the session.
func (m *Model) reconcileSelection() (models.ApiProfile, error) {
	if m.DBErr != nil {
		return models.ApiProfile{}, m.DBErr
	}
	profile, err := session.ReconcileProfile(m.Profiles, m.Session.ProfileID)
	if err != nil {
		return models.ApiProfile{}, err
	}
	m.Session.ProfileID = profile.ID
	m.Session.Model = session.ReconcileModel(profile, m.Session.Model)
	return profile, nil
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.WindowWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	maxInputHeight := 6
	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > maxInputHeight {
		lineCount = maxInputHeight
	}

	m.TextInput.MaxHeight = maxInputHeight
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 5
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}
