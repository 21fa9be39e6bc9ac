package ui

import (
	"time"

	"parley/internal/session"
	"parley/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func InitialModel() Model {
	ti := textarea.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 6
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#80CBC4")).Bold(true)
	ti.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#80CBC4")).Bold(true)
	ti.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#80CBC4"))

	vp := viewport.New(60, 15)
	mvp := viewport.New(ModalWidth-4, 15)

	dbConn, dbErr := store.Open()
	if dbErr == nil {
		_, _ = store.SeedDefaultProfile(dbConn, time.Now().Unix())
	}

	m := Model{
		TextInput:     ti,
		Viewport:      vp,
		ModalViewport: mvp,
		Spinner:       sp,
		DB:            dbConn,
		DBErr:         dbErr,
		Session:       session.New(),
	}
	m.RefreshProfiles()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
	)
}

func NewProgram() *tea.Program {
	m := InitialModel()
	return tea.NewProgram(&m, tea.WithAltScreen())
}
