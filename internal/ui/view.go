package ui

import (
	"fmt"
	"strings"

	"parley/internal/models"
	"parley/internal/styles"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) activeProfile() (models.ApiProfile, bool) {
	for _, p := range m.Profiles {
		if p.ID == m.Session.ProfileID {
			return p, true
		}
	}
	return models.ApiProfile{}, false
}

func (m *Model) activeProfileIndex() int {
	for i, p := range m.Profiles {
		if p.ID == m.Session.ProfileID {
			return i
		}
	}
	return 0
}

func (m *Model) activeModelList() []string {
	if p, ok := m.activeProfile(); ok {
		return p.ModelList()
	}
	return nil
}

func (m *Model) activeModelIndex() int {
	for i, mdl := range m.activeModelList() {
		if mdl == m.Session.Model {
			return i
		}
	}
	return 0
}

func (m *Model) UpdateModelSelectorContent() {
	modelList := m.activeModelList()
	var items []string
	for i, mdl := range modelList {
		isSelected := i == m.SelectedModelIndex
		isCurrent := m.Session.Model == mdl

		displayName := mdl
		if isCurrent {
			displayName = "● " + displayName
		} else {
			displayName = "  " + displayName
		}

		var styledItem string
		if isSelected {
			styledItem = styles.ModalSelectedStyle.Width(styles.ContentWidth).Render(displayName)
		} else {
			style := styles.ModalItemStyle.Width(styles.ContentWidth)
			if isCurrent {
				style = style.Foreground(lipgloss.Color("#FFB74D"))
			} else {
				style = style.Foreground(lipgloss.AdaptiveColor{Light: "#1a1a2e", Dark: "#FFFFFF"})
			}
			styledItem = style.Render(displayName)
		}

		items = append(items, styledItem)
	}

	if len(items) == 0 {
		items = append(items, styles.ModalItemStyle.Render(
			lipgloss.NewStyle().Foreground(styles.HintColor).Render("No models on this profile")))
	}

	m.ModalViewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m *Model) SyncModelViewportScroll() {
	const itemHeight = 1
	currentY := m.SelectedModelIndex * itemHeight
	if currentY+itemHeight > m.ModalViewport.YOffset+m.ModalViewport.Height {
		m.ModalViewport.SetYOffset(currentY + itemHeight - m.ModalViewport.Height)
	}
	if currentY < m.ModalViewport.YOffset {
		m.ModalViewport.SetYOffset(currentY)
	}
}

func (m *Model) RenderModelSelector() string {
	title := styles.ModalTitleStyle.Render("Select Model")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.ModalViewport.View())

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: navigate • Enter: select • Esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderProfileSelector() string {
	title := styles.ModalTitleStyle.Render(fmt.Sprintf("API Profiles (%d)", len(m.Profiles)))

	var body string
	if len(m.Profiles) == 0 {
		body = styles.ModalItemStyle.Render(
			lipgloss.NewStyle().Foreground(styles.HintColor).Render("No profiles saved"))
	} else {
		items := make([]string, 0, len(m.Profiles))
		for i, p := range m.Profiles {
			isSelected := i == m.SelectedProfileIndex
			isCurrent := p.ID == m.Session.ProfileID

			marker := "  "
			if isCurrent {
				marker = "● "
			}
			label := marker + p.ServiceName
			detail := lipgloss.NewStyle().Foreground(styles.HintColor).Render(
				TruncateRunes(p.BaseURL, styles.ContentWidth-len(label)-4))

			itemContent := fmt.Sprintf("%s %s", label, detail)
			if isSelected {
				items = append(items, styles.ModalSelectedStyle.Render(itemContent))
			} else {
				items = append(items, styles.ModalItemStyle.Render(itemContent))
			}
		}
		body = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: navigate • Enter: select • Ctrl+D: delete • Esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderShortcutsModal() string {
	title := styles.ModalTitleStyle.Render("Keyboard Shortcuts")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Ctrl+C", "Quit"},
		{"Ctrl+N", "New Session"},
		{"Ctrl+P", "Select API Profile"},
		{"Ctrl+B", "Select Model"},
		{"Ctrl+T", "Toggle Streaming"},
		{"Ctrl+S", "View Shortcuts (this menu)"},
		{"Shift+Enter", "Insert Newline"},
	}

	var items []string
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFCC80")).
		Bold(true).
		Width(13)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E0E0E0"))

	for _, s := range shortcuts {
		line := fmt.Sprintf("%s %s", keyStyle.Render(s.key), descStyle.Render(s.desc))
		items = append(items, styles.ModalItemStyle.Render(line))
	}

	listContent := lipgloss.JoinVertical(lipgloss.Left, items...)
	content := lipgloss.JoinVertical(lipgloss.Left, title, listContent)

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Esc/Enter: close")

	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

func (m *Model) RenderNotice() string {
	title := styles.ModalTitleStyle.Render("Notice")
	body := lipgloss.NewStyle().Width(styles.ContentWidth).Render(m.Notice)
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Any key: dismiss")
	return lipgloss.JoinVertical(lipgloss.Left, title, body, hint)
}

func (m *Model) RenderBottomBar() string {
	profileName := "no profile"
	if p, ok := m.activeProfile(); ok {
		profileName = p.ServiceName
	}
	profile := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#3A5A57")).
		Padding(0, 1).
		Render(TruncateRunes(profileName, 20))

	modelName := m.Session.Model
	if modelName == "" {
		modelName = "no model"
	}
	model := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#80CBC4")).
		Render(TruncateRunes(modelName, 30))

	streamLabel := "stream: off"
	streamColor := "#888888"
	if m.Session.Streaming {
		streamLabel = "stream: on"
		streamColor = "#A5D6A7"
	}
	stream := lipgloss.NewStyle().
		Foreground(lipgloss.Color(streamColor)).
		Render(streamLabel)

	count := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Render(fmt.Sprintf("msgs: %d", len(m.Session.Messages)))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Render("Help: ^S")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, profile, "  ", model)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, stream, "  ", count, "  ", help)

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	spacer := strings.Repeat(" ", availableWidth)

	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, spacer, rightSide)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(0, 1).
		Render(bar)
}

func GetWelcomeScreen(width, height int) string {
	art := `
 ╭─────────────────────────────────────────────╮
 │                                             │
 │   ██████╗  █████╗ ██████╗ ██╗     ███████╗  │
 │   ██╔══██╗██╔══██╗██╔══██╗██║     ██╔════╝  │
 │   ██████╔╝███████║██████╔╝██║     █████╗    │
 │   ██╔═══╝ ██╔══██║██╔══██╗██║     ██╔══╝    │
 │   ██║     ██║  ██║██║  ██║███████╗███████╗  │
 │   ╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚══════╝  │
 │                                             │
 ╰─────────────────────────────────────────────╯
`
	subtitle := "Any endpoint, any model, one transcript."

	styledArt := styles.WelcomeArtStyle.Render(art)
	styledSubtitle := styles.WelcomeSubtitleStyle.Render(subtitle)

	content := lipgloss.JoinVertical(lipgloss.Center, styledArt, "", styledSubtitle)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// UpdateViewport rebuilds the transcript from the session state. It does
// not scroll; scroll-to-end arrives separately after the debounce tick.
func (m *Model) UpdateViewport() {
	if len(m.Session.Messages) == 0 {
		m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
		return
	}

	blocks := make([]string, 0, len(m.Session.Messages))
	for i, msg := range m.Session.Messages {
		if msg.IsUser {
			blocks = append(blocks, FormatUserMessage(msg.Content, m.Viewport.Width, i == 0))
			continue
		}
		blocks = append(blocks, m.formatAssistantMessage(msg))
	}

	m.Viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m *Model) formatAssistantMessage(msg models.ChatMessage) string {
	switch msg.State {
	case models.StatePending:
		return FormatAssistantMessage(fmt.Sprintf("%s Waiting for response...", m.Spinner.View()))
	case models.StateStreaming:
		return FormatAssistantMessage(msg.Content + "▋")
	case models.StateFailed:
		return FormatAssistantMessage(styles.ErrorStyle.Render(msg.Content))
	default:
		displayContent := msg.Content
		if m.Renderer != nil {
			if rendered, err := m.Renderer.Render(msg.Content); err == nil {
				displayContent = strings.TrimSpace(rendered)
			}
		}
		return FormatAssistantMessage(displayContent)
	}
}

func (m *Model) View() string {
	inputWidth := m.WindowWidth - 4
	inputBox := styles.InputBoxStyle.Width(inputWidth).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("PARLEY"),
		"",
		m.Viewport.View(),
		"",
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.WindowWidth, lipgloss.Center, chatContent)
	bottomBar := m.RenderBottomBar()

	content := lipgloss.JoinVertical(lipgloss.Left, chatArea, bottomBar)

	var modal string
	switch {
	case m.Notice != "":
		modal = m.RenderNotice()
	case m.ProfileSelectorOpen:
		modal = m.RenderProfileSelector()
	case m.ModelSelectorOpen:
		modal = m.RenderModelSelector()
	case m.ShortcutsOpen:
		modal = m.RenderShortcutsModal()
	default:
		return content
	}

	modal = styles.ModalStyle.Width(ModalWidth).Render(modal)
	return lipgloss.Place(
		m.WindowWidth,
		m.WindowHeight,
		lipgloss.Center,
		lipgloss.Center,
		modal,
	)
}
