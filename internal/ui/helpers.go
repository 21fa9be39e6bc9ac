package ui

import (
	"fmt"
	"strings"

	"parley/internal/styles"

	"github.com/mattn/go-runewidth"
)

func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// WrappedLineCount estimates how many lines a string occupies when wrapped
// at the given display width. Used to grow the input box as the user types.
func WrappedLineCount(value string, width int) int {
	if width < 1 {
		return 1
	}
	lines := strings.Split(value, "\n")
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w + width - 1) / width
	}
	if count < 1 {
		count = 1
	}
	return count
}

func FormatUserMessage(content string, width int, isFirst bool) string {
	label := styles.UserLabelStyle.Render("YOU")
	msg := styles.UserMsgStyle.Width(width - 4).Render(content)
	if isFirst {
		return fmt.Sprintf("\n%s\n%s", label, msg)
	}
	return fmt.Sprintf("%s\n%s", label, msg)
}

func FormatAssistantMessage(content string) string {
	label := styles.AiLabelStyle.Render("PARLEY")
	msg := styles.AiMsgStyle.Render(content)
	return fmt.Sprintf("%s\n%s", label, msg)
}
