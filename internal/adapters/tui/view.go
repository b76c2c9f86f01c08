package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/corey/treescope/internal/adapters/fsnotify"
	"github.com/corey/treescope/internal/domain/outline"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	treePane := m.renderTreePane()
	sourcePane := m.renderSourcePane()

	panes := lipgloss.JoinHorizontal(lipgloss.Top, treePane, sourcePane)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("treescope"),
		panes,
		statusStyle.Width(m.width).Render(statusLine(m)),
	)
}

func (m Model) renderTreePane() string {
	style := paneStyle
	if m.focus == focusTree {
		style = focusedPaneStyle
	}

	var b strings.Builder
	if m.tree == nil {
		b.WriteString(dimStyle.Render("no syntax tree"))
	} else {
		for i, id := range m.visible {
			b.WriteString(m.renderRow(i, id))
			b.WriteString("\n")
		}
	}
	return style.Width(m.treeWidth()).Height(m.paneHeight()).Render(b.String())
}

func (m Model) renderRow(row int, id outline.ItemID) string {
	item := m.tree.Item(id)
	indent := strings.Repeat("  ", depthOf(m.tree, id))

	marker := "  "
	if len(item.Children) > 0 {
		if item.Expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	line := indent + marker + item.Label
	switch {
	case item.Selected:
		return selectedRowStyle.Render(line)
	case row == m.cursor && m.focus == focusTree:
		return cursorRowStyle.Render("> " + line)
	default:
		return "  " + line
	}
}

func (m Model) renderSourcePane() string {
	style := paneStyle
	if m.focus == focusSource {
		style = focusedPaneStyle
	}
	return style.Width(m.sourceWidth()).Height(m.paneHeight()).Render(m.source.View())
}

// renderSource renders the document text with the caret cell inverted.
func renderSource(surface *fsnotify.Surface) string {
	text := surface.Text()
	start, end := caretCell(text, surface.CaretOffset())
	if start == end {
		return text + caretStyle.Render(" ")
	}
	return text[:start] + caretStyle.Render(text[start:end]) + text[end:]
}

// caretCell returns the byte range of the rune the caret lands in, snapped
// to rune boundaries so a caret offset inside a multibyte rune never splits
// it. An empty range means the caret sits past the end of the text.
func caretCell(text string, caret int) (int, int) {
	if caret < 0 {
		caret = 0
	}
	if caret >= len(text) {
		return len(text), len(text)
	}
	for caret > 0 && !utf8.RuneStart(text[caret]) {
		caret--
	}
	_, size := utf8.DecodeRuneInString(text[caret:])
	return caret, caret + size
}
