// Package tui renders a two-pane terminal view of a synchronized document:
// the display tree on the left, the source text on the right. Moving the
// caret in the source pane selects the innermost enclosing tree item;
// activating a tree item selects the node's span in the source. Both
// directions go through the synchronization controller.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/corey/treescope/internal/adapters/fsnotify"
	"github.com/corey/treescope/internal/adapters/host"
	"github.com/corey/treescope/internal/app"
	"github.com/corey/treescope/internal/domain/outline"
	"github.com/corey/treescope/internal/ports"
)

// Run shows the document through the registry — the lifecycle tracker picks
// the notification up and attaches the controller — then blocks in the
// terminal UI until the user quits.
func Run(ctx context.Context, controller *app.Controller, registry *host.Registry, handle ports.DocumentHandle, surface *fsnotify.Surface) error {
	model := NewModel(controller, surface)
	// Showing the document happens inside the program loop (via Init): the
	// attach cascades into outline notifications, which must not be sent
	// before the program is running.
	model.show = func() { registry.Show(handle) }

	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	// Engine events arrive on their own goroutines; forward them into the
	// Bubble Tea loop as messages.
	controller.SetOutlineListener(func(tree *outline.Tree) {
		program.Send(outlineMsg{tree: tree})
	})
	textSub := surface.OnTextChanged(func() {
		program.Send(sourceMsg{})
	})
	defer textSub.Cancel()
	selSub := surface.OnSelectionChanged(func(caret int) {
		program.Send(caretMsg{caret: caret})
	})
	defer selSub.Cancel()

	defer registry.Hide(handle)

	_, err := program.Run()
	return err
}

type focusArea int

const (
	focusTree focusArea = iota
	focusSource
)

type (
	outlineMsg struct{ tree *outline.Tree }
	sourceMsg  struct{}
	caretMsg   struct{ caret int }
)

// Model implements the Bubble Tea Model interface for the two-pane view.
type Model struct {
	controller *app.Controller
	surface    *fsnotify.Surface

	tree    *outline.Tree
	visible []outline.ItemID
	cursor  int

	source viewport.Model

	show func() // deferred document-shown notification, may be nil

	focus  focusArea
	width  int
	height int
	ready  bool
}

// NewModel creates the initial model. The display tree arrives later via an
// outlineMsg once the controller attaches.
func NewModel(controller *app.Controller, surface *fsnotify.Surface) Model {
	return Model{
		controller: controller,
		surface:    surface,
		source:     viewport.New(0, 0),
		focus:      focusTree,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.show == nil {
		return nil
	}
	show := m.show
	return func() tea.Msg {
		show()
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.source.Width = m.sourceWidth()
		m.source.Height = m.paneHeight()
		m.ready = true
		m = m.refreshSource()
		return m, nil

	case outlineMsg:
		m.tree = msg.tree
		m.visible = visibleItems(m.tree)
		m.cursor = cursorFor(m.tree, m.visible, m.cursor)
		return m, nil

	case sourceMsg:
		m = m.refreshSource()
		return m, nil

	case caretMsg:
		m = m.refreshSource()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.source, cmd = m.source.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.focus == focusTree {
			m.focus = focusSource
		} else {
			m.focus = focusTree
		}
		return m, nil
	}

	if m.focus == focusTree {
		return m.handleTreeKey(msg)
	}
	return m.handleSourceKey(msg)
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "right", "l":
		if item := m.cursorItem(); item != nil {
			item.Expanded = true
			m.visible = visibleItems(m.tree)
		}
	case "left", "h":
		if item := m.cursorItem(); item != nil {
			item.Expanded = false
			m.visible = visibleItems(m.tree)
			m.cursor = cursorFor(m.tree, m.visible, m.cursor)
		}
	case "enter", " ":
		if item := m.cursorItem(); item != nil {
			m.controller.ActivateItem(item.ID)
			m = m.refreshSource()
		}
	}
	return m, nil
}

func (m Model) handleSourceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "right":
		m.surface.MoveCaret(m.surface.CaretOffset() + 1)
		m.visible = visibleItems(m.tree)
		m.cursor = cursorFor(m.tree, m.visible, m.cursor)
		m = m.refreshSource()
		return m, nil
	case "left":
		m.surface.MoveCaret(m.surface.CaretOffset() - 1)
		m.visible = visibleItems(m.tree)
		m.cursor = cursorFor(m.tree, m.visible, m.cursor)
		m = m.refreshSource()
		return m, nil
	}

	var cmd tea.Cmd
	m.source, cmd = m.source.Update(msg)
	return m, cmd
}

func (m Model) cursorItem() *outline.Item {
	if m.tree == nil || m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.tree.Item(m.visible[m.cursor])
}

func (m Model) refreshSource() Model {
	if !m.ready {
		return m
	}
	m.source.SetContent(renderSource(m.surface))
	return m
}

func (m Model) treeWidth() int   { return m.width / 2 }
func (m Model) sourceWidth() int { return m.width - m.treeWidth() - 4 }
func (m Model) paneHeight() int  { return m.height - 4 }

// visibleItems flattens the display tree to the rows currently on screen:
// a child is visible only while every ancestor is expanded.
func visibleItems(tree *outline.Tree) []outline.ItemID {
	if tree == nil || tree.Root() == nil {
		return nil
	}
	var ids []outline.ItemID
	var walk func(item *outline.Item)
	walk = func(item *outline.Item) {
		ids = append(ids, item.ID)
		if !item.Expanded {
			return
		}
		for _, child := range item.Children {
			walk(child)
		}
	}
	walk(tree.Root())
	return ids
}

// cursorFor keeps the cursor on the selected item when there is one, and
// clamps it to the visible rows otherwise.
func cursorFor(tree *outline.Tree, visible []outline.ItemID, cursor int) int {
	if tree != nil {
		if selected, ok := tree.Selected(); ok {
			for i, id := range visible {
				if id == selected {
					return i
				}
			}
		}
	}
	if cursor >= len(visible) {
		cursor = len(visible) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// depthOf counts ancestors of id for indentation.
func depthOf(tree *outline.Tree, id outline.ItemID) int {
	depth := 0
	for {
		parent, ok := tree.Parent(id)
		if !ok {
			return depth
		}
		depth++
		id = parent
	}
}

func statusLine(m Model) string {
	caret := m.surface.CaretOffset()
	s := fmt.Sprintf(" %s | caret %d", m.surface.Path(), caret)
	if sel, ok := m.surface.Selection(); ok {
		s += fmt.Sprintf(" | selection %s", sel)
	}
	return s
}
