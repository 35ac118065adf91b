// Package menu provides the entry view listing what the TUI can do.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// Entry is one selectable line of the menu. An entry with Target set to
// ViewMenu exits the application.
type Entry struct {
	Title  string
	Hint   string
	Target messages.ViewType
}

func (e Entry) exits() bool {
	return e.Target == messages.ViewMenu
}

// DefaultEntries returns the entries shown on start-up.
func DefaultEntries() []Entry {
	return []Entry{
		{Title: "Ask a question", Hint: "answer from your documents or the web", Target: messages.ViewAsk},
		{Title: "Health", Hint: "check the embedding, llm and web search services", Target: messages.ViewHealth},
		{Title: "Help", Hint: "list keybindings", Target: messages.ViewHelp},
		{Title: "Quit", Hint: "leave sercha-rag", Target: messages.ViewMenu},
	}
}

// View is the start-up menu.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	entries []Entry
	cursor  int
	width   int
	ready   bool
}

// NewView creates the menu with the default entries.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		entries: DefaultEntries(),
		width:   80,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens entries. Digits 1-9 open the entry at
// that position directly.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.cursor = max(v.cursor-1, 0)
	case keymap.Matches(k, v.keymap.Down):
		v.cursor = min(v.cursor+1, len(v.entries)-1)
	case keymap.Matches(k, v.keymap.Ask):
		return v.open(v.cursor)
	case keymap.Matches(k, v.keymap.Help):
		return changeView(messages.ViewHelp)
	case keymap.Matches(k, v.keymap.Quit):
		return tea.Quit
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(v.entries) {
			v.cursor = n - 1
			return v.open(v.cursor)
		}
	}
	return nil
}

func (v *View) open(i int) tea.Cmd {
	e := v.entries[i]
	if e.exits() {
		return tea.Quit
	}
	return changeView(e.Target)
}

func changeView(target messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		return messages.ViewChanged{View: target}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	lines := []string{
		v.styles.Title.Render("sercha-rag"),
		v.styles.Muted.Render("Retrieval-augmented answers"),
		"",
	}
	for i, e := range v.entries {
		label := fmt.Sprintf("%d  %s", i+1, e.Title)
		if i == v.cursor {
			lines = append(lines, v.styles.Selected.Render("> "+label))
			if v.width >= 50 {
				lines = append(lines, v.styles.Muted.Render("     "+e.Hint))
			}
			continue
		}
		lines = append(lines, v.styles.Normal.Render("  "+label))
	}
	lines = append(lines, "", v.styles.Help.Render(v.helpLine()))
	return strings.Join(lines, "\n")
}

func (v *View) helpLine() string {
	parts := make([]string, 0, 4)
	for _, b := range []struct{ keys, desc string }{
		{v.keymap.Up.Help().Key + " " + v.keymap.Down.Help().Key, "move"},
		{v.keymap.Ask.Help().Key, "open"},
		{"1-" + strconv.Itoa(len(v.entries)), "jump"},
		{v.keymap.Quit.Help().Key, "quit"},
	} {
		parts = append(parts, b.keys+" "+b.desc)
	}
	return strings.Join(parts, " • ")
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, _ int) {
	v.width = width
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}

// Entries returns the menu entries.
func (v *View) Entries() []Entry {
	return v.entries
}
