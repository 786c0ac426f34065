package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// CategoryPicker - Interactive category selection
// =============================================================================

// CategoryPicker is the bubbletea model for choosing a design's category.
type CategoryPicker struct {
	Design   string
	Entries  []catalog.Entry
	Cursor   int
	Selected *catalog.Entry
}

// NewCategoryPicker creates a picker for one design.
func NewCategoryPicker(design string, entries []catalog.Entry) CategoryPicker {
	return CategoryPicker{Design: design, Entries: entries}
}

func (m CategoryPicker) Init() tea.Cmd {
	return nil
}

func (m CategoryPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Entries[m.Cursor]
			return m, tea.Quit
		default:
			// Number keys jump straight to an entry.
			if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
				if i := int(k[0] - '1'); i < len(m.Entries) {
					m.Cursor = i
					m.Selected = &m.Entries[i]
					return m, tea.Quit
				}
			}
		}
	}
	return m, nil
}

func (m CategoryPicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Category for " + filepath.Base(m.Design)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  1-9 quick pick  q quit"))
	b.WriteString("\n\n")

	for i, e := range m.Entries {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%d  %-22s %s", cursor, i+1, e.DisplayName(),
			listDimStyle.Render(fmt.Sprintf("%g cm", e.Width)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pickCategory runs the picker and returns the chosen category.
func pickCategory(entries []catalog.Entry, design string) (catalog.Category, error) {
	final, err := tea.NewProgram(NewCategoryPicker(design, entries)).Run()
	if err != nil {
		return "", fmt.Errorf("category picker: %w", err)
	}
	m, ok := final.(CategoryPicker)
	if !ok || m.Selected == nil {
		return "", errors.New(errors.ErrCodeInvalidCategory, "no category chosen for %s", filepath.Base(design))
	}
	return m.Selected.Category, nil
}
