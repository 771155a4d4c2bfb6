package prompt

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/twig/internal/ui/styles"
)

const maxVisible = 10

// multiSelectModel toggles entries of a fuzzy-filtered list with space.
type multiSelectModel struct {
	title     string
	options   []string
	filtered  []int // indices into options
	cursor    int   // position in filtered
	selected  map[int]bool
	filter    string
	done      bool
	cancelled bool
}

func newMultiSelectModel(title string, options []string) *multiSelectModel {
	m := &multiSelectModel{
		title:    title,
		options:  options,
		selected: make(map[int]bool),
	}
	m.applyFilter()
	return m
}

// Selected returns the chosen option indices in ascending order.
func (m *multiSelectModel) Selected() []int {
	out := make([]int, 0, len(m.selected))
	for idx := range m.selected {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

func (m *multiSelectModel) applyFilter() {
	m.filtered = m.filtered[:0]
	if m.filter == "" {
		for i := range m.options {
			m.filtered = append(m.filtered, i)
		}
	} else {
		for _, match := range fuzzy.Find(m.filter, m.options) {
			m.filtered = append(m.filtered, match.Index)
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

func (m *multiSelectModel) Init() tea.Cmd {
	return nil
}

func (m *multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	case "enter":
		// nothing toggled means the highlighted row
		if len(m.selected) == 0 && len(m.filtered) > 0 {
			m.selected[m.filtered[m.cursor]] = true
		}
		if len(m.selected) == 0 {
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "ctrl+n":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case "space", " ", "tab":
		if len(m.filtered) > 0 {
			idx := m.filtered[m.cursor]
			if m.selected[idx] {
				delete(m.selected, idx)
			} else {
				m.selected[idx] = true
			}
		}
	case "ctrl+a":
		allSelected := true
		for _, idx := range m.filtered {
			allSelected = allSelected && m.selected[idx]
		}
		for _, idx := range m.filtered {
			if allSelected {
				delete(m.selected, idx)
			} else {
				m.selected[idx] = true
			}
		}
	case "backspace":
		if m.filter != "" {
			r := []rune(m.filter)
			m.filter = string(r[:len(r)-1])
			m.applyFilter()
		}
	default:
		if key.Text != "" {
			m.filter += key.Text
			m.applyFilter()
		}
	}
	return m, nil
}

func (m *multiSelectModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d selected)\n", styles.Bold.Render(m.title), len(m.selected))
	fmt.Fprintf(&b, "%s%s\n\n", styles.MutedStyle.Render("Filter: "), m.filter)

	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := min(start+maxVisible, len(m.filtered))

	if len(m.filtered) == 0 {
		b.WriteString(styles.MutedStyle.Render("  no matches") + "\n")
	}
	for pos := start; pos < end; pos++ {
		idx := m.filtered[pos]
		box := "[ ]"
		if m.selected[idx] {
			box = styles.SuccessStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", box, m.options[idx])
		if pos == m.cursor {
			b.WriteString(styles.AccentStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + styles.InfoStyle.Render("space toggle • ctrl+a all • enter confirm • esc cancel"))
	return tea.NewView(b.String())
}
