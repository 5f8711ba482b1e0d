package tui

import (
	"fmt"
	"strings"

	"tidytab/domain/cleaning"
	"tidytab/domain/table"

	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateSelecting state = iota
	stateApplying
	stateComplete
	stateError
)

// ApplyFunc applies the decision and returns a short description of the result
type ApplyFunc func(cleaning.Decision) (string, error)

// candidate is one column listed for removal
type candidate struct {
	name  string
	group int
	first bool
}

type Model struct {
	state      state
	filename   string
	preview    btable.Model
	candidates []candidate
	remove     map[string]bool
	ignore     bool
	cursor     int
	apply      ApplyFunc
	result     string
	err        error
	width      int
}

type appliedMsg struct {
	result string
	err    error
}

// NewModel lists every column of every duplicate group. All but the first
// column of each group start marked for removal.
func NewModel(filename string, preview table.Preview, groups []table.DuplicateGroup, apply ApplyFunc) Model {
	m := Model{
		state:    stateSelecting,
		filename: filename,
		preview:  newPreviewTable(preview),
		remove:   make(map[string]bool),
		apply:    apply,
	}
	for g, group := range groups {
		for i, name := range group.Columns {
			m.candidates = append(m.candidates, candidate{name: name, group: g, first: i == 0})
		}
	}
	for _, name := range table.DuplicateColumns(groups) {
		m.remove[name] = true
	}
	return m
}

func newPreviewTable(p table.Preview) btable.Model {
	columns := make([]btable.Column, len(p.Columns))
	for i, name := range p.Columns {
		width := len(name)
		for _, row := range p.Rows {
			if len(row[i]) > width {
				width = len(row[i])
			}
		}
		if width > 24 {
			width = 24
		}
		columns[i] = btable.Column{Title: name, Width: width + 1}
	}
	rows := make([]btable.Row, len(p.Rows))
	for i, row := range p.Rows {
		rows[i] = btable.Row(row)
	}

	t := btable.New(
		btable.WithColumns(columns),
		btable.WithRows(rows),
		btable.WithHeight(len(rows)+1),
		btable.WithFocused(false),
	)
	return t
}

// Decision returns the decision the current selection represents
func (m Model) Decision() cleaning.Decision {
	if m.ignore {
		return cleaning.IgnoreDuplicates()
	}
	var names []string
	for _, c := range m.candidates {
		if m.remove[c.name] {
			names = append(names, c.name)
		}
	}
	return cleaning.RemoveColumns(names...)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateSelecting:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(m.candidates)-1 {
					m.cursor++
				}
			case " ":
				if len(m.candidates) > 0 {
					name := m.candidates[m.cursor].name
					m.remove[name] = !m.remove[name]
				}
			case "i":
				m.ignore = !m.ignore
			case "enter":
				m.state = stateApplying
				return m, m.applyDecision()
			}

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case appliedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil
	}

	return m, nil
}

func (m Model) applyDecision() tea.Cmd {
	decision := m.Decision()
	apply := m.apply
	return func() tea.Msg {
		result, err := apply(decision)
		return appliedMsg{result: result, err: err}
	}
}

// Err returns the error that ended the session, if any
func (m Model) Err() error {
	return m.err
}

func (m Model) View() string {
	switch m.state {
	case stateSelecting:
		return m.viewSelecting()
	case stateApplying:
		return BoxStyle.Render(TitleStyle.Render("Applying...") + "\n")
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewSelecting() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Duplicate columns"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", m.filename)))
	s.WriteString("\n")
	s.WriteString(m.preview.View())
	s.WriteString("\n\n")

	if len(m.candidates) == 0 {
		s.WriteString(SuccessStyle.Render("✓ No duplicate columns found"))
		s.WriteString("\n")
	}

	group := -1
	for i, c := range m.candidates {
		if c.group != group {
			group = c.group
			s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Group %d", group+1)))
			s.WriteString("\n")
		}

		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		checked := " "
		if m.remove[c.name] && !m.ignore {
			checked = "x"
		}
		line := fmt.Sprintf("%s [%s] %s", cursor, checked, c.name)

		switch {
		case m.cursor == i:
			line = SelectedStyle.Render(line)
		case m.remove[c.name] && !m.ignore:
			line = CheckedStyle.Render(line)
		default:
			line = KeptStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	if m.ignore {
		s.WriteString("\n")
		s.WriteString(CheckedStyle.Render("Keeping every column (ignore duplicates)"))
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: toggle removal • i: ignore duplicates • enter: apply • q: quit"))

	box := BoxStyle
	if m.width > 0 {
		box = box.MaxWidth(m.width)
	}
	return box.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder
	s.WriteString(TitleStyle.Render("✓ Cleaned"))
	s.WriteString("\n\n")
	s.WriteString(m.result)
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press enter to exit"))
	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder
	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press enter to exit"))
	return BoxStyle.Render(s.String())
}
