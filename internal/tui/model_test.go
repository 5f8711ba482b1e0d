package tui

import (
	"fmt"
	"testing"

	"tidytab/domain/cleaning"
	"tidytab/domain/table"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abcModel(apply ApplyFunc) Model {
	t := table.Normalize(&table.Raw{
		Headers: []string{"A", "B", "C", "D"},
		Rows:    [][]string{{"1", "x", "1", "x"}, {"2", "y", "2", "y"}},
	})
	return NewModel("abc.csv", t.Head(10, 0), table.DetectDuplicates(t), apply)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keySpace  = tea.KeyMsg{Type: tea.KeySpace}
	keyIgnore = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}}
)

func TestNewModel_PreselectsLaterGroupMembers(t *testing.T) {
	m := abcModel(nil)

	assert.Len(t, m.candidates, 4)
	assert.Equal(t, cleaning.RemoveColumns("c", "d"), m.Decision())
	assert.Contains(t, m.View(), "Group 2")
}

func TestUpdate_ToggleAndIgnore(t *testing.T) {
	m := abcModel(nil)

	m = press(t, m, keySpace)
	assert.Equal(t, cleaning.RemoveColumns("a", "c", "d"), m.Decision())

	m = press(t, m, keyDown, keySpace)
	assert.Equal(t, cleaning.RemoveColumns("a", "d"), m.Decision())

	m = press(t, m, keyIgnore)
	assert.True(t, m.Decision().Ignore)
}

func TestUpdate_EnterApplies(t *testing.T) {
	var got cleaning.Decision
	m := abcModel(func(d cleaning.Decision) (string, error) {
		got = d
		return "wrote cleaned.csv", nil
	})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, stateApplying, m.state)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, stateComplete, m.state)
	assert.Equal(t, cleaning.RemoveColumns("c", "d"), got)
	assert.Contains(t, m.View(), "wrote cleaned.csv")
}

func TestUpdate_ApplyError(t *testing.T) {
	m := abcModel(func(cleaning.Decision) (string, error) {
		return "", fmt.Errorf("disk full")
	})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)

	assert.Equal(t, stateError, m.state)
	assert.EqualError(t, m.Err(), "disk full")
}
