// Package ui is the terminal front end for the todo client.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gin-todo/client"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusAdd
	focusEdit
)

type keyMap struct {
	Up, Down, Search, Add, Edit, Toggle, Delete, Reload, Submit, Cancel, Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Add, k.Edit, k.Toggle, k.Delete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Search, k.Add, k.Edit, k.Delete},
		{k.Submit, k.Cancel, k.Reload, k.Quit},
	}
}

// syncedMsg reports the outcome of a hook operation run as a command.
type syncedMsg struct {
	op  string
	err error
}

type Model struct {
	ctx  context.Context
	hook *client.Hook

	focus  focus
	cursor int

	search textinput.Model
	add    textinput.Model
	edit   textinput.Model

	keys   keyMap
	help   help.Model
	status string
	width  int
}

func New(ctx context.Context, hook *client.Hook) Model {
	return Model{
		ctx:    ctx,
		hook:   hook,
		search: newTextInput("Search plan"),
		add:    newTextInput("What's your plan?"),
		edit:   newTextInput("Edit item"),
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  80,
	}
}

func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return syncedMsg{op: op, err: fn(m.ctx)}
	}
}

func (m Model) Init() tea.Cmd {
	return m.run("load", m.hook.Load)
}

func (m Model) selected() (client.Todo, bool) {
	todos := m.hook.Filtered()
	if m.cursor < 0 || m.cursor >= len(todos) {
		return client.Todo{}, false
	}
	return todos[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.hook.Filtered())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setFocus(f focus) {
	m.search.Blur()
	m.add.Blur()
	m.edit.Blur()
	switch f {
	case focusSearch:
		m.search.Focus()
	case focusAdd:
		m.add.Focus()
	case focusEdit:
		m.edit.Focus()
	}
	m.focus = f
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case syncedMsg:
		if msg.err != nil {
			m.status = msg.op + " failed: " + msg.err.Error()
		} else {
			m.status = ""
		}
		state := m.hook.State()
		m.add.SetValue(state.AddText)
		if m.focus == focusEdit && !state.Editing {
			m.setFocus(focusList)
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusSearch:
			return m.updateSearch(msg)
		case focusAdd:
			return m.updateAdd(msg)
		case focusEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Cancel):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.hook.Filtered())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Search):
		m.setFocus(focusSearch)
	case key.Matches(msg, m.keys.Add):
		m.setFocus(focusAdd)
	case key.Matches(msg, m.keys.Reload):
		return m, m.run("load", m.hook.Load)
	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok || t.Completed {
			return m, nil
		}
		m.hook.StartEdit(t.ID, t.Title)
		m.edit.SetValue(t.Title)
		m.edit.CursorEnd()
		m.setFocus(focusEdit)
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.run("toggle", func(ctx context.Context) error { return m.hook.Toggle(ctx, t.ID) })
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			return m, m.run("delete", func(ctx context.Context) error { return m.hook.Remove(ctx, t.ID) })
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) || key.Matches(msg, m.keys.Cancel) {
		m.setFocus(focusList)
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.hook.SetSearchText(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.setFocus(focusList)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.run("add", m.hook.Add)
	}
	var cmd tea.Cmd
	m.add, cmd = m.add.Update(msg)
	m.hook.SetAddText(m.add.Value())
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.hook.State()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.hook.CancelEdit()
		m.setFocus(focusList)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		id := state.EditingID
		return m, m.run("edit", func(ctx context.Context) error { return m.hook.SaveEdit(ctx, id) })
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	m.hook.SetEditValue(m.edit.Value())
	return m, cmd
}

func (m Model) View() string {
	state := m.hook.State()
	todos := client.FilterTodos(state.Todos, state.SearchText)

	var b strings.Builder
	b.WriteString(titleStyle.Render("To Do List"))
	b.WriteString("\n")
	b.WriteString(textInputView(m.search, m.width))
	b.WriteString("\n\n")

	if len(todos) == 0 {
		b.WriteString(mutedStyle.Render("No items found"))
		b.WriteString("\n")
	}
	for i, t := range todos {
		editing := state.Editing && state.EditingID == t.ID
		editView := ""
		if editing {
			editView = m.edit.View()
		}
		b.WriteString(todoRow(t, i == m.cursor && m.focus != focusSearch, editing, editView))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		textInputView(m.add, m.width-10),
		" ",
		iconButton("a", "add", addColor),
	))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return panelStyle.Render(b.String())
}
