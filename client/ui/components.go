package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"gin-todo/client"
)

// newTextInput builds the single-line input used for search, add and edit.
func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func textInputView(ti textinput.Model, width int) string {
	style := inputStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	if ti.Focused() {
		style = style.BorderForeground(lipgloss.Color("12"))
	}
	return style.Render(ti.View())
}

// iconButton renders a key hint as a coloured badge.
func iconButton(key, label string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.Color("#000000")).
		Padding(0, 1).
		Render(key + " " + label)
}

func checkbox(done bool) string {
	if done {
		return successStyle.Render(boxChecked)
	}
	return mutedStyle.Render(boxUnchecked)
}

// todoRow renders one list entry. The editing row shows the edit input in
// place of the checkbox and title.
func todoRow(t client.Todo, selected, editing bool, editView string) string {
	prefix := "  "
	if selected {
		prefix = selectedStyle.Render("> ")
	}

	var body string
	if editing {
		body = editView
	} else {
		title := t.Title
		if t.Completed {
			title = doneStyle.Render(title)
		}
		body = checkbox(t.Completed) + " " + title
	}

	if !selected {
		return prefix + body
	}

	var buttons []string
	switch {
	case editing:
		buttons = append(buttons, iconButton("enter", "save", saveColor))
	case !t.Completed:
		buttons = append(buttons, iconButton("e", "edit", editColor))
	}
	buttons = append(buttons, iconButton("d", "delete", deleteColor))
	return prefix + body + "  " + strings.Join(buttons, " ")
}
