package client

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// State is a snapshot of everything the UI renders.
type State struct {
	Todos      []Todo
	AddText    string
	SearchText string
	Editing    bool
	EditingID  int
	EditValue  string
}

// Hook holds the client-side list and input state. Every mutation is sent to
// the server and followed by a full reload; nothing is patched locally.
//
// The mutex only protects memory. Overlapping reloads are not ordered, so the
// last one to finish wins.
type Hook struct {
	api    API
	logger *log.Logger

	mu    sync.Mutex
	state State
}

func NewHook(api API, logger *log.Logger) *Hook {
	if logger == nil {
		logger = log.Default()
	}
	return &Hook{api: api, logger: logger}
}

func (h *Hook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.state
	s.Todos = append([]Todo(nil), h.state.Todos...)
	return s
}

// Filtered returns the todos whose title contains the search text,
// ignoring case.
func (h *Hook) Filtered() []Todo {
	s := h.State()
	return FilterTodos(s.Todos, s.SearchText)
}

func FilterTodos(todos []Todo, search string) []Todo {
	needle := strings.ToLower(search)
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

func (h *Hook) SetAddText(s string) {
	h.mu.Lock()
	h.state.AddText = s
	h.mu.Unlock()
}

func (h *Hook) SetSearchText(s string) {
	h.mu.Lock()
	h.state.SearchText = s
	h.mu.Unlock()
}

func (h *Hook) SetEditValue(s string) {
	h.mu.Lock()
	h.state.EditValue = s
	h.mu.Unlock()
}

// Load replaces the local list with the server's. On failure the previous
// list is kept.
func (h *Hook) Load(ctx context.Context) error {
	todos, err := h.api.List(ctx)
	if err != nil {
		h.logger.Error("Failed to load todos", "err", err)
		return err
	}
	h.mu.Lock()
	h.state.Todos = todos
	h.mu.Unlock()
	return nil
}

func (h *Hook) Add(ctx context.Context) error {
	h.mu.Lock()
	title := h.state.AddText
	h.mu.Unlock()
	if strings.TrimSpace(title) == "" {
		return nil
	}

	if err := h.api.Create(ctx, title); err != nil {
		h.logger.Error("Failed to add todo", "err", err)
		return err
	}
	h.SetAddText("")
	return h.Load(ctx)
}

func (h *Hook) Remove(ctx context.Context, id int) error {
	if err := h.api.Delete(ctx, id); err != nil {
		h.logger.Error("Failed to delete todo", "id", id, "err", err)
		return err
	}
	return h.Load(ctx)
}

func (h *Hook) StartEdit(id int, currentTitle string) {
	h.mu.Lock()
	h.state.Editing = true
	h.state.EditingID = id
	h.state.EditValue = currentTitle
	h.mu.Unlock()
}

func (h *Hook) CancelEdit() {
	h.mu.Lock()
	h.state.Editing = false
	h.state.EditingID = 0
	h.state.EditValue = ""
	h.mu.Unlock()
}

func (h *Hook) SaveEdit(ctx context.Context, id int) error {
	h.mu.Lock()
	draft := h.state.EditValue
	h.mu.Unlock()
	if strings.TrimSpace(draft) == "" {
		return nil
	}

	if err := h.api.Update(ctx, id, draft); err != nil {
		h.logger.Error("Failed to update todo", "id", id, "err", err)
		return err
	}
	h.CancelEdit()
	return h.Load(ctx)
}

func (h *Hook) Toggle(ctx context.Context, id int) error {
	if err := h.api.Toggle(ctx, id); err != nil {
		h.logger.Error("Failed to toggle todo", "id", id, "err", err)
		return err
	}
	return h.Load(ctx)
}
