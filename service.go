package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")
)

// ServiceError is what TodoService hands back to the HTTP layer. Kind is
// one of the sentinel errors above; Message is safe to show to clients.
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Kind }

func notFound(format string, args ...any) error {
	return &ServiceError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

type TodoService struct {
	repo   TodoRepository
	logger *log.Logger
}

func NewTodoService(repo TodoRepository, logger *log.Logger) *TodoService {
	return &TodoService{repo: repo, logger: logger}
}

// storageFailure logs the underlying cause and returns a generic error.
func (s *TodoService) storageFailure(cause error, msg string, keyvals ...any) error {
	s.logger.Error(msg, append(keyvals, "err", cause)...)
	return &ServiceError{Kind: ErrStorage, Message: msg}
}

// ListAll reports an empty table as not found, matching the existing API.
func (s *TodoService) ListAll(ctx context.Context) ([]Todo, error) {
	todos, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.storageFailure(err, "Failed to fetch todos.")
	}
	if len(todos) == 0 {
		return nil, notFound("No todos found in the database.")
	}
	return todos, nil
}

func (s *TodoService) GetByID(ctx context.Context, id int) (*Todo, error) {
	return s.find(ctx, id, "Todo with ID %d not found.")
}

func (s *TodoService) find(ctx context.Context, id int, missing string) (*Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storageFailure(err, fmt.Sprintf("Failed to fetch todo with ID %d.", id), "id", id)
	}
	if todo == nil {
		return nil, notFound(missing, id)
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, input TodoInput) (*Todo, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, &ServiceError{Kind: ErrInvalidInput, Message: "Title cannot be empty."}
	}

	todo := &Todo{Title: *input.Title, Completed: false}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, s.storageFailure(err, "Failed to create a new todo.")
	}
	s.logger.Debug("todo created", "id", todo.Id)
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, id int, input TodoInput) (*Todo, error) {
	todo, err := s.find(ctx, id, "Cannot update. Todo with ID %d not found.")
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	if err := s.repo.Save(ctx, todo); err != nil {
		return nil, s.storageFailure(err, fmt.Sprintf("Failed to update todo with ID %d.", id), "id", id)
	}
	return todo, nil
}

func (s *TodoService) Remove(ctx context.Context, id int) (string, error) {
	if _, err := s.find(ctx, id, "Cannot delete. Todo with ID %d not found."); err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", s.storageFailure(err, fmt.Sprintf("Failed to delete todo with ID %d.", id), "id", id)
	}
	return fmt.Sprintf("Todo with ID %d has been successfully deleted.", id), nil
}

func (s *TodoService) ToggleCompleted(ctx context.Context, id int) (*Todo, error) {
	todo, err := s.find(ctx, id, "Todo with ID %d not found.")
	if err != nil {
		return nil, err
	}

	todo.Completed = !todo.Completed
	if err := s.repo.Save(ctx, todo); err != nil {
		return nil, s.storageFailure(err, fmt.Sprintf("Failed to toggle completion for todo with ID %d.", id), "id", id)
	}
	return todo, nil
}

// Ping reports whether the record store is reachable.
func (s *TodoService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
