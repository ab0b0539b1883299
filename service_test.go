package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func testLogger() *log.Logger {
	return NewLogger(io.Discard, LogConfig{Level: "error"})
}

// failingRepo wraps a store and fails the operations named in fail.
type failingRepo struct {
	TodoRepository
	fail   map[string]bool
	writes int
}

var errBoom = errors.New("connection reset")

func (r *failingRepo) FindAll(ctx context.Context) ([]Todo, error) {
	if r.fail["FindAll"] {
		return nil, errBoom
	}
	return r.TodoRepository.FindAll(ctx)
}

func (r *failingRepo) FindByID(ctx context.Context, id int) (*Todo, error) {
	if r.fail["FindByID"] {
		return nil, errBoom
	}
	return r.TodoRepository.FindByID(ctx, id)
}

func (r *failingRepo) Create(ctx context.Context, todo *Todo) error {
	r.writes++
	if r.fail["Create"] {
		return errBoom
	}
	return r.TodoRepository.Create(ctx, todo)
}

func (r *failingRepo) Save(ctx context.Context, todo *Todo) error {
	r.writes++
	if r.fail["Save"] {
		return errBoom
	}
	return r.TodoRepository.Save(ctx, todo)
}

func (r *failingRepo) Delete(ctx context.Context, id int) error {
	r.writes++
	if r.fail["Delete"] {
		return errBoom
	}
	return r.TodoRepository.Delete(ctx, id)
}

func newTestService(fail ...string) (*TodoService, *failingRepo) {
	repo := &failingRepo{TodoRepository: NewMemoryStore(), fail: map[string]bool{}}
	for _, f := range fail {
		repo.fail[f] = true
	}
	return NewTodoService(repo, testLogger()), repo
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	for _, title := range []string{"Buy milk", "  padded  ", "日本語", "x"} {
		created, err := svc.Create(ctx, TodoInput{Title: strPtr(title)})
		if err != nil {
			t.Fatalf("Create(%q): %v", title, err)
		}
		got, err := svc.GetByID(ctx, created.Id)
		if err != nil {
			t.Fatalf("GetByID(%d): %v", created.Id, err)
		}
		if got.Title != title {
			t.Errorf("Title: got %q, want %q", got.Title, title)
		}
		if got.Completed {
			t.Errorf("Completed: got true, want false for %q", title)
		}
	}
}

func TestCreateIgnoresCompletedFlag(t *testing.T) {
	svc, _ := newTestService()
	todo, err := svc.Create(context.Background(), TodoInput{Title: strPtr("Walk dog"), Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if todo.Completed {
		t.Error("new todo should start incomplete")
	}
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		title *string
	}{
		{"missing", nil},
		{"empty", strPtr("")},
		{"spaces", strPtr("   ")},
		{"tabs and newlines", strPtr("\t\n ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			_, err := svc.Create(ctx, TodoInput{Title: tt.title})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err: got %v, want ErrInvalidInput", err)
			}
			if repo.writes != 0 {
				t.Errorf("writes: got %d, want 0", repo.writes)
			}
			if _, err := svc.ListAll(ctx); !errors.Is(err, ErrNotFound) {
				t.Errorf("store should still be empty, ListAll err = %v", err)
			}
		})
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	todo, _ := svc.Create(ctx, TodoInput{Title: strPtr("Buy milk")})

	first, err := svc.ToggleCompleted(ctx, todo.Id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !first.Completed {
		t.Fatal("first toggle should complete the todo")
	}
	second, err := svc.ToggleCompleted(ctx, todo.Id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if second.Completed != todo.Completed {
		t.Errorf("Completed after two toggles: got %v, want %v", second.Completed, todo.Completed)
	}
}

func TestRemoveThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	todo, _ := svc.Create(ctx, TodoInput{Title: strPtr("Buy milk")})

	msg, err := svc.Remove(ctx, todo.Id)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if want := "Todo with ID 1 has been successfully deleted."; msg != want {
		t.Errorf("message: got %q, want %q", msg, want)
	}
	if _, err := svc.GetByID(ctx, todo.Id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after Remove: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Remove(ctx, todo.Id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove: got %v, want ErrNotFound", err)
	}
}

func TestUpdateMissingIDWritesNothing(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.Update(context.Background(), 42, TodoInput{Title: strPtr("new")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err: got %v, want ErrNotFound", err)
	}
	if want := "Cannot update. Todo with ID 42 not found."; err.Error() != want {
		t.Errorf("message: got %q, want %q", err.Error(), want)
	}
	if repo.writes != 0 {
		t.Errorf("writes: got %d, want 0", repo.writes)
	}
}

func TestUpdateMergesProvidedFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	todo, _ := svc.Create(ctx, TodoInput{Title: strPtr("Buy milk")})

	got, err := svc.Update(ctx, todo.Id, TodoInput{Completed: boolPtr(true)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Buy milk" || !got.Completed {
		t.Errorf("after completed-only update: got %+v", *got)
	}

	got, err = svc.Update(ctx, todo.Id, TodoInput{Title: strPtr("Buy oat milk")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Buy oat milk" || !got.Completed {
		t.Errorf("after title-only update: got %+v", *got)
	}

	stored, _ := svc.GetByID(ctx, todo.Id)
	if *stored != *got {
		t.Errorf("stored: got %+v, want %+v", *stored, *got)
	}
}

func TestListAllEmptyIsNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ListAll(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err: got %v, want ErrNotFound", err)
	}
	if want := "No todos found in the database."; err.Error() != want {
		t.Errorf("message: got %q, want %q", err.Error(), want)
	}
}

func TestListAllOrderedByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	for _, title := range []string{"a", "b", "c"} {
		if _, err := svc.Create(ctx, TodoInput{Title: strPtr(title)}); err != nil {
			t.Fatal(err)
		}
	}
	todos, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(todos) != 3 {
		t.Fatalf("len: got %d, want 3", len(todos))
	}
	for i, todo := range todos {
		if todo.Id != i+1 {
			t.Errorf("todos[%d].Id: got %d, want %d", i, todo.Id, i+1)
		}
	}
}

func TestStorageFailures(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		fail string
		call func(svc *TodoService, id int) error
		want string
	}{
		{"list", "FindAll", func(svc *TodoService, id int) error {
			_, err := svc.ListAll(ctx)
			return err
		}, "Failed to fetch todos."},
		{"create", "Create", func(svc *TodoService, id int) error {
			_, err := svc.Create(ctx, TodoInput{Title: strPtr("x")})
			return err
		}, "Failed to create a new todo."},
		{"update", "Save", func(svc *TodoService, id int) error {
			_, err := svc.Update(ctx, id, TodoInput{Title: strPtr("y")})
			return err
		}, "Failed to update todo with ID 1."},
		{"toggle", "Save", func(svc *TodoService, id int) error {
			_, err := svc.ToggleCompleted(ctx, id)
			return err
		}, "Failed to toggle completion for todo with ID 1."},
		{"remove", "Delete", func(svc *TodoService, id int) error {
			_, err := svc.Remove(ctx, id)
			return err
		}, "Failed to delete todo with ID 1."},
		{"lookup", "FindByID", func(svc *TodoService, id int) error {
			_, err := svc.GetByID(ctx, id)
			return err
		}, "Failed to fetch todo with ID 1."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			seed := &Todo{Title: "seed"}
			if err := repo.TodoRepository.Create(ctx, seed); err != nil {
				t.Fatal(err)
			}
			repo.fail[tt.fail] = true

			err := tt.call(svc, seed.Id)
			if !errors.Is(err, ErrStorage) {
				t.Fatalf("err: got %v, want ErrStorage", err)
			}
			if errors.Is(err, errBoom) {
				t.Error("storage cause should not leak to callers")
			}
			if err.Error() != tt.want {
				t.Errorf("message: got %q, want %q", err.Error(), tt.want)
			}
		})
	}
}
