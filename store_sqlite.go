package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	conn *sql.DB
}

func OpenSQLiteStore(ctx context.Context, path string, synchronize bool) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers anyway; one connection also keeps ":memory:"
	// databases from splitting per connection.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if synchronize {
		if _, err := conn.ExecContext(ctx, createTodoTableSQLite); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to synchronize schema: %w", err)
		}
	}
	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) FindAll(ctx context.Context) ([]Todo, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, title, completed FROM todo ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var todo Todo
		if err := rows.Scan(&todo.Id, &todo.Title, &todo.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id int) (*Todo, error) {
	var todo Todo
	err := s.conn.QueryRowContext(ctx, "SELECT id, title, completed FROM todo WHERE id = ?", id).
		Scan(&todo.Id, &todo.Title, &todo.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return &todo, nil
}

func (s *SQLiteStore) Create(ctx context.Context, todo *Todo) error {
	result, err := s.conn.ExecContext(ctx,
		"INSERT INTO todo (title, completed) VALUES (?, ?)",
		todo.Title, todo.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	todo.Id = int(id)
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, todo *Todo) error {
	result, err := s.conn.ExecContext(ctx,
		"UPDATE todo SET title = ?, completed = ? WHERE id = ?",
		todo.Title, todo.Completed, todo.Id,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return checkRowsAffected(result)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int) error {
	result, err := s.conn.ExecContext(ctx, "DELETE FROM todo WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return checkRowsAffected(result)
}

func checkRowsAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return errNoRowsAffected
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
