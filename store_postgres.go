package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func postgresDSN(cfg DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	return u.String()
}

// OpenPostgresStore creates the pool and pings it, backing off between
// attempts, then synchronizes the table when asked to.
func OpenPostgresStore(ctx context.Context, cfg DatabaseConfig, logger *log.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	retries := max(cfg.ConnectRetries, 1)
	for i := 0; i < retries; i++ {
		time.Sleep(time.Millisecond * 500 * time.Duration(i))

		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		logger.Warn("postgres ping failed", "attempt", i+1, "err", err)
	}
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if cfg.Synchronize {
		if _, err := pool.Exec(ctx, createTodoTablePostgres); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to synchronize schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]Todo, error) {
	rows, err := s.pool.Query(ctx, "select id, title, completed from todo order by id")
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	todos, err := pgx.CollectRows(rows, pgx.RowToStructByName[Todo])
	if err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}
	return todos, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (*Todo, error) {
	var todo Todo
	err := s.pool.QueryRow(ctx, "select id, title, completed from todo where id = $1", id).
		Scan(&todo.Id, &todo.Title, &todo.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return &todo, nil
}

func (s *PostgresStore) Create(ctx context.Context, todo *Todo) error {
	err := s.pool.QueryRow(ctx,
		"insert into todo (title, completed) values ($1, $2) returning id",
		todo.Title, todo.Completed,
	).Scan(&todo.Id)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, todo *Todo) error {
	result, err := s.pool.Exec(ctx,
		"update todo set title = $1, completed = $2 where id = $3",
		todo.Title, todo.Completed, todo.Id,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return errNoRowsAffected
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int) error {
	result, err := s.pool.Exec(ctx, "delete from todo where id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return errNoRowsAffected
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
