package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TodoRepository is the record store behind the service. FindByID returns
// nil, nil when the id does not exist.
type TodoRepository interface {
	FindAll(ctx context.Context) ([]Todo, error)
	FindByID(ctx context.Context, id int) (*Todo, error)
	Create(ctx context.Context, todo *Todo) error
	Save(ctx context.Context, todo *Todo) error
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
	Close() error
}

var errNoRowsAffected = errors.New("no rows affected")

const createTodoTablePostgres = `
	CREATE TABLE IF NOT EXISTS todo (
		id SERIAL PRIMARY KEY,
		title VARCHAR NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT false
	)`

const createTodoTableSQLite = `
	CREATE TABLE IF NOT EXISTS todo (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT 0
	)`

// OpenRepository connects the backend named by cfg.Driver and wraps it with
// tracing spans.
func OpenRepository(ctx context.Context, cfg DatabaseConfig, logger *log.Logger) (TodoRepository, error) {
	var (
		repo TodoRepository
		err  error
	)
	switch cfg.Driver {
	case "postgres":
		repo, err = OpenPostgresStore(ctx, cfg, logger)
	case "sqlite":
		repo, err = OpenSQLiteStore(ctx, cfg.SQLitePath, cfg.Synchronize)
	case "memory":
		repo = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("record store ready", "driver", cfg.Driver)
	return NewTracedRepository(repo, cfg.Driver), nil
}

type tracedRepository struct {
	next   TodoRepository
	tracer trace.Tracer
	system string
}

func NewTracedRepository(next TodoRepository, system string) TodoRepository {
	return &tracedRepository{
		next:   next,
		tracer: otel.Tracer("todo-store"),
		system: system,
	}
}

func (r *tracedRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.system", r.system), attribute.String("db.operation", op))
	return r.tracer.Start(ctx, "todo."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *tracedRepository) FindAll(ctx context.Context) ([]Todo, error) {
	ctx, span := r.start(ctx, "find_all")
	todos, err := r.next.FindAll(ctx)
	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	endSpan(span, err)
	return todos, err
}

func (r *tracedRepository) FindByID(ctx context.Context, id int) (*Todo, error) {
	ctx, span := r.start(ctx, "find_by_id", attribute.Int("todo.id", id))
	todo, err := r.next.FindByID(ctx, id)
	span.SetAttributes(attribute.Bool("todo.found", todo != nil))
	endSpan(span, err)
	return todo, err
}

func (r *tracedRepository) Create(ctx context.Context, todo *Todo) error {
	ctx, span := r.start(ctx, "create")
	err := r.next.Create(ctx, todo)
	span.SetAttributes(attribute.Int("todo.id", todo.Id))
	endSpan(span, err)
	return err
}

func (r *tracedRepository) Save(ctx context.Context, todo *Todo) error {
	ctx, span := r.start(ctx, "save", attribute.Int("todo.id", todo.Id))
	err := r.next.Save(ctx, todo)
	endSpan(span, err)
	return err
}

func (r *tracedRepository) Delete(ctx context.Context, id int) error {
	ctx, span := r.start(ctx, "delete", attribute.Int("todo.id", id))
	err := r.next.Delete(ctx, id)
	endSpan(span, err)
	return err
}

func (r *tracedRepository) Ping(ctx context.Context) error {
	ctx, span := r.start(ctx, "ping")
	err := r.next.Ping(ctx)
	endSpan(span, err)
	return err
}

func (r *tracedRepository) Close() error {
	return r.next.Close()
}
