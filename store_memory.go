package main

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps todos in process. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	todos  map[int]Todo
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		todos:  make(map[int]Todo),
		nextID: 1,
	}
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := make([]Todo, 0, len(s.todos))
	for _, t := range s.todos {
		todos = append(todos, t)
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].Id < todos[j].Id })
	return todos, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int) (*Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemoryStore) Create(ctx context.Context, todo *Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	todo.Id = s.nextID
	s.nextID++
	s.todos[todo.Id] = *todo
	return nil
}

func (s *MemoryStore) Save(ctx context.Context, todo *Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[todo.Id]; !ok {
		return errNoRowsAffected
	}
	s.todos[todo.Id] = *todo
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return errNoRowsAffected
	}
	delete(s.todos, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
