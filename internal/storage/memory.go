// Package storage provides dish, task and user persistence implementations.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Compile-time interface check.
var _ domain.Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory store. Safe for concurrent access. Values
// are copied in and out so callers never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	dishes map[string]map[string]*domain.Dish
	tasks  map[string]map[string]*domain.Task
	users  map[string]*domain.User
	log    *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		dishes: make(map[string]map[string]*domain.Dish),
		tasks:  make(map[string]map[string]*domain.Task),
		users:  make(map[string]*domain.User),
		log:    log,
	}
}

// ListDishes returns the owner's dishes, oldest first.
func (s *MemoryStore) ListDishes(ctx context.Context, owner string) ([]*domain.Dish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Dish, 0, len(s.dishes[owner]))
	for _, d := range s.dishes[owner] {
		out = append(out, cloneDish(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	s.log.Debug("listing dishes for %s, count=%d", owner, len(out))
	return out, nil
}

// GetDish retrieves a dish by ID.
func (s *MemoryStore) GetDish(ctx context.Context, owner, id string) (*domain.Dish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dishes[owner][id]
	if !ok {
		s.log.Debug("dish not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return cloneDish(d), nil
}

// SaveDish persists a dish. Overwrites if it already exists.
func (s *MemoryStore) SaveDish(ctx context.Context, dish *domain.Dish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dishes[dish.Owner] == nil {
		s.dishes[dish.Owner] = make(map[string]*domain.Dish)
	}
	s.dishes[dish.Owner][dish.ID] = cloneDish(dish)
	s.log.Debug("saved dish %s (%s) for %s", dish.ID, dish.Name, dish.Owner)
	return nil
}

// DeleteDish removes a dish by ID.
func (s *MemoryStore) DeleteDish(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dishes[owner][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.dishes[owner], id)
	s.log.Debug("deleted dish %s", id)
	return nil
}

// ClearDishes removes every dish the owner has and reports how many.
func (s *MemoryStore) ClearDishes(ctx context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.dishes[owner])
	delete(s.dishes, owner)
	return n, nil
}

// ListTasks returns the owner's tasks, oldest first.
func (s *MemoryStore) ListTasks(ctx context.Context, owner string) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Task, 0, len(s.tasks[owner]))
	for _, t := range s.tasks[owner] {
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetTask retrieves a task by ID.
func (s *MemoryStore) GetTask(ctx context.Context, owner, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[owner][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneTask(t), nil
}

// SaveTask persists a task. Overwrites if it already exists.
func (s *MemoryStore) SaveTask(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tasks[task.Owner] == nil {
		s.tasks[task.Owner] = make(map[string]*domain.Task)
	}
	s.tasks[task.Owner][task.ID] = cloneTask(task)
	s.log.Debug("saved task %s (%s) for %s", task.ID, task.Name, task.Owner)
	return nil
}

// DeleteTask removes a task by ID.
func (s *MemoryStore) DeleteTask(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[owner][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tasks[owner], id)
	return nil
}

// ClearTasks removes every task the owner has and reports how many.
func (s *MemoryStore) ClearTasks(ctx context.Context, owner string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks[owner])
	delete(s.tasks, owner)
	return n, nil
}

// GetUser retrieves a user by ID.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// SaveUser persists a user. Overwrites if it already exists.
func (s *MemoryStore) SaveUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }

func cloneDish(d *domain.Dish) *domain.Dish {
	cp := *d
	cp.Instructions = append([]domain.Instruction(nil), d.Instructions...)
	return &cp
}

func cloneTask(t *domain.Task) *domain.Task {
	cp := *t
	cp.Instructions = append([]domain.Instruction(nil), t.Instructions...)
	return &cp
}
