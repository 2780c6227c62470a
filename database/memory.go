package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/biosecret/go-todo/models"
	"github.com/biosecret/go-todo/utils"
)

// MemoryStore is a Store held in process memory. Todos keep insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
	todos    []models.Todo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]models.Profile),
	}
}

func (s *MemoryStore) Close(context.Context) error {
	return nil
}

func (s *MemoryStore) CreateProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.UserName]; exists {
		return fmt.Errorf("%w: userName %q already exists", ErrDuplicateKey, p.UserName)
	}
	s.profiles[p.UserName] = *p
	return nil
}

func (s *MemoryStore) FindProfiles(_ context.Context, userName string) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := []models.Profile{}
	if p, ok := s.profiles[userName]; ok {
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (s *MemoryStore) FindProfile(_ context.Context, userName string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userName]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, userName string, patch models.ProfilePatch) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userName]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&p)
	s.profiles[userName] = p
	return &p, nil
}

func (s *MemoryStore) CreateTodo(_ context.Context, t *models.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := utils.UniqueID(func(id string) (bool, error) {
		return s.indexOf(id) >= 0, nil
	})
	if err != nil {
		return fmt.Errorf("failed to generate todo id: %w", err)
	}

	t.ID = id
	s.todos = append(s.todos, *t)
	return nil
}

func (s *MemoryStore) FindTodos(_ context.Context, f models.TodoFilter) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := []models.Todo{}
	for _, t := range s.todos {
		if f.Match(t) {
			todos = append(todos, t)
		}
	}
	return todos, nil
}

func (s *MemoryStore) UpdateTodo(_ context.Context, id string, set models.TodoUpdate, upsert bool) (models.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		if !upsert {
			return models.UpdateResult{}, nil
		}
		t := models.Todo{ID: id}
		applyTodoUpdate(&t, set)
		s.todos = append(s.todos, t)
		return models.UpdateResult{Upserted: 1}, nil
	}

	res := models.UpdateResult{Matched: 1}
	if applyTodoUpdate(&s.todos[i], set) {
		res.Modified = 1
	}
	return res, nil
}

func (s *MemoryStore) DeleteTodo(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return 0, nil
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return 1, nil
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(id string) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// applyTodoUpdate writes set onto t and reports whether any value changed.
func applyTodoUpdate(t *models.Todo, set models.TodoUpdate) bool {
	changed := false
	assign := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	assign(&t.Subject, set.Subject)
	assign(&t.Description, set.Description)
	assign(&t.Status, set.Status)
	if set.UpdatedAt != nil && !t.UpdatedAt.Equal(*set.UpdatedAt) {
		t.UpdatedAt = *set.UpdatedAt
		changed = true
	}
	return changed
}

var _ Store = (*MemoryStore)(nil)
