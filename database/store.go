package database

import (
	"context"
	"errors"

	"github.com/biosecret/go-todo/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// ProfileStore persists profiles. userName is unique across profiles.
type ProfileStore interface {
	// CreateProfile fails with ErrDuplicateKey when userName is taken.
	CreateProfile(ctx context.Context, p *models.Profile) error
	FindProfiles(ctx context.Context, userName string) ([]models.Profile, error)
	// FindProfile fails with ErrNotFound when there is no such profile.
	FindProfile(ctx context.Context, userName string) (*models.Profile, error)
	// UpdateProfile applies patch and returns the updated profile, or ErrNotFound.
	UpdateProfile(ctx context.Context, userName string, patch models.ProfilePatch) (*models.Profile, error)
}

// TodoStore persists todos. Ids are assigned by the store on creation.
type TodoStore interface {
	CreateTodo(ctx context.Context, t *models.Todo) error
	FindTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error)
	// UpdateTodo sets the non-nil fields of set on the todo with the given id.
	// With upsert a missing todo is inserted; that counts as Upserted, not Modified.
	UpdateTodo(ctx context.Context, id string, set models.TodoUpdate, upsert bool) (models.UpdateResult, error)
	DeleteTodo(ctx context.Context, id string) (int64, error)
}

type Store interface {
	ProfileStore
	TodoStore
	Close(ctx context.Context) error
}
