// Package repository declares the storage contracts shared by every store
// driver. Task access always goes through a TaskScope or TaskFilter carrying
// the owner id; there is no lookup by task id alone.
package repository

import (
	"context"
	"errors"

	"tasktracker/internal/model"
)

// MaxTaskList caps every task listing.
const MaxTaskList = 100

var (
	// ErrDuplicateKey is returned when a write violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidScope = errors.New("task scope requires both owner id and task id")
)

type TaskScope struct {
	OwnerID string
	TaskID  string
}

func (s TaskScope) Validate() error {
	if s.OwnerID == "" || s.TaskID == "" {
		return ErrInvalidScope
	}
	return nil
}

type TaskFilter struct {
	OwnerID string
	// Search is matched as a literal, case-insensitive substring of title or description.
	Search string
	Status model.TaskStatus
	Limit  int
}

func (f TaskFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxTaskList {
		return MaxTaskList
	}
	return f.Limit
}

// TaskPatch lists the fields a partial update changes; nil means untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

type UserPatch struct {
	Username *string
	Email    *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil
}

// Lookups return (nil, nil) when no record matches.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// FindConflict returns a user other than excludeID whose username or
	// email equals the given non-empty values. An email match wins over a
	// username match held by a different user.
	FindConflict(ctx context.Context, username, email, excludeID string) (*model.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*model.User, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, scope TaskScope) (*model.Task, error)
	Update(ctx context.Context, scope TaskScope, patch TaskPatch) (*model.Task, error)
	// Delete returns the removed task, or nil when nothing matched.
	Delete(ctx context.Context, scope TaskScope) (*model.Task, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Activity, error)
}

// Store bundles the repositories of one driver.
type Store struct {
	Users      UserRepository
	Tasks      TaskRepository
	Activities ActivityRepository
}
