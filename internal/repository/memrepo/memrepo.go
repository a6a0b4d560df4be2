// Package memrepo is the in-process store driver used for local runs and tests.
// It enforces the same unique indexes and owner scoping as the real drivers.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

type db struct {
	mu         sync.RWMutex
	users      map[string]model.User
	tasks      []model.Task
	activities []model.Activity
	now        func() time.Time
}

// New returns a Store whose repositories share one in-memory database.
func New() repository.Store {
	d := &db{
		users: make(map[string]model.User),
		now:   time.Now,
	}
	return repository.Store{
		Users:      &UserRepository{db: d},
		Tasks:      &TaskRepository{db: d},
		Activities: &ActivityRepository{db: d},
	}
}

type UserRepository struct {
	db *db
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = model.NewID()
	}
	now := r.db.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.db.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindConflict(_ context.Context, username, email, excludeID string) (*model.User, error) {
	if username == "" && email == "" {
		return nil, nil
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var byUsername *model.User
	for _, u := range r.db.users {
		if excludeID != "" && u.ID == excludeID {
			continue
		}
		if email != "" && u.Email == email {
			return &u, nil
		}
		if username != "" && u.Username == username {
			byUsername = &u
		}
	}
	return byUsername, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch repository.UserPatch) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Empty() {
		return &u, nil
	}
	for _, other := range r.db.users {
		if other.ID == id {
			continue
		}
		if (patch.Username != nil && other.Username == *patch.Username) ||
			(patch.Email != nil && other.Email == *patch.Email) {
			return nil, repository.ErrDuplicateKey
		}
	}

	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	u.UpdatedAt = r.db.now()
	r.db.users[id] = u
	return &u, nil
}

type TaskRepository struct {
	db *db
}

func (r *TaskRepository) Create(_ context.Context, task *model.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if task.ID == "" {
		task.ID = model.NewID()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusPending
	}
	now := r.db.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.db.tasks = append(r.db.tasks, *task)
	return nil
}

func (r *TaskRepository) List(_ context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	out := make([]model.Task, 0)
	// walk newest insert first so equal timestamps keep insertion order reversed
	for i := len(r.db.tasks) - 1; i >= 0; i-- {
		t := r.db.tasks[i]
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *TaskRepository) Get(_ context.Context, scope repository.TaskScope) (*model.Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if i := r.indexOf(scope); i >= 0 {
		t := r.db.tasks[i]
		return &t, nil
	}
	return nil, nil
}

func (r *TaskRepository) Update(_ context.Context, scope repository.TaskScope, patch repository.TaskPatch) (*model.Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.indexOf(scope)
	if i < 0 {
		return nil, nil
	}
	t := &r.db.tasks[i]
	if !patch.Empty() {
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		t.UpdatedAt = r.db.now()
	}
	updated := *t
	return &updated, nil
}

func (r *TaskRepository) Delete(_ context.Context, scope repository.TaskScope) (*model.Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.indexOf(scope)
	if i < 0 {
		return nil, nil
	}
	removed := r.db.tasks[i]
	r.db.tasks = append(r.db.tasks[:i], r.db.tasks[i+1:]...)
	return &removed, nil
}

// indexOf must be called with the lock held.
func (r *TaskRepository) indexOf(scope repository.TaskScope) int {
	for i, t := range r.db.tasks {
		if t.ID == scope.TaskID && t.OwnerID == scope.OwnerID {
			return i
		}
	}
	return -1
}

type ActivityRepository struct {
	db *db
}

func (r *ActivityRepository) Create(_ context.Context, activity *model.Activity) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if activity.ID == "" {
		activity.ID = model.NewID()
	}
	for _, a := range r.db.activities {
		if a.ID == activity.ID {
			return repository.ErrDuplicateKey
		}
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = r.db.now()
	}
	r.db.activities = append(r.db.activities, *activity)
	return nil
}

func (r *ActivityRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > repository.MaxTaskList {
		limit = repository.MaxTaskList
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]model.Activity, 0)
	for i := len(r.db.activities) - 1; i >= 0; i-- {
		if a := r.db.activities[i]; a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
