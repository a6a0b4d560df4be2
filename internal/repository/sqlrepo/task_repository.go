package sqlrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = model.NewID()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusPending
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", translateError(err))
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", filter.OwnerID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	tasks := make([]model.Task, 0)
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.EffectiveLimit()).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, scope repository.TaskScope) (*model.Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var task model.Task
	if err := r.scoped(ctx, scope).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, scope repository.TaskScope, patch repository.TaskPatch) (*model.Task, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	if !patch.Empty() {
		updates := make(map[string]any, 3)
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if err := r.scoped(ctx, scope).Model(&model.Task{}).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update task failed: %w", err)
		}
	}
	return r.Get(ctx, scope)
}

func (r *TaskRepository) Delete(ctx context.Context, scope repository.TaskScope) (*model.Task, error) {
	task, err := r.Get(ctx, scope)
	if err != nil || task == nil {
		return nil, err
	}

	result := r.scoped(ctx, scope).Delete(&model.Task{})
	if result.Error != nil {
		return nil, fmt.Errorf("delete task failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return task, nil
}

func (r *TaskRepository) scoped(ctx context.Context, scope repository.TaskScope) *gorm.DB {
	return r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", scope.TaskID, scope.OwnerID)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
