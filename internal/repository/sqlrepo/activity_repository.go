package sqlrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	if activity.ID == "" {
		activity.ID = model.NewID()
	}
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("create activity failed: %w", translateError(err))
	}
	return nil
}

func (r *ActivityRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > repository.MaxTaskList {
		limit = repository.MaxTaskList
	}

	activities := make([]model.Activity, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("list activities failed: %w", err)
	}
	return activities, nil
}
