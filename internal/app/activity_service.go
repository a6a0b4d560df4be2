package app

import (
	"context"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

type ActivityService struct {
	activityRepo repository.ActivityRepository
}

func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// List returns the owner's newest entries. limit 0 selects the default.
func (s *ActivityService) List(ctx context.Context, ownerID string, limit int) ([]model.Activity, error) {
	if limit == 0 {
		limit = DefaultActivityLimit
	}
	if limit < 0 || limit > MaxActivityLimit {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "limit",
			Message: "Limit must be between 1 and 100",
		}}}
	}
	return s.activityRepo.ListByOwner(ctx, ownerID, limit)
}

// StorePublisher records activity synchronously. It stands in for the
// broker when rabbitmq is disabled.
type StorePublisher struct {
	activityRepo repository.ActivityRepository
}

func NewStorePublisher(activityRepo repository.ActivityRepository) *StorePublisher {
	return &StorePublisher{activityRepo: activityRepo}
}

func (p *StorePublisher) Publish(ctx context.Context, activity model.Activity) error {
	return p.activityRepo.Create(ctx, &activity)
}
