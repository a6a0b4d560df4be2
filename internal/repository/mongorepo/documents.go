package mongorepo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tasktracker/internal/model"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *taskDocument) toModel() *model.Task {
	return &model.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      model.TaskStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type activityDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	OwnerID    primitive.ObjectID `bson:"owner_id"`
	TaskID     primitive.ObjectID `bson:"task_id"`
	Action     string             `bson:"action"`
	TaskTitle  string             `bson:"task_title"`
	OccurredAt time.Time          `bson:"occurred_at"`
}

func (d *activityDocument) toModel() model.Activity {
	return model.Activity{
		ID:         d.ID.Hex(),
		OwnerID:    d.OwnerID.Hex(),
		TaskID:     d.TaskID.Hex(),
		Action:     model.ActivityAction(d.Action),
		TaskTitle:  d.TaskTitle,
		OccurredAt: d.OccurredAt,
	}
}

// now is truncated to the millisecond precision BSON dates keep, so the
// caller's copy matches what a later read returns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
