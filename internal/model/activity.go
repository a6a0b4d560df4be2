package model

import "time"

type ActivityAction string

const (
	ActivityTaskCreated ActivityAction = "created"
	ActivityTaskUpdated ActivityAction = "updated"
	ActivityTaskDeleted ActivityAction = "deleted"
)

// Activity is both the queued event and the persisted feed entry. Its ID is
// assigned when the event is emitted, so a redelivered event maps to the
// same row.
type Activity struct {
	ID         string         `gorm:"primaryKey;size:24" json:"id"`
	OwnerID    string         `gorm:"size:24;not null;index:idx_activities_owner_time,priority:1" json:"owner_id"`
	TaskID     string         `gorm:"size:24;not null" json:"task_id"`
	Action     ActivityAction `gorm:"size:16;not null" json:"action"`
	TaskTitle  string         `gorm:"size:100" json:"task_title"`
	OccurredAt time.Time      `gorm:"not null;index:idx_activities_owner_time,priority:2,sort:desc" json:"occurred_at"`
}

func NewTaskActivity(task *Task, action ActivityAction, at time.Time) Activity {
	return Activity{
		ID:         NewID(),
		OwnerID:    task.OwnerID,
		TaskID:     task.ID,
		Action:     action,
		TaskTitle:  task.Title,
		OccurredAt: at,
	}
}
