package model

import (
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

func (s TaskStatus) Valid() bool {
	return slices.Contains(TaskStatuses, s)
}

type Task struct {
	ID          string     `gorm:"primaryKey;size:24" json:"id"`
	OwnerID     string     `gorm:"size:24;not null;index:idx_tasks_owner_created,priority:1;index:idx_tasks_owner_status,priority:1" json:"owner_id"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500;not null" json:"description"`
	Status      TaskStatus `gorm:"size:16;not null;default:pending;index:idx_tasks_owner_status,priority:2" json:"status"`
	CreatedAt   time.Time  `gorm:"index:idx_tasks_owner_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
