package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// ActivityPublisher receives one event per successful task mutation.
type ActivityPublisher interface {
	Publish(ctx context.Context, activity model.Activity) error
}

type TaskService struct {
	taskRepo  repository.TaskRepository
	publisher ActivityPublisher
	log       *slog.Logger
	now       func() time.Time
}

type ListTasksInput struct {
	Search string
	Status string
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      *string
}

type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
}

func NewTaskService(taskRepo repository.TaskRepository, publisher ActivityPublisher, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		taskRepo:  taskRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *TaskService) List(ctx context.Context, ownerID string, input ListTasksInput) ([]model.Task, error) {
	filter := repository.TaskFilter{
		OwnerID: ownerID,
		Search:  strings.TrimSpace(input.Search),
		Limit:   repository.MaxTaskList,
	}
	if input.Status != "" {
		var fc fieldChecker
		fc.check("status", input.Status, statusRule)
		if err := fc.err(); err != nil {
			return nil, err
		}
		filter.Status = model.TaskStatus(input.Status)
	}
	return s.taskRepo.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	scope, err := taskScope(ownerID, taskID)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, input CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	status := model.TaskStatusPending

	var fc fieldChecker
	fc.check("title", title, titleCreateRule)
	fc.check("description", description, descriptionCreateRule)
	if input.Status != nil {
		fc.check("status", *input.Status, statusRule)
		status = model.TaskStatus(*input.Status)
	}
	if err := fc.err(); err != nil {
		return nil, err
	}

	task := &model.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      status,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.emit(ctx, task, model.ActivityTaskCreated)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, input UpdateTaskInput) (*model.Task, error) {
	var patch repository.TaskPatch
	var fc fieldChecker
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		fc.check("title", title, titleUpdateRule)
		patch.Title = &title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		fc.check("description", description, descriptionUpdateRule)
		patch.Description = &description
	}
	if input.Status != nil {
		fc.check("status", *input.Status, statusRule)
		status := model.TaskStatus(*input.Status)
		patch.Status = &status
	}
	if err := fc.err(); err != nil {
		return nil, err
	}

	scope, err := taskScope(ownerID, taskID)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.Update(ctx, scope, patch)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if !patch.Empty() {
		s.emit(ctx, task, model.ActivityTaskUpdated)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	scope, err := taskScope(ownerID, taskID)
	if err != nil {
		return err
	}
	task, err := s.taskRepo.Delete(ctx, scope)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	s.emit(ctx, task, model.ActivityTaskDeleted)
	return nil
}

// emit never fails the request; a lost event only costs a feed entry.
func (s *TaskService) emit(ctx context.Context, task *model.Task, action model.ActivityAction) {
	if s.publisher == nil {
		return
	}
	activity := model.NewTaskActivity(task, action, s.now().UTC())
	if err := s.publisher.Publish(ctx, activity); err != nil {
		s.log.WarnContext(ctx, "publish task activity failed",
			"task_id", task.ID,
			"action", action,
			"error", err,
		)
	}
}

func taskScope(ownerID, taskID string) (repository.TaskScope, error) {
	if !model.IsValidID(taskID) {
		return repository.TaskScope{}, ErrInvalidTaskID
	}
	if ownerID == "" {
		return repository.TaskScope{}, ErrUnauthenticated
	}
	return repository.TaskScope{OwnerID: ownerID, TaskID: taskID}, nil
}
