package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/app"
	"tasktracker/internal/model"
	"tasktracker/internal/transport/http/middleware"
	"tasktracker/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
	log         *slog.Logger
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      *string `json:"status"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func NewTaskHandler(taskService *app.TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, log: log}
}

func (h *TaskHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), user.ID, app.ListTasksInput{
		Search: c.Query("search"),
		Status: c.Query("status"),
	})
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			response.ValidationError(c, "Invalid query parameters", verr.Fields)
			return
		}
		writeError(c, h.log, err, "Server error while fetching tasks")
		return
	}
	response.OK(c, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "Server error while fetching task")
		return
	}
	response.OK(c, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), user.ID, app.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, h.log, err, "Server error while creating task")
		return
	}
	response.Created(c, "Task created successfully", task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	id := c.Param("id")
	if !model.IsValidID(id) {
		writeError(c, h.log, app.ErrInvalidTaskID, "")
		return
	}

	// An empty body is an update with no changes.
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badPayload(c)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), user.ID, id, app.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, h.log, err, "Server error while updating task")
		return
	}
	response.OKMessage(c, "Task updated successfully", task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		writeError(c, h.log, err, "Server error while deleting task")
		return
	}
	response.OKMessage(c, "Task deleted successfully", nil)
}
