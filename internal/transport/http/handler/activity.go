package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/app"
	"tasktracker/internal/transport/http/middleware"
	"tasktracker/internal/transport/http/response"
)

type ActivityHandler struct {
	activityService *app.ActivityService
	log             *slog.Logger
}

func NewActivityHandler(activityService *app.ActivityService, log *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, log: log}
}

func (h *ActivityHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.log, app.ErrUnauthenticated, "")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.ValidationError(c, "Invalid query parameters", []app.FieldError{{
				Field:   "limit",
				Message: "Limit must be between 1 and 100",
			}})
			return
		}
		limit = parsed
	}

	entries, err := h.activityService.List(c.Request.Context(), user.ID, limit)
	if err != nil {
		writeError(c, h.log, err, "Server error while fetching activity")
		return
	}
	response.OK(c, entries)
}
