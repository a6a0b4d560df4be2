package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/app"
	"tasktracker/internal/transport/http/response"
)

// writeError maps service errors onto the response envelope. Anything not
// recognised is logged and reported as internalMsg.
func writeError(c *gin.Context, log *slog.Logger, err error, internalMsg string) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, "Validation failed", verr.Fields)
	case app.IsConflict(err):
		code, msg := conflictReason(err)
		response.Error(c, http.StatusBadRequest, code, msg)
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, app.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
	case errors.Is(err, app.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, response.CodeTaskNotFound, "Task not found")
	case errors.Is(err, app.ErrInvalidTaskID):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidTaskID, "Invalid task ID")
	default:
		log.ErrorContext(c.Request.Context(), internalMsg,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, internalMsg)
	}
}

func conflictReason(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrEmailExists):
		return response.CodeEmailExists, "Email already registered"
	case errors.Is(err, app.ErrUsernameExists):
		return response.CodeUsernameExists, "Username already taken"
	default:
		return response.CodeAccountExists, "Username or email already in use"
	}
}

func badPayload(c *gin.Context) {
	response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
}
