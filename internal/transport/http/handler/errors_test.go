package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/app"
	"tasktracker/internal/logging"
	"tasktracker/internal/transport/http/response"
)

func TestWriteError_Conflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"email", app.ErrEmailExists, response.CodeEmailExists, "Email already registered"},
		{"username", app.ErrUsernameExists, response.CodeUsernameExists, "Username already taken"},
		{"account", app.ErrAccountExists, response.CodeAccountExists, "Username or email already in use"},
		{"wrapped email", fmt.Errorf("register: %w", app.ErrEmailExists), response.CodeEmailExists, "Email already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			writeError(c, logging.Discard(), tt.err, "boom")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body response.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestWriteError_UnknownIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(c, logging.Discard(), errors.New("disk on fire"), "Server error while listing tasks")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
	assert.Contains(t, rec.Body.String(), "Server error while listing tasks")
}
