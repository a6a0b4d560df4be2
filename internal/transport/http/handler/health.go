package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tasktracker/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports only the dependencies the running configuration uses.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	allOK := true
	record := func(name string, status dependencyStatus) {
		deps[name] = status
		allOK = allOK && status.OK
	}

	if h.app.Mongo != nil {
		record("mongo", h.report(ctx, "mongo", h.checkMongo(ctx)))
	}
	if h.app.MySQL != nil {
		record("mysql", h.report(ctx, "mysql", h.checkMySQL(ctx)))
	}
	if h.app.Redis != nil {
		record("redis", h.report(ctx, "redis", h.checkRedis(ctx)))
	}
	if h.app.Config.RabbitMQ.Enabled {
		record("rabbitmq", h.checkRabbitMQ())
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"store":        h.app.Config.Store.Driver,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": deps,
	})
}

// report logs a failed check and hides its cause from the response body,
// which may carry addresses or credentials.
func (h *HealthHandler) report(ctx context.Context, name string, err error) dependencyStatus {
	if err == nil {
		return dependencyStatus{OK: true}
	}
	h.app.Logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
	return dependencyStatus{OK: false, Message: "unreachable"}
}

func (h *HealthHandler) checkMongo(ctx context.Context) error {
	return h.app.Mongo.Ping(ctx, readpref.Primary())
}

func (h *HealthHandler) checkMySQL(ctx context.Context) error {
	sqlDB, err := h.app.MySQL.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (h *HealthHandler) checkRedis(ctx context.Context) error {
	return h.app.Redis.Ping(ctx).Err()
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn == nil || h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
