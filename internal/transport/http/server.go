package http

import (
	"github.com/gin-gonic/gin"

	"tasktracker/internal/bootstrap"
	"tasktracker/internal/transport/http/handler"
	"tasktracker/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	authHandler := handler.NewAuthHandler(app.Auth, app.Logger)
	taskHandler := handler.NewTaskHandler(app.Tasks, app.Logger)
	activityHandler := handler.NewActivityHandler(app.Activity, app.Logger)
	requireSession := middleware.SessionGuard(app.Auth, app.Logger)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireSession, authHandler.Me)
	authGroup.PUT("/profile", requireSession, authHandler.UpdateProfile)
	authGroup.POST("/logout", requireSession, authHandler.Logout)

	taskGroup := v1.Group("/tasks")
	taskGroup.Use(requireSession)
	taskGroup.GET("", taskHandler.List)
	taskGroup.POST("", taskHandler.Create)
	taskGroup.GET("/:id", taskHandler.Get)
	taskGroup.PUT("/:id", taskHandler.Update)
	taskGroup.DELETE("/:id", taskHandler.Delete)

	v1.GET("/activity", requireSession, activityHandler.List)

	return router
}
