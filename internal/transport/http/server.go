package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conduit-api/internal/bootstrap"
	"conduit-api/internal/transport/http/handler"
	"conduit-api/internal/transport/http/middleware"
	"conduit-api/internal/transport/http/response"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Log), gin.Recovery())
	if app.Metrics != nil {
		router.Use(app.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Endpoint Not Found", response.ErrNotFound)
	})

	healthHandler := handler.NewHealthHandler(app)
	userHandler := handler.NewUserHandler(app.AuthService, app.Metrics, app.Log)
	articleHandler := handler.NewArticleHandler(app.ArticleService, app.Log)
	authGate := middleware.AuthGate(app.AuthService, app.Metrics)

	router.GET("/healthz", healthHandler.Check)

	router.POST("/users/", userHandler.Register)
	router.POST("/users/login", userHandler.Login)

	userGroup := router.Group("/user")
	userGroup.Use(authGate)
	userGroup.GET("/", userHandler.Current)
	userGroup.PUT("/", userHandler.Update)
	userGroup.DELETE("/", userHandler.Disable)

	router.POST("/logoff/", authGate, userHandler.Logoff)

	router.POST("/articles/", authGate, articleHandler.Create)
	router.GET("/articles/:slug", articleHandler.Get)

	if app.Config.Auth.AdminKey != "" {
		adminHandler := handler.NewAdminHandler(app.AuthService, app.AuditService, app.Metrics, app.Log)
		adminGroup := router.Group("/admin")
		adminGroup.Use(middleware.AdminKey(app.Config.Auth.AdminKey))
		adminGroup.POST("/nonce/reset", adminHandler.ResetNonce)
		adminGroup.DELETE("/users/:email", adminHandler.DeleteUser)
		adminGroup.GET("/events/:email", adminHandler.Events)
	}

	return router
}
