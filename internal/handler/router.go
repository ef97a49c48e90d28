package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mfnunez/avisia-utm-builder/internal/auth"
	"github.com/mfnunez/avisia-utm-builder/internal/middleware"
	"github.com/mfnunez/avisia-utm-builder/internal/repository"
	"github.com/mfnunez/avisia-utm-builder/internal/service"
	"go.uber.org/zap"
)

func NewRouter(
	historyService service.HistoryService,
	sessions repository.SessionRepository,
	authenticator auth.Authenticator,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	authHandler := NewAuthHandler(authenticator, sessions, logger)
	campaignHandler := NewCampaignHandler(historyService, sessions, logger)
	formHandler := NewFormHandler(sessions, logger)

	// the post-login redirect lands here
	router.GET("/", Index)

	// OAuth endpoints stay outside the session wall
	router.GET("/auth/login", authHandler.Login)
	router.GET("/auth/callback", authHandler.Callback)
	router.POST("/auth/logout", authHandler.Logout)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		v1.Use(middleware.RequireSession(sessions))

		v1.GET("/me", authHandler.Me)
		v1.GET("/presets", formHandler.Presets)

		v1.GET("/form", formHandler.GetForm)
		v1.POST("/form/events", formHandler.ApplyEvent)

		v1.POST("/links/preview", campaignHandler.PreviewLink)
		v1.POST("/links", campaignHandler.SaveLink)
		v1.GET("/links", campaignHandler.ListLinks)
		v1.GET("/links/filters", campaignHandler.FilterChoices)
		v1.GET("/links/export", campaignHandler.ExportLinks)
		v1.POST("/links/delete", campaignHandler.DeleteLinks)
	}

	return router
}

// Index is the landing page after a successful login.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "utm-builder",
		"login":   "/auth/login",
		"api":     "/api/v1",
	})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "utm-builder",
	})
}
