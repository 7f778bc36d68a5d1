package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
			return
		}
		c.String(http.StatusNotFound, "not found")
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.POST("/sessions", s.handleCreateSession)
	apiV1.GET("/sessions", s.handleListSessions)

	v1Session := apiV1.Group("/sessions/:session_id")
	v1Session.Use(s.SetSessionToContext())
	{
		v1Session.GET("", s.handleGetSession)
		v1Session.GET("/stream", s.handleStreamSession)
		v1Session.GET("/overlay", s.handleGetOverlay)
		v1Session.PUT("/stop", s.handleStopSession)
		v1Session.POST("/report", s.handleCreateReport)
	}

	apiV1.GET("/history", s.handleListHistory)
	apiV1.GET("/history/:session_id", s.handleGetHistory)
	apiV1.GET("/stats", s.handleStats)
	apiV1.GET("/schema/session", s.handleGetSessionSchema)
}
