package session_module

import (
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Register routes for the session module
func RegisterRoutes(g *gin.RouterGroup, service *pipeline.Service, logger zerolog.Logger) {
	ctrl := &controller{service: service, logger: logger}

	// Create base group for session routes
	group := g.Group("/sessions")

	group.POST("", ctrl.CreateSession)                         // Start a capture session
	group.GET("", ctrl.ListSessions)                           // List sessions newest first
	group.GET("/:sessionId", ctrl.GetSession)                  // Get a session by id
	group.POST("/:sessionId/stop", ctrl.StopSession)           // Stop capture and start processing
	group.POST("/:sessionId/upload", ctrl.UploadScreenshot)    // Stage a captured frame
	group.POST("/:sessionId/process", ctrl.AcknowledgeProcess) // Processing starts on stop; acknowledge only
	group.GET("/:sessionId/results", ctrl.GetResult)           // Get the summary and quiz
	group.GET("/:sessionId/screenshots", ctrl.ListScreenshots) // List the frames of a session
}
