package manual_module

import (
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Register routes for the manual input module
func RegisterRoutes(g *gin.RouterGroup, service *pipeline.Service, logger zerolog.Logger) {
	ctrl := &controller{service: service, logger: logger}

	// Create base group for manual routes
	group := g.Group("/manual")

	group.POST("/text", ctrl.SubmitText)             // Typed or pasted notes
	group.POST("/transcript", ctrl.SubmitTranscript) // Audio transcript
	group.POST("/document", ctrl.SubmitDocument)     // PDF, DOCX, DOC or TXT upload
}
