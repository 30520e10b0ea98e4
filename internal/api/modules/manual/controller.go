package manual_module

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/ethanbaker/snapnotes/internal/api/respond"
	"github.com/ethanbaker/snapnotes/pkg/document"
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/ethanbaker/snapnotes/pkg/sdk"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type controller struct {
	service *pipeline.Service
	logger  zerolog.Logger
}

// SubmitText handles POST requests carrying typed or pasted notes
func (ctrl *controller) SubmitText(c *gin.Context) {
	var req sdk.TextSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body")
		return
	}

	ctrl.submit(c, req.Content, session.SourceText, "Text submitted successfully. Processing started.")
}

// SubmitTranscript handles POST requests carrying an audio transcript
func (ctrl *controller) SubmitTranscript(c *gin.Context) {
	var req sdk.TranscriptSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body")
		return
	}

	ctrl.submit(c, req.Transcript, session.SourceAudioTranscript, "Transcript submitted successfully. Processing started.")
}

// SubmitDocument handles multipart POST requests carrying one document in "file"
func (ctrl *controller) SubmitDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, document.MaxDocumentSize+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(sdk.NewFailResponse(http.StatusRequestEntityTooLarge, "File size exceeds maximum of 50MB").AsGinResponse())
			return
		}
		respond.BadRequest(c, "No file uploaded")
		return
	}

	// Reject before reading the body into memory
	if result := document.Validate(header.Filename, header.Size); !result.Valid {
		respond.BadRequest(c, result.Error)
		return
	}

	file, err := header.Open()
	if err != nil {
		respond.Error(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, document.MaxDocumentSize+1))
	if err != nil {
		respond.Error(c, "Failed to read upload", err)
		return
	}

	created, length, err := ctrl.service.SubmitDocument(c.Request.Context(), header.Filename, data)
	if err != nil {
		respond.Error(c, "Failed to process document", err)
		return
	}

	ctrl.logger.Info().Str("session_id", created.ID).Str("file_name", header.Filename).Int("content_length", length).Msg("document accepted")

	c.JSON(sdk.NewSuccessResponse("Document processed successfully. Processing started.", sdk.SubmitResponse{
		SessionID:     created.ID,
		Message:       "Document processed successfully. Processing started.",
		ContentLength: length,
	}).AsGinResponse())
}

// Helper to submit manual content and write the response
func (ctrl *controller) submit(c *gin.Context, content string, source session.Source, message string) {
	created, err := ctrl.service.SubmitManual(c.Request.Context(), pipeline.ManualInput{
		Content: content,
		Source:  source,
	})
	if err != nil {
		respond.Error(c, "Failed to submit content", err)
		return
	}

	length := 0
	if created.ManualContent != nil {
		length = utf8.RuneCountInString(*created.ManualContent)
	}

	c.JSON(sdk.NewSuccessResponse(message, sdk.SubmitResponse{
		SessionID:     created.ID,
		Message:       message,
		ContentLength: length,
	}).AsGinResponse())
}
