package session_module

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethanbaker/snapnotes/internal/api/respond"
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/ethanbaker/snapnotes/pkg/sdk"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type controller struct {
	service *pipeline.Service
	logger  zerolog.Logger
}

// CreateSession handles POST requests to start a capture session
func (ctrl *controller) CreateSession(c *gin.Context) {
	// The body is optional
	var req sdk.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.BadRequest(c, "Could not parse request body")
		return
	}

	created, err := ctrl.service.CreateCaptureSession(c.Request.Context(), req.UserID)
	if err != nil {
		respond.Error(c, "Failed to create session", err)
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session created successfully", created).AsGinResponse())
}

// ListSessions handles GET requests to list sessions with a summary preview
func (ctrl *controller) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	sessions, err := ctrl.service.ListSessions(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, "Failed to list sessions", err)
		return
	}

	resp := sdk.SessionListResponse{Sessions: make([]sdk.SessionListItem, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, sdk.SessionListItem{Session: *s.Session, SummaryPreview: s.SummaryPreview})
	}
	resp.Count = len(resp.Sessions)

	c.JSON(sdk.NewSuccessResponse("Sessions retrieved successfully", resp).AsGinResponse())
}

// GetSession handles GET requests to retrieve a session by id
func (ctrl *controller) GetSession(c *gin.Context) {
	found, err := ctrl.service.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respond.Error(c, "Failed to get session", err)
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session retrieved successfully", found).AsGinResponse())
}

// StopSession handles POST requests to stop capture and start processing
func (ctrl *controller) StopSession(c *gin.Context) {
	stopped, err := ctrl.service.StopSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respond.Error(c, "Failed to stop session", err)
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session stopped, processing started", stopped).AsGinResponse())
}

// UploadScreenshot handles multipart POST requests carrying one captured frame in "image"
func (ctrl *controller) UploadScreenshot(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxScreenshotSize+1<<20)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(sdk.NewFailResponse(http.StatusRequestEntityTooLarge, ErrFileTooLarge.Error()).AsGinResponse())
			return
		}
		respond.BadRequest(c, "No file uploaded")
		return
	}

	if err := validateUpload(header); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		respond.Error(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	shot, err := ctrl.service.UploadScreenshot(c.Request.Context(), c.Param("sessionId"), header.Filename, file)
	if err != nil {
		respond.Error(c, "Failed to upload screenshot", err)
		return
	}

	c.JSON(sdk.NewSuccessResponse("Screenshot uploaded successfully", shot).AsGinResponse())
}

// AcknowledgeProcess handles POST requests to the legacy process route. Stopping a session
// already starts processing, so this only confirms the session exists.
func (ctrl *controller) AcknowledgeProcess(c *gin.Context) {
	found, err := ctrl.service.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respond.Error(c, "Failed to get session", err)
		return
	}

	ctrl.logger.Debug().Str("session_id", found.ID).Str("status", string(found.Status)).Msg("process requested explicitly")
	c.JSON(sdk.NewSuccessResponse("Processing starts when the session is stopped", found).AsGinResponse())
}

// GetResult handles GET requests for the summary and quiz of a session
func (ctrl *controller) GetResult(c *gin.Context) {
	result, err := ctrl.service.GetResult(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respond.Error(c, "Failed to get results", err)
		return
	}
	if result == nil {
		c.JSON(sdk.NewFailResponse(http.StatusNotFound, "Results not ready yet").AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Results retrieved successfully", result).AsGinResponse())
}

// ListScreenshots handles GET requests for the frames of a session
func (ctrl *controller) ListScreenshots(c *gin.Context) {
	shots, err := ctrl.service.ListScreenshots(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respond.Error(c, "Failed to list screenshots", err)
		return
	}

	c.JSON(sdk.NewSuccessResponse("Screenshots retrieved successfully", shots).AsGinResponse())
}
