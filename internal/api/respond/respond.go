// Package respond maps service errors onto API responses.
package respond

import (
	"errors"
	"net/http"

	"github.com/ethanbaker/snapnotes/pkg/domain"
	"github.com/ethanbaker/snapnotes/pkg/pipeline"
	"github.com/ethanbaker/snapnotes/pkg/sdk"
	"github.com/ethanbaker/snapnotes/pkg/session"
	"github.com/gin-gonic/gin"
)

// Error writes the response for err. Client mistakes carry the error's own message,
// anything else is reported as a server error under message.
func Error(c *gin.Context, message string, err error) {
	var de *domain.Error

	switch {
	case errors.Is(err, pipeline.ErrSessionNotFound), domain.IsKind(err, domain.KindContentNotFound):
		c.JSON(sdk.NewFailResponse(http.StatusNotFound, "Session not found").AsGinResponse())
	case errors.Is(err, session.ErrInvalidTransition):
		c.JSON(sdk.NewFailResponse(http.StatusConflict, err.Error()).AsGinResponse())
	case domain.IsKind(err, domain.KindValidation), domain.IsKind(err, domain.KindUnsupportedFormat):
		msg := err.Error()
		if errors.As(err, &de) {
			msg = de.Message
		}
		c.JSON(sdk.NewFailResponse(http.StatusBadRequest, msg).AsGinResponse())
	default:
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, message, err).AsGinResponse())
	}
}

// BadRequest writes a 400 with the given message
func BadRequest(c *gin.Context, message string) {
	c.JSON(sdk.NewFailResponse(http.StatusBadRequest, message).AsGinResponse())
}
