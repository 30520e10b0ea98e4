package health

import (
	"time"

	"github.com/ethanbaker/snapnotes/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Status is the body of a health check
type Status struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Return status of the API
func getStatus(c *gin.Context) {
	res := sdk.NewSuccessResponse("OK", Status{Status: "ok", Time: time.Now().UTC()})
	c.JSON(res.AsGinResponse())
}
