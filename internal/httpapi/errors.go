package httpapi

import (
	"github.com/gin-gonic/gin"

	"studyplanner/internal/apperr"
)

// respondError maps err to its status and writes {"error": msg}. Server
// side failures are logged with the request id.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if status >= 500 {
		h.log.Error("request failed",
			"path", c.FullPath(),
			"kind", kind.String(),
			"request_id", c.GetString("request_id"),
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.respondError(c, apperr.E(apperr.KindValidation, "invalid request body: "+err.Error(), err))
}
