package clips

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartclips/clipper/pkg/response"
)

// Handler exposes the pipeline as the POST /clips endpoint.
type Handler struct {
	pipeline *Pipeline
	logger   *zap.Logger
}

// NewHandler creates the clip HTTP handler.
func NewHandler(pipeline *Pipeline, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pipeline: pipeline, logger: logger}
}

// Create runs one clip invocation. Invalid input is rejected with 400 before
// any stage runs; everything after validation answers 200 with the pipeline's
// terminal outcome, success or not.
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidInput(c, "no or invalid input type")
		return
	}
	if err := req.Validate(); err != nil {
		response.InvalidInput(c, fmt.Sprintf("invalid input: %v", err))
		return
	}

	response.Result(c, h.pipeline.Run(c.Request.Context(), &req))
}
