package password

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	"github.com/jwalitptl/jobboard-api/internal/model"
	"github.com/jwalitptl/jobboard-api/internal/service/password"
	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
	"github.com/jwalitptl/jobboard-api/pkg/strength"
)

type Handler struct {
	svc *password.Service
}

func NewHandler(svc *password.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the password routes. Extra middleware applies to the
// POST routes only, which carry passwords in their bodies.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, sensitive ...gin.HandlerFunc) {
	pw := r.Group("/password")
	{
		pw.GET("/rules", h.Rules)
	}

	guarded := pw.Group("", sensitive...)
	{
		guarded.POST("/strength", h.Strength)
		guarded.POST("/policy", h.Policy)
	}
}

func (h *Handler) Strength(c *gin.Context) {
	var req model.StrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	resp := h.svc.Assess(c.Request.Context(), *req.Password)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Policy(c *gin.Context) {
	var req model.PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	minLevel := strength.LevelNone
	if req.MinLevel != "" {
		level, err := strength.ParseLevel(req.MinLevel)
		if err != nil {
			_ = c.Error(apperrors.NewBadRequest(err.Error(), err))
			return
		}
		minLevel = level
	}

	resp, err := h.svc.CheckPolicy(c.Request.Context(), *req.Password, minLevel)
	if err != nil {
		if errors.Is(err, password.ErrPolicyViolation) {
			handler.RespondWithError(c, err, resp)
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// bindError reports bodies cut off by the size limit as 413, anything else as 400
func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewRequestTooLarge(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
	}
	return apperrors.NewBadRequest("invalid request", err)
}

func (h *Handler) Rules(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.svc.Rules()))
}
