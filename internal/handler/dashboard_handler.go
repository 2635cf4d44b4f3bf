package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TravisChandler1/ewaede/internal/models"
	"github.com/TravisChandler1/ewaede/internal/service"
	appErrors "github.com/TravisChandler1/ewaede/pkg/errors"
	"github.com/TravisChandler1/ewaede/pkg/response"
)

// DashboardHandler serves role-shaped dashboards.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Me godoc
// @Summary Get dashboard
// @Description Returns the dashboard shaped for the caller's role
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		data interface{}
		err  error
	)
	switch claims.Role {
	case models.RoleAdmin:
		data, err = h.service.Admin(c.Request.Context())
	case models.RoleTeacher:
		data, err = h.service.Teacher(c.Request.Context(), claims.UserID)
	default:
		data, err = h.service.Student(c.Request.Context(), claims.UserID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, data, nil)
}

// Admin godoc
// @Summary Get admin dashboard
// @Description Returns the platform-wide dashboard (admin only)
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	data, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, data, nil)
}
