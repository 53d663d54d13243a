package handler

import (
	"net/http"

	"salesrep_portal/internal/http/middleware"
	"salesrep_portal/internal/settings/service"
	"salesrep_portal/internal/settings/transport"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/httpkit"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// RegisterRoutes mounts the settings routes on an admin-only group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PUT("", middleware.RequireOrganizationAdmin(), h.Update)
}

func (h *Handler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context())
	if httpkit.HandleError(c, h.log, err) {
		return
	}
	httpkit.OK(c, transport.ToSettingsResponse(s))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req transport.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, apperr.Validation("validation failed").WithDetails(err.Error()))
		return
	}

	s, err := h.svc.Update(c.Request.Context(), actor, service.UpdateInput{
		CoolingPeriodDays:     *req.CoolingPeriodDays,
		LeadInitialExpiryDays: *req.LeadInitialExpiryDays,
		LeadExtensionDays:     *req.LeadExtensionDays,
	})
	if httpkit.HandleError(c, h.log, err) {
		return
	}
	httpkit.OK(c, transport.ToSettingsResponse(s))
}
