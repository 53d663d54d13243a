package handler

import (
	"salesrep_portal/internal/http/middleware"
	"salesrep_portal/internal/organization/service"
	"salesrep_portal/internal/organization/transport"
	"salesrep_portal/platform/httpkit"
	"salesrep_portal/platform/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	log *logger.Logger
}

func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetMe)
	rg.GET("/assignable", h.ListAssignable)
}

func (h *Handler) GetMe(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	u, err := h.svc.GetUser(c.Request.Context(), actor.UserID)
	if httpkit.HandleError(c, h.log, err) {
		return
	}
	httpkit.OK(c, transport.ToUserResponse(u))
}

// ListAssignable returns the users the caller may assign leads to.
func (h *Handler) ListAssignable(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	users, err := h.svc.ListAssignableUsers(c.Request.Context(), actor)
	if httpkit.HandleError(c, h.log, err) {
		return
	}
	items := make([]transport.UserResponse, len(users))
	for i, u := range users {
		items[i] = transport.ToUserResponse(u)
	}
	httpkit.OK(c, gin.H{"items": items})
}
