package handler

import (
	"net/http"

	"salesrep_portal/internal/customers/service"
	"salesrep_portal/internal/customers/transport"
	"salesrep_portal/internal/http/middleware"
	"salesrep_portal/platform/httpkit"
	"salesrep_portal/platform/logger"
	"salesrep_portal/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgInvalidCustomerID = "invalid customer id"
)

func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.DELETE("/:id", middleware.RequireOrganizationAdmin(), h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	req := transport.ListCustomersRequest{Page: 1, PageSize: 25}
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	res, err := h.svc.List(c.Request.Context(), actor, service.ListInput{
		Search:       req.Search,
		SalesRepID:   optionalUUID(req.SalesRepID),
		SalesGroupID: optionalUUID(req.SalesGroupID),
		Page:         req.Page,
		PageSize:     req.PageSize,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
	})
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, transport.CustomerListResponse{
		Items:      transport.ToCustomerResponses(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: (res.Total + res.PageSize - 1) / res.PageSize,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseCustomerID(c)
	if !ok {
		return
	}

	customer, err := h.svc.Get(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, transport.ToCustomerResponse(customer))
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseCustomerID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.log, h.svc.Delete(c.Request.Context(), actor, id)) {
		return
	}

	httpkit.OK(c, transport.DeleteCustomerResponse{CustomerID: id})
}

func parseCustomerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCustomerID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func optionalUUID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
