package handler

import (
	"net/http"
	"strings"
	"time"

	"salesrep_portal/internal/http/middleware"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/leads/service"
	"salesrep_portal/internal/leads/transport"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/config"
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

	expiringSoonDays int
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log, expiringSoonDays: config.DefaultExpiringSoonDays}
}

// WithExpiringSoonDays sets the window used by the expiring-soon listing when
// the request does not name one. Non-positive values keep the default.
func (h *Handler) WithExpiringSoonDays(days int) *Handler {
	if days > 0 {
		h.expiringSoonDays = days
	}
	return h
}

// RegisterRoutes mounts the lead routes. typeahead is the rate limiter for
// the search-as-you-type endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, typeahead gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/typeahead", typeahead, h.Typeahead)
	rg.POST("/check-duplicate", h.CheckDuplicate)
	rg.GET("/expiring-soon", h.ExpiringSoon)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", middleware.RequireOrganizationAdmin(), h.Delete)
	rg.POST("/:id/extension", middleware.RequireAdmin(), h.GrantExtension)
	rg.POST("/:id/convert", h.Convert)
}

// RegisterProductRoutes mounts the read-only product catalog.
func (h *Handler) RegisterProductRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListProducts)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actor, service.CreateInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Notes:        req.Notes,
		AssignedToID: req.AssignedToID,
		SalesGroupID: req.SalesGroupID,
		ProductIDs:   req.ProductIDs,
	})
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	changes := domain.Changes{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      req.Company,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Notes:        req.Notes,
		AssignedToID: req.AssignedToID,
		SalesGroupID: req.SalesGroupID,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		changes.Status = &status
	}
	if req.ProductIDs != nil {
		changes.ProductIDs = append([]uuid.UUID{}, (*req.ProductIDs)...)
	}

	res, err := h.svc.Update(c.Request.Context(), actor, id, changes)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	reverted := res.Reverted
	if reverted == nil {
		reverted = []string{}
	}
	httpkit.OK(c, transport.UpdateLeadResponse{Lead: transport.ToLeadResponse(res.Lead), RevertedFields: reverted})
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	removed, err := h.svc.Delete(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, transport.DeleteLeadResponse{LeadID: id, DocumentsRemoved: removed})
}

func (h *Handler) GrantExtension(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	res, err := h.svc.GrantExtension(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, transport.ExtensionResponse{
		LeadID:         id,
		PreviousExpiry: res.PreviousExpiry,
		NewExpiry:      res.NewExpiry,
		Reopened:       res.WasExpired,
	})
}

func (h *Handler) Convert(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	res, err := h.svc.Convert(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ConvertResponse{
		LeadID:        id,
		CustomerID:    res.CustomerID,
		DaysToConvert: res.DaysToConvert,
	})
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	req := transport.ListLeadsRequest{Page: 1, PageSize: 25}
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	in := service.ListInput{
		Search:    req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		in.Status = &status
	}
	in.AssignedToID = optionalUUID(req.AssignedToID)
	in.SalesGroupID = optionalUUID(req.SalesGroupID)

	res, err := h.svc.List(c.Request.Context(), actor, in)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	totalPages := (res.Total + res.PageSize - 1) / res.PageSize
	httpkit.OK(c, transport.LeadListResponse{
		Items:      transport.ToLeadResponses(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: totalPages,
	})
}

func (h *Handler) Typeahead(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req transport.TypeaheadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	items, err := h.svc.Typeahead(c.Request.Context(), actor, req.Query, req.Limit)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	httpkit.OK(c, gin.H{"items": transport.ToLeadResponses(items)})
}

func (h *Handler) CheckDuplicate(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	var req transport.DuplicateCheckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	reg := duplicates.Registration{Company: req.Company, Address: req.Address, City: req.City, State: req.State, Zip: req.Zip}
	decision, err := h.svc.CheckDuplicate(c.Request.Context(), actor, reg, req.SalesGroupID, req.ExcludeLeadID)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	resp := transport.DuplicateCheckResponse{Allowed: decision.Allowed, ConflictLeadID: decision.ConflictLeadID}
	if rule, ok := decision.Err.(*domain.RuleError); ok {
		resp.Reason = rule.Reason
		resp.Message = rule.Message
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ExpiringSoon(c *gin.Context) {
	actor, ok := middleware.MustActor(c)
	if !ok {
		return
	}

	req := transport.ExpiringSoonRequest{Days: h.expiringSoonDays}
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	items, err := h.svc.ExpiringSoon(c.Request.Context(), actor, time.Duration(req.Days)*24*time.Hour)
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	resp := transport.ExpiringLeadsResponse{Items: make([]transport.ExpiringLeadResponse, len(items)), Days: req.Days}
	for i, item := range items {
		resp.Items[i] = transport.ExpiringLeadResponse{
			LeadID:       item.LeadID,
			Company:      item.Company,
			ExpiryDate:   item.ExpiryDate,
			AssignedToID: item.AssignedToID,
			SalesOrgID:   item.SalesOrgID,
		}
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.svc.ListProducts(c.Request.Context())
	if httpkit.HandleError(c, h.log, err) {
		return
	}

	resp := transport.ProductListResponse{Items: make([]transport.ProductResponse, 0, len(products))}
	for _, p := range products {
		resp.Items = append(resp.Items, transport.ProductResponse{ID: p.ID, Name: p.Name})
	}
	httpkit.OK(c, resp)
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, h.log, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return false
	}
	return true
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func optionalUUID(raw string) *uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
