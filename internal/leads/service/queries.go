package service

import (
	"context"
	"strings"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"

	"github.com/google/uuid"
)

const (
	defaultPageSize  = 25
	maxPageSize      = 100
	defaultTypeahead = 10
	maxTypeahead     = 20
)

// ListInput filters and pages a lead listing. The scope is never part of it;
// it is always derived from the actor.
type ListInput struct {
	Search       string
	Status       *domain.Status
	AssignedToID *uuid.UUID
	SalesGroupID *uuid.UUID
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

type ListResult struct {
	Items    []domain.Lead
	Total    int
	Page     int
	PageSize int
}

// List returns the actor's scoped leads. Every listing is audited as a search.
func (s *Service) List(ctx context.Context, actor scoping.Actor, in ListInput) (ListResult, error) {
	const op = "leads.List"

	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.reader.List(ctx, repository.ListParams{
		Scope:        scoping.ResolveLeadScope(actor),
		Search:       strings.TrimSpace(in.Search),
		Status:       in.Status,
		AssignedToID: in.AssignedToID,
		SalesGroupID: in.SalesGroupID,
		Offset:       (page - 1) * size,
		Limit:        size,
		SortBy:       in.SortBy,
		SortOrder:    in.SortOrder,
	})
	if err != nil {
		return ListResult{}, apperr.Internal(op, err)
	}

	s.emit(ctx, audit.NewEvent(audit.ActionSearch, audit.EntityLead, nil, &actor.UserID, s.now()).
		With("search", in.Search).
		With("results", total))

	return ListResult{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// Typeahead is the unaudited top-N company search used by pickers.
func (s *Service) Typeahead(ctx context.Context, actor scoping.Actor, query string, limit int) ([]domain.Lead, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Lead{}, nil
	}
	if limit < 1 {
		limit = defaultTypeahead
	}
	if limit > maxTypeahead {
		limit = maxTypeahead
	}

	items, err := s.reader.TopN(ctx, scoping.ResolveLeadScope(actor), query, limit)
	if err != nil {
		return nil, apperr.Internal("leads.Typeahead", err)
	}
	return items, nil
}

// ExpiringSoon lists the actor's open leads that expire within the window.
func (s *Service) ExpiringSoon(ctx context.Context, actor scoping.Actor, within time.Duration) ([]domain.ExpirySummary, error) {
	now := s.now()
	items, err := s.reader.ListExpiringSoon(ctx, scoping.ResolveLeadScope(actor), now, now.Add(within))
	if err != nil {
		return nil, apperr.Internal("leads.ExpiringSoon", err)
	}
	return items, nil
}
