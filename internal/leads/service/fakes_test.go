package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"salesrep_portal/internal/audit"
	"salesrep_portal/internal/leads/domain"
	"salesrep_portal/internal/leads/duplicates"
	"salesrep_portal/internal/leads/ports"
	"salesrep_portal/internal/leads/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/phone"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type memStore struct {
	mu        sync.Mutex
	leads     map[uuid.UUID]domain.Lead
	customers map[uuid.UUID]domain.ConversionSnapshot
	products  map[uuid.UUID]domain.Product
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{
		leads:     make(map[uuid.UUID]domain.Lead),
		customers: make(map[uuid.UUID]domain.ConversionSnapshot),
		products:  make(map[uuid.UUID]domain.Product),
	}
}

func (m *memStore) put(l domain.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.ID] = l
}

func (m *memStore) lead(id uuid.UUID) domain.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[id]
}

func (m *memStore) customerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.customers)
}

func (m *memStore) snapshot() (map[uuid.UUID]domain.Lead, map[uuid.UUID]domain.ConversionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	leads := make(map[uuid.UUID]domain.Lead, len(m.leads))
	for k, v := range m.leads {
		leads[k] = v
	}
	customers := make(map[uuid.UUID]domain.ConversionSnapshot, len(m.customers))
	for k, v := range m.customers {
		customers[k] = v
	}
	return leads, customers
}

func (m *memStore) restore(leads map[uuid.UUID]domain.Lead, customers map[uuid.UUID]domain.ConversionSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads = leads
	m.customers = customers
}

func (m *memStore) Create(_ context.Context, l domain.Lead) error {
	m.put(l)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (m *memStore) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return m.GetByID(ctx, id)
}

func (m *memStore) Update(_ context.Context, l domain.Lead, _ bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.put(l)
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *memStore) scoped(scope scoping.Predicate) []domain.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Lead
	for _, l := range m.leads {
		if scope.MatchesLead(l.Ownership()) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out
}

func (m *memStore) List(_ context.Context, p repository.ListParams) ([]domain.Lead, int, error) {
	var out []domain.Lead
	for _, l := range m.scoped(p.Scope) {
		if p.Search != "" && !strings.Contains(strings.ToLower(l.Company), strings.ToLower(p.Search)) {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

func (m *memStore) TopN(ctx context.Context, scope scoping.Predicate, search string, limit int) ([]domain.Lead, error) {
	out, _, err := m.List(ctx, repository.ListParams{Scope: scope, Search: search})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (m *memStore) ListExpiringSoon(_ context.Context, scope scoping.Predicate, from, until time.Time) ([]domain.ExpirySummary, error) {
	var out []domain.ExpirySummary
	for _, l := range m.scoped(scope) {
		if l.ExpiryDate.After(from) && !l.ExpiryDate.After(until) && l.Status.IsOpen() {
			out = append(out, domain.ExpirySummary{LeadID: l.ID, Company: l.Company, ExpiryDate: l.ExpiryDate, AssignedToID: l.AssignedToID})
		}
	}
	return out, nil
}

func (m *memStore) ListProducts(context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) CountActiveProducts(_ context.Context, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if p, ok := m.products[id]; ok && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindActiveConflicts(_ context.Context, q duplicates.Query) ([]duplicates.Conflict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []duplicates.Conflict
	for _, l := range m.leads {
		if l.IsExpired || l.Status == domain.StatusConverted {
			continue
		}
		if q.ExcludeLeadID != nil && *q.ExcludeLeadID == l.ID {
			continue
		}
		reg := duplicates.Registration{Company: l.Company, Address: l.Address, City: l.City, State: l.State, Zip: l.Zip}
		if q.Matches(reg) {
			out = append(out, duplicates.Conflict{LeadID: l.ID, Status: l.Status, SalesGroupID: l.SalesGroupID})
		}
	}
	return out, nil
}

func (m *memStore) HasConversionSince(_ context.Context, q duplicates.Query, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		reg := duplicates.Registration{Company: c.Company, Address: c.Address, City: c.City, State: c.State, Zip: c.Zip}
		if !c.ConversionDate.Before(since) && q.Matches(reg) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) HasActiveCustomerForLead(_ context.Context, leadID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.OriginalLeadID == leadID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateFromSnapshot(_ context.Context, s domain.ConversionSnapshot) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.customers[id] = s
	return id, nil
}

// memUnitOfWork serializes transactions like row locks would and restores
// the store when fn fails.
type memUnitOfWork struct {
	mu    sync.Mutex
	store *memStore
}

func (u *memUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx TxScope) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	leads, customers := u.store.snapshot()
	if err := fn(ctx, TxScope{Leads: u.store, Customers: u.store}); err != nil {
		u.store.restore(leads, customers)
		return err
	}
	return nil
}

type memUsers map[uuid.UUID]ports.UserInfo

func (m memUsers) GetUser(_ context.Context, id uuid.UUID) (ports.UserInfo, error) {
	u, ok := m[id]
	if !ok {
		return ports.UserInfo{}, apperr.NotFound("user not found")
	}
	return u, nil
}

type staticSettings ports.SystemSettings

func (s staticSettings) Get(context.Context) (ports.SystemSettings, error) {
	return ports.SystemSettings(s), nil
}

type countingDocuments struct {
	calls []uuid.UUID
	err   error
}

func (d *countingDocuments) DeleteLeadDocuments(_ context.Context, leadID uuid.UUID) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.calls = append(d.calls, leadID)
	return 2, nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (r *recordingAudit) Emit(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingAudit) actions() []audit.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Action, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

var errBoom = errors.New("boom")

// fixture is a small org: one group with an admin and two reps, a second
// group with one rep, and an organization admin.
type fixture struct {
	svc      *Service
	store    *memStore
	audit    *recordingAudit
	docs     *countingDocuments
	groupA   uuid.UUID
	groupB   uuid.UUID
	orgA     uuid.UUID
	orgAdmin ports.UserInfo
	grpAdmin ports.UserInfo
	repA1    ports.UserInfo
	repA2    ports.UserInfo
	repB     ports.UserInfo
}

func newFixture() *fixture {
	f := &fixture{
		store:  newMemStore(),
		audit:  &recordingAudit{},
		docs:   &countingDocuments{},
		groupA: uuid.New(),
		groupB: uuid.New(),
		orgA:   uuid.New(),
	}
	f.orgAdmin = ports.UserInfo{ID: uuid.New(), Role: scoping.RoleOrganizationAdmin, IsActive: true}
	f.grpAdmin = ports.UserInfo{ID: uuid.New(), Role: scoping.RoleGroupAdmin, SalesGroupID: &f.groupA, IsActive: true}
	f.repA1 = ports.UserInfo{ID: uuid.New(), Role: scoping.RoleSalesRep, SalesGroupID: &f.groupA, SalesOrgID: &f.orgA, IsActive: true}
	f.repA2 = ports.UserInfo{ID: uuid.New(), Role: scoping.RoleSalesRep, SalesGroupID: &f.groupA, SalesOrgID: &f.orgA, IsActive: true}
	f.repB = ports.UserInfo{ID: uuid.New(), Role: scoping.RoleSalesRep, SalesGroupID: &f.groupB, IsActive: true}

	users := memUsers{}
	for _, u := range []ports.UserInfo{f.orgAdmin, f.grpAdmin, f.repA1, f.repA2, f.repB} {
		users[u.ID] = u
	}

	settings := staticSettings{CoolingPeriodDays: 90, LeadInitialExpiryDays: 30, LeadExtensionDays: 15}
	now := func() time.Time { return fixedNow }

	f.svc = New(Deps{
		Reader:     f.store,
		UnitOfWork: &memUnitOfWork{store: f.store},
		Duplicates: duplicates.NewChecker(f.store, f.store, func(context.Context) (int, error) { return settings.CoolingPeriodDays, nil }, now),
		Users:      users,
		Settings:   settings,
		Documents:  f.docs,
		Audit:      f.audit,
		Phone:      phone.NewNormalizer("US"),
		Now:        now,
	})
	return f
}

// seed stores an open lead owned by rep.
func (f *fixture) seed(rep ports.UserInfo, company string) domain.Lead {
	lead := domain.NewLead(domain.NewLeadParams{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Company:      company,
		Address:      "1 " + company + " Way",
		City:         "Springfield",
		State:        "IL",
		Zip:          "62701",
		AssignedToID: &rep.ID,
		SalesGroupID: rep.SalesGroupID,
		SalesOrgID:   rep.SalesOrgID,
		CreatedByID:  rep.ID,
	}, fixedNow.AddDate(0, 0, -5), 30)
	lead.AssigneeSalesOrgID = rep.SalesOrgID
	f.store.put(lead)
	return lead
}
