package seed

import (
	"context"
	"strings"
	"testing"

	"salesrep_portal/internal/organization/repository"
	"salesrep_portal/internal/scoping"
	"salesrep_portal/platform/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
groups:
  - name: West
    orgs: [Bay Area, Seattle]
  - name: East
users:
  - email: Admin@Example.com
    fullName: Olivia Admin
    role: OrganizationAdmin
  - email: rep@example.com
    fullName: Sam Rep
    role: SalesRep
    group: West
    org: Seattle
products:
  - name: Solar
  - name: Legacy Boiler
    inactive: true
`

func newValidator(t *testing.T) *validator.Validator {
	t.Helper()
	val := validator.New()
	require.NoError(t, RegisterRoleValidation(val))
	return val
}

type memStore struct {
	users    []repository.User
	products map[string]bool
	orgs     map[string]uuid.UUID
}

func (m *memStore) UpsertSalesGroup(context.Context, string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *memStore) UpsertSalesOrg(_ context.Context, _ uuid.UUID, name string) (uuid.UUID, error) {
	id := uuid.New()
	m.orgs[name] = id
	return id, nil
}

func (m *memStore) UpsertUser(_ context.Context, u repository.User) (uuid.UUID, error) {
	m.users = append(m.users, u)
	return uuid.New(), nil
}

func (m *memStore) UpsertProduct(_ context.Context, name string, active bool) (uuid.UUID, error) {
	m.products[name] = active
	return uuid.New(), nil
}

func TestParseAndApply(t *testing.T) {
	f, err := Parse(strings.NewReader(sample), newValidator(t))
	require.NoError(t, err)

	store := &memStore{products: map[string]bool{}, orgs: map[string]uuid.UUID{}}
	sum, err := Apply(context.Background(), store, f)
	require.NoError(t, err)

	assert.Equal(t, Summary{Groups: 2, Orgs: 2, Users: 2, Products: 2}, sum)
	require.Len(t, store.users, 2)
	assert.Nil(t, store.users[0].SalesGroupID)
	assert.Equal(t, scoping.RoleSalesRep, store.users[1].Role)
	require.NotNil(t, store.users[1].SalesOrgID)
	assert.Equal(t, store.orgs["Seattle"], *store.users[1].SalesOrgID)
	assert.False(t, store.products["Legacy Boiler"])
}

func TestParseRejectsUnknownRole(t *testing.T) {
	doc := "users:\n  - email: x@example.com\n    fullName: X\n    role: Viewer\n"
	_, err := Parse(strings.NewReader(doc), newValidator(t))
	assert.Error(t, err)
}

func TestParseRejectsOrgOutsideGroup(t *testing.T) {
	doc := `
groups:
  - name: West
    orgs: [Seattle]
  - name: East
    orgs: [Boston]
users:
  - email: rep@example.com
    fullName: Rep
    role: SalesRep
    group: West
    org: Boston
`
	_, err := Parse(strings.NewReader(doc), newValidator(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not part of group")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("teams: []\n"), newValidator(t))
	assert.Error(t, err)
}
