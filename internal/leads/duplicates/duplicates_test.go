package duplicates

import (
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"salesrep_portal/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedLead struct {
	id        uuid.UUID
	reg       Registration
	status    domain.Status
	groupID   *uuid.UUID
	isExpired bool
}

type fakeLeads struct {
	leads []storedLead
	err   error
}

func (f *fakeLeads) FindActiveConflicts(_ context.Context, q Query) ([]Conflict, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []Conflict
	for _, l := range f.leads {
		if l.isExpired || l.status == domain.StatusConverted {
			continue
		}
		if q.ExcludeLeadID != nil && *q.ExcludeLeadID == l.id {
			continue
		}
		if q.Matches(l.reg) {
			out = append(out, Conflict{LeadID: l.id, Status: l.status, SalesGroupID: l.groupID})
		}
	}
	return out, nil
}

type storedCustomer struct {
	reg       Registration
	converted time.Time
	deleted   bool
}

type fakeCustomers struct {
	customers []storedCustomer
}

func (f *fakeCustomers) HasConversionSince(_ context.Context, q Query, since time.Time) (bool, error) {
	for _, c := range f.customers {
		if !c.deleted && !c.converted.Before(since) && q.Matches(c.reg) {
			return true, nil
		}
	}
	return false, nil
}

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestChecker(leads *fakeLeads, customers *fakeCustomers) *Checker {
	cooling := func(context.Context) (int, error) { return 90, nil }
	return NewChecker(leads, customers, cooling, func() time.Time { return now })
}

func group() *uuid.UUID {
	id := uuid.New()
	return &id
}

func TestNormalizeZipTruncatesToFiveCharacters(t *testing.T) {
	assert.Equal(t, "12345", NormalizeZip(" 12345-6789 "))
	assert.Equal(t, "1234", NormalizeZip("1234"))
	assert.Equal(t, "acme inc", NormalizeText("  ACME Inc "))
}

func TestNormalizeZipKeepsMultiByteCharactersWhole(t *testing.T) {
	got := NormalizeZip("1234é-6789")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "1234é", got)
}

func TestAcmeLostLeadBlockedInSameGroupAllowedElsewhere(t *testing.T) {
	groupA := group()
	groupB := group()
	leads := &fakeLeads{leads: []storedLead{{
		id:      uuid.New(),
		reg:     Registration{Company: "Acme", Zip: "12345-6789"},
		status:  domain.StatusLost,
		groupID: groupA,
	}}}
	checker := newTestChecker(leads, &fakeCustomers{})
	reg := Registration{Company: "Acme", Zip: "12345"}

	ok, err := checker.CanRegister(context.Background(), reg, groupA, nil)
	require.NoError(t, err)
	assert.False(t, ok, "same group must not re-register its own lost lead")

	d, err := checker.Check(context.Background(), reg, groupA, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Err, domain.ErrLostLeadInGroup)

	ok, err = checker.CanRegister(context.Background(), reg, groupB, nil)
	require.NoError(t, err)
	assert.True(t, ok, "another group may pursue a lead lost elsewhere")
}

func TestLiveConflictBlocksRegardlessOfGroup(t *testing.T) {
	groupA := group()
	leads := &fakeLeads{leads: []storedLead{
		{id: uuid.New(), reg: Registration{Company: "Acme"}, status: domain.StatusLost, groupID: group()},
		{id: uuid.New(), reg: Registration{Company: "ACME "}, status: domain.StatusQualified, groupID: group()},
	}}
	checker := newTestChecker(leads, &fakeCustomers{})

	d, err := checker.Check(context.Background(), Registration{Company: "acme"}, groupA, nil)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.ErrorIs(t, d.Err, domain.ErrDuplicateLead)
	require.NotNil(t, d.ConflictLeadID)
	assert.Equal(t, leads.leads[1].id, *d.ConflictLeadID)
}

func TestAddressMatchComparesOnlyProvidedParts(t *testing.T) {
	leads := &fakeLeads{leads: []storedLead{{
		id:     uuid.New(),
		reg:    Registration{Company: "Globex", Address: "10 Elm St", City: "Shelbyville", State: "IL", Zip: "62565-1234"},
		status: domain.StatusNew,
	}}}
	checker := newTestChecker(leads, &fakeCustomers{})

	ok, err := checker.CanRegister(context.Background(), Registration{Company: "Initech", Address: " 10 ELM ST", Zip: "62565"}, group(), nil)
	require.NoError(t, err)
	assert.False(t, ok, "address without city or state still matches on the provided parts")

	ok, err = checker.CanRegister(context.Background(), Registration{Company: "Initech", Address: "10 Elm St", City: "Capital City"}, group(), nil)
	require.NoError(t, err)
	assert.True(t, ok, "a differing city separates the addresses")

	ok, err = checker.CanRegister(context.Background(), Registration{Company: "Initech", Zip: "62565"}, group(), nil)
	require.NoError(t, err)
	assert.True(t, ok, "zip alone is not an address")
}

func TestExpiredAndConvertedLeadsAreNotConflicts(t *testing.T) {
	leads := &fakeLeads{leads: []storedLead{
		{id: uuid.New(), reg: Registration{Company: "Acme"}, status: domain.StatusExpired, isExpired: true},
		{id: uuid.New(), reg: Registration{Company: "Acme"}, status: domain.StatusConverted},
	}}
	checker := newTestChecker(leads, &fakeCustomers{})

	ok, err := checker.CanRegister(context.Background(), Registration{Company: "Acme"}, group(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCoolingPeriodBlocksRecentlyConvertedCustomer(t *testing.T) {
	customers := &fakeCustomers{customers: []storedCustomer{
		{reg: Registration{Company: "Acme"}, converted: now.AddDate(0, 0, -30)},
		{reg: Registration{Company: "Umbrella"}, converted: now.AddDate(0, 0, -120)},
		{reg: Registration{Company: "Hooli"}, converted: now.AddDate(0, 0, -1), deleted: true},
	}}
	checker := newTestChecker(&fakeLeads{}, customers)

	d, err := checker.Check(context.Background(), Registration{Company: "acme"}, group(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Err, domain.ErrCoolingPeriod)

	ok, err := checker.CanRegister(context.Background(), Registration{Company: "Umbrella"}, group(), nil)
	require.NoError(t, err)
	assert.True(t, ok, "conversion outside the cooling period does not block")

	ok, err = checker.CanRegister(context.Background(), Registration{Company: "Hooli"}, group(), nil)
	require.NoError(t, err)
	assert.True(t, ok, "soft-deleted customers do not block")
}

func TestCoolingPeriodSkippedWhenLostConflictsAllowed(t *testing.T) {
	leads := &fakeLeads{leads: []storedLead{{id: uuid.New(), reg: Registration{Company: "Acme"}, status: domain.StatusLost, groupID: group()}}}
	customers := &fakeCustomers{customers: []storedCustomer{{reg: Registration{Company: "Acme"}, converted: now.AddDate(0, 0, -2)}}}
	checker := newTestChecker(leads, customers)

	ok, err := checker.CanRegister(context.Background(), Registration{Company: "Acme"}, group(), nil)
	require.NoError(t, err)
	assert.True(t, ok, "the cooling period is only the fallback when no lead conflicts exist")
}

func TestCheckEditIgnoresUnchangedFields(t *testing.T) {
	self := uuid.New()
	leads := &fakeLeads{leads: []storedLead{
		{id: self, reg: Registration{Company: "Acme", Address: "1 Main St"}, status: domain.StatusNew},
		{id: uuid.New(), reg: Registration{Company: "Acme"}, status: domain.StatusContacted},
	}}
	checker := newTestChecker(leads, &fakeCustomers{})
	reg := Registration{Company: "Acme", Address: "2 Side St"}

	ok, err := checker.CanRegisterLead(context.Background(), reg, false, true, self)
	require.NoError(t, err)
	assert.True(t, ok, "an unchanged company must not report the pre-existing duplicate")

	ok, err = checker.CanRegisterLead(context.Background(), Registration{Company: "Acme"}, true, false, self)
	require.NoError(t, err)
	assert.False(t, ok, "a changed company colliding with another lead blocks")
}

func TestCheckEditLostConflictBlocksWithoutGroupOverride(t *testing.T) {
	self := uuid.New()
	leads := &fakeLeads{leads: []storedLead{{id: uuid.New(), reg: Registration{Company: "Acme"}, status: domain.StatusLost, groupID: group()}}}
	checker := newTestChecker(leads, &fakeCustomers{})

	ok, err := checker.CanRegisterLead(context.Background(), Registration{Company: "Acme"}, true, false, self)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPropagatesStoreErrors(t *testing.T) {
	checker := newTestChecker(&fakeLeads{err: errors.New("connection reset")}, &fakeCustomers{})

	_, err := checker.Check(context.Background(), Registration{Company: "Acme"}, group(), nil)
	require.Error(t, err)
}
