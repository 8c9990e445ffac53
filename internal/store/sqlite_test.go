package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millemail/prospector/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleLead(company, domain, email string) model.Lead {
	return model.Lead{
		CompanyName:   company,
		CompanyDomain: domain,
		Email:         email,
		FirstName:     "Jean",
		LastName:      "Dupont",
		JobTitle:      "VP Sales",
		CompanyType:   "b2b",
		SubjectLine:   "Subject",
		Email1:        "Body 1",
	}
}

func TestSQLiteStore_InsertAndReadBack(t *testing.T) {
	t.Parallel()
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	leads := []model.Lead{
		sampleLead("Acme", "acme.fr", "jean@acme.fr"),
		sampleLead("Beta", "beta.fr", "marie@beta.fr"),
	}

	n, err := s.InsertProspects(ctx, leads)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotEmpty(t, leads[0].ID)
	assert.Equal(t, model.StatusReady, leads[0].Status)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ready, err := s.ReadyProspects(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ready, 2)
	assert.Equal(t, "Acme", ready[0].CompanyName)
	assert.Equal(t, "Body 1", ready[0].Email1)
	require.NotNil(t, ready[0].CreatedAt)
}

func TestSQLiteStore_ReadyProspectsFilters(t *testing.T) {
	t.Parallel()
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ready := sampleLead("Acme", "acme.fr", "jean@acme.fr")
	noEmail := sampleLead("Beta", "beta.fr", "")
	noSequence := sampleLead("Gamma", "gamma.fr", "x@gamma.fr")
	noSequence.Email1 = ""
	sent := sampleLead("Delta", "delta.fr", "y@delta.fr")
	sent.Status = model.StatusSent

	_, err := s.InsertProspects(ctx, []model.Lead{ready, noEmail, noSequence, sent})
	require.NoError(t, err)

	got, err := s.ReadyProspects(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].CompanyName)
}

func TestSQLiteStore_ExistingContacts(t *testing.T) {
	t.Parallel()
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	withPair := sampleLead("Acme", "acme.fr", "jean@acme.fr")
	noEmail := sampleLead("Beta", "beta.fr", "")

	_, err := s.InsertProspects(ctx, []model.Lead{withPair, noEmail})
	require.NoError(t, err)

	contacts, err := s.ExistingContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1, "incomplete identity pairs are not dedup keys")
	_, ok := contacts[model.IdentityPair{Domain: "acme.fr", Email: "jean@acme.fr"}]
	assert.True(t, ok)
}

func TestSQLiteStore_LastContactDates(t *testing.T) {
	t.Parallel()
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	older := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	contacted1 := sampleLead("Acme", "acme.fr", "a@acme.fr")
	contacted1.Status = model.StatusSent
	contacted1.CreatedAt = &older
	contacted2 := sampleLead("Acme", "acme.fr", "b@acme.fr")
	contacted2.Status = model.StatusReplied
	contacted2.CreatedAt = &newer
	uncontacted := sampleLead("Beta", "beta.fr", "c@beta.fr") // stays ready

	_, err := s.InsertProspects(ctx, []model.Lead{contacted1, contacted2, uncontacted})
	require.NoError(t, err)

	dates, err := s.LastContactDates(ctx)
	require.NoError(t, err)
	require.Contains(t, dates, "acme.fr")
	assert.NotContains(t, dates, "beta.fr", "ready prospects do not count as contacted")

	got, err := time.Parse(time.RFC3339, dates["acme.fr"])
	require.NoError(t, err)
	assert.True(t, got.Equal(newer), "most recent contact wins")
}

func TestSQLiteStore_UpdateStatus(t *testing.T) {
	t.Parallel()
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	leads := []model.Lead{sampleLead("Acme", "acme.fr", "jean@acme.fr")}
	_, err := s.InsertProspects(ctx, leads)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(ctx, leads[0].ID, model.StatusSent))

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.StatusSent])
	assert.Zero(t, counts[model.StatusReady])

	err = s.UpdateStatus(ctx, "missing-id", model.StatusSent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_FindByEmail(t *testing.T) {
	t.Parallel()
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	leads := []model.Lead{sampleLead("Acme", "acme.fr", "jean@acme.fr")}
	_, err := s.InsertProspects(ctx, leads)
	require.NoError(t, err)

	found, err := s.FindByEmail(ctx, "jean@acme.fr")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, leads[0].ID, found.ID)

	missing, err := s.FindByEmail(ctx, "nobody@acme.fr")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
