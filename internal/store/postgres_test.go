package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/millemail/prospector/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_ExistingContacts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"company_domain", "email"}).
		AddRow("acme.fr", "jean@acme.fr").
		AddRow("beta.fr", "marie@beta.fr")

	mock.ExpectQuery(`SELECT company_domain, email FROM millemail_prospects`).
		WillReturnRows(rows)

	contacts, err := s.ExistingContacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
	_, ok := contacts[model.IdentityPair{Domain: "acme.fr", Email: "jean@acme.fr"}]
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastContactDates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	latest := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"company_domain", "max"}).
		AddRow("acme.fr", latest)

	mock.ExpectQuery(`SELECT company_domain, MAX\(created_at\) FROM millemail_prospects`).
		WithArgs(statusStrings(model.ContactedStatuses)).
		WillReturnRows(rows)

	dates, err := s.LastContactDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-04-01T09:30:00Z", dates["acme.fr"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertProspects(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"millemail_prospects"}, prospectColumns).
		WillReturnResult(2)

	leads := []model.Lead{
		{CompanyName: "Acme", CompanyDomain: "acme.fr", Email: "jean@acme.fr"},
		{CompanyName: "Beta", CompanyDomain: "beta.fr", Email: "marie@beta.fr"},
	}

	n, err := s.InsertProspects(context.Background(), leads)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotEmpty(t, leads[0].ID, "missing ids are assigned at insert")
	assert.Equal(t, model.StatusReady, leads[0].Status, "missing status defaults to ready")
	assert.NotNil(t, leads[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertProspects_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	n, err := s.InsertProspects(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgresStore_UpdateStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE millemail_prospects SET status = \$1 WHERE id = \$2`).
		WithArgs("sent", "id-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateStatus(context.Background(), "id-1", model.StatusSent)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE millemail_prospects SET status = \$1 WHERE id = \$2`).
		WithArgs("sent", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateStatus(context.Background(), "missing", model.StatusSent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgresStore_Count(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM millemail_prospects`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestPostgresStore_CountByStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"status", "count"}).
		AddRow("ready", 5).
		AddRow("sent", 3)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM millemail_prospects GROUP BY status`).
		WillReturnRows(rows)

	counts, err := s.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, counts[model.StatusReady])
	assert.Equal(t, 3, counts[model.StatusSent])
}

func TestPostgresStore_FindByEmail_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM millemail_prospects WHERE email = \$1`).
		WithArgs("nobody@acme.fr").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	lead, err := s.FindByEmail(context.Background(), "nobody@acme.fr")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestPostgresStore_ReadyProspects(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "company_name", "company_domain", "email", "first_name",
		"last_name", "title", "job_title", "job_url", "location",
		"source_keyword", "posted_date", "source", "company_type",
		"employee_range", "verification_status", "verification_score",
		"subject_line", "email_1", "email_1_ps", "email_2", "email_3",
		"status", "created_at",
	}).AddRow(
		"id-1", "Acme", "acme.fr", "jean@acme.fr", "Jean",
		"Dupont", "CEO", "VP Sales", "https://job", "Paris",
		"VP Sales", "2026-04-28", "linkedin_jobs", "b2b",
		"11-50", "valid", 97,
		"Subject", "Body 1", "PS", "Body 2", "Body 3",
		"ready", created,
	)

	mock.ExpectQuery(`FROM millemail_prospects\s+WHERE status = \$1 AND company_type = \$2`).
		WithArgs("ready", "b2b", 10).
		WillReturnRows(rows)

	leads, err := s.ReadyProspects(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Acme", leads[0].CompanyName)
	assert.Equal(t, model.StatusReady, leads[0].Status)
	require.NotNil(t, leads[0].CreatedAt)
	assert.True(t, leads[0].CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}
