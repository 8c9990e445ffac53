package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/millemail/prospector/internal/db"
	"github.com/millemail/prospector/internal/model"
)

// PostgresStore implements Store using pgxpool. Supabase exposes a
// plain Postgres connection string, so this is also the Supabase driver.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS millemail_prospects (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name        TEXT NOT NULL,
	company_domain      TEXT,
	email               TEXT,
	first_name          TEXT NOT NULL DEFAULT '',
	last_name           TEXT NOT NULL DEFAULT '',
	title               TEXT NOT NULL DEFAULT '',
	job_title           TEXT NOT NULL DEFAULT '',
	job_url             TEXT NOT NULL DEFAULT '',
	location            TEXT NOT NULL DEFAULT '',
	source_keyword      TEXT NOT NULL DEFAULT '',
	posted_date         TEXT NOT NULL DEFAULT '',
	source              TEXT NOT NULL DEFAULT '',
	company_type        TEXT NOT NULL DEFAULT '',
	employee_range      TEXT NOT NULL DEFAULT '',
	verification_status TEXT NOT NULL DEFAULT '',
	verification_score  INTEGER NOT NULL DEFAULT 0,
	subject_line        TEXT NOT NULL DEFAULT '',
	email_1             TEXT,
	email_1_ps          TEXT NOT NULL DEFAULT '',
	email_2             TEXT NOT NULL DEFAULT '',
	email_3             TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'ready',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON millemail_prospects(status);
CREATE INDEX IF NOT EXISTS idx_prospects_domain ON millemail_prospects(company_domain);
CREATE INDEX IF NOT EXISTS idx_prospects_domain_email ON millemail_prospects(company_domain, email);
`

// prospectColumns is the column order used by inserts and selects.
var prospectColumns = []string{
	"id", "company_name", "company_domain", "email", "first_name",
	"last_name", "title", "job_title", "job_url", "location",
	"source_keyword", "posted_date", "source", "company_type",
	"employee_range", "verification_status", "verification_score",
	"subject_line", "email_1", "email_1_ps", "email_2", "email_3",
	"status", "created_at",
}

const prospectSelect = `SELECT id, company_name, COALESCE(company_domain, ''), COALESCE(email, ''), first_name,
	last_name, title, job_title, job_url, location,
	source_keyword, posted_date, source, company_type,
	employee_range, verification_status, verification_score,
	subject_line, COALESCE(email_1, ''), email_1_ps, email_2, email_3,
	status, created_at FROM millemail_prospects`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) ExistingContacts(ctx context.Context) (map[model.IdentityPair]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_domain, email FROM millemail_prospects
		 WHERE company_domain IS NOT NULL AND company_domain <> ''
		   AND email IS NOT NULL AND email <> ''`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: existing contacts")
	}
	defer rows.Close()

	contacts := make(map[model.IdentityPair]struct{})
	for rows.Next() {
		var domain, email string
		if err := rows.Scan(&domain, &email); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		contacts[model.IdentityPair{Domain: domain, Email: email}] = struct{}{}
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: iterate contacts")
}

func (s *PostgresStore) LastContactDates(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_domain, MAX(created_at) FROM millemail_prospects
		 WHERE company_domain IS NOT NULL AND company_domain <> ''
		   AND status = ANY($1)
		 GROUP BY company_domain`,
		statusStrings(model.ContactedStatuses),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: last contact dates")
	}
	defer rows.Close()

	dates := make(map[string]string)
	for rows.Next() {
		var domain string
		var latest time.Time
		if err := rows.Scan(&domain, &latest); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact date")
		}
		dates[domain] = latest.UTC().Format(time.RFC3339)
	}
	return dates, eris.Wrap(rows.Err(), "postgres: iterate contact dates")
}

func (s *PostgresStore) InsertProspects(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	copyRows := make([][]any, 0, len(leads))
	for i := range leads {
		lead := &leads[i]
		if lead.ID == "" {
			lead.ID = uuid.New().String()
		}
		if lead.Status == "" {
			lead.Status = model.StatusReady
		}
		if lead.CreatedAt == nil {
			created := now
			lead.CreatedAt = &created
		}
		copyRows = append(copyRows, []any{
			lead.ID, lead.CompanyName, lead.CompanyDomain, lead.Email, lead.FirstName,
			lead.LastName, lead.Title, lead.JobTitle, lead.JobURL, lead.Location,
			lead.SourceKeyword, lead.PostedDate, lead.Source, lead.CompanyType,
			lead.EmployeeRange, lead.VerificationStatus, lead.VerificationScore,
			lead.SubjectLine, lead.Email1, lead.Email1PS, lead.Email2, lead.Email3,
			string(lead.Status), *lead.CreatedAt,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "millemail_prospects", prospectColumns, copyRows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert prospects")
	}
	return int(n), nil
}

func (s *PostgresStore) ReadyProspects(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		prospectSelect+`
		 WHERE status = $1 AND company_type = $2
		   AND email IS NOT NULL AND email <> ''
		   AND email_1 IS NOT NULL AND email_1 <> ''
		 ORDER BY created_at ASC
		 LIMIT $3`,
		string(model.StatusReady), "b2b", limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: ready prospects")
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE millemail_prospects SET status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("prospect not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		prospectSelect+` WHERE email = $1 ORDER BY created_at DESC LIMIT 1`,
		email,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find by email")
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM millemail_prospects`).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count prospects")
	}
	return count, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM millemail_prospects GROUP BY status`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by status")
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status count")
		}
		counts[model.Status(status)] = count
	}
	return counts, eris.Wrap(rows.Err(), "postgres: iterate status counts")
}

func scanLeads(rows pgx.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var status string
		var createdAt time.Time
		err := rows.Scan(
			&l.ID, &l.CompanyName, &l.CompanyDomain, &l.Email, &l.FirstName,
			&l.LastName, &l.Title, &l.JobTitle, &l.JobURL, &l.Location,
			&l.SourceKeyword, &l.PostedDate, &l.Source, &l.CompanyType,
			&l.EmployeeRange, &l.VerificationStatus, &l.VerificationScore,
			&l.SubjectLine, &l.Email1, &l.Email1PS, &l.Email2, &l.Email3,
			&status, &createdAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, eris.Wrap(err, "postgres: scan prospect")
		}
		l.Status = model.Status(status)
		created := createdAt.UTC()
		l.CreatedAt = &created
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate prospects")
}

func statusStrings(statuses []model.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
