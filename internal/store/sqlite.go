package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/millemail/prospector/internal/model"
)

// SQLiteStore implements Store on a local file. It exists for
// development and offline runs where no Postgres is reachable.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the database at path.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: %s", pragma)
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS millemail_prospects (
	id                  TEXT PRIMARY KEY,
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
	created_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON millemail_prospects(status);
CREATE INDEX IF NOT EXISTS idx_prospects_domain ON millemail_prospects(company_domain);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) ExistingContacts(ctx context.Context) (map[model.IdentityPair]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company_domain, email FROM millemail_prospects
		 WHERE company_domain IS NOT NULL AND company_domain <> ''
		   AND email IS NOT NULL AND email <> ''`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: existing contacts")
	}
	defer rows.Close()

	contacts := make(map[model.IdentityPair]struct{})
	for rows.Next() {
		var domain, email string
		if err := rows.Scan(&domain, &email); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts[model.IdentityPair{Domain: domain, Email: email}] = struct{}{}
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func (s *SQLiteStore) LastContactDates(ctx context.Context) (map[string]string, error) {
	placeholders := make([]string, len(model.ContactedStatuses))
	args := make([]any, len(model.ContactedStatuses))
	for i, st := range model.ContactedStatuses {
		placeholders[i] = "?"
		args[i] = string(st)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT company_domain, MAX(created_at) FROM millemail_prospects
		 WHERE company_domain IS NOT NULL AND company_domain <> ''
		   AND status IN (%s)
		 GROUP BY company_domain`, strings.Join(placeholders, ", ")),
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last contact dates")
	}
	defer rows.Close()

	dates := make(map[string]string)
	for rows.Next() {
		var domain, latest string
		if err := rows.Scan(&domain, &latest); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact date")
		}
		dates[domain] = latest
	}
	return dates, eris.Wrap(rows.Err(), "sqlite: iterate contact dates")
}

func (s *SQLiteStore) InsertProspects(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO millemail_prospects (
			id, company_name, company_domain, email, first_name,
			last_name, title, job_title, job_url, location,
			source_keyword, posted_date, source, company_type,
			employee_range, verification_status, verification_score,
			subject_line, email_1, email_1_ps, email_2, email_3,
			status, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
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
		_, err := stmt.ExecContext(ctx,
			lead.ID, lead.CompanyName, lead.CompanyDomain, lead.Email, lead.FirstName,
			lead.LastName, lead.Title, lead.JobTitle, lead.JobURL, lead.Location,
			lead.SourceKeyword, lead.PostedDate, lead.Source, lead.CompanyType,
			lead.EmployeeRange, lead.VerificationStatus, lead.VerificationScore,
			lead.SubjectLine, lead.Email1, lead.Email1PS, lead.Email2, lead.Email3,
			string(lead.Status), lead.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert prospect %s", lead.CompanyName)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return inserted, nil
}

const sqliteProspectSelect = `SELECT id, company_name, COALESCE(company_domain, ''), COALESCE(email, ''), first_name,
	last_name, title, job_title, job_url, location,
	source_keyword, posted_date, source, company_type,
	employee_range, verification_status, verification_score,
	subject_line, COALESCE(email_1, ''), email_1_ps, email_2, email_3,
	status, created_at FROM millemail_prospects`

func (s *SQLiteStore) ReadyProspects(ctx context.Context, limit int) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteProspectSelect+`
		 WHERE status = ? AND company_type = ?
		   AND email IS NOT NULL AND email <> ''
		   AND email_1 IS NOT NULL AND email_1 <> ''
		 ORDER BY created_at ASC
		 LIMIT ?`,
		string(model.StatusReady), "b2b", limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: ready prospects")
	}
	defer rows.Close()

	return scanSQLiteLeads(rows)
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE millemail_prospects SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if affected == 0 {
		return eris.Errorf("prospect not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) FindByEmail(ctx context.Context, email string) (*model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		sqliteProspectSelect+` WHERE email = ? ORDER BY created_at DESC LIMIT 1`,
		email,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find by email")
	}
	defer rows.Close()

	leads, err := scanSQLiteLeads(rows)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM millemail_prospects`).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, eris.Wrap(err, "sqlite: count prospects")
	}
	return count, nil
}

func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM millemail_prospects GROUP BY status`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by status")
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status count")
		}
		counts[model.Status(status)] = count
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: iterate status counts")
}

func scanSQLiteLeads(rows *sql.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var status, createdAt string
		err := rows.Scan(
			&l.ID, &l.CompanyName, &l.CompanyDomain, &l.Email, &l.FirstName,
			&l.LastName, &l.Title, &l.JobTitle, &l.JobURL, &l.Location,
			&l.SourceKeyword, &l.PostedDate, &l.Source, &l.CompanyType,
			&l.EmployeeRange, &l.VerificationStatus, &l.VerificationScore,
			&l.SubjectLine, &l.Email1, &l.Email1PS, &l.Email2, &l.Email3,
			&status, &createdAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prospect")
		}
		l.Status = model.Status(status)
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			created := ts.UTC()
			l.CreatedAt = &created
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate prospects")
}
