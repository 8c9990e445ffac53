// Package store persists prospects and answers the dedup and cooldown
// queries the pipeline gates depend on.
package store

import (
	"context"

	"github.com/millemail/prospector/internal/model"
)

// Store defines the persistence interface for the prospect pipeline.
//
// The (company_domain, email) pair of a persisted prospect is its
// durable identity; it is written once at insert and never updated.
type Store interface {
	// ExistingContacts returns the identity pairs of every persisted
	// prospect that has both a domain and an email.
	ExistingContacts(ctx context.Context) (map[model.IdentityPair]struct{}, error)

	// LastContactDates returns, per domain, the most recent created_at
	// among prospects in a contacted status, formatted RFC 3339 UTC.
	LastContactDates(ctx context.Context) (map[string]string, error)

	// InsertProspects saves a batch, assigning ids and defaulting
	// status to ready and created_at to now where unset. Returns the
	// number inserted.
	InsertProspects(ctx context.Context, leads []model.Lead) (int, error)

	// ReadyProspects returns B2B prospects with status ready and a
	// populated email and first sequence email, up to limit.
	ReadyProspects(ctx context.Context, limit int) ([]model.Lead, error)

	// UpdateStatus moves a prospect to a new lifecycle status.
	UpdateStatus(ctx context.Context, id string, status model.Status) error

	// FindByEmail returns the prospect with the given contact email,
	// or nil if none exists.
	FindByEmail(ctx context.Context, email string) (*model.Lead, error)

	// Count returns the total number of prospects.
	Count(ctx context.Context) (int, error)

	// CountByStatus returns prospect counts keyed by lifecycle status.
	CountByStatus(ctx context.Context) (map[model.Status]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
