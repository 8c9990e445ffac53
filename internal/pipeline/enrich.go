package pipeline

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/internal/qualify"
	"github.com/millemail/prospector/internal/resilience"
	"github.com/millemail/prospector/pkg/hunter"
)

// dropReason labels why enrichment rejected a lead.
type dropReason string

const (
	dropNoDomain     dropReason = "no_domain"
	dropDomainClaim  dropReason = "domain_claimed"
	dropLargeCompany dropReason = "large_company"
	dropB2C          dropReason = "b2c"
	dropNoContact    dropReason = "no_contact"
	dropUnverified   dropReason = "unverified"
)

// EnrichStats tallies enrichment outcomes for the run summary.
type EnrichStats struct {
	Enriched     int
	NoDomain     int
	DomainClaim  int
	LargeCompany int
	B2C          int
	NoContact    int
	Unverified   int
	Errored      int
}

func (s *EnrichStats) record(reason dropReason) {
	switch reason {
	case dropNoDomain:
		s.NoDomain++
	case dropDomainClaim:
		s.DomainClaim++
	case dropLargeCompany:
		s.LargeCompany++
	case dropB2C:
		s.B2C++
	case dropNoContact:
		s.NoContact++
	case dropUnverified:
		s.Unverified++
	}
}

// Enricher resolves each lead's company domain, applies the size and
// B2C gates, finds a contact, and verifies the contact's email.
type Enricher struct {
	hunter         hunter.Client
	classifier     *qualify.B2CClassifier
	minVerifyScore int
	concurrency    int
	retry          resilience.RetryConfig
}

// NewEnricher creates an Enricher. concurrency caps the number of
// in-flight leads; values below 1 run sequentially.
func NewEnricher(hc hunter.Client, classifier *qualify.B2CClassifier, minVerifyScore, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	retry := resilience.DefaultRetryConfig()
	retry.ShouldRetry = resilience.IsTransient
	retry.OnRetry = resilience.RetryLogger("hunter", "enrich")
	return &Enricher{
		hunter:         hc,
		classifier:     classifier,
		minVerifyScore: minVerifyScore,
		concurrency:    concurrency,
		retry:          retry,
	}
}

// domainClaims tracks which domains are already being worked within a
// single run. The first lead to resolve a domain claims it; later
// leads resolving the same domain are dropped instead of racing it.
type domainClaims struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func newDomainClaims() *domainClaims {
	return &domainClaims{claimed: make(map[string]struct{})}
}

// claim reports whether the domain was free and claims it if so.
func (d *domainClaims) claim(domain string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.claimed[domain]; taken {
		return false
	}
	d.claimed[domain] = struct{}{}
	return true
}

// EnrichAll enriches leads concurrently and returns the survivors in
// their original relative order. Per-lead failures are logged and
// counted, never fatal; only context cancellation aborts the batch.
func (e *Enricher) EnrichAll(ctx context.Context, leads []model.Lead) ([]model.Lead, EnrichStats, error) {
	results := make([]*model.Lead, len(leads))
	reasons := make([]dropReason, len(leads))
	errored := make([]bool, len(leads))
	claims := newDomainClaims()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range leads {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			enriched, reason, err := e.enrichOne(gctx, leads[i], claims)
			switch {
			case err != nil:
				if gctx.Err() != nil {
					return gctx.Err()
				}
				zap.L().Warn("enrichment failed, skipping lead",
					zap.String("company", leads[i].CompanyName),
					zap.Error(err),
				)
				errored[i] = true
			case enriched != nil:
				results[i] = enriched
			default:
				reasons[i] = reason
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, EnrichStats{}, err
	}

	var stats EnrichStats
	survivors := make([]model.Lead, 0, len(leads))
	for i := range leads {
		switch {
		case results[i] != nil:
			stats.Enriched++
			survivors = append(survivors, *results[i])
		case errored[i]:
			stats.Errored++
		default:
			stats.record(reasons[i])
		}
	}
	return survivors, stats, nil
}

// enrichOne runs the gate sequence for a single lead. A nil lead with
// a reason means a gate dropped it; an error means an upstream call
// failed after retries.
func (e *Enricher) enrichOne(ctx context.Context, lead model.Lead, claims *domainClaims) (*model.Lead, dropReason, error) {
	search, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*hunter.DomainSearchData, error) {
		return e.hunter.DomainSearch(ctx, hunter.DomainSearchRequest{
			Company: lead.CompanyName,
			Limit:   5,
			Type:    "personal",
		})
	})
	if err != nil {
		return nil, "", err
	}
	if search.Domain == "" {
		return nil, dropNoDomain, nil
	}
	domain := strings.ToLower(search.Domain)

	if !claims.claim(domain) {
		return nil, dropDomainClaim, nil
	}

	company, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*hunter.CompanyData, error) {
		return e.hunter.CompanyFind(ctx, domain)
	})
	if err != nil {
		return nil, "", err
	}

	if qualify.IsLargeRange(company.Metrics.Employees) {
		zap.L().Debug("dropped large company",
			zap.String("company", lead.CompanyName),
			zap.String("employee_range", company.Metrics.Employees),
		)
		return nil, dropLargeCompany, nil
	}

	verdict := e.classifier.Classify(ctx, lead.CompanyName, company.Industry, company.Description)
	if verdict.IsB2C {
		zap.L().Debug("dropped B2C company",
			zap.String("company", lead.CompanyName),
			zap.String("reason", verdict.Reason),
		)
		return nil, dropB2C, nil
	}

	contact := pickContact(search.Emails, lead)
	if contact == nil {
		return nil, dropNoContact, nil
	}

	verification, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*hunter.VerificationData, error) {
		return e.hunter.VerifyEmail(ctx, contact.Value)
	})
	if err != nil {
		return nil, "", err
	}
	if !verification.Verified(e.minVerifyScore) {
		return nil, dropUnverified, nil
	}

	lead.CompanyDomain = domain
	lead.Email = contact.Value
	if lead.FirstName == "" {
		lead.FirstName = contact.FirstName
	}
	if lead.LastName == "" {
		lead.LastName = contact.LastName
	}
	if lead.Title == "" {
		lead.Title = contact.Position
	}
	lead.CompanyType = "b2b"
	lead.EmployeeRange = company.Metrics.Employees
	lead.VerificationStatus = verification.Status
	lead.VerificationScore = verification.Score
	return &lead, "", nil
}

// pickContact chooses the contact email. Profile-sourced leads have a
// named person, so a matching first+last name wins; otherwise the
// highest-confidence result (Hunter returns them ranked) is taken.
func pickContact(emails []hunter.EmailResult, lead model.Lead) *hunter.EmailResult {
	if len(emails) == 0 {
		return nil
	}
	if lead.FirstName != "" && lead.LastName != "" {
		for i, e := range emails {
			if strings.EqualFold(e.FirstName, lead.FirstName) && strings.EqualFold(e.LastName, lead.LastName) {
				return &emails[i]
			}
		}
	}
	return &emails[0]
}
