package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/internal/qualify"
	"github.com/millemail/prospector/internal/store"
)

// Pipeline wires the stages together. Each entry point (jobs or
// profiles) scrapes its own raw shape, then both funnel into the same
// qualification, enrichment, and persistence tail. The gate order is
// fixed: cheap local filters run before anything that costs an API
// call, and nothing is persisted until every gate has passed.
type Pipeline struct {
	scraper      *Scraper
	enricher     *Enricher
	sequencer    *Sequencer
	store        store.Store
	brands       *qualify.BrandList
	cooldownDays int
}

// New assembles a Pipeline from its collaborators.
func New(scraper *Scraper, enricher *Enricher, sequencer *Sequencer, st store.Store, brands *qualify.BrandList, cooldownDays int) *Pipeline {
	if cooldownDays <= 0 {
		cooldownDays = qualify.DefaultCooldownDays
	}
	return &Pipeline{
		scraper:      scraper,
		enricher:     enricher,
		sequencer:    sequencer,
		store:        st,
		brands:       brands,
		cooldownDays: cooldownDays,
	}
}

// JobRunParams parameterize a job-postings run.
type JobRunParams struct {
	Keywords   []string
	Location   string
	GeoID      string
	Count      int
	MaxAgeDays int
}

// ProfileRunParams parameterize a profile-search run.
type ProfileRunParams struct {
	SearchURL string
	Count     int
}

// RunResult tallies every stage of a pipeline run.
type RunResult struct {
	Scraped        int
	AfterCompany   int
	AfterBrand     int
	Enrich         EnrichStats
	AfterDuplicate int
	AfterCooldown  int
	Sequenced      int
	Inserted       int
}

// RunJobs executes the job-postings pipeline end to end.
func (p *Pipeline) RunJobs(ctx context.Context, params JobRunParams) (*RunResult, error) {
	searches := make([]JobSearch, 0, len(params.Keywords))
	for _, kw := range params.Keywords {
		searches = append(searches, JobSearch{
			Keyword:    kw,
			Location:   params.Location,
			GeoID:      params.GeoID,
			Rows:       params.Count,
			MaxAgeDays: params.MaxAgeDays,
		})
	}

	postings, err := p.scraper.ScrapeJobs(ctx, searches)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: run jobs")
	}

	leads := make([]model.Lead, 0, len(postings))
	for _, posting := range postings {
		leads = append(leads, LeadFromJob(posting))
	}

	return p.qualifyAndPersist(ctx, leads, len(postings))
}

// RunProfiles executes the profile-search pipeline end to end.
func (p *Pipeline) RunProfiles(ctx context.Context, params ProfileRunParams) (*RunResult, error) {
	profiles, err := p.scraper.ScrapeProfiles(ctx, params.SearchURL, params.Count)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: run profiles")
	}

	leads := make([]model.Lead, 0, len(profiles))
	for _, profile := range profiles {
		leads = append(leads, LeadFromProfile(profile))
	}

	return p.qualifyAndPersist(ctx, leads, len(profiles))
}

// qualifyAndPersist is the shared pipeline tail. An empty stage output
// short-circuits with a normal summary rather than an error: finding
// nothing is an ordinary outcome of a scrape.
func (p *Pipeline) qualifyAndPersist(ctx context.Context, leads []model.Lead, scraped int) (*RunResult, error) {
	result := &RunResult{Scraped: scraped}
	if len(leads) == 0 {
		zap.L().Info("no leads scraped, nothing to do")
		return result, nil
	}

	leads = qualify.DedupeByCompany(leads)
	result.AfterCompany = len(leads)

	leads = p.filterBrands(leads)
	result.AfterBrand = len(leads)
	if len(leads) == 0 {
		zap.L().Info("all leads filtered before enrichment", zap.Int("scraped", scraped))
		return result, nil
	}

	leads, stats, err := p.enricher.EnrichAll(ctx, leads)
	result.Enrich = stats
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich")
	}
	if len(leads) == 0 {
		zap.L().Info("no leads survived enrichment", zap.Int("scraped", scraped))
		return result, nil
	}

	existing, err := p.store.ExistingContacts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load existing contacts")
	}
	leads = qualify.FilterDuplicates(leads, existing)
	result.AfterDuplicate = len(leads)

	lastContact, err := p.store.LastContactDates(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load contact dates")
	}
	leads = qualify.FilterCooldown(leads, lastContact, p.cooldownDays, time.Now().UTC())
	result.AfterCooldown = len(leads)
	if len(leads) == 0 {
		zap.L().Info("all enriched leads already contacted or cooling down")
		return result, nil
	}

	for i := range leads {
		seq := p.sequencer.Generate(ctx, leads[i])
		leads[i].ApplySequence(seq)
		result.Sequenced++
	}

	inserted, err := p.store.InsertProspects(ctx, leads)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: persist prospects")
	}
	result.Inserted = inserted

	zap.L().Info("pipeline run complete",
		zap.Int("scraped", result.Scraped),
		zap.Int("after_company_dedupe", result.AfterCompany),
		zap.Int("after_brand_filter", result.AfterBrand),
		zap.Int("enriched", result.Enrich.Enriched),
		zap.Int("after_duplicate_filter", result.AfterDuplicate),
		zap.Int("after_cooldown", result.AfterCooldown),
		zap.Int("inserted", result.Inserted),
	)
	return result, nil
}

// filterBrands drops leads whose company name contains a known
// large-corporate brand token. Runs before enrichment so obvious
// non-targets never cost an API call.
func (p *Pipeline) filterBrands(leads []model.Lead) []model.Lead {
	if p.brands == nil || p.brands.Len() == 0 {
		return leads
	}
	kept := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if p.brands.Match(lead.CompanyName) {
			zap.L().Debug("dropped big-corporate brand", zap.String("company", lead.CompanyName))
			continue
		}
		kept = append(kept, lead)
	}
	return kept
}
