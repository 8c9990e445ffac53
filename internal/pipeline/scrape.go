package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/pkg/apify"
)

// Scraper runs the LinkedIn actors and collects their datasets. Each
// scrape is one actor run polled to completion.
type Scraper struct {
	client       apify.Client
	jobActor     string
	profileActor string
	timeout      time.Duration
}

// NewScraper creates a Scraper for the two configured actors.
func NewScraper(client apify.Client, jobActor, profileActor string) *Scraper {
	return &Scraper{
		client:       client,
		jobActor:     jobActor,
		profileActor: profileActor,
		timeout:      20 * time.Minute,
	}
}

// jobSearchInput is the actor input for a job-postings search.
type jobSearchInput struct {
	Keyword     string `json:"keyword"`
	Location    string `json:"location"`
	GeoID       string `json:"geoId,omitempty"`
	Rows        int    `json:"rows"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// profileSearchInput is the actor input for a profile-search scrape.
type profileSearchInput struct {
	SearchURL  string `json:"searchUrl"`
	MaxResults int    `json:"maxResults"`
}

// JobSearch describes one keyword search against the job actor.
type JobSearch struct {
	Keyword    string
	Location   string
	GeoID      string
	Rows       int
	MaxAgeDays int
}

// ScrapeJobs runs one actor run per keyword and concatenates the
// results. Failed records (the actor emits them with an error field)
// and records past the posting-age cutoff are dropped here so callers
// only ever see usable postings. A failed run is logged and skipped;
// the remaining keywords still run.
func (s *Scraper) ScrapeJobs(ctx context.Context, searches []JobSearch) ([]model.JobPosting, error) {
	var postings []model.JobPosting
	for _, search := range searches {
		batch, err := s.scrapeKeyword(ctx, search)
		if err != nil {
			if ctx.Err() != nil {
				return postings, eris.Wrap(err, "pipeline: scrape jobs")
			}
			zap.L().Warn("keyword scrape failed, continuing",
				zap.String("keyword", search.Keyword),
				zap.Error(err),
			)
			continue
		}
		postings = append(postings, batch...)
	}
	return postings, nil
}

func (s *Scraper) scrapeKeyword(ctx context.Context, search JobSearch) ([]model.JobPosting, error) {
	input := jobSearchInput{
		Keyword:  search.Keyword,
		Location: search.Location,
		GeoID:    search.GeoID,
		Rows:     search.Rows,
	}

	run, err := s.client.RunActor(ctx, s.jobActor, input)
	if err != nil {
		return nil, err
	}

	zap.L().Info("job scrape started",
		zap.String("keyword", search.Keyword),
		zap.String("run_id", run.ID),
	)

	run, err = apify.PollRun(ctx, s.client, run.ID, apify.WithPollTimeout(s.timeout))
	if err != nil {
		return nil, err
	}

	var raw []model.JobPosting
	if err := s.client.DatasetItems(ctx, run.DefaultDatasetID, &raw); err != nil {
		return nil, err
	}

	postings := make([]model.JobPosting, 0, len(raw))
	skipped := 0
	for _, p := range raw {
		if p.Error != "" || p.CompanyName == "" {
			skipped++
			continue
		}
		if search.MaxAgeDays > 0 && p.PostedAgeDays > search.MaxAgeDays {
			skipped++
			continue
		}
		p.SourceKeyword = search.Keyword
		postings = append(postings, p)
	}

	zap.L().Info("job scrape finished",
		zap.String("keyword", search.Keyword),
		zap.Int("postings", len(postings)),
		zap.Int("skipped", skipped),
	)
	return postings, nil
}

// ScrapeProfiles runs the profile actor against a LinkedIn search URL
// and returns the usable profiles.
func (s *Scraper) ScrapeProfiles(ctx context.Context, searchURL string, count int) ([]model.ScrapedProfile, error) {
	input := profileSearchInput{
		SearchURL:  searchURL,
		MaxResults: count,
	}

	run, err := s.client.RunActor(ctx, s.profileActor, input)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: scrape profiles")
	}

	zap.L().Info("profile scrape started", zap.String("run_id", run.ID))

	run, err = apify.PollRun(ctx, s.client, run.ID, apify.WithPollTimeout(s.timeout))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: scrape profiles")
	}

	var raw []model.ScrapedProfile
	if err := s.client.DatasetItems(ctx, run.DefaultDatasetID, &raw); err != nil {
		return nil, eris.Wrap(err, "pipeline: scrape profiles")
	}

	profiles := make([]model.ScrapedProfile, 0, len(raw))
	skipped := 0
	for _, p := range raw {
		if p.Error != "" || p.Company() == "" {
			skipped++
			continue
		}
		profiles = append(profiles, p)
	}

	zap.L().Info("profile scrape finished",
		zap.Int("profiles", len(profiles)),
		zap.Int("skipped", skipped),
	)
	return profiles, nil
}
