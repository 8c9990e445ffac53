package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/millemail/prospector/internal/pipeline"
	"github.com/millemail/prospector/internal/qualify"
	"github.com/millemail/prospector/internal/store"
	anthropicpkg "github.com/millemail/prospector/pkg/anthropic"
	"github.com/millemail/prospector/pkg/apify"
	"github.com/millemail/prospector/pkg/hunter"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "prospector.db"
		}
		return store.NewSQLite(ctx, dsn)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("database URL is required (PROSPECTOR_STORE_DATABASE_URL)")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline assembles the full pipeline. Credential checks happen
// here so a missing key fails before any external call.
func initPipeline(ctx context.Context, st store.Store) (*pipeline.Pipeline, error) {
	if cfg.Apify.Key == "" {
		return nil, eris.New("apify key is required (PROSPECTOR_APIFY_KEY)")
	}
	if cfg.Hunter.Key == "" {
		return nil, eris.New("hunter key is required (PROSPECTOR_HUNTER_KEY)")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required (PROSPECTOR_ANTHROPIC_KEY)")
	}

	brands, err := qualify.LoadBrandList(cfg.Qualify.BrandListPath, cfg.Qualify.ExtraBrands)
	if err != nil {
		return nil, eris.Wrap(err, "load brand list")
	}

	apifyClient := apify.NewClient(cfg.Apify.Key, apify.WithBaseURL(cfg.Apify.BaseURL))
	hunterClient := hunter.NewClient(cfg.Hunter.Key,
		hunter.WithBaseURL(cfg.Hunter.BaseURL),
		hunter.WithRateLimit(cfg.Hunter.RatePerSecond),
	)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	scraper := pipeline.NewScraper(apifyClient, cfg.Apify.JobActor, cfg.Apify.ProfileActor)
	classifier := qualify.NewB2CClassifier(anthropicClient, cfg.Anthropic.ClassifyModel)
	enricher := pipeline.NewEnricher(hunterClient, classifier, cfg.Qualify.MinVerifyScore, cfg.Pipeline.MaxConcurrentEnrich)
	sequencer := pipeline.NewSequencer(anthropicClient, cfg.Anthropic.SequenceModel, cfg.Anthropic.SequenceTokens)

	return pipeline.New(scraper, enricher, sequencer, st, brands, cfg.Qualify.CooldownDays), nil
}
