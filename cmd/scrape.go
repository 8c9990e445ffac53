package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/pipeline"
)

var (
	scrapeCount    int
	scrapeKeywords []string
	scrapeLocation string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape LinkedIn job postings and build qualified prospects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		p, err := initPipeline(ctx, st)
		if err != nil {
			return err
		}

		keywords := scrapeKeywords
		if len(keywords) == 0 {
			keywords = cfg.Scrape.Keywords
		}
		location := scrapeLocation
		if location == "" {
			location = cfg.Scrape.Location
		}
		count := scrapeCount
		if count <= 0 {
			count = cfg.Scrape.MaxPerSearch
		}

		result, err := p.RunJobs(ctx, pipeline.JobRunParams{
			Keywords:   keywords,
			Location:   location,
			GeoID:      cfg.Scrape.GeoID,
			Count:      count,
			MaxAgeDays: cfg.Scrape.MaxAgeDays,
		})
		if err != nil {
			return eris.Wrap(err, "scrape pipeline")
		}

		zap.L().Info("scrape complete",
			zap.Int("scraped", result.Scraped),
			zap.Int("enriched", result.Enrich.Enriched),
			zap.Int("inserted", result.Inserted),
		)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeCount, "count", 0, "max postings per keyword search (default from config)")
	scrapeCmd.Flags().StringSliceVar(&scrapeKeywords, "keywords", nil, "keyword searches to run (default: built-in decision-maker titles)")
	scrapeCmd.Flags().StringVar(&scrapeLocation, "location", "", "job location filter (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
