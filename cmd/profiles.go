package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/pipeline"
)

var (
	profilesURL   string
	profilesCount int
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Scrape LinkedIn profiles from a search URL and build qualified prospects",
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

		result, err := p.RunProfiles(ctx, pipeline.ProfileRunParams{
			SearchURL: profilesURL,
			Count:     profilesCount,
		})
		if err != nil {
			return eris.Wrap(err, "profiles pipeline")
		}

		zap.L().Info("profiles complete",
			zap.Int("scraped", result.Scraped),
			zap.Int("enriched", result.Enrich.Enriched),
			zap.Int("inserted", result.Inserted),
		)
		return nil
	},
}

func init() {
	profilesCmd.Flags().StringVar(&profilesURL, "url", "", "LinkedIn search URL (required)")
	profilesCmd.Flags().IntVar(&profilesCount, "count", 100, "max profiles to scrape")
	_ = profilesCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(profilesCmd)
}
