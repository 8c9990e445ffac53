package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/millemail/prospector/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show prospect counts by lifecycle status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		total, err := st.Count(ctx)
		if err != nil {
			return eris.Wrap(err, "count prospects")
		}
		counts, err := st.CountByStatus(ctx)
		if err != nil {
			return eris.Wrap(err, "count by status")
		}

		fmt.Printf("Total prospects: %d\n", total)
		for _, status := range []model.Status{
			model.StatusReady,
			model.StatusSent,
			model.StatusReplied,
			model.StatusInterested,
			model.StatusBounced,
			model.StatusNotInterested,
		} {
			fmt.Printf("  %-15s %d\n", string(status), counts[status])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
