package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/pipeline"
	"github.com/millemail/prospector/pkg/smartlead"
)

var (
	sendCount int
	sendYes   bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Push ready prospects to the Smartlead campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Smartlead.Key == "" {
			return eris.New("smartlead key is required (PROSPECTOR_SMARTLEAD_KEY)")
		}
		if cfg.Smartlead.CampaignID == "" {
			return eris.New("smartlead campaign ID is required (PROSPECTOR_SMARTLEAD_CAMPAIGN_ID)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		prospects, err := st.ReadyProspects(ctx, sendCount)
		if err != nil {
			return eris.Wrap(err, "fetch ready prospects")
		}
		if len(prospects) == 0 {
			return eris.New("no qualifying prospects to send")
		}

		fmt.Printf("About to push %d prospects to campaign %s:\n", len(prospects), cfg.Smartlead.CampaignID)
		for i, p := range prospects {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(prospects)-10)
				break
			}
			fmt.Printf("  %s <%s> @ %s\n", strings.TrimSpace(p.FirstName+" "+p.LastName), p.Email, p.CompanyName)
		}

		if !sendYes && !confirm("Proceed? [y/N] ") {
			fmt.Println("Aborted.")
			return nil
		}

		client := smartlead.NewClient(cfg.Smartlead.Key, smartlead.WithBaseURL(cfg.Smartlead.BaseURL))
		sender := pipeline.NewSender(client, st, cfg.Smartlead.CampaignID)

		result, err := sender.Push(ctx, prospects)
		if err != nil {
			return eris.Wrap(err, "push prospects")
		}

		zap.L().Info("send complete",
			zap.Int("batches", result.Batches),
			zap.Int("failed_batches", result.FailedBatch),
			zap.Int("pushed", result.Pushed),
			zap.Int("already_added", result.AlreadyAdded),
			zap.Int("invalid", result.Invalid),
			zap.Int("marked_sent", result.MarkedSent),
		)
		return nil
	},
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	sendCmd.Flags().IntVar(&sendCount, "count", 100, "max prospects to push")
	sendCmd.Flags().BoolVar(&sendYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(sendCmd)
}
