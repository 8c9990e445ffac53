package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

var (
	exportOut   string
	exportCount int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ready prospects to an XLSX workbook for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		prospects, err := st.ReadyProspects(ctx, exportCount)
		if err != nil {
			return eris.Wrap(err, "fetch ready prospects")
		}
		if len(prospects) == 0 {
			fmt.Println("No ready prospects to export.")
			return nil
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Prospects")
		if err != nil {
			return eris.Wrap(err, "add sheet")
		}

		header := sheet.AddRow()
		for _, h := range []string{
			"Company", "Domain", "Email", "First Name", "Last Name", "Title",
			"Job Title", "Employee Range", "Verification", "Score",
			"Subject Line", "Email 1", "Created At",
		} {
			header.AddCell().Value = h
		}

		for _, p := range prospects {
			row := sheet.AddRow()
			row.AddCell().Value = p.CompanyName
			row.AddCell().Value = p.CompanyDomain
			row.AddCell().Value = p.Email
			row.AddCell().Value = p.FirstName
			row.AddCell().Value = p.LastName
			row.AddCell().Value = p.Title
			row.AddCell().Value = p.JobTitle
			row.AddCell().Value = p.EmployeeRange
			row.AddCell().Value = p.VerificationStatus
			row.AddCell().SetInt(p.VerificationScore)
			row.AddCell().Value = p.SubjectLine
			row.AddCell().Value = p.Email1
			if p.CreatedAt != nil {
				row.AddCell().Value = p.CreatedAt.Format(time.RFC3339)
			} else {
				row.AddCell()
			}
		}

		if err := file.Save(exportOut); err != nil {
			return eris.Wrap(err, "save workbook")
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("prospects", len(prospects)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "prospects.xlsx", "output workbook path")
	exportCmd.Flags().IntVar(&exportCount, "count", 1000, "max prospects to export")
	rootCmd.AddCommand(exportCmd)
}
