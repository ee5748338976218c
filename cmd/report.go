package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/washlytics/siteiq/internal/report"
)

var (
	reportOut   string
	reportName  string
	reportEmail string
)

var reportCmd = &cobra.Command{
	Use:   "report [analysis-id]",
	Short: "Render a stored analysis as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		pdf, err := env.Service.RenderPDF(cmd.Context(), args[0], report.UserInfo{
			Name:  reportName,
			Email: reportEmail,
		})
		if err != nil {
			return err
		}

		if err := os.WriteFile(reportOut, pdf, 0o644); err != nil {
			return err
		}
		zap.L().Info("report written",
			zap.String("analysis_id", args[0]),
			zap.String("path", reportOut),
			zap.Int("bytes", len(pdf)),
		)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "report.pdf", "output PDF path")
	reportCmd.Flags().StringVar(&reportName, "name", "", "recipient name for the cover page")
	reportCmd.Flags().StringVar(&reportEmail, "email", "", "recipient email for the cover page")
	rootCmd.AddCommand(reportCmd)
}
