package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/washlytics/siteiq/internal/analysis"
)

var (
	analyzeDepth      int
	analyzeTier       string
	analyzePayingTier string
	analyzeUser       string
	analyzeOut        string
	analyzeFull       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [address]",
	Short: "Score a candidate laundromat location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.Migrate(cmd.Context()); err != nil {
			return err
		}

		result, err := env.Service.Generate(cmd.Context(), analysis.GenerateRequest{
			Address:       args[0],
			DepthLevel:    analyzeDepth,
			TierKey:       analyzeTier,
			PayingTierKey: analyzePayingTier,
			UserID:        analyzeUser,
		})
		if err != nil {
			return err
		}

		var payload any = result.Preview
		if analyzeFull {
			payload = result.Analysis
		}

		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal result")
		}
		out = append(out, '\n')

		if analyzeOut != "" {
			return os.WriteFile(analyzeOut, out, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", 1, "analysis depth level (1-5)")
	analyzeCmd.Flags().StringVar(&analyzeTier, "tier", "", "tier key (overrides --depth)")
	analyzeCmd.Flags().StringVar(&analyzePayingTier, "paying-tier", "", "paid tier key; caps the entitlement when lower than the requested tier")
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "requesting user ID, recorded for reuse pricing")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write JSON to file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeFull, "full", false, "emit the raw analysis instead of the redacted preview")
	rootCmd.AddCommand(analyzeCmd)
}
