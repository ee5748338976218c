package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var (
	quoteTier string
	quoteUser string
)

var quoteCmd = &cobra.Command{
	Use:   "quote [address]",
	Short: "Price a repeat analysis against the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		q, err := env.Service.QuoteReuse(cmd.Context(), args[0], quoteTier, quoteUser)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(q, "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	quoteCmd.Flags().StringVar(&quoteTier, "tier", "full_enterprise", "tier key to price")
	quoteCmd.Flags().StringVar(&quoteUser, "user", "", "requesting user ID")
	rootCmd.AddCommand(quoteCmd)
}
