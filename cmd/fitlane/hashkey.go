package main

import (
	"fmt"

	"fitlane/internal/app"

	"github.com/spf13/cobra"
)

func hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print the bcrypt hash of an API key for auth.api_key_hashes",
		Long: `hash-key prints the bcrypt hash to add to auth.api_key_hashes. Without an
argument a random key is generated and printed alongside its hash.`,
		Args: cobra.MaximumNArgs(1),
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				generated, err := app.GenerateAPIKey()
				if err != nil {
					return err
				}
				key = generated
				fmt.Fprintln(cmd.OutOrStdout(), "key: ", key)
			}

			hash, err := app.HashAPIKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "hash:", hash)
			return nil
		},
	}
}
