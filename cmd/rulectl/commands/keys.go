package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/ledgerrules/internal/auth"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Generate an admin key and its bcrypt hash",
	Long: `Print an admin API key and the bcrypt hash to put in ADMIN_API_KEY_HASH.
A new key is generated unless one is given.

Examples:
  rulectl hash-key
  rulectl hash-key my-existing-key`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			generated, err := auth.GenerateAPIKey()
			if err != nil {
				return err
			}
			key = generated
		}

		hash, err := auth.HashAPIKey(key)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "key:  %s\n", key)
		fmt.Fprintf(out, "hash: %s\n", hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashKeyCmd)
}
