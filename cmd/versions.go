package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionsCmd implements: scs-commander versions
//
// The endpoint is public, so this works without credentials. Handy to check
// which version names a compatibility range actually matches.
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the Shopware versions known to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("%w: unknown argument %q, see 'scs-commander versions --help'", errUsage, args[0])
		}

		client, err := newStoreClient(cmd)
		if err != nil {
			return err
		}

		versions, err := client.SoftwareVersions(cmd.Context())
		if err != nil {
			return err
		}

		for _, v := range versions {
			if v.Selectable {
				fmt.Println(v.Name)
			} else {
				fmt.Printf("%s (not selectable)\n", v.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
