package cmd

import (
	"fmt"

	"github.com/VIISON/scs-commander/pkg/store"
	"github.com/spf13/cobra"
)

// pluginsCmd implements: scs-commander plugins
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the plugins of your producer account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("%w: unknown argument %q, see 'scs-commander plugins --help'", errUsage, args[0])
		}

		client, err := newStoreClient(cmd)
		if err != nil {
			return err
		}
		username, password, err := credentials(cmd)
		if err != nil {
			return err
		}
		if err := client.Login(cmd.Context(), username, password); err != nil {
			return err
		}

		plugins, err := client.Plugins(cmd.Context(), []string{"binaries", "reviews"})
		if err != nil {
			return err
		}

		fmt.Printf("%-40s %-12s %-18s %s\n", "PLUGIN", "VERSION", "SHOPWARE", "REVIEW")
		for i := range plugins {
			p := &plugins[i]

			version := "-"
			compatible := "-"
			if p.LatestBinary != nil {
				if p.LatestBinary.Version != "" {
					version = p.LatestBinary.Version
				}
				compatible = compatibilityRange(p.LatestBinary.CompatibleSoftwareVersions)
			}
			status := "-"
			if r := p.LatestReview(); r != nil {
				status = r.Status.Name
			}
			fmt.Printf("%-40s %-12s %-18s %s\n", p.Name, version, compatible, status)
		}
		return nil
	},
}

// compatibilityRange condenses a binary's compatible Shopware versions into
// "first - last" for the listing.
func compatibilityRange(versions []store.SoftwareVersion) string {
	switch len(versions) {
	case 0:
		return "-"
	case 1:
		return versions[0].Name
	}
	return versions[0].Name + " - " + versions[len(versions)-1].Name
}

func init() {
	rootCmd.AddCommand(pluginsCmd)

	pluginsCmd.Flags().StringP("username", "u", "", "Shopware ID used to log in (falls back to SCS_USERNAME)")
}
