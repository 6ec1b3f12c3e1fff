package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alpentrace/harvester/internal/extractor"
)

// newSourcesCmd creates the 'sources' subcommand listing every source
// site the harvester knows how to scrape.
func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Lists the registered source sites",

		// The registry is static; no configuration is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },

		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range extractor.Sources() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
