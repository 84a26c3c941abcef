package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jk-calendar/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with registry rows and sample accounts",
	Long: `Creates the permission and status registries plus sample users, each
with a default calendar and an owner grant. Reads fixtures from a YAML
file when one is configured; otherwise uses the built-in set.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		fixtures := seed.Defaults()
		path := seedFile
		if path == "" {
			path = cfg.SeedFile
		}
		if path != "" {
			var err error
			fixtures, err = seed.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading seed file: %v\n", err)
				os.Exit(1)
			}
		}

		if err := seed.Apply(ctx, provider, fixtures); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Seeded %d permissions, %d statuses, %d users.\n",
			len(fixtures.Permissions), len(fixtures.Statuses), len(fixtures.Users))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedFile, "file", "", "seed fixture file (YAML)")
}
