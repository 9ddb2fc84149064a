package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scales-okn/jed/internal/config"
	"github.com/scales-okn/jed/internal/storage"
)

// Shared across commands, set up by the root PersistentPreRunE.
var (
	cfg   config.Config
	store storage.Storage

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "jed",
	Short: "Judge entity resolution for federal court dockets",
	Long: `JED resolves judge mentions extracted from court dockets into a
catalog of disambiguated entities.

A run sweeps the mentions through three matching phases (case, court,
free), labels the surviving entities against the FJC codebook and the
bankruptcy/magistrate roster, and writes the catalog plus the tagged
mentions. Later batches of cases can be tagged against an existing
catalog without rebuilding it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		store, err = storage.New(cmd.Context(), cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
