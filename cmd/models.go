package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdalisay/anihan/config"
	"github.com/jdalisay/anihan/core/artifact"
	"github.com/jdalisay/anihan/infra/logger"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model artifact commands",
}

var modelsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Load the configured artifacts and report their status",
	RunE:  runModelsLs,
}

func init() {
	modelsCmd.AddCommand(modelsLsCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsLs(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	logg := logger.NopLogger{}
	reg := artifact.NewRegistry(artifact.NewLoader(logg), logg)
	for _, entry := range cfg.Models.Entries {
		if err := reg.Load(entry.Registry()); err != nil {
			if _, werr := fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", entry.Species, err); werr != nil {
				fmt.Println("failed to write to stderr:", werr)
			}
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(reg.Infos())
}
