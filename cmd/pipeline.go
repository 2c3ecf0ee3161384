package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"snowlift/internal/config"
	"snowlift/internal/pipeline"
	"snowlift/internal/snowflake"
	"snowlift/pkg/models"
)

var (
	pipelineDryRun bool
	pipelineStep   int
	pipelineYes    bool
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the staging pipeline end to end",
	Long: `Run the staging pipeline: verify the configuration, normalize CSV
headers, canonicalize file names and load everything into Snowflake.

Steps can be run individually with --step:
  1  normalize headers
  2  rename files
  3  load to Snowflake`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		baseDir, err := config.ResolveBaseDir(cfg)
		if err != nil {
			return err
		}
		if err := config.EnsureCountryDirs(baseDir, cfg.Countries); err != nil {
			return err
		}

		var loader *snowflake.Loader
		if !pipelineDryRun && (pipelineStep == 0 || pipelineStep == pipeline.StepLoad) {
			loader = snowflake.NewLoader(snowflakeConfig(cfg))
		}

		orch := pipeline.New(cfg, baseDir, loader)
		summary := orch.Run(cmd.Context(), pipeline.Options{
			DryRun:    pipelineDryRun,
			Step:      pipelineStep,
			AssumeYes: pipelineYes,
		})
		if summary.Failed() {
			return fmt.Errorf("pipeline finished with errors")
		}
		return nil
	},
}

func snowflakeConfig(cfg *models.Config) snowflake.Config {
	return snowflake.Config{
		Account:   cfg.Snowflake.Account,
		Username:  cfg.Snowflake.Username,
		Password:  cfg.Snowflake.Password,
		Database:  cfg.Snowflake.Database,
		Schema:    cfg.Snowflake.Schema,
		Warehouse: cfg.Snowflake.Warehouse,
		Role:      cfg.Snowflake.Role,
		Timeout:   time.Duration(cfg.Load.StatementTimeoutSec) * time.Second,
	}
}

func init() {
	pipelineCmd.Flags().BoolVar(&pipelineDryRun, "dry-run", false, "show what would happen without loading")
	pipelineCmd.Flags().IntVar(&pipelineStep, "step", 0, "run a single step (1-3) instead of all")
	pipelineCmd.Flags().BoolVarP(&pipelineYes, "yes", "y", false, "continue past failed steps without prompting")
	rootCmd.AddCommand(pipelineCmd)
}
