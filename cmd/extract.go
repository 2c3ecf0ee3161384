package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"snowlift/internal/config"
	"snowlift/internal/extract"
	"snowlift/internal/metadata"
	"snowlift/internal/staging"
	"snowlift/pkg/errors"
	"snowlift/pkg/models"
)

var (
	extractCountry string
	extractTables  bool
	extractReport  string
	extractFrom    string
	extractTo      string
	extractCheck   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Download tables or reports from a country's SQL Server",
	Long: `Download data from one country's SQL Server into its staging folder.

With --tables the base table set is downloaded, bounded to the extraction
window where the table has a temporal column. With --report a named report
is executed through its stored procedure, falling back to the local query
when the server does not have the procedure. Previous CSV files in the
folder are rotated into back/ first.

Use --check to probe which report procedures exist on the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !extractTables && extractReport == "" && !extractCheck {
			return fmt.Errorf("nothing to do: pass --tables, --report or --check")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		country, err := models.ParseCountry(extractCountry)
		if err != nil {
			return err
		}
		src, ok := cfg.Sources[string(country)]
		if !ok {
			return fmt.Errorf("no source server configured for %s", country)
		}

		engine := extract.NewEngine(country, src, cfg.Load)
		ctx := cmd.Context()

		if extractCheck {
			return runCheck(ctx, engine)
		}

		baseDir, err := config.ResolveBaseDir(cfg)
		if err != nil {
			return err
		}
		dir := filepath.Join(baseDir, string(country))
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}

		rotated, err := staging.RotateToBackup(dir, time.Now())
		if err != nil {
			return err
		}
		if rotated > 0 {
			fmt.Printf("Rotated %d previous file(s) into back/\n", rotated)
		}

		if extractTables {
			return runTableExtract(cmd, engine, dir)
		}
		return runReportExtract(cmd, engine, dir)
	},
}

func runCheck(ctx context.Context, engine *extract.Engine) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Report", "Procedure", "Available"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, key := range extract.ReportKeys() {
		report := extract.Reports[key]
		available := "no (fallback query)"
		exists, err := engine.ProcedureExists(ctx, report.Procedure)
		if err != nil {
			return err
		}
		if exists {
			available = "yes"
		}
		table.Append([]string{key, report.Procedure, available})
	}
	table.Render()
	return nil
}

func runTableExtract(cmd *cobra.Command, engine *extract.Engine, dir string) error {
	ctx := cmd.Context()
	now := time.Now()
	failed := 0

	for _, tbl := range metadata.BaseTables {
		rs, err := engine.FetchTable(ctx, tbl)
		if err != nil {
			color.Red("  %s: %v", tbl, err)
			failed++
			continue
		}

		out := filepath.Join(dir, staging.RawFileName(tbl, now))
		if err := staging.WriteCSV(out, rs); err != nil {
			color.Red("  %s: %v", tbl, err)
			failed++
			continue
		}
		if len(rs.DuplicateColumns) > 0 {
			color.Yellow("  %s: renamed duplicate columns: %s",
				tbl, strings.Join(rs.DuplicateColumns, ", "))
		}
		color.Green("  %s: %d rows -> %s", tbl, len(rs.Rows), filepath.Base(out))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tables failed", failed, len(metadata.BaseTables))
	}
	return nil
}

func runReportExtract(cmd *cobra.Command, engine *extract.Engine, dir string) error {
	report, ok := extract.Reports[extractReport]
	if !ok {
		return fmt.Errorf("unknown report %q, valid reports: %s",
			extractReport, strings.Join(extract.ReportKeys(), ", "))
	}

	from, to := extractFrom, extractTo
	if report.NeedsDates {
		if to == "" {
			to = time.Now().Format("2006-01-02")
		}
		if from == "" {
			from = time.Now().AddDate(0, 0, -36*30).Format("2006-01-02")
		}
	}

	rs, err := engine.ExecReport(cmd.Context(), report, from, to)
	if err != nil {
		// A recoverable enrichment problem still carries the full result
		// set; report it and stage the data.
		if rs == nil || !errors.IsRecoverable(err) {
			return err
		}
		color.Yellow("warning: %v", err)
	}
	if len(rs.DuplicateColumns) > 0 {
		color.Yellow("renamed duplicate columns: %s", strings.Join(rs.DuplicateColumns, ", "))
	}

	out := filepath.Join(dir, staging.RawFileName(report.Name, time.Now()))
	if err := staging.WriteCSV(out, rs); err != nil {
		return err
	}
	color.Green("%s: %d rows -> %s", report.Name, len(rs.Rows), filepath.Base(out))
	return nil
}

func init() {
	extractCmd.Flags().StringVarP(&extractCountry, "country", "c", "", "country to extract from (required)")
	extractCmd.Flags().BoolVar(&extractTables, "tables", false, "download the base table set")
	extractCmd.Flags().StringVar(&extractReport, "report", "", "run a named report")
	extractCmd.Flags().StringVar(&extractFrom, "from", "", "report start date (YYYY-MM-DD)")
	extractCmd.Flags().StringVar(&extractTo, "to", "", "report end date (YYYY-MM-DD)")
	extractCmd.Flags().BoolVar(&extractCheck, "check", false, "probe which report procedures exist")
	extractCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(extractCmd)
}
