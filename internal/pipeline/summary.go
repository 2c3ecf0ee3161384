package pipeline

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"snowlift/internal/snowflake"
)

// printSummary renders the run report: one table for the steps, one for
// the per-file loads, and a final status line.
func (o *Orchestrator) printSummary(summary *Summary) {
	bold := color.New(color.Bold)
	bold.Fprintf(o.out, "\nRun summary (%s)\n", summary.Finished.Sub(summary.Started).Round(time.Second))

	steps := tablewriter.NewWriter(o.out)
	steps.SetHeader([]string{"Step", "Name", "Result"})
	steps.SetBorder(false)
	steps.SetAutoWrapText(false)
	steps.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range summary.Steps {
		result := "ok"
		if s.Err != nil {
			result = s.Err.Error()
		}
		number := "-"
		if s.Number > 0 {
			number = fmt.Sprintf("%d", s.Number)
		}
		steps.Append([]string{number, s.Name, result})
	}
	steps.Render()

	if len(summary.Loads) > 0 {
		fmt.Fprintln(o.out)
		loads := tablewriter.NewWriter(o.out)
		loads.SetHeader([]string{"Country", "File", "Table", "Rows", "Status"})
		loads.SetBorder(false)
		loads.SetAutoWrapText(false)
		loads.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, l := range summary.Loads {
			loads.Append([]string{l.Country, l.File, l.Table,
				fmt.Sprintf("%d", l.Loaded), loadStatus(l)})
		}
		loads.Render()
	}

	if summary.Failed() {
		color.New(color.FgRed, color.Bold).Fprintln(o.out, "\nPipeline finished with errors")
	} else {
		color.New(color.FgGreen, color.Bold).Fprintln(o.out, "\nPipeline finished successfully")
	}
}

func loadStatus(l snowflake.LoadStats) string {
	switch {
	case l.Err != nil:
		return fmt.Sprintf("failed: %v", l.Err)
	case l.Warning != "":
		return l.Warning
	default:
		return "loaded"
	}
}
