// Package pipeline sequences the staging steps end to end: verify the
// configuration, normalize CSV headers, canonicalize file names and load
// everything into the warehouse.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"snowlift/internal/config"
	"snowlift/internal/snowflake"
	"snowlift/internal/staging"
	"snowlift/pkg/models"
)

// Step numbers accepted by the --step flag.
const (
	StepNormalize = 1
	StepRename    = 2
	StepLoad      = 3
)

// Options configures one pipeline run.
type Options struct {
	DryRun bool
	// Step limits the run to a single step; 0 runs all of them.
	Step int
	// AssumeYes disables the continue-on-failure prompt and keeps going.
	AssumeYes bool
}

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Number int
	Name   string
	Err    error
}

// Summary is the run report: per-step outcomes plus per-file load stats.
type Summary struct {
	Started  time.Time
	Finished time.Time
	Steps    []StepResult
	Loads    []snowflake.LoadStats
}

// Failed reports whether anything in the run went wrong.
func (s *Summary) Failed() bool {
	for _, step := range s.Steps {
		if step.Err != nil {
			return true
		}
	}
	for _, load := range s.Loads {
		if load.Err != nil {
			return true
		}
	}
	return false
}

// Orchestrator runs the pipeline over every configured country.
type Orchestrator struct {
	cfg     *models.Config
	baseDir string
	loader  *snowflake.Loader
	out     io.Writer
	now     func() time.Time
	// confirmContinue asks whether to keep going after a failed step.
	confirmContinue func() bool
}

// New builds an orchestrator. The loader may be nil for dry runs.
func New(cfg *models.Config, baseDir string, loader *snowflake.Loader) *Orchestrator {
	return &Orchestrator{
		cfg:             cfg,
		baseDir:         baseDir,
		loader:          loader,
		out:             os.Stdout,
		now:             time.Now,
		confirmContinue: promptContinue,
	}
}

// WithOutput redirects console output. Used by tests.
func (o *Orchestrator) WithOutput(w io.Writer) *Orchestrator {
	o.out = w
	return o
}

// WithClock overrides the time source. Used by tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// WithConfirm overrides the continue-on-failure prompt. Used by tests.
func (o *Orchestrator) WithConfirm(f func() bool) *Orchestrator {
	o.confirmContinue = f
	return o
}

// promptContinue asks interactively whether to continue after a failure.
// Non-interactive runs halt instead of hanging on a prompt nobody will
// answer.
func promptContinue() bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return false
	}
	cont := false
	if err := survey.AskOne(&survey.Confirm{
		Message: "Continue with the next step?",
		Default: false,
	}, &cont); err != nil {
		return false
	}
	return cont
}

// Run executes the requested steps in order. A failed step stops the run
// unless the operator (or --yes) chooses to continue. The summary is
// always returned, also on early exits.
func (o *Orchestrator) Run(ctx context.Context, opts Options) *Summary {
	summary := &Summary{Started: o.now()}

	logFile := o.openRunLog()
	if logFile != nil {
		defer logFile.Close()
		orig := o.out
		o.out = io.MultiWriter(orig, logFile)
		defer func() { o.out = orig }()
	}

	bold := color.New(color.Bold)
	bold.Fprintf(o.out, "Pipeline run started %s\n", summary.Started.Format("2006-01-02 15:04:05"))
	if opts.DryRun {
		fmt.Fprintln(o.out, "Mode: dry-run, no data will be loaded")
	}

	if err := config.Validate(o.cfg); err != nil {
		summary.Steps = append(summary.Steps, StepResult{Number: 0, Name: "verify configuration", Err: err})
		color.New(color.FgRed).Fprintf(o.out, "Configuration invalid: %v\n", err)
		summary.Finished = o.now()
		o.printSummary(summary)
		return summary
	}
	summary.Steps = append(summary.Steps, StepResult{Number: 0, Name: "verify configuration"})

	steps := []struct {
		number int
		name   string
		run    func(context.Context, Options, *Summary) error
	}{
		{StepNormalize, "normalize headers", o.runNormalize},
		{StepRename, "rename files", o.runRename},
		{StepLoad, "load to Snowflake", o.runLoad},
	}

	for _, step := range steps {
		if opts.Step != 0 && opts.Step != step.number {
			continue
		}
		if opts.DryRun && step.number == StepLoad {
			fmt.Fprintf(o.out, "Step %d (%s) skipped in dry-run\n", step.number, step.name)
			continue
		}

		bold.Fprintf(o.out, "\nStep %d: %s\n", step.number, step.name)
		err := step.run(ctx, opts, summary)
		summary.Steps = append(summary.Steps, StepResult{Number: step.number, Name: step.name, Err: err})

		if err != nil {
			color.New(color.FgRed).Fprintf(o.out, "Step %d failed: %v\n", step.number, err)
			// Dry runs never prompt; they halt like non-interactive runs.
			if !opts.AssumeYes && (opts.DryRun || !o.confirmContinue()) {
				fmt.Fprintln(o.out, "Pipeline stopped")
				break
			}
		} else {
			color.New(color.FgGreen).Fprintf(o.out, "Step %d completed\n", step.number)
		}
	}

	summary.Finished = o.now()
	o.printSummary(summary)
	return summary
}

func (o *Orchestrator) openRunLog() *os.File {
	logDir := filepath.Join(o.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil
	}
	name := fmt.Sprintf("pipeline_%s.log", o.now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(logDir, name)) // #nosec G304 - path is built internally
	if err != nil {
		return nil
	}
	return f
}

func (o *Orchestrator) countryDir(country string) string {
	return filepath.Join(o.baseDir, country)
}

func (o *Orchestrator) runNormalize(_ context.Context, opts Options, _ *Summary) error {
	for _, country := range o.cfg.Countries {
		dir := o.countryDir(country)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			fmt.Fprintf(o.out, "  %s: folder missing, skipped\n", country)
			continue
		}
		if opts.DryRun {
			files, err := staging.ListRaw(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(o.out, "  %s: %d file(s) would be normalized\n", country, len(files))
			continue
		}
		n, err := staging.NormalizeCountry(dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(o.out, "  %s: %d file(s) normalized\n", country, n)
	}
	return nil
}

func (o *Orchestrator) runRename(_ context.Context, opts Options, _ *Summary) error {
	for _, country := range o.cfg.Countries {
		dir := o.countryDir(country)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		if opts.DryRun {
			continue
		}
		changes, err := staging.RenameNormalized(dir, country)
		if err != nil {
			return err
		}
		for _, c := range changes {
			fmt.Fprintf(o.out, "  %s: %s -> %s\n", country, c.From, c.To)
		}
	}
	return nil
}

func (o *Orchestrator) runLoad(ctx context.Context, _ Options, summary *Summary) error {
	if o.loader == nil {
		return fmt.Errorf("no loader configured")
	}

	var firstErr error
	for _, country := range o.cfg.Countries {
		dir := o.countryDir(country)
		files, err := staging.ListNormalized(dir)
		if err != nil {
			return err
		}
		for _, file := range files {
			stats := o.loader.LoadFile(ctx, file, country)
			summary.Loads = append(summary.Loads, stats)

			switch {
			case stats.Err != nil:
				color.New(color.FgRed).Fprintf(o.out, "  %s: %s failed: %v\n",
					country, stats.File, stats.Err)
				if firstErr == nil {
					firstErr = stats.Err
				}
			case stats.Warning != "":
				color.New(color.FgYellow).Fprintf(o.out, "  %s: %s -> %s (%s)\n",
					country, stats.File, stats.Table, stats.Warning)
			default:
				fmt.Fprintf(o.out, "  %s: %s -> %s (%d rows)\n",
					country, stats.File, stats.Table, stats.Loaded)
			}
		}
	}
	return firstErr
}
