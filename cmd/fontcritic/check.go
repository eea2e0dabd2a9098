package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/fontcritic/internal/check"
	"github.com/dshills/fontcritic/internal/config"
	"github.com/dshills/fontcritic/internal/engine"
	"github.com/dshills/fontcritic/internal/logging"
	"github.com/dshills/fontcritic/internal/patch"
	"github.com/dshills/fontcritic/internal/render"
	"github.com/dshills/fontcritic/internal/report"
	"github.com/dshills/fontcritic/internal/schema"
	"github.com/dshills/fontcritic/internal/testable"
)

type checkFlags struct {
	profileName   string
	configuration string
	include       []string
	exclude       []string
	errorCodeOn   string
	format        string
	out           string
	hotfix        bool
	fixDiff       string
	skipNetwork   bool
	timeout       time.Duration
	workers       int
	showFloor     string
	verbose       bool
	quiet         bool
	logJSON       bool
}

func newCheckCmd() *cobra.Command {
	f := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [flags] <inputs...>",
		Short: "Run a profile over font files and report the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv(".env")
			if err != nil {
				return exitError(exitConfig, "failed to load environment: %v", err)
			}
			applyEnv(cmd, f, env)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runCheck(ctx, args, append(env.Plugins, pluginsFlag(cmd)...), f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.profileName, "profile", "p", "universal", "Profile to run")
	flags.StringVar(&f.configuration, "configuration", "", "Per-check configuration file (YAML or JSON)")
	flags.StringSliceVarP(&f.include, "checkid", "c", nil, "Only run checks whose id contains this string (may be repeated)")
	flags.StringSliceVarP(&f.exclude, "exclude-checkid", "x", nil, "Skip checks whose id contains this string (may be repeated)")
	flags.StringVarP(&f.errorCodeOn, "error-code-on", "e", "FAIL", "Exit 1 when any result is at least this status")
	flags.StringVar(&f.format, "format", "md", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.BoolVar(&f.hotfix, "hotfix", false, "Apply available fixes and overwrite the input files")
	flags.StringVar(&f.fixDiff, "fix-diff", "", "Write the changes --hotfix made as a unified diff")
	flags.BoolVar(&f.skipNetwork, "skip-network", false, "Skip checks that need network access")
	flags.DurationVar(&f.timeout, "timeout", check.DefaultNetworkTimeout, "Timeout for each network request")
	flags.IntVarP(&f.workers, "workers", "j", 0, "Checks to run in parallel (default: number of CPUs)")
	flags.StringVarP(&f.showFloor, "loglevel", "l", "PASS", "Least severe status shown in the Markdown details")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Log processing steps to stderr")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Only log errors")
	flags.BoolVar(&f.logJSON, "log-json", false, "Log in JSON instead of text")

	return cmd
}

// applyEnv fills flags the user did not set from the environment.
func applyEnv(cmd *cobra.Command, f *checkFlags, env config.Env) {
	flags := cmd.Flags()
	if env.Profile != "" && !flags.Changed("profile") {
		f.profileName = env.Profile
	}
	if env.HasTimeout && !flags.Changed("timeout") {
		f.timeout = env.Timeout
	}
	if env.HasSkipNetwork && !flags.Changed("skip-network") {
		f.skipNetwork = env.SkipNetwork
	}
}

func initLogging(f *checkFlags) {
	level := logging.LevelWarn
	switch {
	case f.quiet:
		level = logging.LevelError
	case f.verbose:
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if f.logJSON {
		format = logging.FormatJSON
	}
	logging.Init(os.Stderr, level, format)
}

func runCheck(ctx context.Context, inputs, plugins []string, f *checkFlags, stdout io.Writer) error {
	initLogging(f)
	started := time.Now()

	// 1. Validate options
	threshold, err := check.ParseStatusCode(f.errorCodeOn)
	if err != nil {
		return exitError(exitConfig, "invalid --error-code-on: %v", err)
	}
	floor, err := check.ParseStatusCode(f.showFloor)
	if err != nil {
		return exitError(exitConfig, "invalid --loglevel: %v", err)
	}
	if f.format != "json" && f.format != "md" {
		return exitError(exitConfig, "unknown format: %s", f.format)
	}

	// 2. Build the registry
	reg, err := buildRegistry(plugins)
	if err != nil {
		return err
	}

	// 3. Load configuration
	cfg, err := config.Load(f.configuration)
	if err != nil {
		return exitError(exitConfig, "failed to load configuration: %v", err)
	}

	// 4. Load inputs
	logging.Info("loading inputs", "count", len(inputs))
	coll, err := testable.LoadCollection(inputs)
	if err != nil {
		return exitError(exitConfig, "failed to load inputs: %v", err)
	}

	// 5. Plan
	e := engine.New(reg, engine.Options{
		Workers:       f.workers,
		Include:       f.include,
		Exclude:       f.exclude,
		Configuration: cfg,
		Base:          check.NewContext(f.skipNetwork, f.timeout),
	})
	plan, err := e.Plan(f.profileName, coll)
	if err != nil {
		return exitError(exitConfig, "failed to plan run: %v", err)
	}
	logging.Info("running checks", "profile", f.profileName, "items", len(plan.Items), "workers", e.Workers())

	// 6. Run
	run, err := e.Run(ctx, plan)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	if run.Cancelled {
		logging.Warn("run cancelled", "completed", run.Completed, "planned", run.Planned)
	}

	// 7. Hotfix
	var fixes []check.FixResult
	if f.hotfix {
		fixes = e.Fix(ctx, plan, run)
		fixed := engine.FixedContents(fixes)
		if f.fixDiff != "" {
			logging.Info("writing fix diff", "path", f.fixDiff)
			if err := patch.WritePatchFile(coll, fixed, f.fixDiff); err != nil {
				return fmt.Errorf("failed to write fix diff: %w", err)
			}
		}
		for name, data := range fixed {
			logging.Info("writing fixed file", "path", name)
			if err := writeFile(name, data); err != nil {
				return fmt.Errorf("failed to write fixed file: %w", err)
			}
		}
	}

	// 8. Report
	rep := report.New("fontcritic", version, report.Input{
		Profile:   f.profileName,
		Include:   f.include,
		Exclude:   f.exclude,
		Threshold: string(threshold),
	}, coll, run.Results)
	rep.Fixes = fixes
	rep.Meta = report.Meta{
		StartedAt:   started.UTC(),
		DurationMS:  time.Since(started).Milliseconds(),
		Workers:     e.Workers(),
		SkipNetwork: f.skipNetwork,
		Planned:     run.Planned,
		Completed:   run.Completed,
		Cancelled:   run.Cancelled,
	}

	if errs := schema.Validate(rep); len(errs) > 0 {
		for _, e := range errs {
			logging.Error("invalid report", "error", e.Error())
		}
		return exitError(exitInvalid, "report failed validation with %d errors", len(errs))
	}

	var output []byte
	switch f.format {
	case "json":
		output, err = render.JSON(rep)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
	case "md":
		output = []byte(render.Markdown(rep, floor))
	}
	if f.out != "" {
		logging.Info("writing report", "path", f.out)
		if err := os.WriteFile(f.out, output, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if _, err := stdout.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// 9. Exit code based on --error-code-on
	if rep.Summary.Exceeds(threshold) {
		return exitError(exitThreshold, "%s results at or above %s", rep.Summary.Worst, threshold)
	}
	return nil
}
