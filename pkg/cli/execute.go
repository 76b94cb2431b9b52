package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/events"
	"github.com/optics-dev/optics-runner/pkg/executor"
	"github.com/optics-dev/optics-runner/pkg/logger"
	"github.com/optics-dev/optics-runner/pkg/project"
	"github.com/optics-dev/optics-runner/pkg/provider/mock"
	"github.com/optics-dev/optics-runner/pkg/queue"
	"github.com/optics-dev/optics-runner/pkg/registry"
)

var executeFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:    "test-cases",
		Aliases: []string{"t"},
		Usage:   "Run only the named test cases (overrides config include)",
	},
	&cli.IntFlag{
		Name:  "parallel",
		Usage: "Max concurrent test cases (0 = sequential)",
	},
	&cli.BoolFlag{
		Name:  "stop-on-fail",
		Usage: "Stop scheduling new test cases after the first failure",
	},
}

var executeCommand = &cli.Command{
	Name:      "execute",
	Usage:     "Execute a project's test cases",
	ArgsUsage: "<project-dir>",
	Flags:     executeFlags,
	Action: func(c *cli.Context) error {
		return runProject(c, false)
	},
}

var dryRunCommand = &cli.Command{
	Name:      "dry_run",
	Usage:     "Walk the execution queue without invoking providers",
	ArgsUsage: "<project-dir>",
	Flags:     executeFlags,
	Action: func(c *cli.Context) error {
		return runProject(c, true)
	},
}

// requiredConfig names the keys every run needs before providers resolve.
var requiredConfig = config.Schema{
	"driver_sources":   config.KindList,
	"elements_sources": config.KindList,
}

func runProject(c *cli.Context, dryRun bool) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("project directory required")
	}

	cfg, err := config.LoadProject(dir)
	if err != nil {
		return err
	}
	if err := setupLogging(c, cfg); err != nil {
		return err
	}
	defer logger.Close()

	if err := cfg.Validate(requiredConfig); err != nil {
		return err
	}

	proj, err := project.Load(dir, cfg)
	if err != nil {
		return err
	}

	filter := queue.Filter{Include: cfg.Include, Exclude: cfg.Exclude}
	if tcs := c.StringSlice("test-cases"); len(tcs) > 0 {
		filter.Include = tcs
		filter.Exclude = nil
	}

	q, err := queue.Build(proj, filter)
	if err != nil {
		return err
	}
	if q.Empty() {
		logger.Warn("no test cases to run in %s", dir)
		return nil
	}

	bus := events.NewBus(0)
	if cfg.EventAttributesJSON != "" {
		if err := bus.SetExtraAttributesFile(cfg.EventAttributesJSON); err != nil {
			logger.Warn("event attributes: %v", err)
		}
	}
	bus.Subscribe("log", func(ev events.Event) {
		logger.WithField("entity", ev.EntityType).Debugf("%s -> %s", ev.Name, ev.StatusText)
	})
	bus.Start()
	defer bus.Close()

	reg := registry.FromConfig(cfg)
	runner := executor.New(reg, builtinProviders(), bus, executor.RunnerConfig{
		MaxAttempts:  cfg.MaxAttempts,
		HaltDuration: time.Duration(cfg.HaltDuration * float64(time.Second)),
		Parallelism:  c.Int("parallel"),
		StopOnFail:   c.Bool("stop-on-fail"),
		DryRun:       dryRun,
		OnStepComplete: func(caseName, moduleName string, result core.StepResult) {
			logger.Info("[%s] %s / %s: %s", caseName, moduleName, result.Keyword, result.State)
		},
	})
	defer runner.Close()

	vars := make(map[string]string, proj.Catalog.Len())
	for _, name := range proj.Catalog.Names() {
		if el, ok := proj.Catalog.Lookup(name); ok {
			vars[name] = el.Value
		}
	}
	runner.SetVariables(vars)

	result, err := runner.Run(c.Context, q)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%d total, %d passed, %d failed, %d skipped (%s)\n",
		result.Total, result.Passed, result.Failed, result.Skipped, result.Duration.Round(time.Millisecond))
	if result.State != core.StatePassed {
		return fmt.Errorf("run failed")
	}
	return nil
}

// builtinProviders returns the provider implementations shipped with the
// runner. Device, OCR and vision backends register under the names used in
// config; only the mock providers are built in.
func builtinProviders() executor.Providers {
	return executor.Providers{
		Drivers: map[string]core.Driver{
			"mock": mock.NewDriver(mock.Config{Name: "mock"}),
		},
		ElementSources: map[string]core.ElementSource{
			"mock": mock.NewElementSource(mock.Config{Name: "mock"}),
		},
		TextDetectors: map[string]core.TextDetector{
			"mock": mock.NewTextDetector(mock.Config{Name: "mock"}),
		},
		ImageDetectors: map[string]core.ImageDetector{
			"mock": mock.NewImageDetector(mock.Config{Name: "mock"}),
		},
	}
}

func setupLogging(c *cli.Context, cfg *config.Config) error {
	level := cfg.LogLevel
	if c.Bool("verbose") {
		level = "debug"
	}
	console := cfg.Console
	if c.Bool("no-console") {
		console = false
	}
	return logger.Setup(logger.Options{
		Console:  console,
		FileLog:  cfg.FileLog,
		LogPath:  cfg.LogPath,
		JSONLog:  cfg.JSONLog,
		JSONPath: cfg.JSONPath,
		Level:    level,
	})
}
