package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/registry"
)

var setupCommand = &cli.Command{
	Name:      "setup",
	Usage:     "Show the resolved provider configuration per capability category",
	ArgsUsage: "[project-dir]",
	Action: func(c *cli.Context) error {
		if err := ensureGlobalConfig(c.App.Writer); err != nil {
			return err
		}

		var cfg *config.Config
		var err error
		if dir := c.Args().First(); dir != "" {
			cfg, err = config.LoadProject(dir)
		} else {
			cfg, err = config.Load(config.GlobalConfigPath())
		}
		if err != nil {
			return err
		}

		reg := registry.FromConfig(cfg)
		w := c.App.Writer
		for _, category := range core.Categories() {
			fmt.Fprintf(w, "%s:\n", category)
			providers := reg.Providers(category)
			if len(providers) == 0 {
				fmt.Fprintln(w, "  (none configured)")
				continue
			}
			for _, p := range providers {
				status := "disabled"
				if p.Enabled {
					status = "enabled"
				}
				if p.URL != "" {
					fmt.Fprintf(w, "  %-24s %-8s %s\n", p.Name, status, p.URL)
				} else {
					fmt.Fprintf(w, "  %-24s %s\n", p.Name, status)
				}
			}
		}
		return nil
	},
}

// ensureGlobalConfig writes a default global config on first run so that
// project configs always have a base to merge over.
func ensureGlobalConfig(out interface{ Write([]byte) (int, error) }) error {
	path := config.GlobalConfigPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote default global config to %s\n", path)
	return nil
}
