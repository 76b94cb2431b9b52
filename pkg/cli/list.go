package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/project"
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "List a project's test cases, modules and elements",
	ArgsUsage: "<project-dir>",
	Action: func(c *cli.Context) error {
		dir := c.Args().First()
		if dir == "" {
			return fmt.Errorf("project directory required")
		}

		cfg, err := config.LoadProject(dir)
		if err != nil {
			return err
		}
		proj, err := project.Load(dir, cfg)
		if err != nil {
			return err
		}

		w := c.App.Writer
		fmt.Fprintln(w, "Test Cases:")
		for _, tc := range proj.TestCases() {
			fmt.Fprintf(w, "  %s  (%s)\n", tc.ID, strings.Join(tc.Modules, " -> "))
		}

		fmt.Fprintln(w, "Modules:")
		for _, name := range proj.ModuleNames() {
			mod, _ := proj.Module(name)
			fmt.Fprintf(w, "  %s  (%d steps)\n", name, len(mod.Steps))
		}

		if proj.Catalog.Len() > 0 {
			fmt.Fprintln(w, "Elements:")
			for _, name := range proj.Catalog.Names() {
				el, _ := proj.Catalog.Lookup(name)
				fmt.Fprintf(w, "  %s = %s  [%s]\n", el.Name, el.Value, el.Kind)
			}
		}
		return nil
	},
}
