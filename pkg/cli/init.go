package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

var initCommand = &cli.Command{
	Name:      "init",
	Usage:     "Scaffold a new project with sample tables and config",
	ArgsUsage: "<project-dir>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Overwrite existing files",
		},
	},
	Action: func(c *cli.Context) error {
		dir := c.Args().First()
		if dir == "" {
			return fmt.Errorf("project directory required")
		}
		return scaffold(dir, c.Bool("force"), c.App.Writer)
	},
}

// The scaffold runs out of the box against the built-in mock providers;
// swapping appium in is a config edit away.
const sampleConfig = `console: true
log_level: INFO
file_log: false
json_log: false

driver_sources:
  - mock:
      enabled: true
  - appium:
      enabled: false
      url: http://127.0.0.1:4723
      capabilities:
        deviceName:
        platformName:
        automationName:

elements_sources:
  - mock:
      enabled: true
  - appium_find_element:
      enabled: false

text_detection:
  - mock:
      enabled: false

image_detection:
  - mock:
      enabled: false

halt_duration: 1
max_attempts: 3

include: []
exclude: []
`

const sampleTestCases = `test_case,test_step
Test Login,Launch Module
Test Login,Login Module
`

const sampleModules = `module_name,module_step,param_1,param_2
Launch Module,Launch App,app_under_test,
Login Module,Enter Text,${username_field},demo_user
Login Module,Press Element,${login_button},
`

const sampleElements = `element_name,element_id
app_under_test,com.example.app
username_field,//android.widget.EditText[@resource-id='username']
login_button,com.example.app:id/login
`

func scaffold(dir string, force bool, out interface{ Write([]byte) (int, error) }) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		"config.yaml":    sampleConfig,
		"test_cases.csv": sampleTestCases,
		"modules.csv":    sampleModules,
		"elements.csv":   sampleElements,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Initialized project in %s\n", dir)
	fmt.Fprintf(out, "Run: optics execute %s\n", dir)
	return nil
}
