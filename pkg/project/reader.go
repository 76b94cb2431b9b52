package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/optics-dev/optics-runner/pkg/config"
)

// Files groups discovered project files by table kind. A single file can
// appear in several lists when it carries several tables.
type Files struct {
	TestCases []string
	Modules   []string
	Elements  []string
}

// Discover scans a project directory for CSV and YAML table files and
// classifies them by content. Test-case and module files are required.
func Discover(dir string) (*Files, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".yml", ".yaml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := &Files{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		kinds, err := identifyContent(path)
		if err != nil {
			return nil, err
		}
		if kinds.testCases {
			files.TestCases = append(files.TestCases, path)
		}
		if kinds.modules {
			files.Modules = append(files.Modules, path)
		}
		if kinds.elements {
			files.Elements = append(files.Elements, path)
		}
	}

	var missing []string
	if len(files.TestCases) == 0 {
		missing = append(missing, "test_cases")
	}
	if len(files.Modules) == 0 {
		missing = append(missing, "modules")
	}
	if len(missing) > 0 {
		return nil, &LoadError{Dir: dir, Missing: missing}
	}
	return files, nil
}

type contentKinds struct {
	testCases bool
	modules   bool
	elements  bool
}

func identifyContent(path string) (contentKinds, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return identifyCSV(path)
	}
	return identifyYAML(path)
}

func identifyCSV(path string) (contentKinds, error) {
	f, err := os.Open(path) //#nosec G304 -- user-provided project file
	if err != nil {
		return contentKinds{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		// Empty or unreadable files are simply not classified.
		return contentKinds{}, nil
	}

	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = true
	}

	var kinds contentKinds
	kinds.testCases = cols["test_case"] && cols["test_step"]
	kinds.modules = cols["module_name"] && cols["module_step"]
	kinds.elements = cols["element_name"] && cols["element_id"]
	return kinds, nil
}

func identifyYAML(path string) (contentKinds, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided project file
	if err != nil {
		return contentKinds{}, err
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return contentKinds{}, nil
	}
	var kinds contentKinds
	_, kinds.testCases = doc["Test Cases"]
	_, kinds.modules = doc["Modules"]
	_, kinds.elements = doc["Elements"]
	return kinds, nil
}

// Load discovers and reads all project tables in dir into a Project.
func Load(dir string, cfg *config.Config) (*Project, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	p := NewProject(cfg)
	for _, path := range files.TestCases {
		if err := readTestCases(path, p); err != nil {
			return nil, err
		}
	}
	for _, path := range files.Modules {
		if err := readModules(path, p); err != nil {
			return nil, err
		}
	}
	for _, path := range files.Elements {
		if err := readElements(path, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func readTestCases(path string, p *Project) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSVRows(path, []string{"test_case", "test_step"}, func(row map[string]string, _ []string) error {
			id, step := row["test_case"], row["test_step"]
			if id == "" || step == "" {
				return nil
			}
			p.AddTestCaseRow(id, step)
			return nil
		})
	}
	return readYAMLTestCases(path, p)
}

func readModules(path string, p *Project) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSVRows(path, []string{"module_name", "module_step"}, func(row map[string]string, params []string) error {
			name, keyword := row["module_name"], row["module_step"]
			if name == "" || keyword == "" {
				return nil
			}
			p.AddModuleStep(name, stepFromParams(keyword, params))
			return nil
		})
	}
	return readYAMLModules(path, p)
}

func readElements(path string, p *Project) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSVRows(path, []string{"element_name", "element_id"}, func(row map[string]string, _ []string) error {
			name, value := row["element_name"], row["element_id"]
			if name == "" {
				return nil
			}
			return p.Catalog.Add(name, value)
		})
	}
	return readYAMLElements(path, p)
}

// readCSVRows reads a CSV table, calling fn per row with the named columns and
// the ordered values of any param_* columns. Rows keep file order; repeated
// keys merge in first-seen order at the Project level.
func readCSVRows(path string, required []string, fn func(row map[string]string, params []string) error) error {
	f, err := os.Open(path) //#nosec G304 -- user-provided project file
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return &TableError{Path: path, Message: fmt.Sprintf("cannot read header: %v", err)}
	}

	cols := make([]string, len(header))
	var paramCols []int
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
		if strings.HasPrefix(cols[i], "param_") {
			paramCols = append(paramCols, i)
		}
	}
	for _, want := range required {
		found := false
		for _, c := range cols {
			if c == want {
				found = true
				break
			}
		}
		if !found {
			return &TableError{Path: path, Message: fmt.Sprintf("missing column %q", want)}
		}
	}

	for line := 2; ; line++ {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return &TableError{Path: path, Line: line, Message: err.Error()}
		}

		row := make(map[string]string, len(cols))
		for i, v := range record {
			if i < len(cols) {
				row[cols[i]] = strings.TrimSpace(v)
			}
		}
		var params []string
		for _, idx := range paramCols {
			if idx < len(record) {
				params = append(params, strings.TrimSpace(record[idx]))
			}
		}
		// Trim trailing empty parameter columns.
		for len(params) > 0 && params[len(params)-1] == "" {
			params = params[:len(params)-1]
		}
		if err := fn(row, params); err != nil {
			return err
		}
	}
	return nil
}

// TableError reports a malformed project table file.
type TableError struct {
	Path    string
	Line    int
	Message string
}

func (e *TableError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
