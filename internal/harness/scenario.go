package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tgis/internal/expr"
	"github.com/roach88/tgis/internal/relation"
	"github.com/roach88/tgis/internal/sampler"
)

// Scenario defines one sampling test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE dataset definition files.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs,omitempty"`

	// Datasets are declared inline, after those from Specs.
	Datasets []DatasetDef `yaml:"datasets,omitempty"`

	// Sample configures the run.
	Sample SampleDef `yaml:"sample"`

	// Assertions validate the granules.
	Assertions []Assertion `yaml:"assertions"`
}

// DatasetDef is an inline dataset. Fields mirror the CUE definition format.
type DatasetDef struct {
	ID          string     `yaml:"id"`
	Type        string     `yaml:"type,omitempty"`
	Unit        string     `yaml:"unit,omitempty"`
	Granularity string     `yaml:"granularity,omitempty"`
	Maps        []MapDef   `yaml:"maps,omitempty"`
	Series      *SeriesDef `yaml:"series,omitempty"`
}

// MapDef is one inline map. Start and End are timestamps for absolute
// datasets and integers for relative ones.
type MapDef struct {
	ID    string   `yaml:"id,omitempty"`
	Start any      `yaml:"start"`
	End   any      `yaml:"end,omitempty"`
	BBox  *BBoxDef `yaml:"bbox,omitempty"`
}

// BBoxDef is an inline bounding box.
type BBoxDef struct {
	North float64 `yaml:"north"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	West  float64 `yaml:"west"`
}

// SeriesDef generates Count consecutive maps from Start.
type SeriesDef struct {
	Start any `yaml:"start"`
	Count int `yaml:"count"`
}

// SampleDef configures the sampling run.
type SampleDef struct {
	// Datasets fixes the argument order. Defaults to declaration order.
	Datasets []string `yaml:"datasets,omitempty"`

	// Expression defaults to "{equal}".
	Expression string `yaml:"expression,omitempty"`

	// Mode is "topology" (default) or "granularity".
	Mode string `yaml:"mode,omitempty"`

	Gaps        bool   `yaml:"gaps,omitempty"`
	Granularity string `yaml:"granularity,omitempty"`

	// Policy is "zero-length" (default) or "point-start".
	Policy string `yaml:"policy,omitempty"`
}

// Assertion validates the sampling output.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number of granules (granule_count).
	Count int `yaml:"count,omitempty"`

	// Expect is the expected granularity (granularity) or relation name
	// (relation).
	Expect string `yaml:"expect,omitempty"`

	// Index selects a granule (granule_members, granule_extent).
	Index int `yaml:"index,omitempty"`

	// Members are the expected member IDs per dataset (granule_members).
	Members map[string][]string `yaml:"members,omitempty"`

	// Start and End are the expected granule bounds (granule_extent).
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// From and To name two maps (relation).
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
}

// Assertion type constants.
const (
	AssertGranuleCount   = "granule_count"
	AssertGranularity    = "granularity"
	AssertGranuleMembers = "granule_members"
	AssertGranuleExtent  = "granule_extent"
	AssertRelation       = "relation"
)

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 && len(s.Datasets) == 0 {
		return fmt.Errorf("specs or datasets are required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, ds := range s.Datasets {
		if ds.ID == "" {
			return fmt.Errorf("datasets[%d]: id is required", i)
		}
		if len(ds.Maps) == 0 && ds.Series == nil {
			return fmt.Errorf("datasets[%d]: maps or series is required", i)
		}
	}

	if s.Sample.Expression != "" {
		if _, err := expr.Parse(s.Sample.Expression); err != nil {
			return fmt.Errorf("sample.expression: %w", err)
		}
	}
	if _, err := sampler.ParseMode(s.Sample.Mode); err != nil {
		return fmt.Errorf("sample.mode: %w", err)
	}
	if s.Sample.Policy != "" {
		if _, err := relation.ParsePolicy(s.Sample.Policy); err != nil {
			return fmt.Errorf("sample.policy: %w", err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertGranuleCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for granule_count", index)
		}
	case AssertGranularity:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for granularity", index)
		}
	case AssertGranuleMembers:
		if a.Members == nil {
			return fmt.Errorf("assertions[%d]: members is required for granule_members", index)
		}
	case AssertGranuleExtent:
		if a.Start == "" || a.End == "" {
			return fmt.Errorf("assertions[%d]: start and end are required for granule_extent", index)
		}
	case AssertRelation:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("assertions[%d]: from and to are required for relation", index)
		}
		if _, err := relation.Parse(a.Expect); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
