// Package problem resolves the test cases of a problem: pairs of input and
// expected answer files found in a flat directory by file name convention.
package problem

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// DefaultIDGroup is the capture group holding the test identifier when
// Spec.IDGroup is empty
const DefaultIDGroup = "test"

// Spec defines how input files are recognized and how the answer file name
// is derived from them
type Spec struct {
	// InputPattern is a regular expression matched against the whole file
	// name, case-insensitively. It must contain the IDGroup named group.
	InputPattern string `yaml:"input"`

	// AnswerTemplate is expanded with the input match, e.g. `$test.out`
	AnswerTemplate string `yaml:"answer"`

	// IDGroup names the capture group holding the test identifier
	IDGroup string `yaml:"group,omitempty"`

	// NumericID strips leading zeros from identifiers so `04.in` and `4.in`
	// identify the same test
	NumericID bool `yaml:"numeric,omitempty"`
}

// Default matches `<n>.in` with answer `<n>.out`
var Default = Spec{
	InputPattern:   `(?P<test>\d+)\.in`,
	AnswerTemplate: "$test.out",
	IDGroup:        DefaultIDGroup,
	NumericID:      true,
}

// Case defines single judge case
type Case struct {
	ID     string
	Input  string
	Answer string
}

// Load reads a YAML problem description
//
//	input: '(?P<test>\d+)\.in'
//	answer: '$test.out'
//	numeric: true
func Load(fs afero.Fs, path string) (Spec, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Spec{}, fmt.Errorf("load problem %s: %w", path, err)
	}
	var s Spec
	if err := yaml.UnmarshalWithOptions(b, &s, yaml.DisallowUnknownField()); err != nil {
		return Spec{}, fmt.Errorf("load problem %s: %w", path, err)
	}
	if _, err := Compile(s); err != nil {
		return Spec{}, fmt.Errorf("load problem %s: %w", path, err)
	}
	return s, nil
}
