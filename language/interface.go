// Package language maps language names to build tool configurations.
package language

import (
	"fmt"
	"sort"

	"github.com/criyle/go-rtest/compiler"
	"github.com/google/shlex"
)

// Language defines the way to compile program of a named language
type Language interface {
	Get(name string) (compiler.Config, bool) // Get build tool config for specific language
}

var _ Language = Presets{}

// Presets is a static Language table
type Presets map[string]compiler.Config

// Default contains the built-in build tool configurations
var Default = Presets{
	// fpc writes the executable into the -FE directory named after the source
	"pascal": {
		Command:     "fpc",
		Args:        []string{"-So", "-XS"},
		WorkDirFlag: "-FE",
	},
	// go build -o with an existing directory names the binary after the file
	"go": {
		Command:     "go",
		Args:        []string{"build"},
		WorkDirFlag: "-o=",
	},
}

// Get implements Language
func (p Presets) Get(name string) (compiler.Config, bool) {
	c, ok := p[name]
	if !ok {
		return compiler.Config{}, false
	}
	c.Args = append([]string(nil), c.Args...)
	return c, true
}

// Names returns the sorted language names
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse creates a build tool config from a shell-like command line,
// e.g. `fpc -So -XS`
func Parse(cmdline, workDirFlag string) (compiler.Config, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return compiler.Config{}, fmt.Errorf("parse build command %q: %w", cmdline, err)
	}
	if len(args) == 0 {
		return compiler.Config{}, fmt.Errorf("parse build command %q: empty command", cmdline)
	}
	return compiler.Config{
		Command:     args[0],
		Args:        args[1:],
		WorkDirFlag: workDirFlag,
	}, nil
}
