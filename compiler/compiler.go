// Package compiler invokes an external build tool on a single source file
// and reports one of three outcomes: the produced artifact, a rejection with
// the tool's verbatim output, or a failure to start the tool.
package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Config defines how the build tool is invoked.
//
// The command line is Args, then WorkDirFlag immediately followed by the
// working directory as one argument, then the source file.
type Config struct {
	Command     string   `yaml:"command"`
	Args        []string `yaml:"args"`
	WorkDirFlag string   `yaml:"workDirFlag"`
}

// Compiler compiles source files with a fixed Config. It holds no mutable
// state and may be reused for sequential compilations. Concurrent use needs a
// distinct working directory per call.
type Compiler struct {
	conf     Config
	launcher Launcher
	logger   *zap.Logger
}

// Option configures a Compiler
type Option func(*Compiler)

// WithLauncher replaces the default os/exec launcher
func WithLauncher(l Launcher) Option {
	return func(c *Compiler) {
		c.launcher = l
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// New creates a Compiler for conf
func New(conf Config, opts ...Option) *Compiler {
	conf.Args = append([]string(nil), conf.Args...)
	c := &Compiler{
		conf:     conf,
		launcher: ExecLauncher{},
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns a copy of the compiler configuration
func (c *Compiler) Config() Config {
	conf := c.conf
	conf.Args = append([]string(nil), c.conf.Args...)
	return conf
}

// Args builds the argument list passed to the build tool
func (c *Compiler) Args(source, workDir string) []string {
	args := make([]string, 0, len(c.conf.Args)+2)
	args = append(args, c.conf.Args...)
	args = append(args, c.conf.WorkDirFlag+workDir)
	args = append(args, source)
	return args
}

// Compile runs the build tool once on source, directing its output into
// workDir. The caller owns workDir and removes it afterwards.
//
// The build tool inherits the current directory, so relative source and
// workDir paths resolve as the caller sees them. The artifact path of a
// successful compilation is derived from the source file name and is not
// checked on the file system.
func (c *Compiler) Compile(ctx context.Context, source, workDir string) Outcome {
	args := c.Args(source, workDir)
	logger := c.logger.With(zap.String("source", source), zap.String("workDir", workDir))
	logger.Debug("compilation command", zap.String("command", c.conf.Command), zap.Strings("args", args))

	p, err := c.launcher.Launch(ctx, c.conf.Command, args, "")
	if err != nil {
		logger.Warn("build tool failed to start", zap.String("command", c.conf.Command), zap.Error(err))
		return &LaunchFailure{
			Cause: fmt.Errorf("launch %q for %s: %w", c.conf.Command, source, err),
		}
	}
	if p.ExitStatus != 0 {
		logger.Info("compilation rejected", zap.Int("exitStatus", p.ExitStatus))
		return &CompileError{
			ExitStatus: p.ExitStatus,
			Stdout:     p.Stdout,
			Stderr:     p.Stderr,
		}
	}
	artifact := ArtifactPath(source, workDir)
	logger.Info("compilation succeeded", zap.String("artifact", artifact))
	return &Success{Artifact: artifact}
}

// ArtifactPath returns workDir joined with the base name of source without
// its extension
func ArtifactPath(source, workDir string) string {
	base := filepath.Base(source)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		base = name
	}
	return filepath.Join(workDir, base)
}
