// Command rtest compiles a solution with an external build tool, discovers
// the test cases of a problem directory and optionally judges the compiled
// program against them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/criyle/go-rtest/cmd/rtest/config"
	"github.com/criyle/go-rtest/cmd/rtest/version"
	"github.com/criyle/go-rtest/compiler"
	"github.com/criyle/go-rtest/diff"
	"github.com/criyle/go-rtest/judge"
	"github.com/criyle/go-rtest/language"
	"github.com/criyle/go-rtest/problem"
	"github.com/criyle/go-rtest/workdir"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// exit codes
const (
	exitOK       = 0
	exitRejected = 1 // compile error or failed tests
	exitFatal    = 2 // configuration error or unusable toolchain
)

const workDirPrefix = "rtest"

var logger *zap.Logger

func main() {
	conf := loadConf()
	if conf.Version {
		fmt.Println(version.Version)
		return
	}
	initLogger(conf)
	if ce := logger.Check(zap.DebugLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", conf)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, conf, afero.NewOsFs(), os.Stdout)
	stop()
	logger.Sync()
	os.Exit(code)
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if term.IsTerminal(int(os.Stderr.Fd())) {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		if !conf.EnableDebug {
			config.Level.SetLevel(zap.InfoLevel)
		}
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
}

// run compiles the source inside a fresh working directory and judges it.
// The working directory is removed before run returns.
func run(ctx context.Context, conf *config.Config, fs afero.Fs, out io.Writer) int {
	comp, err := newCompiler(conf)
	if err != nil {
		logger.Error("invalid build tool", zap.Error(err))
		return exitFatal
	}
	spec, err := loadProblem(fs, conf)
	if err != nil {
		logger.Error("invalid problem", zap.Error(err))
		return exitFatal
	}
	mode, err := diff.ParseMode(conf.Compare)
	if err != nil {
		logger.Error("invalid compare mode", zap.Error(err))
		return exitFatal
	}
	source := resolvePath(conf.Dir, conf.Source)
	if err := checkFile(fs, source); err != nil {
		logger.Error("invalid source file", zap.Error(err))
		return exitFatal
	}
	tests := resolvePath(conf.Dir, conf.Tests)

	code := exitOK
	err = workdir.With(fs, workDirPrefix, func(dir string) error {
		logger.Info("Working directory", zap.String("dir", dir))

		compileCtx := ctx
		if conf.CompileTimeout > 0 {
			var cancel context.CancelFunc
			compileCtx, cancel = context.WithTimeout(ctx, conf.CompileTimeout)
			defer cancel()
		}
		switch o := comp.Compile(compileCtx, source, dir).(type) {
		case *compiler.Success:
			logger.Info("Binary", zap.String("artifact", o.Artifact))
			var err error
			code, err = runTests(ctx, conf, fs, spec, mode, tests, o.Artifact, out)
			return err

		case *compiler.CompileError:
			printCompileError(out, o)
			code = exitRejected
			return nil

		case *compiler.LaunchFailure:
			return fmt.Errorf("compiler failed: %w", o)

		default:
			return fmt.Errorf("unknown compilation outcome %T", o)
		}
	})
	if err != nil {
		logger.Error("rtest failed", zap.Error(err))
		return exitFatal
	}
	return code
}

func newCompiler(conf *config.Config) (*compiler.Compiler, error) {
	var (
		c   compiler.Config
		err error
	)
	if conf.BuildCmd != "" {
		c, err = language.Parse(conf.BuildCmd, conf.WorkDirFlag)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		c, ok = language.Default.Get(conf.Language)
		if !ok {
			return nil, fmt.Errorf("unknown language %q, available: %q", conf.Language, language.Default.Names())
		}
	}
	return compiler.New(c, compiler.WithLogger(logger)), nil
}

func loadProblem(fs afero.Fs, conf *config.Config) (problem.Spec, error) {
	if conf.Problem != "" {
		return problem.Load(fs, resolvePath(conf.Dir, conf.Problem))
	}
	s := problem.Spec{
		InputPattern:   conf.InputPattern,
		AnswerTemplate: conf.AnswerTemplate,
		IDGroup:        conf.IDGroup,
		NumericID:      conf.NumericID,
	}
	if _, err := problem.Compile(s); err != nil {
		return problem.Spec{}, err
	}
	return s, nil
}

func runTests(ctx context.Context, conf *config.Config, fs afero.Fs, spec problem.Spec, mode diff.Mode, dir, artifact string, out io.Writer) (int, error) {
	d, err := problem.NewFinder(fs, logger).FindTests(spec, dir)
	if err != nil {
		return exitFatal, err
	}
	for _, p := range d.Problems {
		fmt.Fprintf(out, "skipped: %v\n", p)
	}
	problem.Sort(d.Cases)

	if !conf.Run {
		for _, c := range d.Cases {
			fmt.Fprintf(out, "%s\t%s\t%s\n", c.ID, c.Input, c.Answer)
		}
		return exitOK, nil
	}

	e := &judge.Local{
		Mode:        mode,
		TimeLimit:   conf.TimeLimit,
		OutputLimit: conf.OutputLimit,
		Logger:      logger,
	}
	results, err := judge.RunAll(ctx, e, artifact, d.Cases, conf.Parallelism)
	if err != nil {
		return exitFatal, err
	}
	printResults(out, results)

	accepted := judge.Accepted(results)
	logger.Info("Judged", zap.Int("accepted", accepted), zap.Int("total", len(results)), zap.Int("skipped", len(d.Problems)))
	if accepted != len(results) || len(d.Problems) > 0 {
		return exitRejected, nil
	}
	return exitOK, nil
}

func printCompileError(w io.Writer, e *compiler.CompileError) {
	fmt.Fprintln(w, "Compilation error.")
	fmt.Fprintf(w, "status: %d\n", e.ExitStatus)
	fmt.Fprintf(w, "output:\n%s\n", e.StdoutText())
	fmt.Fprintf(w, "error:\n%s\n", e.StderrText())
}

func printResults(w io.Writer, results []judge.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tSTATUS\tTIME\tMEMORY")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%v\t%v\t%dKiB\n", r.Case.ID, r.Status, r.Time.Round(time.Millisecond), r.Memory>>10)
	}
	tw.Flush()
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "test %s: %s\n", r.Case.ID, r.Error)
		}
	}
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func checkFile(fs afero.Fs, p string) error {
	fi, err := fs.Stat(p)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", p, errNotFile)
	}
	return nil
}

var errNotFile = errors.New("not a regular file")
