package config

import (
	"os"
	"runtime"
	"time"

	"github.com/koding/multiconfig"
)

// Config defines rtest configuration
type Config struct {
	// inputs
	Dir     string `flagUsage:"base directory for relative paths (current directory by default)"`
	Source  string `flagUsage:"source file to compile" default:"solution.pas"`
	Tests   string `flagUsage:"directory containing the test cases" default:"tests"`
	Problem string `flagUsage:"YAML problem description, overrides input-pattern / answer-template"`

	// build tool
	Language       string        `flagUsage:"build tool preset (go, pascal)" default:"pascal"`
	BuildCmd       string        `flagUsage:"build command line, overrides the language preset"`
	WorkDirFlag    string        `flagUsage:"argument prefix for the output directory of build-cmd" default:"-FE"`
	CompileTimeout time.Duration `flagUsage:"compilation timeout (0 for none)" default:"30s"`

	// test discovery
	InputPattern   string `flagUsage:"regular expression matching input file names" default:"(?P<test>\\d+)\\.in"`
	AnswerTemplate string `flagUsage:"answer file name template" default:"$test.out"`
	IDGroup        string `flagUsage:"capture group holding the test identifier" default:"test"`
	NumericID      bool   `flagUsage:"ignore leading zeros in test identifiers" default:"true"`

	// execution
	Run         bool          `flagUsage:"run the artifact against the discovered tests"`
	Compare     string        `flagUsage:"output comparison (trailing-space, exact)" default:"trailing-space"`
	TimeLimit   time.Duration `flagUsage:"wall time limit per test (0 for none)" default:"2s"`
	OutputLimit int64         `flagUsage:"stdout size limit per test in bytes" default:"67108864"`
	Parallelism int           `flagUsage:"control the # of concurrent tests (default equal to number of cpu)"`

	// logger config
	Release     bool `flagUsage:"release level of logs"`
	Silent      bool `flagUsage:"do not print logs"`
	EnableDebug bool `flagUsage:"enable debug level logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables
func (c *Config) Load() error {
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "RTEST",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "RTEST",
		},
	)
	if err := cl.Load(c); err != nil {
		return err
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.NumCPU()
	}
	if c.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		c.Dir = wd
	}
	return nil
}
