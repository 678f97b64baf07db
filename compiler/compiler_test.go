package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"go.uber.org/zap/zaptest"
)

type fakeLauncher struct {
	name string
	args []string
	dir  string

	p   Process
	err error
}

func (f *fakeLauncher) Launch(_ context.Context, name string, args []string, dir string) (Process, error) {
	f.name, f.args, f.dir = name, args, dir
	return f.p, f.err
}

func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not supported on windows")
	}
	p := filepath.Join(t.TempDir(), "buildtool")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return p
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		conf Config
		want []string
	}{
		{
			name: "fpc",
			conf: Config{Command: "fpc", Args: []string{"-So", "-XS"}, WorkDirFlag: "-FE"},
			want: []string{"-So", "-XS", "-FE/w", "/src/solution.pas"},
		},
		{
			name: "no fixed args",
			conf: Config{Command: "cc", WorkDirFlag: "--out="},
			want: []string{"--out=/w", "/src/solution.pas"},
		},
		{
			name: "empty prefix",
			conf: Config{Command: "cc", Args: []string{"-c"}},
			want: []string{"-c", "/w", "/src/solution.pas"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.conf)
			got := c.Args("/src/solution.pas", "/w")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArgsDoesNotAliasConfig(t *testing.T) {
	fixed := []string{"-O2"}
	c := New(Config{Command: "cc", Args: fixed, WorkDirFlag: "-o"})
	fixed[0] = "-O0"
	a := c.Args("a.c", "/w")
	a[0] = "changed"
	if got := c.Args("a.c", "/w")[0]; got != "-O2" {
		t.Errorf("fixed argument mutated: %q", got)
	}
}

func TestCompilePassesArgsAndDir(t *testing.T) {
	l := &fakeLauncher{}
	c := New(Config{Command: "fpc", Args: []string{"-So"}, WorkDirFlag: "-FE"}, WithLauncher(l), WithLogger(zaptest.NewLogger(t)))
	c.Compile(context.Background(), "/src/a.pas", "/w")
	if l.name != "fpc" {
		t.Errorf("command = %q, want fpc", l.name)
	}
	if want := []string{"-So", "-FE/w", "/src/a.pas"}; !reflect.DeepEqual(l.args, want) {
		t.Errorf("args = %q, want %q", l.args, want)
	}
	if l.dir != "" {
		t.Errorf("dir = %q, want current directory", l.dir)
	}
}

func TestCompileRelativePaths(t *testing.T) {
	// fails unless the output directory and the source exist relative to
	// the directory the tool was started in
	tool := writeStub(t, `test -d "${1#-FE}" || { echo "missing $1 in $(pwd)" >&2; exit 8; }
test -f "$2" || { echo "missing $2 in $(pwd)" >&2; exit 7; }
`)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sol.pas"), []byte("begin end."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "work"), 0o755); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c := New(Config{Command: tool, WorkDirFlag: "-FE"}, WithLogger(zaptest.NewLogger(t)))
	o := c.Compile(context.Background(), "sol.pas", "work")
	s, ok := o.(*Success)
	if !ok {
		if ce, isCE := o.(*CompileError); isCE {
			t.Fatalf("relative paths rejected: status=%d stderr=%s", ce.ExitStatus, ce.StderrText())
		}
		t.Fatalf("expected *Success, got %#v", o)
	}
	if want := filepath.Join("work", "sol"); s.Artifact != want {
		t.Errorf("artifact = %q, want %q", s.Artifact, want)
	}
}

func TestCompileSuccess(t *testing.T) {
	tool := writeStub(t, "exit 0\n")
	workDir := t.TempDir()
	c := New(Config{Command: tool, WorkDirFlag: "-FE"}, WithLogger(zaptest.NewLogger(t)))

	o := c.Compile(context.Background(), "/src/solution.pas", workDir)
	s, ok := o.(*Success)
	if !ok {
		t.Fatalf("expected *Success, got %#v", o)
	}
	if want := filepath.Join(workDir, "solution"); s.Artifact != want {
		t.Errorf("artifact = %q, want %q", s.Artifact, want)
	}
}

func TestCompileError(t *testing.T) {
	tool := writeStub(t, "printf 'hello\\n'\nprintf 'bad\\377' >&2\nexit 3\n")
	c := New(Config{Command: tool, WorkDirFlag: "-FE"}, WithLogger(zaptest.NewLogger(t)))

	o := c.Compile(context.Background(), "/src/solution.pas", t.TempDir())
	ce, ok := o.(*CompileError)
	if !ok {
		t.Fatalf("expected *CompileError, got %#v", o)
	}
	if ce.ExitStatus != 3 {
		t.Errorf("exit status = %d, want 3", ce.ExitStatus)
	}
	if !bytes.Equal(ce.Stdout, []byte("hello\n")) {
		t.Errorf("stdout = %q", ce.Stdout)
	}
	if !bytes.Equal(ce.Stderr, []byte("bad\377")) {
		t.Errorf("stderr = %q", ce.Stderr)
	}
	if ce.StdoutText() != "hello\n" {
		t.Errorf("stdout text = %q", ce.StdoutText())
	}
	if ce.StderrText() != InvalidText {
		t.Errorf("stderr text = %q, want placeholder", ce.StderrText())
	}
}

func TestCompileLaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-compiler")
	c := New(Config{Command: missing, WorkDirFlag: "-FE"}, WithLogger(zaptest.NewLogger(t)))

	o := c.Compile(context.Background(), "/src/solution.pas", t.TempDir())
	lf, ok := o.(*LaunchFailure)
	if !ok {
		t.Fatalf("expected *LaunchFailure, got %#v", o)
	}
	if !errors.Is(lf, os.ErrNotExist) {
		t.Errorf("expected cause to wrap ErrNotExist, got %v", lf.Cause)
	}
}

func TestCompileLaunchFailureFromLauncher(t *testing.T) {
	cause := errors.New("permission denied")
	c := New(Config{Command: "fpc"}, WithLauncher(&fakeLauncher{err: cause}))
	o := c.Compile(context.Background(), "a.pas", "/w")
	var lf *LaunchFailure
	if !errors.As(o.(error), &lf) || !errors.Is(lf, cause) {
		t.Errorf("expected launch failure wrapping cause, got %#v", o)
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		source, want string
	}{
		{"/src/solution.pas", "/w/solution"},
		{"main.tar.go", "/w/main.tar"},
		{"noext", "/w/noext"},
		{"/src/.hidden", "/w/.hidden"},
	}
	for _, tt := range tests {
		if got := ArtifactPath(tt.source, "/w"); got != filepath.FromSlash(tt.want) {
			t.Errorf("ArtifactPath(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	if got := Text([]byte("ok")); got != "ok" {
		t.Errorf("Text = %q", got)
	}
	if got := Text([]byte{0xff, 0xfe}); got != InvalidText {
		t.Errorf("Text = %q, want placeholder", got)
	}
}
