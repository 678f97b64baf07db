package language

import (
	"reflect"
	"testing"

	"github.com/criyle/go-rtest/compiler"
)

func TestPresetsGet(t *testing.T) {
	c, ok := Default.Get("pascal")
	if !ok {
		t.Fatal("pascal preset missing")
	}
	want := compiler.Config{Command: "fpc", Args: []string{"-So", "-XS"}, WorkDirFlag: "-FE"}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("got %+v, want %+v", c, want)
	}

	// returned args must not alias the table
	c.Args[0] = "-Sd"
	if again, _ := Default.Get("pascal"); again.Args[0] != "-So" {
		t.Errorf("preset mutated through Get: %q", again.Args)
	}

	if _, ok := Default.Get("cobol"); ok {
		t.Error("unexpected preset for cobol")
	}
}

func TestPresetsNames(t *testing.T) {
	if got := Default.Names(); !reflect.DeepEqual(got, []string{"go", "pascal"}) {
		t.Errorf("Names() = %q", got)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(`fpc -So "-Fu/opt/my units"`, "-FE")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := compiler.Config{Command: "fpc", Args: []string{"-So", "-Fu/opt/my units"}, WorkDirFlag: "-FE"}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("got %+v, want %+v", c, want)
	}

	if _, err := Parse("   ", "-FE"); err == nil {
		t.Error("expected error for empty command")
	}
	if _, err := Parse(`fpc "unterminated`, "-FE"); err == nil {
		t.Error("expected error for unterminated quote")
	}
}
