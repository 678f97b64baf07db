// Package workdir provides uniquely named temporary directories that are
// removed with all their contents when the enclosing operation returns.
package workdir

import (
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Dir is a temporary directory owned by its creator
type Dir struct {
	fs   afero.Fs
	path string
	once sync.Once
	err  error
}

// New creates a uniquely named directory with prefix under the default
// temporary directory of fs
func New(fs afero.Fs, prefix string) (*Dir, error) {
	p, err := afero.TempDir(fs, "", prefix)
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}
	return &Dir{fs: fs, path: p}, nil
}

// Path returns the directory path
func (d *Dir) Path() string {
	return d.path
}

// Remove deletes the directory and its contents. Only the first call has
// effect; later calls return the same result.
func (d *Dir) Remove() error {
	d.once.Do(func() {
		if err := d.fs.RemoveAll(d.path); err != nil {
			d.err = fmt.Errorf("remove working directory %s: %w", d.path, err)
		}
	})
	return d.err
}

// With creates a working directory, calls fn with its path and removes it
// afterwards, also when fn panics. The panic is propagated after removal.
func With(fs afero.Fs, prefix string, fn func(dir string) error) (err error) {
	d, err := New(fs, prefix)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, d.Remove())
	}()
	return fn(d.Path())
}
