package problem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Discovery is the result of a single scan of a test directory
type Discovery struct {
	Cases    []Case       // validated pairs, in directory listing order
	Problems []*CaseError // test cases that could not be paired
}

// Err combines all problems into one error, nil if there are none
func (d *Discovery) Err() error {
	var err error
	for _, p := range d.Problems {
		err = multierr.Append(err, p)
	}
	return err
}

// Finder scans test directories on a file system
type Finder struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewFinder creates a Finder on fs. A nil logger disables logging.
func NewFinder(fs afero.Fs, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{fs: fs, logger: logger}
}

// FindTests scans the host file system with spec
func FindTests(spec Spec, dir string) (*Discovery, error) {
	return NewFinder(afero.NewOsFs(), nil).FindTests(spec, dir)
}

// FindTests lists the immediate entries of dir and pairs every regular file
// matching the input pattern with its answer file.
//
// An invalid spec or an unusable dir is returned as error. Problems with
// individual test cases are collected in Discovery.Problems and do not stop
// the scan.
func (f *Finder) FindTests(spec Spec, dir string) (*Discovery, error) {
	m, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	return f.Find(m, dir)
}

type match struct {
	input, answer string
}

// Find is FindTests with a compiled spec
func (f *Finder) Find(m *Matcher, dir string) (*Discovery, error) {
	fi, err := f.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("find tests in %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("find tests in %s: %w", dir, ErrNotDir)
	}
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("find tests in %s: %w", dir, err)
	}

	var (
		files = make(map[string]bool)     // regular file names
		fold  = make(map[string][]string) // lower case name -> names
		ids   []string
		byID  = make(map[string][]match)
	)
	for _, e := range entries {
		name := e.Name()
		if !f.isRegular(dir, e) {
			continue
		}
		files[name] = true
		lower := strings.ToLower(name)
		fold[lower] = append(fold[lower], name)

		id, answer, ok := m.Match(name)
		if !ok {
			continue
		}
		f.logger.Debug("input file matched", zap.String("file", name), zap.String("id", id))
		if _, ok := byID[id]; !ok {
			ids = append(ids, id)
		}
		byID[id] = append(byID[id], match{input: name, answer: answer})
	}

	d := &Discovery{}
	for _, id := range ids {
		ms := byID[id]
		if len(ms) > 1 {
			paths := make([]string, 0, len(ms))
			for _, mt := range ms {
				paths = append(paths, filepath.Join(dir, mt.input))
			}
			d.Problems = append(d.Problems, &CaseError{ID: id, Kind: Ambiguous, Paths: paths})
			continue
		}

		mt := ms[0]
		answer := mt.answer
		if !files[answer] {
			switch cand := fold[strings.ToLower(answer)]; len(cand) {
			case 0:
				d.Problems = append(d.Problems, &CaseError{
					ID:    id,
					Kind:  MissingAnswer,
					Paths: []string{filepath.Join(dir, answer)},
				})
				continue
			case 1:
				answer = cand[0]
			default:
				paths := make([]string, 0, len(cand))
				for _, c := range cand {
					paths = append(paths, filepath.Join(dir, c))
				}
				d.Problems = append(d.Problems, &CaseError{ID: id, Kind: Ambiguous, Paths: paths})
				continue
			}
		}
		d.Cases = append(d.Cases, Case{
			ID:     id,
			Input:  filepath.Join(dir, mt.input),
			Answer: filepath.Join(dir, answer),
		})
	}

	for _, p := range d.Problems {
		f.logger.Warn("test case skipped", zap.String("id", p.ID), zap.Stringer("kind", p.Kind), zap.Strings("paths", p.Paths))
	}
	f.logger.Info("tests discovered", zap.String("dir", dir), zap.Int("cases", len(d.Cases)), zap.Int("problems", len(d.Problems)))
	return d, nil
}

// isRegular reports whether the entry is a regular file, following symbolic
// links
func (f *Finder) isRegular(dir string, e os.FileInfo) bool {
	if e.Mode()&os.ModeSymlink == 0 {
		return e.Mode().IsRegular()
	}
	fi, err := f.fs.Stat(filepath.Join(dir, e.Name()))
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}
