package problem

// Discoverer discovers the test cases of a problem in a directory
type Discoverer interface {
	FindTests(spec Spec, dir string) (*Discovery, error)
}

var _ Discoverer = (*Finder)(nil)
