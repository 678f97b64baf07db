package problem

import (
	"sort"
	"strconv"
)

// Sort orders cases by identifier: numerically when both identifiers are
// integers, numeric before non-numeric, lexically otherwise
func Sort(cases []Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		return lessID(cases[i].ID, cases[j].ID)
	})
}

func lessID(a, b string) bool {
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if x != y {
			return x < y
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
