package linesort

import "slices"

// uniqRecords filters out consecutive duplicate records from a sorted slice in place.
// It preserves the first occurrence of each record and returns the number dropped.
func uniqRecords(sorted []Record) ([]Record, int) {
	n := len(sorted)
	sorted = slices.Compact(sorted)
	return sorted, n - len(sorted)
}

// uniqFilter tracks the last record written to a sorted stream
type uniqFilter struct {
	enabled bool
	prior   Record
	set     bool
}

// skip reports whether r duplicates the record before it. Records must be
// offered in sorted order.
func (u *uniqFilter) skip(r Record) bool {
	if !u.enabled {
		return false
	}
	if u.set && r == u.prior {
		return true
	}
	u.prior = r
	u.set = true
	return false
}
