// Package linesort implements an external merge sort for line oriented
// "<integer>. <payload>" text files that are too large to hold in memory.
package linesort

import (
	"cmp"
	"strconv"
	"strings"
)

// separator splits the numeric tag from the payload.
const separator = ". "

// Record is a single parsed line.
// Records are ordered by Payload (byte-wise) and then by Tag.
type Record struct {
	Tag     int64
	Payload string
}

// ParseRecord parses a line in the form "<integer>. <payload>".
// The first '.' delimits the tag, everything after the ". " separator is the
// payload verbatim. ok is false for any line that does not follow the grammar
// or has an empty payload.
func ParseRecord(line string) (r Record, ok bool) {
	dot := strings.IndexByte(line, '.')
	if dot < 0 {
		return r, false
	}
	tag, err := strconv.ParseInt(line[:dot], 10, 64)
	if err != nil {
		return r, false
	}
	if !strings.HasPrefix(line[dot:], separator) || len(line) <= dot+len(separator) {
		return r, false
	}
	r.Tag = tag
	r.Payload = line[dot+len(separator):]
	return r, true
}

// String serializes the record back to "<tag>. <payload>".
func (r Record) String() string {
	return string(AppendRecord(make([]byte, 0, 20+len(separator)+len(r.Payload)), r))
}

// AppendRecord appends the serialized form of r to dst without a line terminator.
func AppendRecord(dst []byte, r Record) []byte {
	dst = strconv.AppendInt(dst, r.Tag, 10)
	dst = append(dst, separator...)
	return append(dst, r.Payload...)
}

// CompareRecords orders records by payload using an ordinal byte comparison,
// breaking ties by ascending tag. It follows the cmp.Compare convention.
func CompareRecords(a, b Record) int {
	if c := strings.Compare(a.Payload, b.Payload); c != 0 {
		return c
	}
	return cmp.Compare(a.Tag, b.Tag)
}
