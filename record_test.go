package linesort_test

import (
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/lanrat/linesort"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
		rec  linesort.Record
	}{
		{"1. first line", true, linesort.Record{Tag: 1, Payload: "first line"}},
		{"415. Apple", true, linesort.Record{Tag: 415, Payload: "Apple"}},
		{"-7. negative", true, linesort.Record{Tag: -7, Payload: "negative"}},
		{"30432. Something something something", true, linesort.Record{Tag: 30432, Payload: "Something something something"}},
		{"2. a.b. c", true, linesort.Record{Tag: 2, Payload: "a.b. c"}},
		{"3.  leading space", true, linesort.Record{Tag: 3, Payload: " leading space"}},
		{"4. trailing space ", true, linesort.Record{Tag: 4, Payload: "trailing space "}},
		{"9223372036854775807. max", true, linesort.Record{Tag: math.MaxInt64, Payload: "max"}},
		{"", false, linesort.Record{}},
		{"\n", false, linesort.Record{}},
		{"no dot here", false, linesort.Record{}},
		{"dsjhk. 12321", false, linesort.Record{}},
		{". empty tag", false, linesort.Record{}},
		{"12. ", false, linesort.Record{}},
		{"12.", false, linesort.Record{}},
		{"12.x", false, linesort.Record{}},
		{"12.xpayload", false, linesort.Record{}},
		{"1 2. spaced tag", false, linesort.Record{}},
		{"99999999999999999999. overflow", false, linesort.Record{}},
		{"1232,dsaklsj", false, linesort.Record{}},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.line), func(t *testing.T) {
			rec, ok := linesort.ParseRecord(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.rec, rec)
			}
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	lines := []string{
		"1. first line",
		"0. zero",
		"-12. negative tag",
		"5. payload. with. dots.",
		"6. ünïcödé payload",
		"7.  two spaces",
	}
	for _, line := range lines {
		rec, ok := linesort.ParseRecord(line)
		require.True(t, ok, line)
		require.Equal(t, line, rec.String())

		again, ok := linesort.ParseRecord(rec.String())
		require.True(t, ok)
		require.Equal(t, rec.String(), again.String())
	}
}

func TestAppendRecord(t *testing.T) {
	buf := []byte("prefix:")
	buf = linesort.AppendRecord(buf, linesort.Record{Tag: 42, Payload: "answer"})
	require.Equal(t, "prefix:42. answer", string(buf))
}

func TestCompareRecords(t *testing.T) {
	a := linesort.Record{Tag: 5, Payload: "second line"}
	b := linesort.Record{Tag: 2, Payload: "second line"}
	c := linesort.Record{Tag: 1, Payload: "third line"}

	require.Positive(t, linesort.CompareRecords(a, b), "equal payloads must tie-break on tag")
	require.Negative(t, linesort.CompareRecords(b, a))
	require.Zero(t, linesort.CompareRecords(a, a))
	require.Negative(t, linesort.CompareRecords(a, c), "payload wins over tag")
}

func TestCompareRecordsOrdinal(t *testing.T) {
	// byte order, not a locale collation: upper case sorts before lower case,
	// and multi-byte UTF-8 sequences sort after ASCII.
	recs := []linesort.Record{
		{Tag: 1, Payload: "banana"},
		{Tag: 2, Payload: "Banana"},
		{Tag: 3, Payload: "äpfel"},
		{Tag: 4, Payload: "apple"},
		{Tag: 5, Payload: "Zebra"},
		{Tag: 6, Payload: "apple pie"},
	}
	slices.SortFunc(recs, linesort.CompareRecords)

	got := make([]string, len(recs))
	for i, r := range recs {
		got[i] = r.Payload
	}
	require.Equal(t, []string{"Banana", "Zebra", "apple", "apple pie", "banana", "äpfel"}, got)
}
