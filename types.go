package linesort

// Logger receives human readable progress messages from a sort.
// The sorter never depends on what a Logger does with them.
type Logger interface {
	// Line emits a standalone line.
	Line(msg string)
	// Mark remembers the current output position.
	Mark()
	// Overwrite replaces everything written since the last Mark with msg.
	Overwrite(msg string)
}

// NopLogger is a Logger that discards everything.
type NopLogger struct{}

func (NopLogger) Line(string)      {}
func (NopLogger) Mark()            {}
func (NopLogger) Overwrite(string) {}
