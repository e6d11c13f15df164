package linesort

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/alecthomas/units"
	"github.com/pbnjay/memory"
	"gopkg.in/yaml.v3"
)

// ByteSize is a size in bytes that can be set from strings like "10M",
// "10MiB", "10MB" or "10485760". Unit prefixes are always base 2.
type ByteSize int64

// ParseByteSize parses a human readable size.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ByteSize(n), nil
	}
	n, err := units.ParseBase2Bytes(s)
	if err != nil {
		// accept "10M" and "10MB" as base 2 sizes too
		if u := strings.TrimSuffix(s, "B"); u != "" && strings.ContainsAny(u[len(u)-1:], "KMGTPE") {
			n, err = units.ParseBase2Bytes(u + "iB")
		}
	}
	if err != nil {
		return 0, err
	}
	return ByteSize(n), nil
}

func (b ByteSize) String() string {
	return units.Base2Bytes(b).String()
}

// UnmarshalFlag implements the go-flags Unmarshaler interface.
func (b *ByteSize) UnmarshalFlag(value string) error {
	n, err := ParseByteSize(value)
	if err != nil {
		return err
	}
	*b = n
	return nil
}

// UnmarshalYAML accepts both integers and size strings.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	return b.UnmarshalFlag(value.Value)
}

// Config holds configuration settings for linesort
type Config struct {
	ChunkSize     ByteSize `yaml:"chunk_size"`    // bytes of input read into memory for each sorted run
	MaxOpenRuns   int      `yaml:"max_open_runs"` // maximum number of runs opened at once by a single merge
	NumWorkers    int      `yaml:"workers"`       // number of chunks sorted concurrently in one wave
	BufferSize    ByteSize `yaml:"buffer_size"`   // file IO buffer size for each file
	TempDir       string   `yaml:"temp_dir"`      // parent of the workspace, empty for a disk backed OS default
	WorkspaceName string   `yaml:"workspace"`     // name of the workspace directory inside TempDir
	Unique        bool     `yaml:"unique"`        // drop records equal to their predecessor
}

const (
	defaultChunkSize     = 10 * units.MiB
	defaultMaxOpenRuns   = 100
	defaultBufferSize    = 64 * units.KiB
	defaultWorkspaceName = "linesort-workspace"

	// parsed records take roughly this many times the size of their input
	memoryFactor = 4
)

// DefaultConfig returns the default configuration options used if none provided
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:     ByteSize(defaultChunkSize),
		MaxOpenRuns:   defaultMaxOpenRuns,
		NumWorkers:    defaultWorkers(int64(defaultChunkSize)),
		BufferSize:    ByteSize(defaultBufferSize),
		TempDir:       "",
		WorkspaceName: defaultWorkspaceName,
	}
}

// defaultWorkers returns the number of CPUs, lowered so that one wave of
// chunks fits in half of the physical memory.
func defaultWorkers(chunkSize int64) int {
	n := runtime.NumCPU()
	total := memory.TotalMemory()
	if total == 0 || chunkSize <= 0 {
		return n
	}
	fit := int(total / 2 / uint64(chunkSize*memoryFactor))
	if fit < 1 {
		fit = 1
	}
	return min(n, fit)
}

// mergeConfig takes a provided config and replaces any values not set with the defaults.
// Invalid values are left in place for validate to report.
func mergeConfig(c *Config) *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	merged := *c
	if merged.ChunkSize == 0 {
		merged.ChunkSize = d.ChunkSize
	}
	if merged.MaxOpenRuns == 0 {
		merged.MaxOpenRuns = d.MaxOpenRuns
	}
	if merged.NumWorkers == 0 {
		merged.NumWorkers = defaultWorkers(int64(merged.ChunkSize))
	}
	if merged.BufferSize == 0 {
		merged.BufferSize = d.BufferSize
	}
	if merged.WorkspaceName == "" {
		merged.WorkspaceName = d.WorkspaceName
	}
	// skipping TempDir as the empty string selects the OS default
	return &merged
}

// validate reports configuration values the sorter cannot run with.
func (c *Config) validate() error {
	if c.ChunkSize < 0 {
		return &ConfigError{Field: "ChunkSize", Value: c.ChunkSize, Reason: "must be positive"}
	}
	if c.MaxOpenRuns < 2 {
		return &ConfigError{Field: "MaxOpenRuns", Value: c.MaxOpenRuns, Reason: "a merge needs at least 2 open runs to make progress"}
	}
	if c.NumWorkers < 1 {
		return &ConfigError{Field: "NumWorkers", Value: c.NumWorkers, Reason: "must be at least 1"}
	}
	if c.BufferSize < 0 {
		return &ConfigError{Field: "BufferSize", Value: c.BufferSize, Reason: "must be positive"}
	}
	if strings.ContainsAny(c.WorkspaceName, `/\`) || c.WorkspaceName == "." || c.WorkspaceName == ".." {
		return &ConfigError{Field: "WorkspaceName", Value: c.WorkspaceName, Reason: "must be a single path element"}
	}
	return nil
}

// LoadConfig reads a YAML config file. Fields missing from the file keep their zero
// value and are filled with defaults when the config is used.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &c, nil
}
