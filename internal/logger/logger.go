// Package logger builds the zap logger used for diagnostics.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where and how the logger writes.
type Config struct {
	// Path is stderr, stdout, /dev/null or a file path.
	Path string
	// If Path is a file, Mode will determine how the log file is managed.
	// FileModeAppend is the default if value is undefined.
	Mode    FileMode
	Level   zapcore.Level
	DevMode bool
}

// New returns a logger writing JSON entries as described by conf.
func New(conf Config) (*zap.Logger, error) {
	w, err := OpenFile(conf.Path, conf.Mode)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(jsonEncoder(), w, conf.Level)
	var opts []zap.Option
	if conf.DevMode {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}

func jsonEncoder() zapcore.Encoder {
	conf := zap.NewProductionEncoderConfig()
	conf.CallerKey = ""
	conf.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(conf)
}

// FileMode selects how an existing log file is treated on open.
type FileMode string

const (
	// FileModeAppend will append to existing log files between runs.
	// This is the default option.
	FileModeAppend FileMode = "append"
	// FileModeTruncate will truncate existing log files between runs.
	FileModeTruncate FileMode = "truncate"
	// FileModeRotate will enable log rotation for log files.
	FileModeRotate FileMode = "rotate"
)

// Set parses s, the empty string selecting FileModeAppend.
func (m *FileMode) Set(s string) error {
	switch FileMode(s) {
	case FileModeAppend, "":
		*m = FileModeAppend
	case FileModeTruncate:
		*m = FileModeTruncate
	case FileModeRotate:
		*m = FileModeRotate
	default:
		return fmt.Errorf("invalid FileMode type: %s", s)
	}
	return nil
}

// UnmarshalFlag lets go-flags set a FileMode.
func (m *FileMode) UnmarshalFlag(s string) error {
	return m.Set(s)
}

func (m FileMode) String() string {
	return string(m)
}

// OpenFile returns the sink for path, which may also name stdout, stderr or
// os.DevNull.
func OpenFile(path string, mode FileMode) (zapcore.WriteSyncer, error) {
	switch path {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case os.DevNull:
		return zapcore.AddSync(io.Discard), nil
	}
	switch mode {
	case FileModeRotate:
		return logrotate(path)
	case FileModeTruncate:
		return os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	default: // FileModeAppend
		return os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	}
}

func logrotate(path string) (zapcore.WriteSyncer, error) {
	// Make sure directory exists
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, err
	}
	// lumberjack.Logger is already safe for concurrent use, so we don't need to
	// lock it.
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}), nil
}

// Flags are the logging command line options.
type Flags struct {
	Level   string   `long:"log.level" default:"info" description:"logging level (debug, info, warn, error)"`
	Path    string   `long:"log.path" default:"stderr" description:"path to send logs (values: stderr, stdout, path in file system)"`
	Mode    FileMode `long:"log.filemode" default:"truncate" description:"logger file write mode (values: append, truncate, rotate)"`
	DevMode bool     `long:"log.devmode" description:"development mode (if enabled dpanic level logs will cause a panic)"`
}

// Open builds the logger the flags describe.
func (f *Flags) Open() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(f.Level)); err != nil {
		return nil, err
	}
	return New(Config{
		Path:    f.Path,
		Mode:    f.Mode,
		Level:   level,
		DevMode: f.DevMode,
	})
}
