package xlog

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewConfig returns the default logging config.
func NewConfig() Config {
	return Config{
		Level:        slog.LevelInfo,
		AddSource:    true,
		AttrReplacer: NormalizeSourceAttrReplacer(),
		StdFormat:    "text",
		StdWriter:    os.Stderr,
		Path:         "",
		MaxSize:      30,
	}
}

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum level to emit, LevelInfo when unset.
	Level slog.Level
	// AddSource enables the file and position of the logging call.
	AddSource bool
	// AttrReplacer rewrites attributes before output.
	AttrReplacer AttrReplacer

	// StdFormat is the standard output format, oneof ["text", "json"].
	StdFormat string
	// StdWriter is the standard output writer, os.Stderr when unset.
	StdWriter io.Writer

	// Path is the log file path. Empty disables file output.
	Path string
	// MaxSize is the max size of a single log file in MB before rotation.
	MaxSize int
	// MaxAge is the max days to retain rotated files. Zero keeps all.
	MaxAge int
	// MaxBackups is the max number of rotated files to retain. Zero keeps all.
	MaxBackups int
	// Compress enables compression of rotated files.
	Compress bool
}

// BuildHandler creates a new slog.Handler with config.
func (c *Config) BuildHandler() slog.Handler {
	opts := c.buildHandlerOptions()
	writer := c.StdWriter
	if writer == nil {
		writer = os.Stderr
	}
	if c.StdFormat == "json" {
		if fw := c.buildFileWriter(); fw != nil {
			writer = io.MultiWriter(writer, fw)
		}
		return NewLeveledHandlerCreator(JSONHandlerCreator)(writer, opts)
	}

	// console output format as "text"
	handlers := []slog.Handler{
		NewLeveledHandlerCreator(TextHandlerCreator)(writer, opts),
	}
	if fw := c.buildFileWriter(); fw != nil {
		handlers = append(handlers, NewLeveledHandlerCreator(JSONHandlerCreator)(fw, opts))
	}
	return MultiHandler(handlers...)
}

func (c *Config) buildFileWriter() io.Writer {
	if c.Path == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   c.Path,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

func (c *Config) buildHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   c.AddSource,
		Level:       c.Level,
		ReplaceAttr: c.AttrReplacer,
	}
}
