package log

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation controls how the log file is rolled over.
type Rotation struct {
	MaxSize    int  // megabytes
	MaxBackups int  // files kept
	MaxAge     int  // days
	Compress   bool // gzip rolled files
}

// LoggerConfigurator is a data structure used to configure a CoreLogger.
type LoggerConfigurator struct {
	Writer            io.Writer
	Level             string
	TimeFormatTempl   string
	CallerFormatTempl string
}

// NewLogConfigurator creates a LoggerConfigurator writing to a rotating file. The terminal
// belongs to the editor, so an empty file name discards all output.
func NewLogConfigurator(level string, file string, rotation Rotation) *LoggerConfigurator {
	config := &LoggerConfigurator{
		Writer:          io.Discard,
		Level:           level,
		TimeFormatTempl: time.RFC3339 + " ",
	}
	if file != "" {
		config.Writer = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    rotation.MaxSize,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAge,
			Compress:   rotation.Compress,
		}
	}
	return config
}

// Output returns the log writer instance.
func (config *LoggerConfigurator) Output() io.Writer {
	return config.Writer
}

// LogLevel returns the log level.
func (config *LoggerConfigurator) LogLevel() string {
	return config.Level
}

// TimestampFormat returns the log timestamp format.
func (config *LoggerConfigurator) TimestampFormat() string {
	return config.TimeFormatTempl
}

// CallerFormat returns the log caller format template.
func (config *LoggerConfigurator) CallerFormat() string {
	return config.CallerFormatTempl
}

// Close releases the log file, if one was opened.
func (config *LoggerConfigurator) Close() error {
	if c, ok := config.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Level is the logging level.
type Level int

const (
	// DEBUG level for developer information
	DEBUG Level = iota - 1
	// INFO level for state and status
	INFO
	// WARN level for possible issues
	WARN
	// ERROR level for errors
	ERROR
)

// String returns an upper case string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// PaddedString returns a five character upper case representation of the log level
func (l Level) PaddedString() string {
	switch l {
	case INFO, WARN:
		return l.String() + " "
	case DEBUG, ERROR:
		return l.String()
	default:
		return fmt.Sprintf("Level(%d)", l)
	}
}

// UnmarshalText converts a level name to a Level. An empty name is INFO.
func (l *Level) UnmarshalText(text []byte) error {
	switch strings.TrimSpace(string(bytes.ToUpper(text))) {
	case "DEBUG":
		*l = DEBUG
	case "INFO", "":
		*l = INFO
	case "WARN":
		*l = WARN
	case "ERROR":
		*l = ERROR
	default:
		return fmt.Errorf("unknown log level %q", text)
	}
	return nil
}

// Configurator has methods to fetch the logger configuration values.
type Configurator interface {
	LogLevel() string
	Output() io.Writer
	TimestampFormat() string
	CallerFormat() string
}

// CoreLogger implements logging
type CoreLogger struct {
	mu              sync.Mutex
	level           Level
	writer          io.Writer
	timestampFormat string
	callerFormat    string
}

// New creates a new logger using default settings: INFO level, timestamp and file:line
// reporting, output discarded until Setup or SetOutput provide a writer.
func New() *CoreLogger {
	return &CoreLogger{
		level:           INFO,
		writer:          io.Discard,
		timestampFormat: "01-02 15:04:05.000 ",
		callerFormat:    " %20.20s:%03d - ",
	}
}

// Setup configures the logger. An unknown level leaves the current level in place and is
// returned as an error.
func (c *CoreLogger) Setup(config Configurator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if writer := config.Output(); writer != nil {
		c.writer = writer
	}
	if format := config.TimestampFormat(); format != "" {
		c.timestampFormat = format
	}
	if format := config.CallerFormat(); format != "" {
		c.callerFormat = format
	}

	level := c.level
	if err := level.UnmarshalText([]byte(config.LogLevel())); err != nil {
		return err
	}
	c.level = level
	return nil
}

// Perform the actual logging routine
func (c *CoreLogger) log(level Level, format string, args []interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if level < c.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}

	var msg string
	if format == "" {
		msg = fmt.Sprint(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().Format(c.timestampFormat))
	b.WriteString(level.PaddedString())
	_, _ = fmt.Fprintf(&b, c.callerFormat, file, line)
	b.WriteString(msg)
	b.WriteString("\n")
	_, _ = c.writer.Write([]byte(b.String()))
}

// SetOutput sets the io.Writer to which all future log messages will be written.
func (c *CoreLogger) SetOutput(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer = w
}

// SetLogLevel sets a filter on the minimum level of messages that will be logged.
func (c *CoreLogger) SetLogLevel(level Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

// GetLogLevel gets the current log level.
func (c *CoreLogger) GetLogLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Debug logs a message at DEBUG level.
func (c *CoreLogger) Debug(args ...interface{}) {
	c.log(DEBUG, "", args)
}

// Debugf logs a formatted message at DEBUG level.
func (c *CoreLogger) Debugf(format string, args ...interface{}) {
	c.log(DEBUG, format, args)
}

// Info logs a message at INFO level.
func (c *CoreLogger) Info(args ...interface{}) {
	c.log(INFO, "", args)
}

// Infof logs a formatted message at INFO level.
func (c *CoreLogger) Infof(format string, args ...interface{}) {
	c.log(INFO, format, args)
}

// Warn logs a message at WARN level.
func (c *CoreLogger) Warn(args ...interface{}) {
	c.log(WARN, "", args)
}

// Warnf logs a formatted message at WARN level.
func (c *CoreLogger) Warnf(format string, args ...interface{}) {
	c.log(WARN, format, args)
}

// Error logs a message at ERROR level.
func (c *CoreLogger) Error(args ...interface{}) {
	c.log(ERROR, "", args)
}

// Errorf logs a formatted message at ERROR level.
func (c *CoreLogger) Errorf(format string, args ...interface{}) {
	c.log(ERROR, format, args)
}
