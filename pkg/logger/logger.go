// Package logger provides the shared logger for optics-runner, configured
// from the console/file_log/json_log settings of the loaded config.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.Mutex
	log    = newDefault()
	closer []io.Closer
)

// Options mirrors the logging keys of the runner configuration.
type Options struct {
	Console  bool
	FileLog  bool
	LogPath  string
	JSONLog  bool
	JSONPath string
	Level    string
}

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Setup reconfigures the global logger from options. It may be called again
// after a config reload; previously opened log files are closed.
func Setup(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	for _, c := range closer {
		c.Close()
	}
	closer = nil

	l := newDefault()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	var writers []io.Writer
	if opts.Console {
		writers = append(writers, os.Stderr)
	}
	if opts.FileLog && opts.LogPath != "" {
		f, err := openLogFile(opts.LogPath)
		if err != nil {
			return err
		}
		closer = append(closer, f)
		writers = append(writers, f)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}
	l.SetOutput(io.MultiWriter(writers...))

	if opts.JSONLog && opts.JSONPath != "" {
		f, err := openLogFile(opts.JSONPath)
		if err != nil {
			return err
		}
		closer = append(closer, f)
		l.AddHook(&jsonFileHook{
			writer:    f,
			formatter: &logrus.JSONFormatter{},
		})
	}

	log = l
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //#nosec G304 -- user-configured log path
}

// jsonFileHook mirrors every entry as JSON into a separate file, regardless
// of the main output's formatter.
type jsonFileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *jsonFileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *jsonFileHook) Fire(entry *logrus.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(data)
	return err
}

// Close closes any open log files.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, c := range closer {
		c.Close()
	}
	closer = nil
}

// WithField returns an entry with a single structured field attached.
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

// Writer returns the underlying writer for use by providers.
func Writer() io.Writer {
	return log.Out
}
