package rhachis

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes leveled, timestamped lines through charmbracelet/log.
type DefaultLogger struct {
	mu    sync.Mutex
	level log.Level
	log   *log.Logger
}

func NewDefaultLogger(prefix string, level string) *DefaultLogger {
	return NewLoggerTo(os.Stderr, prefix, level)
}

// NewLoggerTo is NewDefaultLogger with an explicit writer. Unknown levels
// fall back to info.
func NewLoggerTo(w io.Writer, prefix string, level string) *DefaultLogger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		Level:           lvl,
	})
	return &DefaultLogger{level: lvl, log: logger}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level <= log.DebugLevel
}

// SetDebug toggles debug output. Disabling it returns to info.
func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		l.level = log.DebugLevel
	} else if l.level <= log.DebugLevel {
		l.level = log.InfoLevel
	}
	l.log.SetLevel(l.level)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.log.Debugf(format, args...) }

func (l *DefaultLogger) Infof(format string, args ...any) { l.log.Infof(format, args...) }

func (l *DefaultLogger) Warnf(format string, args ...any) { l.log.Warnf(format, args...) }

func (l *DefaultLogger) Errorf(format string, args ...any) { l.log.Errorf(format, args...) }

// LoggingModule installs a DefaultLogger. Empty fields are taken from the
// [log] section of the app config.
type LoggingModule struct {
	Prefix string
	Level  string
	Output io.Writer
}

func (m LoggingModule) Install(app *App) error {
	prefix, level := m.Prefix, m.Level
	if prefix == "" {
		prefix = app.config.Log.Prefix
	}
	if level == "" {
		level = app.config.Log.Level
	}
	out := m.Output
	if out == nil {
		out = os.Stderr
	}
	app.logger = NewLoggerTo(out, prefix, level)
	return nil
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger never returns nil.
func (app *App) Logger() Logger {
	if app == nil || app.logger == nil {
		return NewNopLogger()
	}
	return app.logger
}
