package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// SlogManager manages slog-based logging with an optional Graylog sink.
type SlogManager struct {
	logger *slog.Logger

	gelfWriter *gelf.Writer

	// contextProvider injects dynamic attributes into every record.
	contextProvider ContextProvider
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// seams for stdout capture in tests
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetContextProvider installs a provider whose attributes are attached to
// every record. Takes effect on the next Setup call.
func (m *SlogManager) SetContextProvider(provider ContextProvider) {
	m.contextProvider = provider
}

// Setup initializes the logging system. Records go to the given file, or to
// stdout when no file is provided. A non-empty graylogAddress additionally
// sends every record to a GELF endpoint; a failed Graylog connection is
// logged and otherwise ignored so a missing collector never blocks a run.
func (m *SlogManager) Setup(file io.Writer, level string, graylogAddress string) {
	lvl := parseLevel(level)

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}

	var gelfErr error
	if graylogAddress != "" {
		m.gelfWriter, gelfErr = gelf.NewWriter(graylogAddress)
		if gelfErr == nil {
			handlers = append(handlers, slog.NewJSONHandler(m.gelfWriter, handlerOpts))
		}
	}

	var root slog.Handler = NewMultiHandler(handlers...)
	if m.contextProvider != nil {
		root = NewContextHandler(root, m.contextProvider)
	}

	m.logger = slog.New(root)
	if gelfErr != nil {
		m.logger.Warn("Graylog connection failed, continuing without it",
			"address", graylogAddress, "error", gelfErr)
	}
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Close releases the Graylog connection if one was opened.
func (m *SlogManager) Close() error {
	if m.gelfWriter != nil {
		return m.gelfWriter.Close()
	}
	return nil
}

// WriteLog writes a log entry with the specified component, message and level.
func (m *SlogManager) WriteLog(component, message, level string) {
	if m.logger == nil {
		return
	}

	switch parseLevel(level) {
	case slog.LevelDebug:
		m.logger.Debug(message, "component", component)
	case slog.LevelWarn:
		m.logger.Warn(message, "component", component)
	case slog.LevelError:
		m.logger.Error(message, "component", component)
	default:
		m.logger.Info(message, "component", component)
	}
}
