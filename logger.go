package settings

import "time"

// LogEvent describes one resolver operation for logging.
type LogEvent struct {
	Operation string
	Option    string
	Key       string
	Mode      Mode
	Message   string
	Duration  time.Duration
	Err       error
}

// Logger records resolver events.
type Logger interface {
	LogSettings(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogSettings implements Logger.
func (f LoggerFunc) LogSettings(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogSettings(LogEvent) {}

// WithLogger attaches a logger to the resolver.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
