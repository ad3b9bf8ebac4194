package tagcache

// Fields carries structured log context as a plain map.
type Fields map[string]any

// Logger is the minimal leveled surface the engine logs through. Adapters
// for zap, slog and logrus live under log/. Leaving Options.Logger nil
// silences the engine entirely.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger drops every message.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
