package rangecache

// Fields carries structured log context. Common keys: "key" (storage key),
// "serie", "level", "err".
type Fields map[string]any

// Logger is the leveled logger the cache writes to; log/zap, log/logrus and
// log/slog hold adapters. Options.Logger nil means NopLogger.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
