package logger

type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

type noop struct{}

func (noop) Debug(string, map[string]any) {}
func (noop) Info(string, map[string]any)  {}
func (noop) Warn(string, map[string]any)  {}
func (noop) Error(string, map[string]any) {}

// Noop returns a logger that discards everything.
func Noop() Logger { return noop{} }
