package engine

// Level classifies engine log records.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Engine log channels. The config and source.request channels are chatty by
// design; sinks usually demote their informational records.
const (
	ChannelConfig        = "engine.config"
	ChannelRequest       = "engine.request"
	ChannelCache         = "engine.cache"
	ChannelSourceRequest = "engine.source.request"
)

// Record is one log event emitted by the engine.
type Record struct {
	// Channel names the emitting subsystem.
	Channel string

	// Level is the record's severity.
	Level Level

	// Message is a printf-style format string when Args is non-empty.
	Message string

	// Args are the positional arguments for Message.
	Args []any

	// Err carries an error object for failure records. Sinks format the
	// full chain.
	Err error
}

// Logger receives engine log records. Implementations are injected at
// construction; the engine never touches process-global logging state.
type Logger interface {
	Log(Record)
}

type nopLogger struct{}

func (nopLogger) Log(Record) {}

// NopLogger returns a logger that discards every record.
func NopLogger() Logger {
	return nopLogger{}
}

// logf emits a formatted record.
func (e *Engine) logf(channel string, level Level, msg string, args ...any) {
	e.logger.Log(Record{Channel: channel, Level: level, Message: msg, Args: args})
}

// logErr emits an error record carrying err.
func (e *Engine) logErr(channel string, level Level, err error) {
	e.logger.Log(Record{Channel: channel, Level: level, Err: err})
}
