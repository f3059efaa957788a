package logbridge

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/portolan-hq/tilegate/pkg/engine"
)

// Sink is the leveled logger records are forwarded to. Both *slog.Logger
// and the telemetry logging wrapper satisfy it.
type Sink interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configure New.
type Options struct {
	// Sink receives the forwarded records. Required.
	Sink Sink

	// Demote lists channels whose info records emit at debug. nil means
	// DefaultDemoted; an empty slice disables demotion.
	Demote []string
}

// DefaultDemoted returns the channels that are demoted when Options
// leaves Demote nil. Both are routine chatter during every rebuild.
func DefaultDemoted() []string {
	return []string{engine.ChannelConfig, engine.ChannelSourceRequest}
}

// Bridge adapts engine log records to a structured sink. Severity maps
// onto the sink's three working levels: error and fatal emit at error,
// warn and info at info, debug at debug. Demotion applies to info
// records on the configured channels only. Fatal records are captured
// for FatalError before emission, untouched by demotion.
type Bridge struct {
	sink    Sink
	demoted map[string]bool

	mu       sync.Mutex
	fatal    string
	hasFatal bool
}

var _ engine.Logger = (*Bridge)(nil)

// New builds a bridge around sink.
func New(opts Options) *Bridge {
	demote := opts.Demote
	if demote == nil {
		demote = DefaultDemoted()
	}
	demoted := make(map[string]bool, len(demote))
	for _, ch := range demote {
		demoted[ch] = true
	}
	return &Bridge{sink: opts.Sink, demoted: demoted}
}

// Log forwards one engine record. Records carrying an error emit the
// whole cause chain, one line per cause, at error severity.
func (b *Bridge) Log(rec engine.Record) {
	if rec.Err != nil {
		lines := chainLines(rec)
		for _, line := range lines {
			b.sink.Error(line, "channel", rec.Channel)
		}
		if rec.Level == engine.LevelFatal {
			b.capture(strings.Join(lines, "\n"))
		}
		return
	}

	msg := formatMessage(rec)
	if rec.Level == engine.LevelFatal {
		b.capture(msg)
	}
	switch {
	case rec.Level >= engine.LevelError:
		b.sink.Error(msg, "channel", rec.Channel)
	case rec.Level == engine.LevelInfo && b.demoted[rec.Channel]:
		b.sink.Debug(msg, "channel", rec.Channel)
	case rec.Level >= engine.LevelInfo:
		b.sink.Info(msg, "channel", rec.Channel)
	default:
		b.sink.Debug(msg, "channel", rec.Channel)
	}
}

// FatalError returns the text of the last captured fatal record. reset
// clears the slot.
func (b *Bridge) FatalError(reset bool) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasFatal {
		return "", false
	}
	msg := b.fatal
	if reset {
		b.fatal = ""
		b.hasFatal = false
	}
	return msg, true
}

func (b *Bridge) capture(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fatal = msg
	b.hasFatal = true
}

// formatMessage renders the record's printf message.
func formatMessage(rec engine.Record) string {
	if rec.Message == "" {
		return ""
	}
	if len(rec.Args) == 0 {
		return rec.Message
	}
	return fmt.Sprintf(rec.Message, rec.Args...)
}

// chainLines renders an error record as one line per cause.
func chainLines(rec engine.Record) []string {
	lines := make([]string, 0, 4)
	if msg := formatMessage(rec); msg != "" {
		lines = append(lines, msg+": "+rec.Err.Error())
	} else {
		lines = append(lines, rec.Err.Error())
	}
	for cause := errors.Unwrap(rec.Err); cause != nil; cause = errors.Unwrap(cause) {
		lines = append(lines, "caused by: "+cause.Error())
	}
	return lines
}
