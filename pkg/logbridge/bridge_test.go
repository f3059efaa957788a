package logbridge

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/portolan-hq/tilegate/pkg/engine"
)

type sinkRecord struct {
	level string
	msg   string
	args  []any
}

type recordingSink struct {
	mu      sync.Mutex
	records []sinkRecord
}

func (s *recordingSink) add(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, sinkRecord{level: level, msg: msg, args: args})
}

func (s *recordingSink) Debug(msg string, args ...any) { s.add("debug", msg, args) }
func (s *recordingSink) Info(msg string, args ...any)  { s.add("info", msg, args) }
func (s *recordingSink) Warn(msg string, args ...any)  { s.add("warn", msg, args) }
func (s *recordingSink) Error(msg string, args ...any) { s.add("error", msg, args) }

func (s *recordingSink) last(t *testing.T) sinkRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		t.Fatal("expected at least one record")
	}
	return s.records[len(s.records)-1]
}

func TestSeverityMapping(t *testing.T) {
	cases := []struct {
		name    string
		level   engine.Level
		channel string
		want    string
	}{
		{"debug stays debug", engine.LevelDebug, engine.ChannelRequest, "debug"},
		{"info passes through", engine.LevelInfo, engine.ChannelRequest, "info"},
		{"warn emits at the generic level", engine.LevelWarn, engine.ChannelRequest, "info"},
		{"error emits at error", engine.LevelError, engine.ChannelRequest, "error"},
		{"noisy channel info demoted", engine.LevelInfo, engine.ChannelConfig, "debug"},
		{"noisy channel source demoted", engine.LevelInfo, engine.ChannelSourceRequest, "debug"},
		{"noisy channel error kept", engine.LevelError, engine.ChannelConfig, "error"},
		{"noisy channel warn kept", engine.LevelWarn, engine.ChannelConfig, "info"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			bridge := New(Options{Sink: sink})
			bridge.Log(engine.Record{Channel: tc.channel, Level: tc.level, Message: "hello"})
			rec := sink.last(t)
			if rec.level != tc.want {
				t.Errorf("expected %s emission, got %s", tc.want, rec.level)
			}
			if rec.msg != "hello" {
				t.Errorf("expected message %q, got %q", "hello", rec.msg)
			}
		})
	}
}

func TestMessageFormatting(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink})
	bridge.Log(engine.Record{
		Channel: engine.ChannelRequest,
		Level:   engine.LevelInfo,
		Message: "GET %s -> %d",
		Args:    []any{"/chart/1/0/0.png", 200},
	})
	if got := sink.last(t).msg; got != "GET /chart/1/0/0.png -> 200" {
		t.Errorf("unexpected formatted message %q", got)
	}
}

func TestChannelAttached(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink})
	bridge.Log(engine.Record{Channel: engine.ChannelCache, Level: engine.LevelInfo, Message: "x"})
	args := sink.last(t).args
	if len(args) != 2 || args[0] != "channel" || args[1] != engine.ChannelCache {
		t.Errorf("expected channel attribute, got %v", args)
	}
}

func TestErrorChainEmitsOneLinePerCause(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink})
	err := fmt.Errorf("open cache: %w", fmt.Errorf("acquire lock: %w", io.ErrClosedPipe))
	bridge.Log(engine.Record{Channel: engine.ChannelCache, Level: engine.LevelError, Err: err})

	if len(sink.records) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(sink.records))
	}
	for i, rec := range sink.records {
		if rec.level != "error" {
			t.Errorf("line %d: expected error severity, got %s", i, rec.level)
		}
	}
	if sink.records[0].msg != err.Error() {
		t.Errorf("expected first line %q, got %q", err.Error(), sink.records[0].msg)
	}
	if !strings.HasPrefix(sink.records[1].msg, "caused by: ") {
		t.Errorf("expected cause prefix, got %q", sink.records[1].msg)
	}
	if msg, ok := bridge.FatalError(false); ok {
		t.Errorf("expected no fatal capture, got %q", msg)
	}
}

func TestErrorRecordWithMessage(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink})
	bridge.Log(engine.Record{
		Channel: engine.ChannelCache,
		Level:   engine.LevelError,
		Message: "tile %d/%d/%d",
		Args:    []any{3, 2, 5},
		Err:     io.ErrUnexpectedEOF,
	})
	want := "tile 3/2/5: " + io.ErrUnexpectedEOF.Error()
	if got := sink.records[0].msg; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFatalCaptured(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink})
	bridge.Log(engine.Record{
		Channel: engine.ChannelConfig,
		Level:   engine.LevelFatal,
		Message: "no usable layer %q",
		Args:    []any{"osm"},
	})

	if got := sink.last(t).level; got != "error" {
		t.Errorf("expected fatal to emit at error, got %s", got)
	}
	msg, ok := bridge.FatalError(false)
	if !ok || msg != `no usable layer "osm"` {
		t.Errorf("expected captured fatal, got %q (ok=%v)", msg, ok)
	}

	msg, ok = bridge.FatalError(true)
	if !ok || msg == "" {
		t.Fatalf("expected capture before reset, got %q (ok=%v)", msg, ok)
	}
	if msg, ok = bridge.FatalError(false); ok {
		t.Errorf("expected slot cleared after reset, got %q", msg)
	}
}

func TestFatalErrorChainCaptured(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink})
	err := fmt.Errorf("build: %w", io.ErrClosedPipe)
	bridge.Log(engine.Record{Channel: engine.ChannelConfig, Level: engine.LevelFatal, Err: err})

	msg, ok := bridge.FatalError(true)
	if !ok {
		t.Fatal("expected a captured fatal")
	}
	if !strings.Contains(msg, "build: ") || !strings.Contains(msg, "caused by: ") {
		t.Errorf("expected the full chain in the capture, got %q", msg)
	}
}

func TestCustomDemotionList(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink, Demote: []string{engine.ChannelRequest}})

	bridge.Log(engine.Record{Channel: engine.ChannelConfig, Level: engine.LevelInfo, Message: "a"})
	if got := sink.last(t).level; got != "info" {
		t.Errorf("expected unlisted channel to stay info, got %s", got)
	}
	bridge.Log(engine.Record{Channel: engine.ChannelRequest, Level: engine.LevelInfo, Message: "b"})
	if got := sink.last(t).level; got != "debug" {
		t.Errorf("expected listed channel demoted, got %s", got)
	}
}

func TestEmptyDemotionListDisables(t *testing.T) {
	sink := &recordingSink{}
	bridge := New(Options{Sink: sink, Demote: []string{}})
	bridge.Log(engine.Record{Channel: engine.ChannelConfig, Level: engine.LevelInfo, Message: "a"})
	if got := sink.last(t).level; got != "info" {
		t.Errorf("expected no demotion, got %s", got)
	}
}
