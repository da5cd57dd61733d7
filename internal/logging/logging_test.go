package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":       zapcore.InfoLevel,
		"debug":  zapcore.DebugLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"Info":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		log, err := New(Config{Level: "warn", Development: dev})
		if err != nil {
			t.Fatalf("New(dev=%v): %v", dev, err)
		}
		if log.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("dev=%v: info enabled at warn level", dev)
		}
		if !log.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("dev=%v: error disabled at warn level", dev)
		}
	}

	if _, err := New(Config{Level: "nope"}); err == nil {
		t.Error("expected error for bad level")
	}
}
