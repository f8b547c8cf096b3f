package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewProductionLogger_Level(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		want  zapcore.Level
	}{
		{name: "info by default", debug: false, want: zapcore.InfoLevel},
		{name: "debug mode", debug: true, want: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewProductionLogger("test", tt.debug)
			if err != nil {
				t.Fatalf("NewProductionLogger() error = %v", err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Errorf("Expected level %s to be enabled", tt.want)
			}
			if tt.want == zapcore.InfoLevel && l.Core().Enabled(zapcore.DebugLevel) {
				t.Error("Expected debug level to be disabled")
			}
		})
	}
}

func TestSync_NilLogger(t *testing.T) {
	if err := Sync(nil); err != nil {
		t.Errorf("Sync(nil) should not error, got: %v", err)
	}
}
