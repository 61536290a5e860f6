package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: "info", want: zapcore.InfoLevel},
		{input: "warn", want: zapcore.WarnLevel},
		{input: "error", want: zapcore.ErrorLevel},
		{input: "verbose", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	if GetZapLogger() == nil {
		t.Fatal("GetZapLogger() before Init should not be nil")
	}

	if err := Init("debug", "json"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !GetZapLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	if err := Init("loud", "text"); err == nil {
		t.Error("Init() with invalid level should fail")
	}
}
