package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"quiet wins over verbose", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit level wins", Config{LogLevel: "error", Verbose: true}, "error"},
		{"warning alias", Config{LogLevel: "warning"}, "warn"},
		{"invalid level", Config{LogLevel: "loud"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEBUG", "")
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestDetermineLogLevelDebugEnv(t *testing.T) {
	t.Setenv("DEBUG", "1")
	assert.Equal(t, "debug", determineLogLevel(&Config{}))
}
