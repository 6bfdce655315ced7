package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/nc2ldap/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.InfoLevel))

	logging.Default().Debug().Msg("debug message")
	logging.Default().Info().Msg("info message")
	logging.Default().Warn().Msg("warning message")

	assert.NotContains(t, buf.String(), "debug message")
	assert.Contains(t, buf.String(), "info message")
	assert.Contains(t, buf.String(), "warning message")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithOperation(ctx, "sync")
	ctx = logging.WithContact(ctx, "Joey Doe")
	ctx = logging.WithDN(ctx, "cn=Joey Doe,ou=phonebook")

	logging.FromContext(ctx).Info().Msg("added")

	assert.True(t, testLogger.Contains(`"operation":"sync"`))
	assert.True(t, testLogger.Contains(`"contact":"Joey Doe"`))
	assert.True(t, testLogger.Contains(`"dn":"cn=Joey Doe,ou=phonebook"`))
	assert.Equal(t, 1, testLogger.CountLevel(zerolog.InfoLevel))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is tolerated on purpose
	assert.Same(t, logging.Default(), logging.FromContext(nil))
	assert.Same(t, logging.Default(), logging.FromContext(logging.WithLogger(context.Background(), nil)))
}

func TestEnsureLogger(t *testing.T) {
	first := logging.NewNopLogger()
	second := logging.NewNopLogger()

	ctx := logging.EnsureLogger(context.Background(), first)
	assert.Same(t, first, logging.FromContext(ctx))

	ctx = logging.EnsureLogger(ctx, second)
	assert.Same(t, first, logging.FromContext(ctx), "an attached logger is kept")
}

func TestWithFieldAndError(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	ctx = logging.WithField(ctx, "added", 2)
	ctx = logging.WithField(ctx, "dry_run", true)
	ctx = logging.WithError(ctx, assert.AnError)
	assert.Equal(t, ctx, logging.WithError(ctx, nil))

	logging.FromContext(ctx).Warn().Msg("partial")

	assert.True(t, testLogger.Contains(`"added":2`))
	assert.True(t, testLogger.Contains(`"dry_run":true`))
	assert.True(t, testLogger.Contains(`"error":"assert.AnError general error for testing"`))
	assert.Equal(t, 1, testLogger.CountLevel(zerolog.WarnLevel))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestNewLoggerFromConfig(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

	path := filepath.Join(t.TempDir(), "nc2ldap.log")
	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
		Fields: map[string]any{"service": "nc2ldap"},
	})

	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
	assert.Contains(t, string(data), `"service":"nc2ldap"`)
}

func TestCaptureLoggingForTest(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)
	logging.Default().Error().Str("dn", "cn=broken").Msg("skipping record")

	assert.Equal(t, 1, captured.Count())
	assert.True(t, captured.Contains("cn=broken"))

	captured.Clear()
	assert.Empty(t, captured.Lines())
}

func TestConfigure(t *testing.T) {
	original := *logging.Default()
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		logging.SetDefault(original)
		zerolog.SetGlobalLevel(oldLevel)
	})

	path := filepath.Join(t.TempDir(), "nc2ldap.log")
	logging.Configure(&logging.Config{Level: "error", Format: "json", Output: path})

	logging.Default().Warn().Msg("hidden")
	logging.Default().Error().Msg("visible")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNopLogger()
	require.NotNil(t, logger)
	logger.Error().Msg("goes nowhere")
}
