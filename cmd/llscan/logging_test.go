package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinygo.org/x/linklayer/config"
)

func newLoggingCommand(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().BoolP("verbose", "v", false, "")
	_ = cmd.Flags().Parse(args)
	return cmd
}

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		args     []string
		want     logrus.Level
	}{
		{name: "session level without flags", logLevel: "warn", want: logrus.WarnLevel},
		{name: "verbose overrides session level", logLevel: "warn", args: []string{"--verbose"}, want: logrus.DebugLevel},
		{name: "log-level overrides verbose", logLevel: "debug", args: []string{"--verbose", "--log-level", "error"}, want: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.LogLevel = tt.logLevel
			cmd := newLoggingCommand(tt.args...)
			var stderr bytes.Buffer
			cmd.SetErr(&stderr)

			logger, err := configureLogger(cmd, "verbose", cfg.NewLogger())
			require.NoError(t, err)

			assert.Equal(t, tt.want, logger.GetLevel())
			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			require.True(t, ok)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)

			logger.Error("boom")
			assert.Contains(t, stderr.String(), "boom")
		})
	}
}

func TestConfigureLoggerInvalidLevel(t *testing.T) {
	cmd := newLoggingCommand("--log-level", "chatty")

	_, err := configureLogger(cmd, "verbose", config.DefaultConfig().NewLogger())

	assert.ErrorContains(t, err, "invalid log level")
}
