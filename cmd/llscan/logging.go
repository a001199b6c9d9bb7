package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// configureLogger applies the command's logging flags to logger and points
// it at the command's error output. --log-level takes precedence over
// --verbose, which takes precedence over the level logger already has.
func configureLogger(cmd *cobra.Command, verboseFlagName string, logger *logrus.Logger) (*logrus.Logger, error) {
	logLevel := logger.GetLevel()

	logLevelStr, _ := cmd.Flags().GetString("log-level")
	if logLevelStr != "" {
		switch logLevelStr {
		case "debug":
			logLevel = logrus.DebugLevel
		case "info":
			logLevel = logrus.InfoLevel
		case "warn":
			logLevel = logrus.WarnLevel
		case "error":
			logLevel = logrus.ErrorLevel
		default:
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", logLevelStr)
		}
	} else if verboseFlagName != "" {
		if verbose, _ := cmd.Flags().GetBool(verboseFlagName); verbose {
			logLevel = logrus.DebugLevel
		}
	}

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logLevel)

	return logger, nil
}

// configureColor applies the --color flag to all color output.
func configureColor(cmd *cobra.Command) error {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "", "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid color mode: %s (must be auto, always, or never)", mode)
	}
	return nil
}
