// Package cli implements the docchat command line.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/document-chat/internal/config"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

var (
	cfgFile  string
	logLevel string
)

// newSession is replaced in tests to avoid calling a real completion API.
var newSession = services.NewSession

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat answers questions about uploaded PDF, Word and text documents
using an OpenAI-compatible chat completion API. Without documents, or for
questions that are not about them, it behaves as a general assistant.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads configuration and resolves the log level: --log-level,
// then log_level / LOG_LEVEL, then fallbackLevel, then info.
func loadConfig(fallbackLevel string) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	switch {
	case logLevel != "":
		cfg.LogLevel = logLevel
	case cfg.LogLevel != "":
	case fallbackLevel != "":
		cfg.LogLevel = fallbackLevel
	default:
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// writerLogger logs to w; interactive commands keep stdout for replies.
func writerLogger(w io.Writer) func(string) *utils.Logger {
	return func(level string) *utils.Logger {
		return utils.NewLoggerWithWriter(level, w)
	}
}

// setup loads configuration and builds a session logging through newLogger.
func setup(newLogger func(level string) *utils.Logger, fallbackLevel string) (*config.Config, services.ChatSession, *utils.Logger, error) {
	cfg, err := loadConfig(fallbackLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg.LogLevel)

	session, err := newSession(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, session, logger, nil
}
