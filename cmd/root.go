package cmd

import (
	"context"
	"os"

	"github.com/djcass44/all-your-feeds/cmd/sources"
	"github.com/djcass44/go-utils/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var command = &cobra.Command{
	Use:          "ayf",
	Short:        "publish packages to feeds",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetInt(flagLogLevel)
		console, _ := cmd.Flags().GetBool(flagLogConsole)

		cmd.SetContext(newLoggerContext(cmd, logLevel, console))
	},
}

const (
	flagLogLevel   = "v"
	flagLogConsole = "log-console"
)

func init() {
	command.PersistentFlags().Int(flagLogLevel, 0, "log level. Higher is more")
	command.PersistentFlags().Bool(flagLogConsole, false, "write human-readable logs instead of json")
	command.AddCommand(publishCmd, sources.Command)
}

// newLoggerContext attaches a zap-backed logger to the command context.
// Console output is intended for build logs that are read by people.
func newLoggerContext(cmd *cobra.Command, logLevel int, console bool) context.Context {
	zc := zap.NewProductionConfig()
	if console {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(logLevel * -1))

	_, ctx := logging.NewZap(cmd.Context(), zc)
	return ctx
}

func Execute(version string) {
	command.Version = version
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
