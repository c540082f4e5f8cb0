package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2postman/internal/logging"
)

// Execute runs the swagger2postman CLI.
func Execute() error {
	return execute(newRootCmd())
}

// execute runs cmd and then releases its log output, whether or not the
// command failed.
func execute(cmd *cobra.Command, logs *logSession) error {
	err := cmd.Execute()
	if closeErr := logs.Close(); err == nil {
		err = closeErr
	}
	return err
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
// Callers that set --log-file should use Execute so the file is closed.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

// logSession owns the log file opened for one run.
type logSession struct {
	closer func() error
}

func (s *logSession) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	closer := s.closer
	s.closer = nil
	return closer()
}

func newRootCmd() (*cobra.Command, *logSession) {
	logs := &logSession{}

	cmd := &cobra.Command{
		Use:           "swagger2postman",
		Short:         "Convert Swagger documents into Postman collections",
		Long:          "swagger2postman fetches a Swagger v2 document and writes a Postman v2.1 collection with placeholder request bodies and example responses.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			levelName, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			logFile, err := cmd.Flags().GetString("log-file")
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(levelName)
			if err != nil {
				return newUsageError(err.Error())
			}
			if err := logs.Close(); err != nil {
				return err
			}
			logs.closer, err = logging.Init(logging.Config{
				Verbose: verbose,
				Level:   level,
				File:    logFile,
				Stderr:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return newUsageError(err.Error())
			}
			slog.Debug("logging initialised", "level", level.String(), "command", cmd.Name())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	for _, sub := range []*cobra.Command{newConvertCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd, logs
}

func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
