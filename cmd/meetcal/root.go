package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/klabast/wb-services/meetcal/internal/app"
	"github.com/klabast/wb-services/meetcal/internal/commands"
	"github.com/klabast/wb-services/meetcal/internal/logger"
)

var (
	configPath string
	calFile    string
	logLevel   string
	logFile    string
	noBackup   bool
)

var rootCmd = &cobra.Command{
	Use:   "meetcal",
	Short: "Interactive meeting calendar",
	Long: `meetcal keeps a calendar of meetings, one per month/day/hour slot.
Commands are read line by line from standard input:

  A <description> <month> <day> <hour>   add a meeting
  D <month> <day> <hour>                 delete a meeting
  L                                      list meetings
  W <filename>                           save to file
  O <filename>                           load from file
  X <ics|csv|json> <filename>            export
  H                                      help
  Q                                      quit

Every successful command prints SUCCESS.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSession,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "meetcal %s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML config file (env "+app.EnvConfig+")")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of stderr")

	rootCmd.Flags().StringVarP(&calFile, "file", "f", "", "calendar file to load at start")
	rootCmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not keep <file>.backup when saving")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges the config file and environment with flags set on cmd
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// only flags given on the command line override config and environment
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "file":
			cfg.File = calFile
		case "no-backup":
			cfg.Backup = !noBackup
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-file":
			cfg.LogFile = logFile
		}
	})
	return cfg, nil
}

// setup builds the config and logger shared by all commands.
// The returned cleanup closes the log file.
func setup(cmd *cobra.Command) (*app.Config, *slog.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
		}
	}
	return cfg, log, cleanup, nil
}

func exportOptions(cfg *app.Config) (app.ExportOptions, error) {
	loc, err := cfg.Export.TimeLocation()
	if err != nil {
		return app.ExportOptions{}, err
	}
	return app.ExportOptions{
		Year:         cfg.Export.Year,
		Location:     loc,
		AlarmMinutes: cfg.Export.AlarmMinutes,
	}, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, log, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := exportOptions(cfg)
	if err != nil {
		return err
	}

	store := app.NewMeetingStore()
	storage := app.NewFileStorage(cfg.Backup, log)
	if cfg.File != "" {
		if _, err := storage.LoadIfExists(store, cfg.File); err != nil {
			return err
		}
	}

	console, err := commands.NewConsole(os.Stdin, os.Stdout, cfg.Prompt)
	if err != nil {
		return err
	}
	defer func() {
		if err := console.Close(); err != nil {
			log.Warn("failed to restore terminal", "error", err)
		}
	}()

	log.Debug("session started", "interactive", console.Interactive(), "meetings", store.Len())
	return commands.NewSession(console, store, storage, log, opts).Run(cmd.Context())
}
