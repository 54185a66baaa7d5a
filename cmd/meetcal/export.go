package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/meetcal/internal/app"
)

var (
	exportFormat   string
	exportYear     int
	exportAlarm    int
	exportLocation string
)

var exportCmd = &cobra.Command{
	Use:   "export <calendar-file> [output-file]",
	Short: "Export a saved calendar as iCalendar, CSV or JSON",
	Long: `Export reads a calendar file written with the W command and converts it.
The calendar file carries no year, so meetings are placed in --year
(default: the current year, or export.year from the config).
Without an output file the export is written to standard output.`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", app.FormatICS, "export format: ics, csv or json")
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "year to place meetings in")
	exportCmd.Flags().IntVar(&exportAlarm, "alarm", 0, "ICS reminder in minutes before each meeting")
	exportCmd.Flags().StringVar(&exportLocation, "location", "", "time zone, e.g. Europe/Berlin")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if cmd.Flags().Changed("year") {
		cfg.Export.Year = exportYear
	}
	if cmd.Flags().Changed("alarm") {
		cfg.Export.AlarmMinutes = exportAlarm
	}
	if cmd.Flags().Changed("location") {
		cfg.Export.Location = exportLocation
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := exportOptions(cfg)
	if err != nil {
		return err
	}

	store := app.NewMeetingStore()
	storage := app.NewFileStorage(cfg.Backup, log)
	report, err := storage.Load(store, args[0])
	if err != nil {
		return err
	}
	log.Debug("export source loaded", "loaded", report.Loaded, "skipped", report.Skipped)

	if len(args) == 1 {
		return app.Export(cmd.OutOrStdout(), store.List(), exportFormat, opts)
	}

	if err := app.ExportFile(args[1], store.List(), exportFormat, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d meetings to %s\n", store.Len(), args[1])
	return nil
}
