package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klabast/wb-services/meetcal/internal/app"
)

// Reply printed after every successful command
const replySuccess = "SUCCESS"

var helpText = []string{
	"A <description> <month> <day> <hour>   add a meeting",
	"D <month> <day> <hour>                 delete a meeting",
	"L                                      list meetings",
	"W <filename>                           save to file",
	"O <filename>                           load from file",
	"X <ics|csv|json> <filename>            export",
	"H                                      this help",
	"Q                                      quit",
}

// Session is the command loop. It owns the meeting store and is the only
// code that talks to the user.
type Session struct {
	store   *app.MeetingStore
	storage *app.FileStorage
	console Console
	logger  *slog.Logger
	export  app.ExportOptions
	style   styler
}

// NewSession wires a session around store
func NewSession(console Console, store *app.MeetingStore, storage *app.FileStorage, logger *slog.Logger, export app.ExportOptions) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:   store,
		storage: storage,
		console: console,
		logger:  logger,
		export:  export,
		style:   styler{enabled: console.Interactive()},
	}
}

// Run reads and executes commands until Q, end of input or ctx is done
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.console.ReadLine()
		if errors.Is(err, io.EOF) {
			s.warnUnsaved()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		cmd, err := Parse(line)
		if err != nil {
			s.fail(err)
			continue
		}

		if quit := s.Execute(cmd); quit {
			return nil
		}
	}
}

// Execute runs one command and reports whether the session should end
func (s *Session) Execute(cmd Command) bool {
	s.logger.Debug("executing command", "op", string(cmd.Op))

	switch cmd.Op {
	case OpAdd:
		s.result(s.store.Add(cmd.Description, cmd.Month, cmd.Day, cmd.Hour))
	case OpDelete:
		s.result(s.store.Delete(cmd.Month, cmd.Day, cmd.Hour))
	case OpList:
		for m := range s.store.All() {
			s.println(m.String())
		}
		s.succeed()
	case OpSave:
		s.result(s.storage.Save(s.store, cmd.Path))
	case OpLoad:
		_, err := s.storage.Load(s.store, cmd.Path)
		s.result(err)
	case OpExport:
		err := app.ExportFile(cmd.Path, s.store.List(), cmd.Format, s.export)
		if err == nil {
			s.logger.Info("calendar exported", "path", cmd.Path, "format", cmd.Format)
		}
		s.result(err)
	case OpHelp:
		for _, line := range helpText {
			s.println(s.style.hint(line))
		}
		s.succeed()
	case OpQuit:
		s.warnUnsaved()
		s.succeed()
		return true
	}
	return false
}

func (s *Session) warnUnsaved() {
	if !s.store.Dirty() {
		return
	}
	s.logger.Warn("quitting with unsaved changes", "count", s.store.Len())
	if s.console.Interactive() {
		s.println(s.style.hint("Unsaved changes discarded."))
	}
}

func (s *Session) result(err error) {
	if err != nil {
		s.fail(err)
		return
	}
	s.succeed()
}

func (s *Session) succeed() {
	s.println(s.style.success(replySuccess))
}

func (s *Session) fail(err error) {
	s.logger.Debug("command failed", "error", err)
	s.println(s.style.error(Describe(err)))
}

func (s *Session) println(text string) {
	if _, err := fmt.Fprintln(s.console, text); err != nil {
		s.logger.Error("error writing reply", "error", err)
	}
}

// Describe turns an error from parsing or the store into the line shown to the user
func Describe(err error) string {
	var usageErr *UsageError
	var fieldErr *app.FieldError
	var slotErr *app.SlotError
	var ioErr *app.IOError

	switch {
	case errors.As(err, &usageErr):
		return usageErr.Msg
	case errors.As(err, &fieldErr):
		return fmt.Sprintf("%s cannot be negative or greater than %d.", capitalize(fieldErr.Field), fieldErr.Max)
	case errors.As(err, &slotErr) && errors.Is(err, app.ErrSlotOccupied):
		return fmt.Sprintf("The time slot %s is already allocated.", slotErr.Key)
	case errors.As(err, &slotErr) && errors.Is(err, app.ErrNotFound):
		return fmt.Sprintf("The time slot %s is not in the calendar.", slotErr.Key)
	case errors.Is(err, app.ErrUnknownFormat):
		return "Export format must be ics, csv or json."
	case errors.As(err, &ioErr):
		if ioErr.Op == "load" {
			return fmt.Sprintf("Cannot open file %s for reading.", ioErr.Path)
		}
		return fmt.Sprintf("Cannot open file %s for writing.", ioErr.Path)
	default:
		return "Error: " + err.Error()
	}
}
