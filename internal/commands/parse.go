package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Op is the single-letter command tag
type Op byte

// Commands understood by the session
const (
	OpAdd    Op = 'A'
	OpDelete Op = 'D'
	OpList   Op = 'L'
	OpSave   Op = 'W'
	OpLoad   Op = 'O'
	OpQuit   Op = 'Q'
	OpExport Op = 'X'
	OpHelp   Op = 'H'
)

// argument names per command, in input order
var arity = map[Op][]string{
	OpAdd:    {"description", "month", "day", "hour"},
	OpDelete: {"month", "day", "hour"},
	OpList:   nil,
	OpSave:   {"filename"},
	OpLoad:   {"filename"},
	OpQuit:   nil,
	OpExport: {"format", "filename"},
	OpHelp:   nil,
}

var numericArgs = map[string]bool{"month": true, "day": true, "hour": true}

// Command is one parsed input line
type Command struct {
	Op          Op
	Description string
	Month       int
	Day         int
	Hour        int
	Path        string
	Format      string
}

// UsageError is a malformed command line; its message is shown to the user as is
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

func usagef(format string, args ...any) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// Parse splits line on whitespace, checks the argument count of the command
// and converts the numeric fields
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, usagef("Invalid command")
	}

	tag := fields[0]
	r, size := utf8.DecodeRuneInString(tag)
	op := Op(tag[0])
	names, known := arity[op]
	if !known || size != len(tag) {
		return Command{}, usagef("Invalid command %c", r)
	}

	args := fields[1:]
	if len(args) != len(names) {
		return Command{}, arityError(op, len(names))
	}

	cmd := Command{Op: op}
	for i, name := range names {
		arg := args[i]
		if numericArgs[name] {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return Command{}, usagef("%s must be an integer, got %q.", capitalize(name), arg)
			}
			switch name {
			case "month":
				cmd.Month = n
			case "day":
				cmd.Day = n
			case "hour":
				cmd.Hour = n
			}
			continue
		}
		switch name {
		case "description":
			cmd.Description = arg
		case "filename":
			cmd.Path = arg
		case "format":
			cmd.Format = arg
		}
	}
	return cmd, nil
}

func arityError(op Op, n int) *UsageError {
	switch n {
	case 0:
		return usagef("%c takes no arguments.", op)
	case 1:
		return usagef("%c should be followed by exactly 1 argument.", op)
	default:
		return usagef("%c should be followed by exactly %d arguments.", op, n)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
