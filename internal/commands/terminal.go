package commands

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Console is where the session reads commands and writes replies
type Console interface {
	io.Writer
	// ReadLine returns the next line without its terminator, or io.EOF
	ReadLine() (string, error)
	// Interactive reports whether a person is typing (enables prompt and colors)
	Interactive() bool
	Close() error
}

// NewConsole returns a line-editing terminal console when both in and out are
// terminals and a plain line reader otherwise
func NewConsole(in, out *os.File, prompt string) (Console, error) {
	inFd, outFd := int(in.Fd()), int(out.Fd())
	if !term.IsTerminal(inFd) || !term.IsTerminal(outFd) {
		return NewPlainConsole(in, out), nil
	}

	oldState, err := term.MakeRaw(inFd)
	if err != nil {
		// Fall back to plain line input if raw mode is unavailable
		return NewPlainConsole(in, out), nil
	}

	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	return &terminalConsole{
		Terminal: term.NewTerminal(rw, prompt),
		fd:       inFd,
		oldState: oldState,
	}, nil
}

type terminalConsole struct {
	*term.Terminal
	fd       int
	oldState *term.State
}

func (c *terminalConsole) Interactive() bool { return true }

func (c *terminalConsole) Close() error {
	return term.Restore(c.fd, c.oldState)
}

type plainConsole struct {
	io.Writer
	r *bufio.Reader
}

// NewPlainConsole reads lines from r and writes replies to w without prompts
func NewPlainConsole(r io.Reader, w io.Writer) Console {
	return &plainConsole{Writer: w, r: bufio.NewReader(r)}
}

func (c *plainConsole) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (c *plainConsole) Interactive() bool { return false }

func (c *plainConsole) Close() error { return nil }

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// styler colors replies for people and leaves them plain for scripts
type styler struct {
	enabled bool
}

func (s styler) success(text string) string {
	if !s.enabled {
		return text
	}
	return successStyle.Render(text)
}

func (s styler) error(text string) string {
	if !s.enabled {
		return text
	}
	return errorStyle.Render(text)
}

func (s styler) hint(text string) string {
	if !s.enabled {
		return text
	}
	return hintStyle.Render(text)
}
