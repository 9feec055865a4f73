package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/multishell/internal/comma"
	"github.com/danmuck/multishell/internal/task"
)

var (
	ErrDuplicateCommand = errors.New("shell: duplicate command")
	ErrEmptyCommand     = errors.New("shell: empty command name")
)

// CommandError is what a handler reports back to the session.
type CommandError int

const (
	Okay CommandError = iota
	IncorrectUsage
	UnhandledCommand
	OtherError
)

func (e CommandError) String() string {
	switch e {
	case Okay:
		return "okay"
	case IncorrectUsage:
		return "incorrect_usage"
	case UnhandledCommand:
		return "unhandled"
	case OtherError:
		return "other"
	default:
		return fmt.Sprintf("command_error(%d)", int(e))
	}
}

// CommandHandler runs a line command. args is positioned on the command name.
type CommandHandler interface {
	ShellCommand(sh *Shell, args *Args) CommandError
}

type CommandHandlerFunc func(sh *Shell, args *Args) CommandError

func (f CommandHandlerFunc) ShellCommand(sh *Shell, args *Args) CommandError {
	return f(sh, args)
}

// CommaHandler receives every decoded comma frame.
type CommaHandler interface {
	CommaCommand(sh *Shell, c comma.Command)
}

type CommaHandlerFunc func(sh *Shell, c comma.Command)

func (f CommaHandlerFunc) CommaCommand(sh *Shell, c comma.Command) {
	f(sh, c)
}

// Notifier receives session notifications: "end", "RSVP", "Connected" and
// "Disconnected".
type Notifier interface {
	ShellNotification(sh *Shell, message string)
}

type NotifierFunc func(sh *Shell, message string)

func (f NotifierFunc) ShellNotification(sh *Shell, message string) {
	f(sh, message)
}

// usageColumn is where descriptions start in help output.
const usageColumn = 8

// Command is one entry of the command table.
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     CommandHandler
	line        string
}

// PrintableCount is one line per command: usage, then the description from
// column 8.
func (c *Command) PrintableCount() int {
	return 1
}

func (c *Command) Printable(int) (string, int) {
	return c.line, 0
}

func helpLine(usage, description string) string {
	if description == "" {
		return usage
	}
	pad := usageColumn - len(usage)
	if pad < 1 {
		pad = 1
	}
	return usage + strings.Repeat(" ", pad) + description
}

// CommandList is the ordered, append-only command table. It starts with
// help and RSVP and renders as the help listing.
type CommandList struct {
	commands []*Command
	fallback CommandHandler
}

func NewCommandList() *CommandList {
	l := &CommandList{}
	builtins := CommandHandlerFunc(l.builtin)
	l.commands = append(l.commands,
		newCommand("help", "help", "List all commands and usage.", builtins),
		newCommand("RSVP", "RSVP", "Send acknowledgement (ASCII Code 6 = ACK).", builtins),
	)
	return l
}

func newCommand(name, usage, description string, h CommandHandler) *Command {
	return &Command{
		Name:        name,
		Usage:       usage,
		Description: description,
		Handler:     h,
		line:        helpLine(usage, description),
	}
}

// Add appends a command. A nil handler defers to the default handler.
func (l *CommandList) Add(name, usage, description string, h CommandHandler) (*Command, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyCommand
	}
	if l.Lookup(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	if usage == "" {
		usage = name
	}
	c := newCommand(name, usage, description, h)
	l.commands = append(l.commands, c)
	return c, nil
}

// Lookup is a linear search by exact name.
func (l *CommandList) Lookup(name string) *Command {
	for _, c := range l.commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (l *CommandList) lookupBytes(name []byte) *Command {
	for _, c := range l.commands {
		if c.Name == string(name) {
			return c
		}
	}
	return nil
}

// SetDefaultHandler handles commands registered without a handler.
func (l *CommandList) SetDefaultHandler(h CommandHandler) {
	l.fallback = h
}

func (l *CommandList) DefaultHandler() CommandHandler {
	return l.fallback
}

func (l *CommandList) builtin(sh *Shell, args *Args) CommandError {
	switch {
	case args.Equal("RSVP"):
		sh.RespondToRSVP()
		return Okay
	case args.Equal("help"):
		if !sh.List(l) {
			return OtherError
		}
		return Okay
	}
	return UnhandledCommand
}

func (l *CommandList) PrintableCount() int {
	return 0
}

func (l *CommandList) Printable(int) (string, int) {
	return "", 0
}

func (l *CommandList) Len() int {
	return len(l.commands)
}

func (l *CommandList) Item(i int) task.Printable {
	return l.commands[i]
}

func (l *CommandList) Selection() int {
	return -1
}
