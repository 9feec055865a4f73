package console

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/danmuck/multishell/internal/comma"
	"github.com/danmuck/multishell/internal/monitor"
	"github.com/danmuck/multishell/internal/observability"
	"github.com/danmuck/multishell/internal/shell"
	"github.com/danmuck/multishell/internal/stream"
	"github.com/danmuck/multishell/internal/task"
	"github.com/danmuck/multishell/internal/timer"
	"github.com/rs/zerolog"
)

// LocalShell runs one shell session on a local backend, normally the
// terminal. Typing 0x04 (Ctrl-D) ends Run.
type LocalShell struct {
	timer.Base

	sh      *shell.Shell
	repo    *task.Repository
	plot    *shell.Plot
	timer   *timer.Timer
	publish func(monitor.Snapshot)
	log     zerolog.Logger
}

// NewLocalShell builds the session over backend. eol is the terminal's line
// ending; empty keeps "\n".
func NewLocalShell(backend stream.Backend, repo *task.Repository, queueCapacity int, eol string) (*LocalShell, error) {
	l := &LocalShell{
		repo: repo,
		plot: shell.NewPlot(),
		log:  observability.Component("local"),
	}
	st := stream.New(backend, 'v', 'T')
	st.SetEOL(eol)

	commands := shell.NewCommandList()
	commands.SetDefaultHandler(l)
	if err := register(commands); err != nil {
		return nil, fmt.Errorf("local shell: %w", err)
	}

	l.sh = shell.New('0', st, repo, commands, queueCapacity)
	l.sh.SetNotifier(l)
	l.sh.SetCommaHandler(l)
	l.timer = timer.New(l, timer.DefaultPeriod)
	return l, nil
}

var localCommands = []struct {
	name, usage, description string
}{
	{"plot", "plot <option>", "Test plotting capability; <option> = [0],1,2,..."},
	{"eh", "eh", "Unimplemented command"},
	{"status", "status", "Show free task slots."},
}

// register adds the local commands; they all defer to the default handler.
func register(commands *shell.CommandList) error {
	for _, c := range localCommands {
		if _, err := commands.Add(c.name, c.usage, c.description, nil); err != nil {
			return err
		}
	}
	return nil
}

func (l *LocalShell) Shell() *shell.Shell {
	return l.sh
}

// SetPublisher receives a status snapshot once a second.
func (l *LocalShell) SetPublisher(publish func(monitor.Snapshot)) {
	l.publish = publish
}

// Run opens the stream and ticks until the session ends or ctx is done.
func (l *LocalShell) Run(ctx context.Context) error {
	status, err := l.sh.Begin()
	if err != nil {
		return fmt.Errorf("local shell: %s: %w", status, err)
	}
	return l.timer.Run(ctx)
}

func (l *LocalShell) Stop() {
	l.timer.Stop()
}

func (l *LocalShell) Tick() {
	l.sh.Update()
}

func (l *LocalShell) EverySecond() {
	if l.publish != nil {
		l.publish(l.Snapshot())
	}
}

// Snapshot captures pools and the session for the monitor.
func (l *LocalShell) Snapshot() monitor.Snapshot {
	st := l.sh.Stream()
	return monitor.Snapshot{
		Time:   time.Now(),
		Status: l.repo.Status(),
		Pools:  l.repo.Snapshot(),
		Sessions: []monitor.SessionStat{{
			Name:      l.sh.Name(),
			Stream:    st.Name(),
			State:     l.sh.State().String(),
			Connected: st.Backend().Connected(),
			Queued:    l.sh.Queue().Len(),
		}},
	}
}

func (l *LocalShell) ShellNotification(sh *shell.Shell, message string) {
	if message == stream.NoteEnd {
		l.log.Info().Str("shell", sh.Name()).Msg("console.LocalShell end of session")
		l.timer.Stop()
		return
	}
	l.log.Info().Str("shell", sh.Name()).Str("note", message).Msg("console.LocalShell notification")
}

func (l *LocalShell) CommaCommand(sh *shell.Shell, c comma.Command) {
	l.log.Info().
		Str("shell", sh.Name()).
		Str("code", c.CodeName()).
		Uint32("value", c.Value).
		Msg("console.LocalShell comma command")
}

func (l *LocalShell) ShellCommand(sh *shell.Shell, args *shell.Args) shell.CommandError {
	l.log.Debug().Str("shell", sh.Name()).Strs("args", args.Strings()).Msg("console.LocalShell command")
	switch {
	case args.Equal("plot"):
		option := 0
		if args.Next() {
			if v, err := strconv.Atoi(args.Current()); err == nil {
				option = v
			}
		}
		if !l.plot.Demo(option, sh) {
			sh.Println("Plot busy.")
		}
		return shell.Okay
	case args.Equal("status"):
		sh.Println(l.repo.Status())
		return shell.Okay
	}
	if sh.WriteWrapped(`Oops! Command: "`, args.Bytes(0), `"`) {
		sh.EOL()
	}
	for i := 1; i < args.Len(); i++ {
		if sh.WriteWrapped(`          arg: "`, args.Bytes(i), `"`) {
			sh.EOL()
		}
	}
	return shell.UnhandledCommand
}
