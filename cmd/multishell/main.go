package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/multishell/internal/config"
	"github.com/danmuck/multishell/internal/console"
	"github.com/danmuck/multishell/internal/logging"
	"github.com/danmuck/multishell/internal/monitor"
	"github.com/danmuck/multishell/internal/task"
	"github.com/danmuck/multishell/internal/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const terminalEOL = "\r\n"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "multishell: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := defaultRunConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "multishell",
		Short: "Command shell over a serial device or the local terminal",
		Long: `multishell bridges the terminal to a serial device, optionally sending
line commands first and exiting once the device acknowledges them.
With --local it runs a shell session on the terminal instead.

Press Ctrl-D to quit.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveRunConfig(cmd, configPath, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "run options file (TOML)")
	flags.BoolVar(&opts.Local, "local", opts.Local, "run a shell on the terminal instead of a device passthrough")
	flags.StringArrayVar(&opts.Commands, "command", opts.Commands, "line command to send to the device before passthrough (repeatable)")
	flags.StringVar(&opts.Device, "device", opts.Device, "device: usb, serial, arduino or a /dev path")
	flags.IntVar(&opts.Baud, "baud", opts.Baud, "device line rate")
	flags.StringVar(&opts.EOL, "eol", opts.EOL, "line ending written to the shell or device: lf, crlf or cr")
	flags.IntVar(&opts.ReconnectAttempts, "reconnect-attempts", opts.ReconnectAttempts, "attempts at opening the device")
	flags.StringVar(&opts.MonitorAddr, "monitor-addr", opts.MonitorAddr, "serve /health, /metrics and /status on this address")
	flags.StringVar(&opts.EngineConfig, "engine-config", opts.EngineConfig, "pool, queue and monitor settings (TOML)")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level override")
	return cmd
}

// resolveRunConfig layers defaults, the config file and changed flags.
func resolveRunConfig(cmd *cobra.Command, path string, flagged runConfig) (runConfig, error) {
	cfg := defaultRunConfig()
	if path != "" {
		loaded, err := loadRunConfig(path)
		if err != nil {
			return runConfig{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("local") {
		cfg.Local = flagged.Local
	}
	if flags.Changed("command") {
		cfg.Commands = normalizeCommands(flagged.Commands)
	}
	if flags.Changed("device") {
		cfg.Device = flagged.Device
	}
	if flags.Changed("baud") {
		cfg.Baud = flagged.Baud
	}
	if flags.Changed("eol") {
		cfg.EOL = flagged.EOL
	}
	if flags.Changed("reconnect-attempts") {
		cfg.ReconnectAttempts = flagged.ReconnectAttempts
	}
	if flags.Changed("monitor-addr") {
		cfg.MonitorAddr = flagged.MonitorAddr
	}
	if flags.Changed("engine-config") {
		cfg.EngineConfig = flagged.EngineConfig
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagged.LogLevel
	}
	if _, err := parseEOL(cfg.EOL); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func loadEngineConfig(cfg runConfig) (config.EngineConfig, error) {
	engine := config.Default()
	if cfg.EngineConfig != "" {
		loaded, err := config.LoadEngineConfig(cfg.EngineConfig)
		if err != nil {
			return config.EngineConfig{}, err
		}
		engine = loaded
	}
	if cfg.MonitorAddr != "" {
		engine.Monitor.Enabled = true
		engine.Monitor.Addr = cfg.MonitorAddr
	}
	return engine, nil
}

func run(parent context.Context, cfg runConfig) error {
	logging.ConfigureRuntime()
	if cfg.LogLevel != "" && !logging.SetLevel(cfg.LogLevel) {
		log.Warn().Str("level", cfg.LogLevel).Msg("multishell: ignoring unknown log level")
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := loadEngineConfig(cfg)
	if err != nil {
		return err
	}
	eol, err := parseEOL(cfg.EOL)
	if err != nil {
		return err
	}
	repo := task.NewRepository(engine.Pools)

	var srv *monitor.Server
	monitorDone := make(chan error, 1)
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	if engine.Monitor.Enabled {
		srv = monitor.New("multishell", engine.Monitor)
		go func() {
			monitorDone <- srv.Run(monitorCtx)
		}()
	} else {
		monitorDone <- nil
	}

	term := transport.NewTerminal()
	defer term.Close()

	if cfg.Local {
		// the terminal is in raw mode, so it needs the carriage return
		if eol == "" {
			eol = terminalEOL
		}
		var l *console.LocalShell
		if l, err = console.NewLocalShell(term, repo, engine.Queue.Capacity, eol); err != nil {
			return err
		}
		if srv != nil {
			l.SetPublisher(srv.Publish)
		}
		err = l.Run(ctx)
	} else {
		err = passthrough(ctx, cfg, term, eol)
	}

	stopMonitor()
	if merr := <-monitorDone; merr != nil {
		log.Warn().Err(merr).Msg("multishell: monitor stopped")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func passthrough(ctx context.Context, cfg runConfig, term *transport.Terminal, eol string) error {
	path, err := transport.ResolveDevice(cfg.Device)
	if err != nil {
		return err
	}
	dev := transport.NewSerial(path, cfg.Baud)
	if err := transport.Retry(ctx, transport.DefaultBackoff(), cfg.ReconnectAttempts, dev.Open); err != nil {
		return err
	}
	defer dev.Close()

	p := console.NewPassthrough(term, dev, console.BuildCommand(cfg.Commands))
	p.Terminal().SetEOL(terminalEOL)
	p.Device().SetEOL(eol)
	log.Info().Str("device", path).Int("commands", len(cfg.Commands)).Msg("multishell: passthrough")
	return p.Run(ctx)
}
