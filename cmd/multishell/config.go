package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/multishell/internal/transport"
)

var ErrUnknownEOL = errors.New("multishell: unknown eol")

const defaultReconnectAttempts = 5

// runConfig holds the options of one run. The file sets them first, flags
// given on the command line win.
type runConfig struct {
	Device            string
	Commands          []string
	Local             bool
	EOL               string
	Baud              int
	ReconnectAttempts int
	MonitorAddr       string
	EngineConfig      string
	LogLevel          string
}

type fileConfig struct {
	Device            string   `toml:"device"`
	Commands          []string `toml:"commands"`
	Local             bool     `toml:"local"`
	EOL               string   `toml:"eol"`
	Baud              int      `toml:"baud"`
	ReconnectAttempts int      `toml:"reconnect_attempts"`
	MonitorAddr       string   `toml:"monitor_addr"`
	EngineConfig      string   `toml:"engine_config"`
	LogLevel          string   `toml:"log_level"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Device:            "arduino",
		Commands:          []string{},
		Baud:              transport.DefaultBaud,
		ReconnectAttempts: defaultReconnectAttempts,
	}
}

func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runConfig{}, fmt.Errorf("load multishell config: %w", err)
	}

	if meta.IsDefined("device") {
		if v := strings.TrimSpace(raw.Device); v != "" {
			cfg.Device = v
		}
	}
	if meta.IsDefined("commands") {
		cfg.Commands = normalizeCommands(raw.Commands)
	}
	if meta.IsDefined("local") {
		cfg.Local = raw.Local
	}
	if meta.IsDefined("eol") {
		cfg.EOL = strings.TrimSpace(raw.EOL)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("reconnect_attempts") {
		cfg.ReconnectAttempts = raw.ReconnectAttempts
	}
	if meta.IsDefined("monitor_addr") {
		cfg.MonitorAddr = strings.TrimSpace(raw.MonitorAddr)
	}
	if meta.IsDefined("engine_config") {
		cfg.EngineConfig = strings.TrimSpace(raw.EngineConfig)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if _, err := parseEOL(cfg.EOL); err != nil {
		return runConfig{}, err
	}
	return cfg, nil
}

func normalizeCommands(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		v := strings.TrimSpace(c)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseEOL maps a line ending name to its bytes. An empty name gives "" so
// the caller picks the default for its mode.
func parseEOL(name string) (string, error) {
	switch strings.ToLower(name) {
	case "":
		return "", nil
	case "lf":
		return "\n", nil
	case "crlf":
		return "\r\n", nil
	case "cr":
		return "\r", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEOL, name)
}
