package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrInvalidPools   = errors.New("config: invalid pool layout")
	ErrInvalidQueue   = errors.New("config: invalid queue")
	ErrInvalidMonitor = errors.New("config: invalid monitor")
)

// EngineConfig sizes everything the engine allocates up front.
type EngineConfig struct {
	Pools   PoolConfig    `toml:"pools"`
	Queue   QueueConfig   `toml:"queue"`
	Monitor MonitorConfig `toml:"monitor"`
}

// PoolConfig is the slot count per pool. Buffer classes are 16, 32 and 64
// bytes; scratch buffers are 128 bytes.
type PoolConfig struct {
	OffsetStrings  int `toml:"offset_strings"`
	PrintableLists int `toml:"printable_lists"`
	CommaFrames    int `toml:"comma_frames"`
	Buffer16       int `toml:"buffer16"`
	Buffer32       int `toml:"buffer32"`
	Buffer64       int `toml:"buffer64"`
	Scratch        int `toml:"scratch"`
}

type QueueConfig struct {
	Capacity int `toml:"capacity"`
}

type MonitorConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

const (
	DefaultQueueCapacity = 64
	DefaultMonitorAddr   = "127.0.0.1:9180"
)

func DefaultPools() PoolConfig {
	return PoolConfig{
		OffsetStrings:  16,
		PrintableLists: 2,
		CommaFrames:    16,
		Buffer16:       16,
		Buffer32:       8,
		Buffer64:       4,
		Scratch:        4,
	}
}

func Default() EngineConfig {
	return EngineConfig{
		Pools: DefaultPools(),
		Queue: QueueConfig{Capacity: DefaultQueueCapacity},
		Monitor: MonitorConfig{
			Addr: DefaultMonitorAddr,
		},
	}
}

// LoadEngineConfig reads path on top of Default. Tables and keys left out of
// the file keep their defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return EngineConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg EngineConfig) error {
	if err := ValidatePools(cfg.Pools); err != nil {
		return err
	}
	if cfg.Queue.Capacity < 1 {
		return fmt.Errorf("%w: capacity=%d", ErrInvalidQueue, cfg.Queue.Capacity)
	}
	if cfg.Monitor.Enabled && strings.TrimSpace(cfg.Monitor.Addr) == "" {
		return fmt.Errorf("%w: addr required when enabled", ErrInvalidMonitor)
	}
	return nil
}

// ValidatePools rejects negative counts and a layout with no byte buffers at
// all, which would make every buffer dispatch fail.
func ValidatePools(p PoolConfig) error {
	counts := []struct {
		name string
		n    int
	}{
		{"offset_strings", p.OffsetStrings},
		{"printable_lists", p.PrintableLists},
		{"comma_frames", p.CommaFrames},
		{"buffer16", p.Buffer16},
		{"buffer32", p.Buffer32},
		{"buffer64", p.Buffer64},
		{"scratch", p.Scratch},
	}
	for _, c := range counts {
		if c.n < 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidPools, c.name, c.n)
		}
	}
	if p.Buffer16+p.Buffer32+p.Buffer64 == 0 {
		return fmt.Errorf("%w: no byte buffers", ErrInvalidPools)
	}
	return nil
}
