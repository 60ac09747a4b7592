// SPDX-License-Identifier: EPL-2.0

package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audlink/port"
)

// Config tunes a hub and the ports of its sessions.
type Config struct {
	// DeviceName is reported by every session of the hub.
	DeviceName string `yaml:"device_name"`
	// LineFrames is the capacity of every line, in frames.
	LineFrames int `yaml:"line_frames"`
	// MaxFrames is the largest slice a port converts in one step.
	MaxFrames int `yaml:"max_frames"`
	// MuteGrace keeps a sender muted after a live receiver disconnects.
	MuteGrace time.Duration `yaml:"mute_grace"`
	// EventQueue is the buffer of each session's event channel.
	EventQueue int `yaml:"event_queue"`
	// ControlQueue is the buffer of pending trigger invocations.
	ControlQueue int `yaml:"control_queue"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}

	return Config{
		DeviceName:   host,
		LineFrames:   port.DefaultLineFrames,
		MaxFrames:    port.DefaultMaxFrames,
		MuteGrace:    port.DefaultMuteGrace,
		EventQueue:   64,
		ControlQueue: 32,
		LogLevel:     logrus.InfoLevel.String(),
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.LineFrames <= 0 {
		errs = append(errs, fmt.Errorf("line_frames must be positive, got %d", c.LineFrames))
	}
	if c.MaxFrames <= 0 {
		errs = append(errs, fmt.Errorf("max_frames must be positive, got %d", c.MaxFrames))
	}
	if c.MuteGrace < 0 {
		errs = append(errs, fmt.Errorf("mute_grace must not be negative, got %s", c.MuteGrace))
	}
	if c.EventQueue <= 0 {
		errs = append(errs, fmt.Errorf("event_queue must be positive, got %d", c.EventQueue))
	}
	if c.ControlQueue <= 0 {
		errs = append(errs, fmt.Errorf("control_queue must be positive, got %d", c.ControlQueue))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// LoadConfig reads YAML from r on top of DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigFile is LoadConfig on the named file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return LoadConfig(f)
}

// NewLogger returns a logger at the configured level.
func (c Config) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if out != nil {
		logger.SetOutput(out)
	}

	return logger, nil
}

func (c Config) portOptions() []port.Option {
	return []port.Option{
		port.WithLineFrames(c.LineFrames),
		port.WithMaxFrames(c.MaxFrames),
		port.WithMuteGrace(c.MuteGrace),
	}
}
