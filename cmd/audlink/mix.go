// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audlink"
	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/formats"
	"github.com/ik5/audlink/port"
	"github.com/ik5/audlink/session"
)

var errNoInputs = errors.New("no input files")

type mixCommand struct {
	stdout io.Writer

	config string
	output string
	gain   float64
	step   int
}

func (cmd *mixCommand) Name() string { return "mix" }
func (cmd *mixCommand) Help() string {
	return "Mix files, each given as path[:volume[:pan]], into one WAV file"
}

func (cmd *mixCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.config, "config", "", "YAML configuration file")
	fs.StringVar(&cmd.output, "o", "mix.wav", "output WAV file, - for stdout")
	fs.Float64Var(&cmd.gain, "gain", 1, "gain applied to every input by a filter port")
	fs.IntVar(&cmd.step, "step", audlink.DefaultStepFrames, "frames per render step")
}

// mixInput is one parsed command line input.
type mixInput struct {
	path   string
	volume float32
	pan    float32
}

func parseInput(arg string) (mixInput, error) {
	parts := strings.Split(arg, ":")
	if len(parts) > 3 || parts[0] == "" {
		return mixInput{}, fmt.Errorf("bad input %q, want path[:volume[:pan]]", arg)
	}

	in := mixInput{path: parts[0], volume: 1}
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return mixInput{}, fmt.Errorf("bad input %q: %w", arg, err)
		}
		if i == 0 {
			if v <= 0 {
				return mixInput{}, fmt.Errorf("bad input %q: volume must be positive", arg)
			}
			in.volume = float32(v)
		} else {
			in.pan = float32(v)
		}
	}

	return in, nil
}

func (cmd *mixCommand) loadConfig() (session.Config, error) {
	if cmd.config == "" {
		return session.DefaultConfig(), nil
	}

	return session.LoadConfigFile(cmd.config)
}

// decode opens and decodes every input concurrently.
func decode(ctx context.Context, inputs []mixInput) ([]audio.Source, []io.Closer, error) {
	reg := formats.NewRegistry()
	sources := make([]audio.Source, len(inputs))
	files := make([]io.Closer, len(inputs))

	g, _ := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			f, err := os.Open(in.path)
			if err != nil {
				return err
			}
			files[i] = f

			src, err := reg.DecodeFile(in.path, f)
			if err != nil {
				return err
			}
			sources[i] = src

			return nil
		})
	}

	return sources, files, g.Wait()
}

func (cmd *mixCommand) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errNoInputs
	}

	inputs := make([]mixInput, 0, len(args))
	for _, arg := range args {
		in, err := parseInput(arg)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}

	sources, files, err := decode(ctx, inputs)
	defer func() {
		for i := range sources {
			if sources[i] != nil {
				_ = sources[i].Close()
			}
			if files[i] != nil {
				_ = files[i].Close()
			}
		}
	}()
	if err != nil {
		return err
	}

	m := audlink.Mix{
		Config:     cfg,
		StepFrames: cmd.step,
		Logger:     logger,
	}
	for i, in := range inputs {
		m.Inputs = append(m.Inputs, audlink.Input{
			Name:   in.path,
			Source: sources[i],
			Volume: in.volume,
			Pan:    in.pan,
		})
	}
	if cmd.gain != 1 {
		gain := float32(cmd.gain)
		m.NewFilter = func() port.FilterFunc {
			return func(buf []float32, _ int, _ port.Timestamp) {
				for i := range buf {
					buf[i] *= gain
				}
			}
		}
	}

	logger.WithFields(logrus.Fields{
		"function": "mix",
		"inputs":   len(inputs),
		"output":   cmd.output,
	}).Debug("Mixing")

	if cmd.output == "-" {
		return m.Bounce(ctx, cmd.stdout)
	}

	out, err := os.Create(cmd.output)
	if err != nil {
		return err
	}
	if err := m.Bounce(ctx, out); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
