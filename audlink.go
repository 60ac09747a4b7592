// SPDX-License-Identifier: EPL-2.0

package audlink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/formats/wav"
	"github.com/ik5/audlink/port"
	"github.com/ik5/audlink/session"
	"github.com/ik5/audlink/stream"
)

// DefaultStepFrames is the step of a bounce, in line frames.
const DefaultStepFrames = 512

var ErrNoInputs = errors.New("nothing to mix")

// Input is one source of a mix. Volume is in [0,1] and Pan in [-1,1];
// a zero Volume is taken as unity.
type Input struct {
	Name   string
	Source audio.Source
	Volume float32
	Pan    float32
}

// Mix describes a bounce.
type Mix struct {
	Config session.Config
	Inputs []Input

	// NewFilter, when set, builds a filter for every input. It runs
	// between the input and the mix, before volume and pan.
	NewFilter   func() port.FilterFunc
	FilterBlock int

	// StepFrames defaults to DefaultStepFrames.
	StepFrames int

	// Logger defaults to one built from Config.
	Logger *logrus.Logger
}

// Bounce mixes inputs into w as 16-bit stereo WAV at the line rate.
func Bounce(ctx context.Context, w io.Writer, cfg session.Config, inputs ...Input) error {
	return Mix{Config: cfg, Inputs: inputs}.Bounce(ctx, w)
}

// Bounce renders the mix into w. Seekable writers are streamed to,
// others get the whole file at the end.
func (m Mix) Bounce(ctx context.Context, w io.Writer) error {
	if len(m.Inputs) == 0 {
		return ErrNoInputs
	}

	logger := m.Logger
	if logger == nil {
		var err error
		if logger, err = m.Config.NewLogger(nil); err != nil {
			return err
		}
	}
	log := logger.WithFields(logrus.Fields{
		"function": "Bounce",
		"inputs":   len(m.Inputs),
	})

	hub, err := session.NewHub(m.Config, logger)
	if err != nil {
		return err
	}
	defer hub.Close()

	s, err := hub.Join(session.Info{Name: "bounce"})
	if err != nil {
		return err
	}

	mix, err := s.AddReceiverPort("mix", "Mix", audio.LineFormat)
	if err != nil {
		return err
	}

	step := m.StepFrames
	if step <= 0 {
		step = DefaultStepFrames
	}

	cycle, err := stream.NewCycle(step, stream.WithLogger(log))
	if err != nil {
		return err
	}

	for i, in := range m.Inputs {
		if err := m.addInput(s, cycle, mix, i, in); err != nil {
			return err
		}
	}

	var sink interface {
		stream.Sink
		Close() error
	}
	if ws, ok := w.(io.WriteSeeker); ok {
		enc, err := wav.NewEncoder(ws, audio.LineFormat, 16)
		if err != nil {
			return err
		}
		sink = enc
	} else {
		sink = &bufferSink{w: w}
	}

	rec := stream.NewRecorder(mix, sink)
	cycle.AddRecorder(rec)

	runErr := cycle.Run(ctx)
	closeErr := sink.Close()
	if err := errors.Join(runErr, closeErr); err != nil {
		log.WithField("error", err.Error()).Error("Bounce failed")
		return err
	}

	log.WithFields(logrus.Fields{
		"frames": rec.Frames(),
	}).Info("Bounce written")

	return nil
}

func (m Mix) addInput(s *session.Session, cycle *stream.Cycle, mix *port.ReceiverPort, i int, in Input) error {
	name := in.Name
	if name == "" {
		name = fmt.Sprintf("input-%d", i+1)
	}

	sender, err := s.AddSenderPort(name, name, in.Source.Format())
	if err != nil {
		return err
	}

	player, err := stream.NewPlayer(in.Source, sender)
	if err != nil {
		return fmt.Errorf("input %s: %w", name, err)
	}
	cycle.AddPlayer(player)

	src := sender.Port
	if m.NewFilter != nil {
		f, err := s.AddFilterPort(name+"-filter", name, audio.LineFormat, m.NewFilter(), m.FilterBlock)
		if err != nil {
			return err
		}
		if err := s.Connect(src, f.Port); err != nil {
			return err
		}
		cycle.AddFilter(f)
		src = f.Port
	}

	if err := s.Connect(src, mix.Port); err != nil {
		return err
	}

	volume := in.Volume
	if volume == 0 {
		volume = 1
	}
	if err := mix.SetVolume(src, volume); err != nil {
		return err
	}

	return mix.SetPan(src, in.Pan)
}

// bufferSink keeps the mix in memory and writes it on Close.
type bufferSink struct {
	w       io.Writer
	samples []float32
}

func (b *bufferSink) WriteSamples(s []float32) error {
	b.samples = append(b.samples, s...)
	return nil
}

func (b *bufferSink) Close() error {
	return wav.WriteFloat32(b.w, audio.LineFormat, b.samples)
}
