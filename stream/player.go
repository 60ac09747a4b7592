// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/port"
)

// Player reads a source and sends it through a sender port.
type Player struct {
	src    audio.Source
	port   *port.SenderPort
	pace   pacer
	buf    []float32
	frames uint64
	done   bool
}

// NewPlayer pairs src with p. The port's client format must match the
// source format.
func NewPlayer(src audio.Source, p *port.SenderPort) (*Player, error) {
	format := src.Format()
	if format != p.ClientFormat() {
		return nil, fmt.Errorf("%w: %s vs %s", ErrFormatMismatch, format, p.ClientFormat())
	}

	return &Player{
		src:  src,
		port: p,
		pace: pacer{rate: format.SampleRate},
	}, nil
}

func (p *Player) Port() *port.SenderPort { return p.port }

// Frames counts the client frames sent so far.
func (p *Player) Frames() uint64 { return p.frames }

// Done reports whether the source is exhausted.
func (p *Player) Done() bool { return p.done }

// step sends the client frames that cover lineFrames line frames. A
// short read is padded with silence so lines stay in step.
func (p *Player) step(lineFrames int) error {
	if p.done {
		return nil
	}

	format := p.src.Format()
	frames := p.pace.next(lineFrames, audio.LineSampleRate)
	if frames == 0 {
		return nil
	}

	want := format.Samples(frames)
	if cap(p.buf) < want {
		p.buf = make([]float32, want)
	}
	p.buf = p.buf[:want]

	read := 0
	for read < want {
		n, err := p.src.ReadSamples(p.buf[read:])
		read += n

		if errors.Is(err, io.EOF) {
			p.done = true
			break
		}
		if err != nil {
			return fmt.Errorf("reading source: %w", err)
		}
		if n == 0 {
			break
		}
	}
	clear(p.buf[read:])

	p.port.Send(p.buf, frames, port.Timestamp{SampleTime: p.frames})
	p.frames += uint64(frames)

	return nil
}

// Close closes the source.
func (p *Player) Close() error {
	return p.src.Close()
}
