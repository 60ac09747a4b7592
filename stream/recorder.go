// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"fmt"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/port"
)

// Sink takes interleaved samples in the recorder's client format.
// *wav.Encoder is one.
type Sink interface {
	WriteSamples(samples []float32) error
}

// Recorder drains a receiver port into a sink once per step.
type Recorder struct {
	port   *port.ReceiverPort
	sink   Sink
	pace   pacer
	buf    []float32
	frames uint64
}

func NewRecorder(p *port.ReceiverPort, sink Sink) *Recorder {
	return &Recorder{
		port: p,
		sink: sink,
		pace: pacer{rate: p.ClientFormat().SampleRate},
	}
}

func (r *Recorder) Port() *port.ReceiverPort { return r.port }

// Frames counts the client frames written so far.
func (r *Recorder) Frames() uint64 { return r.frames }

func (r *Recorder) step(lineFrames int) error {
	frames := r.pace.next(lineFrames, audio.LineSampleRate)

	format := r.port.ClientFormat()
	want := format.Samples(frames)
	if cap(r.buf) < want {
		r.buf = make([]float32, want)
	}
	r.buf = r.buf[:want]

	r.port.Receive(nil, r.buf, frames)
	r.port.EndReceiveInterval()

	if frames == 0 {
		return nil
	}

	if err := r.sink.WriteSamples(r.buf); err != nil {
		return fmt.Errorf("recording %s: %w", r.port.Name(), err)
	}
	r.frames += uint64(frames)

	return nil
}
