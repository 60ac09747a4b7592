// SPDX-License-Identifier: EPL-2.0

package port

import (
	"sync/atomic"

	"github.com/ik5/audlink/audio"
)

// RenderFunc fills buf with frames of client audio.
type RenderFunc func(buf []float32, frames int, ts Timestamp)

// SenderPort sends audio produced by the host to every destination.
type SenderPort struct {
	*Port

	rt     atomic.Pointer[senderState]
	render atomic.Pointer[RenderFunc]
}

type senderState struct {
	format audio.Format
	conv   *audio.Converter // client to line
	line   []float32
	chunk  int // client frames per step
}

func NewSenderPort(name, title string, format audio.Format, opts ...Option) (*SenderPort, error) {
	p, err := newPort(KindSender, name, title, format, opts)
	if err != nil {
		return nil, err
	}

	s := &SenderPort{Port: p}
	p.reformat = s.reformat
	if err := s.reformat(format); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SenderPort) reformat(format audio.Format) error {
	conv, err := audio.NewConverter(format, audio.LineFormat)
	if err != nil {
		return err
	}

	chunk := s.opts.maxFrames
	s.rt.Store(&senderState{
		format: format,
		conv:   conv,
		line:   make([]float32, audio.LineFormat.Samples(conv.MaxOutput(chunk))),
		chunk:  chunk,
	})

	return nil
}

// SetRenderFunc attaches the function Render pulls audio from.
// Passing nil detaches it.
func (s *SenderPort) SetRenderFunc(fn RenderFunc) {
	if fn == nil {
		s.render.Store(nil)
		return
	}
	s.render.Store(&fn)
}

// Send converts frames of interleaved client audio in buf to the line
// format and queues it on every destination line. ts.SampleTime is in
// client frames.
//
// It returns false when nothing is connected or any line had no room.
// Either case is transient and may be ignored.
func (s *SenderPort) Send(buf []float32, frames int, ts Timestamp) bool {
	outs := *s.outputs.Load()
	if len(outs) == 0 {
		return false
	}

	st := s.rt.Load()
	ch := st.format.Channels
	frames = min(frames, len(buf)/ch)

	ok := true
	for pos := 0; pos < frames; {
		n := min(frames-pos, st.chunk)
		in := buf[pos*ch : (pos+n)*ch]

		line, produced := in, n
		if !st.conv.Passthrough() {
			_, produced = st.conv.Convert(st.line, in)
			line = st.line
		}

		if produced > 0 && !writeAll(outs, line, produced, lineTime(ts, pos, st.format)) {
			ok = false
		}
		pos += n
	}

	return ok
}

// Render pulls frames from the render function into out, sends them and
// silences out when the port is muted. Without a render function out is
// silenced and Render returns false.
func (s *SenderPort) Render(out []float32, frames int, ts Timestamp) bool {
	fn := s.render.Load()
	if fn == nil {
		clear(out)
		return false
	}

	(*fn)(out, frames, ts)
	sent := s.Send(out, frames, ts)

	if s.IsMuted() {
		clear(out)
	}

	return sent
}
