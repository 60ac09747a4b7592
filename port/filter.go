// SPDX-License-Identifier: EPL-2.0

package port

import (
	"fmt"
	"sync/atomic"

	"github.com/ik5/audlink/audio"
)

// FilterFunc processes frames of client audio in buf in place.
type FilterFunc func(buf []float32, frames int, ts Timestamp)

// Unit is an externally owned processor whose input is replaced by the
// audio arriving at a filter port.
type Unit interface {
	Process(buf []float32, frames int, ts Timestamp)
}

// FilterPort sits between sources and destinations and transforms the
// audio passing through it.
type FilterPort struct {
	*Port

	fn    FilterFunc
	unit  Unit
	block int

	rt       atomic.Pointer[filterState]
	bypassed atomic.Bool
}

type filterState struct {
	format  audio.Format
	in      *audio.Converter // line to client
	out     *audio.Converter // client to line
	mix     []float32
	scratch []float32
	client  []float32
	line    []float32
	chunk   int // line frames per step

	// fixed size blocks waiting to be filled
	pending []float32
	fill    int
}

// NewFilterPort returns a filter that calls fn with blocks of exactly
// blockSize frames, or with whatever arrives when blockSize is 0.
func NewFilterPort(name, title string, format audio.Format, fn FilterFunc, blockSize int, opts ...Option) (*FilterPort, error) {
	if fn == nil {
		return nil, fmt.Errorf("filter port %q: %w", name, ErrNoProcessor)
	}

	return newFilterPort(name, title, format, fn, nil, max(blockSize, 0), opts)
}

// NewFilterUnitPort returns a filter that feeds every pumped slice to u.
func NewFilterUnitPort(name, title string, format audio.Format, u Unit, opts ...Option) (*FilterPort, error) {
	if u == nil {
		return nil, fmt.Errorf("filter port %q: %w", name, ErrNoProcessor)
	}

	return newFilterPort(name, title, format, nil, u, 0, opts)
}

func newFilterPort(name, title string, format audio.Format, fn FilterFunc, u Unit, block int, opts []Option) (*FilterPort, error) {
	p, err := newPort(KindFilter, name, title, format, opts)
	if err != nil {
		return nil, err
	}

	f := &FilterPort{Port: p, fn: fn, unit: u, block: block}
	p.reformat = f.reformat
	if err := f.reformat(format); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *FilterPort) reformat(format audio.Format) error {
	in, err := audio.NewConverter(audio.LineFormat, format)
	if err != nil {
		return err
	}
	out, err := audio.NewConverter(format, audio.LineFormat)
	if err != nil {
		return err
	}

	chunk := f.opts.maxFrames
	clientFrames := in.MaxOutput(chunk)
	line := audio.LineFormat.Samples(chunk)

	f.rt.Store(&filterState{
		format:  format,
		in:      in,
		out:     out,
		mix:     make([]float32, line),
		scratch: make([]float32, line),
		client:  make([]float32, format.Samples(clientFrames)),
		line:    make([]float32, audio.LineFormat.Samples(out.MaxOutput(max(clientFrames, f.block)))),
		chunk:   chunk,
		pending: make([]float32, format.Samples(f.block)),
	})

	return nil
}

// BlockSize is the fixed number of frames handed to the filter function,
// 0 when it takes whatever arrives.
func (f *FilterPort) BlockSize() int { return f.block }

// DownstreamPortAttributes is the union of the destinations' attributes.
func (f *FilterPort) DownstreamPortAttributes() Attributes { return f.downstreamAttributes() }

// UpstreamPortAttributes is the union of the sources' attributes.
func (f *FilterPort) UpstreamPortAttributes() Attributes { return f.upstreamAttributes() }

func (f *FilterPort) Bypassed() bool { return f.bypassed.Load() }

// SetBypassed toggles forwarding upstream audio untouched.
func (f *FilterPort) SetBypassed(bypassed bool) { f.bypassed.Store(bypassed) }

// SetLatency declares the delay the filter adds, in line frames. It is
// fixed for as long as the port is connected.
func (f *FilterPort) SetLatency(frames int) error {
	if frames < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLatency, frames)
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.connected() {
		return fmt.Errorf("%s: %w", f.Port, ErrLatencyLocked)
	}
	f.latency.Store(int64(frames))

	return nil
}

// Pump pulls frames of mixed line audio from every source, runs it
// through the filter and forwards the result to every destination.
// ts.SampleTime is in line frames. It returns false when nothing is
// upstream, nothing is downstream or a line had no room.
func (f *FilterPort) Pump(frames int, ts Timestamp) bool {
	ins := *f.inputs.Load()
	if len(ins) == 0 {
		return false
	}

	outs := *f.outputs.Load()
	st := f.rt.Load()
	ok := len(outs) > 0

	for pos := 0; pos < frames; {
		n := min(frames-pos, st.chunk)
		at := lineTime(ts, pos, audio.LineFormat)

		readMix(ins, st.mix, st.scratch, n, false)
		if f.bypassed.Load() {
			if !writeAll(outs, st.mix, n, at) {
				ok = false
			}
		} else if !f.process(st, outs, n, at) {
			ok = false
		}

		pos += n
	}

	return ok
}

func (f *FilterPort) process(st *filterState, outs []*link, frames int, at Timestamp) bool {
	ch := st.format.Channels
	_, produced := st.in.Convert(st.client, st.mix[:frames*audio.LineChannels])

	if f.block == 0 || f.unit != nil {
		buf := st.client[:produced*ch]
		if f.unit != nil {
			f.unit.Process(buf, produced, at)
		} else {
			f.fn(buf, produced, at)
		}

		return f.emit(st, outs, buf, at)
	}

	ok := true
	for i := 0; i < produced; {
		take := min(f.block-st.fill, produced-i)
		copy(st.pending[st.fill*ch:], st.client[i*ch:(i+take)*ch])
		st.fill += take
		i += take

		if st.fill == f.block {
			f.fn(st.pending, f.block, at)
			if !f.emit(st, outs, st.pending, at) {
				ok = false
			}
			st.fill = 0
		}
	}

	return ok
}

func (f *FilterPort) emit(st *filterState, outs []*link, buf []float32, at Timestamp) bool {
	_, produced := st.out.Convert(st.line, buf)
	if produced == 0 {
		return true
	}

	return writeAll(outs, st.line, produced, at)
}
