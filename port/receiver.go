// SPDX-License-Identifier: EPL-2.0

package port

import (
	"sync/atomic"

	"github.com/ik5/audlink/audio"
)

// InputHandler consumes audio that arrived at a receiver, usually by
// calling Receive. The receive interval ends when it returns.
type InputHandler func(r *ReceiverPort, frames int, ts Timestamp)

// ReceiverPort receives audio from any number of sources, either mixed
// into one stream or source by source.
type ReceiverPort struct {
	*Port

	rt      atomic.Pointer[receiverState]
	mixed   atomic.Bool
	handler atomic.Pointer[InputHandler]

	// line time of the next frame when nothing is connected
	clock atomic.Uint64
}

type receiverState struct {
	format  audio.Format
	conv    *audio.Converter // line to client, mixed path
	mix     []float32
	scratch []float32
	chunk   int // client frames per step
}

func NewReceiverPort(name, title string, format audio.Format, opts ...Option) (*ReceiverPort, error) {
	p, err := newPort(KindReceiver, name, title, format, opts)
	if err != nil {
		return nil, err
	}

	r := &ReceiverPort{Port: p}
	r.mixed.Store(true)
	p.reformat = r.reformat
	if err := r.reformat(format); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *ReceiverPort) reformat(format audio.Format) error {
	conv, err := audio.NewConverter(audio.LineFormat, format)
	if err != nil {
		return err
	}

	chunk := r.opts.maxFrames
	samples := audio.LineFormat.Samples(conv.MaxInput(chunk))
	r.rt.Store(&receiverState{
		format:  format,
		conv:    conv,
		mix:     make([]float32, samples),
		scratch: make([]float32, samples),
		chunk:   chunk,
	})

	return nil
}

// ReceiveMixedAudio reports the receive mode. The default is mixed.
func (r *ReceiverPort) ReceiveMixedAudio() bool { return r.mixed.Load() }

// SetReceiveMixedAudio selects between one mixed stream (true) and one
// stream per source (false).
func (r *ReceiverPort) SetReceiveMixedAudio(mixed bool) { r.mixed.Store(mixed) }

// SetInputHandler installs the handler Dispatch runs. nil removes it.
func (r *ReceiverPort) SetInputHandler(h InputHandler) {
	if h == nil {
		r.handler.Store(nil)
		return
	}
	r.handler.Store(&h)
}

// Receive fills dst with frames of client audio and returns the
// timestamp of the first frame.
//
// In mixed mode source must be nil and every source is summed with its
// volume and pan. Otherwise source names the connected port to read.
// Any frame without audio, including all of them on misuse, is silence.
// dst always gets exactly frames frames, or as many as it holds.
func (r *ReceiverPort) Receive(source *Port, dst []float32, frames int) Timestamp {
	st := r.rt.Load()
	ch := st.format.Channels
	frames = max(0, min(frames, len(dst)/ch))
	dst = dst[:frames*ch]

	ins := *r.inputs.Load()
	mixed := r.mixed.Load()

	var l *link
	if !mixed && source != nil {
		for _, in := range ins {
			if in.from == source {
				l = in
				break
			}
		}
	}

	switch {
	case mixed && source == nil && len(ins) > 0:
		ts := ins[0].stamp()
		r.receiveMixed(st, ins, dst, frames)
		return ts
	case l != nil:
		ts := l.stamp()
		r.receiveSource(st, l, dst, frames)
		return ts
	}

	clear(dst)
	sample := r.clock.Add(uint64(frames)) - uint64(frames)

	return Timestamp{SampleTime: sample, HostTime: r.opts.now()}
}

func (r *ReceiverPort) receiveMixed(st *receiverState, ins []*link, dst []float32, frames int) {
	ch := st.format.Channels
	for pos := 0; pos < frames; {
		n := min(frames-pos, st.chunk)
		need := st.conv.InputFor(n)

		readMix(ins, st.mix, st.scratch, need, true)
		_, produced := st.conv.Convert(dst[pos*ch:(pos+n)*ch], st.mix[:need*audio.LineChannels])
		clear(dst[(pos+produced)*ch : (pos+n)*ch])

		pos += n
	}
}

func (r *ReceiverPort) receiveSource(st *receiverState, l *link, dst []float32, frames int) {
	ch := st.format.Channels
	for pos := 0; pos < frames; {
		n := min(frames-pos, st.chunk)
		need := l.conv.InputFor(n)
		samples := need * audio.LineChannels

		got := l.ring.Read(st.scratch[:samples])
		clear(st.scratch[got*audio.LineChannels : samples])
		_, produced := l.conv.Convert(dst[pos*ch:(pos+n)*ch], st.scratch[:samples])
		clear(dst[(pos+produced)*ch : (pos+n)*ch])

		pos += n
	}
}

// EndReceiveInterval drops audio still waiting on every source line.
// Call it once per cycle when reading source by source so a source
// nobody reads cannot pile up.
func (r *ReceiverPort) EndReceiveInterval() {
	dropped := false
	for _, l := range *r.inputs.Load() {
		if l.ring.DiscardAll() > 0 {
			// interpolation history must not reach across the boundary
			l.conv.Reset()
			dropped = true
		}
	}
	if dropped {
		r.rt.Load().conv.Reset()
	}
}

// Dispatch runs the input handler when audio is waiting and ends the
// interval afterwards. The handler is told how many client frames the
// fullest line holds. It reports whether the handler ran. Call it from
// the receiver's audio goroutine once per cycle.
func (r *ReceiverPort) Dispatch() bool {
	h := r.handler.Load()
	if h == nil {
		return false
	}

	ins := *r.inputs.Load()
	frames := 0
	for _, l := range ins {
		frames = max(frames, l.ring.Available())
	}
	if frames == 0 {
		return false
	}

	rate := r.rt.Load().format.SampleRate
	frames = max(1, frames*rate/audio.LineSampleRate)

	(*h)(r, frames, ins[0].stamp())
	r.EndReceiveInterval()

	return true
}

// SetVolume sets the mixed-mode volume of source, clamped to [0,1].
func (r *ReceiverPort) SetVolume(source *Port, volume float32) error {
	l := r.findInput(source)
	if l == nil {
		return ErrUnknownSource
	}
	l.setVolume(volume)

	return nil
}

// SetPan sets the mixed-mode pan of source, clamped to [-1,1].
func (r *ReceiverPort) SetPan(source *Port, pan float32) error {
	l := r.findInput(source)
	if l == nil {
		return ErrUnknownSource
	}
	l.setPan(pan)

	return nil
}

func (r *ReceiverPort) Volume(source *Port) (float32, bool) {
	l := r.findInput(source)
	if l == nil {
		return 0, false
	}

	return l.getVolume(), true
}

func (r *ReceiverPort) Pan(source *Port) (float32, bool) {
	l := r.findInput(source)
	if l == nil {
		return 0, false
	}

	return l.getPan(), true
}

// IsConnectedToSelf reports whether a source belongs to the same owner.
// Hosts must not feed what they receive from such a source back into
// their own senders.
func (r *ReceiverPort) IsConnectedToSelf() bool {
	if r.owner == "" {
		return false
	}
	for _, l := range *r.inputs.Load() {
		if l.from.owner == r.owner {
			return true
		}
	}

	return false
}
