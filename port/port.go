// SPDX-License-Identifier: EPL-2.0

package port

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/ik5/audlink/audio"
)

// Kind tells which variant a Port is.
type Kind uint8

const (
	KindSender Kind = iota + 1
	KindReceiver
	KindFilter
)

func (k Kind) String() string {
	switch k {
	case KindSender:
		return "sender"
	case KindReceiver:
		return "receiver"
	case KindFilter:
		return "filter"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Attributes is a bitset of port properties visible to connected ports.
type Attributes uint32

const AttributeNone Attributes = 0

const (
	// AttributePlaysLiveAudio marks a receiver that plays what it gets.
	// Senders connected to it are muted so the audio is not heard twice.
	AttributePlaysLiveAudio Attributes = 1 << iota
)

// Timestamp locates a slice of audio in time.
// SampleTime counts frames at the line sample rate.
type Timestamp struct {
	SampleTime uint64
	HostTime   time.Time
}

// Port holds what every port variant shares: identity, display metadata
// and connection state.
type Port struct {
	id    xid.ID
	name  string
	kind  Kind
	owner string
	opts  settings

	mtx    sync.Mutex
	title  string
	icon   []byte
	format audio.Format

	attrs   atomic.Uint32
	latency atomic.Int64
	closed  atomic.Bool

	// copy-on-write, replaced under mtx and loaded by the realtime domain
	inputs  atomic.Pointer[[]*link]
	outputs atomic.Pointer[[]*link]

	// time in unix nanoseconds until which a source stays muted
	muteUntil atomic.Int64

	// rebuilds the variant's realtime state for a new client format
	reformat func(audio.Format) error
}

func newPort(kind Kind, name, title string, format audio.Format, opts []Option) (*Port, error) {
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%s port %q: %w", kind, name, err)
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	p := &Port{
		id:     xid.New(),
		name:   name,
		kind:   kind,
		owner:  s.owner,
		opts:   s,
		title:  title,
		icon:   s.icon,
		format: format,
	}
	p.attrs.Store(uint32(s.attrs))

	empty := []*link{}
	p.inputs.Store(&empty)
	p.outputs.Store(&empty)

	return p, nil
}

func (p *Port) ID() xid.ID    { return p.id }
func (p *Port) Name() string  { return p.name }
func (p *Port) Kind() Kind    { return p.kind }
func (p *Port) Owner() string { return p.owner }

func (p *Port) String() string {
	return fmt.Sprintf("%s:%s(%s)", p.kind, p.name, p.id)
}

func (p *Port) Title() string {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.title
}

func (p *Port) SetTitle(title string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.title = title
}

// Icon returns a copy of the icon image bytes.
func (p *Port) Icon() []byte {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return slices.Clone(p.icon)
}

func (p *Port) SetIcon(icon []byte) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.icon = slices.Clone(icon)
}

func (p *Port) Attributes() Attributes {
	return Attributes(p.attrs.Load())
}

func (p *Port) SetAttributes(attrs Attributes) {
	p.attrs.Store(uint32(attrs))
}

func (p *Port) ClientFormat() audio.Format {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.format
}

// SetClientFormat changes the format the host exchanges with this port.
// It fails with ErrPortConnected while any line is attached.
func (p *Port) SetClientFormat(format audio.Format) error {
	if err := format.Validate(); err != nil {
		return err
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.connected() {
		return fmt.Errorf("%s: %w", p, ErrPortConnected)
	}
	if p.reformat != nil {
		if err := p.reformat(format); err != nil {
			return err
		}
	}
	p.format = format

	return nil
}

// Latency is the delay the port adds, in line frames.
func (p *Port) Latency() int {
	return int(p.latency.Load())
}

// IsConnected reports whether any line is attached to the port.
func (p *Port) IsConnected() bool {
	return p.connected()
}

func (p *Port) connected() bool {
	return len(*p.inputs.Load()) > 0 || len(*p.outputs.Load()) > 0
}

// Sources returns the ports sending to p, in connection order.
func (p *Port) Sources() []*Port {
	return ends(*p.inputs.Load(), func(l *link) *Port { return l.from })
}

// Destinations returns the ports p sends to, in connection order.
func (p *Port) Destinations() []*Port {
	return ends(*p.outputs.Load(), func(l *link) *Port { return l.to })
}

func ends(links []*link, end func(*link) *Port) []*Port {
	out := make([]*Port, 0, len(links))
	for _, l := range links {
		out = append(out, end(l))
	}

	return out
}

// ConnectedPortAttributes is the union of the attributes of the ports on
// the other end of p's lines: destinations for senders and filters,
// sources for receivers.
func (p *Port) ConnectedPortAttributes() Attributes {
	if p.kind == KindReceiver {
		return p.upstreamAttributes()
	}

	return p.downstreamAttributes()
}

func (p *Port) downstreamAttributes() Attributes {
	var attrs Attributes
	for _, l := range *p.outputs.Load() {
		attrs |= l.to.Attributes()
	}

	return attrs
}

func (p *Port) upstreamAttributes() Attributes {
	var attrs Attributes
	for _, l := range *p.inputs.Load() {
		attrs |= l.from.Attributes()
	}

	return attrs
}

// IsMuted reports whether a source port must silence its local output:
// a destination plays the audio live, or a live destination was
// disconnected less than the mute grace period ago.
func (p *Port) IsMuted() bool {
	for _, l := range *p.outputs.Load() {
		if l.to.Attributes()&AttributePlaysLiveAudio != 0 {
			return true
		}
	}

	return p.opts.now().UnixNano() < p.muteUntil.Load()
}

// IsClosed reports whether Close was called.
func (p *Port) IsClosed() bool {
	return p.closed.Load()
}

// Close disconnects every line and refuses further connections.
func (p *Port) Close() error {
	if p.closed.Swap(true) {
		return nil
	}

	DisconnectAll(p)

	return nil
}

func (p *Port) findInput(source *Port) *link {
	for _, l := range *p.inputs.Load() {
		if l.from == source {
			return l
		}
	}

	return nil
}

// latencyFrames is the delay in line frames from p down to the end of
// the slowest path.
func (p *Port) latencyFrames() int {
	deepest := 0
	for _, l := range *p.outputs.Load() {
		deepest = max(deepest, l.latencyFrames())
	}

	return deepest
}

// AverageLatency estimates the time audio written now takes to leave
// every destination, averaged over destinations.
func (p *Port) AverageLatency() time.Duration {
	outs := *p.outputs.Load()
	if len(outs) == 0 {
		return 0
	}

	total := 0
	for _, l := range outs {
		total += l.latencyFrames()
	}

	return framesToDuration(total) / time.Duration(len(outs))
}

func framesToDuration(frames int) time.Duration {
	return time.Duration(int64(frames) * int64(time.Second) / audio.LineSampleRate)
}
