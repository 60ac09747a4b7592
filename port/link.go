// SPDX-License-Identifier: EPL-2.0

package port

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/internal/ring"
	"github.com/ik5/audlink/utils"
)

// link is one line between a source and a destination port.
// The source goroutine writes, the destination goroutine reads.
type link struct {
	from *Port
	to   *Port
	ring *ring.Buffer

	// line to destination client format, used by per-source receives
	conv *audio.Converter

	volume atomic.Uint32 // float32 bits
	pan    atomic.Uint32 // float32 bits

	// line time and host time just past the last written frame
	endSample atomic.Uint64
	endHost   atomic.Int64
}

func newLink(from, to *Port) (*link, error) {
	conv, err := audio.NewConverter(audio.LineFormat, to.format)
	if err != nil {
		return nil, err
	}

	l := &link{
		from: from,
		to:   to,
		ring: ring.New(to.opts.lineFrames, audio.LineChannels),
		conv: conv,
	}
	l.setVolume(1)
	l.setPan(0)

	return l, nil
}

func (l *link) setVolume(v float32) { l.volume.Store(math.Float32bits(utils.Clamp(v, 0, 1))) }
func (l *link) setPan(v float32)    { l.pan.Store(math.Float32bits(utils.Clamp(v, -1, 1))) }
func (l *link) getVolume() float32  { return math.Float32frombits(l.volume.Load()) }
func (l *link) getPan() float32     { return math.Float32frombits(l.pan.Load()) }

func (l *link) gains() (left, right float32) {
	return utils.BalanceGains(l.getVolume(), l.getPan())
}

// stamp estimates the timestamp of the next frame the consumer reads.
func (l *link) stamp() Timestamp {
	avail := uint64(l.ring.Available())
	end := l.endSample.Load()

	ts := Timestamp{}
	if end >= avail {
		ts.SampleTime = end - avail
	}
	if host := l.endHost.Load(); host != 0 {
		ts.HostTime = time.Unix(0, host).Add(-framesToDuration(int(avail)))
	}

	return ts
}

func (l *link) latencyFrames() int {
	frames := l.ring.Available() + l.to.Latency()
	if l.to.kind == KindFilter {
		frames += l.to.latencyFrames()
	}

	return frames
}

// writeAll sends frames of line audio starting at start to every link.
// It reports false when any line dropped audio.
func writeAll(links []*link, line []float32, frames int, start Timestamp) bool {
	ok := true
	line = line[:frames*audio.LineChannels]

	end := start.SampleTime + uint64(frames)
	var host int64
	if !start.HostTime.IsZero() {
		host = start.HostTime.Add(framesToDuration(frames)).UnixNano()
	}

	for _, l := range links {
		if l.ring.Write(line) < frames {
			ok = false
		}
		l.endSample.Store(end)
		l.endHost.Store(host)
	}

	return ok
}

// readMix adds frames of every input into mix, scaled by each line's
// volume and pan when weighted is set. scratch holds at least frames
// line frames. Missing audio counts as silence.
func readMix(links []*link, mix, scratch []float32, frames int, weighted bool) {
	samples := frames * audio.LineChannels
	clear(mix[:samples])

	for _, l := range links {
		got := l.ring.Read(scratch[:samples])
		left, right := float32(1), float32(1)
		if weighted {
			left, right = l.gains()
		}
		utils.MixStereo(mix[:samples], scratch[:got*audio.LineChannels], left, right)
	}
}

// lineTime moves a client sample time to the line rate.
func lineTime(ts Timestamp, offset int, format audio.Format) Timestamp {
	sample := ts.SampleTime + uint64(offset)
	if format.SampleRate != audio.LineSampleRate {
		sample = sample * audio.LineSampleRate / uint64(format.SampleRate)
	}

	out := Timestamp{SampleTime: sample}
	if !ts.HostTime.IsZero() {
		out.HostTime = ts.HostTime.Add(time.Duration(int64(offset) * int64(time.Second) / int64(format.SampleRate)))
	}

	return out
}
