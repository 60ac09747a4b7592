// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/internal/audiotest"
	"github.com/ik5/audlink/port"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memSink struct {
	samples []float32
	err     error
}

func (m *memSink) WriteSamples(s []float32) error {
	if m.err != nil {
		return m.err
	}
	m.samples = append(m.samples, s...)

	return nil
}

type fakeTicker struct {
	c chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

func quietCycle(t *testing.T, frames int, opts ...Option) *Cycle {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	c, err := NewCycle(frames, append([]Option{WithLogger(logrus.NewEntry(logger))}, opts...)...)
	require.NoError(t, err)

	return c
}

func player(t *testing.T, src audio.Source) *Player {
	t.Helper()

	sp, err := port.NewSenderPort("out", "Out", src.Format())
	require.NoError(t, err)
	p, err := NewPlayer(src, sp)
	require.NoError(t, err)

	return p
}

func recorder(t *testing.T, format audio.Format, sink Sink) *Recorder {
	t.Helper()

	rp, err := port.NewReceiverPort("in", "In", format)
	require.NoError(t, err)

	return NewRecorder(rp, sink)
}

func TestPacer_NoDrift(t *testing.T) {
	t.Parallel()

	p := pacer{rate: 48000}
	total := 0
	for range 441 {
		total += p.next(100, audio.LineSampleRate)
	}
	assert.Equal(t, 48000, total)

	same := pacer{rate: audio.LineSampleRate}
	assert.Equal(t, 256, same.next(256, audio.LineSampleRate))
}

func TestNewPlayer_FormatMismatch(t *testing.T) {
	t.Parallel()

	sp, err := port.NewSenderPort("out", "Out", audio.LineFormat)
	require.NoError(t, err)

	src := audiotest.NewSilentSource(audio.Format{SampleRate: 48000, Channels: 1}, 10)
	_, err = NewPlayer(src, sp)
	require.ErrorIs(t, err, ErrFormatMismatch)
}

func TestNewCycle_InvalidFrames(t *testing.T) {
	t.Parallel()

	_, err := NewCycle(0)
	require.ErrorIs(t, err, ErrInvalidFrames)
}

func TestCycle_PlaysIntoRecorder(t *testing.T) {
	t.Parallel()

	p := player(t, audiotest.NewConstantSource(audio.LineFormat, 1000, 0.5))
	sink := &memSink{}
	r := recorder(t, audio.LineFormat, sink)
	require.NoError(t, port.Connect(p.Port().Port, r.Port().Port))

	c := quietCycle(t, 256)
	c.AddPlayer(p)
	c.AddRecorder(r)

	require.NoError(t, c.Run(context.Background()))

	assert.True(t, p.Done())
	assert.Equal(t, uint64(1024), c.SampleTime())
	assert.Equal(t, uint64(1024), r.Frames())
	require.Len(t, sink.samples, 2048)
	assert.Equal(t, audiotest.Stereo(0.5, 0.5), sink.samples[:4])
	assert.Equal(t, float32(0.5), sink.samples[1999])
	assert.Equal(t, make([]float32, 48), sink.samples[2000:], "padded with silence")
}

func TestCycle_PumpsFiltersAndDispatches(t *testing.T) {
	t.Parallel()

	p := player(t, audiotest.NewConstantSource(audio.LineFormat, 128, 0.25))
	f, err := port.NewFilterPort("gain", "Gain", audio.LineFormat, func(buf []float32, _ int, _ port.Timestamp) {
		for i := range buf {
			buf[i] *= 2
		}
	}, 0)
	require.NoError(t, err)

	sink := &memSink{}
	r := recorder(t, audio.LineFormat, sink)

	monitor, err := port.NewReceiverPort("monitor", "Monitor", audio.LineFormat)
	require.NoError(t, err)
	var handled []int
	monitor.SetInputHandler(func(rp *port.ReceiverPort, frames int, _ port.Timestamp) {
		handled = append(handled, frames)
		rp.Receive(nil, make([]float32, 2*frames), frames)
	})

	require.NoError(t, port.Connect(p.Port().Port, f.Port))
	require.NoError(t, port.Connect(f.Port, r.Port().Port))
	require.NoError(t, port.Connect(p.Port().Port, monitor.Port))

	c := quietCycle(t, 64)
	c.AddPlayer(p)
	c.AddFilter(f)
	c.AddReceiver(monitor)
	c.AddRecorder(r)

	require.NoError(t, c.Run(context.Background()))

	require.Len(t, sink.samples, 256)
	for _, v := range sink.samples {
		require.Equal(t, float32(0.5), v)
	}
	assert.Equal(t, []int{64, 64}, handled)
}

func TestCycle_ResamplingKeepsPace(t *testing.T) {
	t.Parallel()

	mono48 := audio.Format{SampleRate: 48000, Channels: 1}
	p := player(t, audiotest.NewConstantSource(mono48, 4800, 0.5))
	sink := &memSink{}
	r := recorder(t, mono48, sink)
	require.NoError(t, port.Connect(p.Port().Port, r.Port().Port))

	c := quietCycle(t, 441)
	c.AddPlayer(p)
	c.AddRecorder(r)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, uint64(4410), c.SampleTime())
	assert.Equal(t, uint64(4800), p.Frames())
	assert.Equal(t, uint64(4800), r.Frames())
	for _, v := range sink.samples {
		require.True(t, v >= -0.2 && v <= 0.7, "sample %v out of range", v)
	}
}

func TestCycle_RecorderErrorStopsRun(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	p := player(t, audiotest.NewSilentSource(audio.LineFormat, 1<<20))
	r := recorder(t, audio.LineFormat, &memSink{err: boom})

	c := quietCycle(t, 128)
	c.AddPlayer(p)
	c.AddRecorder(r)

	require.ErrorIs(t, c.Run(context.Background()), boom)
}

func TestCycle_NothingToPlay(t *testing.T) {
	t.Parallel()

	c := quietCycle(t, 128)
	require.ErrorIs(t, c.Run(context.Background()), ErrNothingToPlay)
}

func TestCycle_RealtimeUntilCancelled(t *testing.T) {
	t.Parallel()

	ticker := &fakeTicker{c: make(chan time.Time)}
	created := make(chan time.Duration, 1)

	p := player(t, audiotest.NewSilentSource(audio.LineFormat, 1<<20))
	c := quietCycle(t, 441, WithRealtime(), WithTicker(func(d time.Duration) Ticker {
		created <- d
		return ticker
	}))
	c.AddPlayer(p)

	ctx, cancel := context.WithCancel(context.Background())
	errc := c.Start(ctx)

	assert.Equal(t, 10*time.Millisecond, <-created)
	require.ErrorIs(t, c.Run(ctx), ErrRunning)

	for range 3 {
		ticker.c <- time.Time{}
	}
	cancel()

	require.ErrorIs(t, <-errc, context.Canceled)
	_, open := <-errc
	assert.False(t, open)
	assert.Equal(t, uint64(3*441), c.SampleTime())
}
