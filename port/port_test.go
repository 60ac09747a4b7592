// SPDX-License-Identifier: EPL-2.0

package port

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audlink/audio"
)

func newSender(t *testing.T, format audio.Format, opts ...Option) *SenderPort {
	t.Helper()

	s, err := NewSenderPort("out", "Out", format, opts...)
	require.NoError(t, err)

	return s
}

func newReceiver(t *testing.T, format audio.Format, opts ...Option) *ReceiverPort {
	t.Helper()

	r, err := NewReceiverPort("in", "In", format, opts...)
	require.NoError(t, err)

	return r
}

func constant(frames, channels int, v float32) []float32 {
	buf := make([]float32, frames*channels)
	for i := range buf {
		buf[i] = v
	}

	return buf
}

func filled(samples int, v float32) []float32 {
	return constant(samples, 1, v)
}

type fakeClock struct {
	mtx sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.now = c.now.Add(d)
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sender", KindSender.String())
	assert.Equal(t, "receiver", KindReceiver.String())
	assert.Equal(t, "filter", KindFilter.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestNewPort_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := NewSenderPort("s", "S", audio.Format{SampleRate: 0, Channels: 2})
	require.ErrorIs(t, err, audio.ErrInvalidFormat)

	_, err = NewReceiverPort("r", "R", audio.Format{SampleRate: 44100, Channels: 0})
	require.ErrorIs(t, err, audio.ErrInvalidFormat)
}

func TestPort_Metadata(t *testing.T) {
	t.Parallel()

	icon := []byte{1, 2, 3}
	s := newSender(t, audio.LineFormat, WithOwner("app"), WithIcon(icon))

	assert.Equal(t, "out", s.Name())
	assert.Equal(t, "Out", s.Title())
	assert.Equal(t, "app", s.Owner())
	assert.Equal(t, KindSender, s.Kind())
	assert.False(t, s.ID().IsNil())

	icon[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, s.Icon())

	s.SetTitle("Main")
	assert.Equal(t, "Main", s.Title())

	got := s.Icon()
	got[1] = 7
	assert.Equal(t, []byte{1, 2, 3}, s.Icon())

	s.SetAttributes(AttributePlaysLiveAudio)
	assert.Equal(t, AttributePlaysLiveAudio, s.Attributes())
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	s := newSender(t, audio.LineFormat)
	r := newReceiver(t, audio.LineFormat)
	r2 := newReceiver(t, audio.LineFormat)

	require.ErrorIs(t, Connect(nil, r.Port), ErrInvalidConnection)
	require.ErrorIs(t, Connect(r.Port, s.Port), ErrInvalidConnection)
	require.ErrorIs(t, Connect(r.Port, r2.Port), ErrInvalidConnection)
	require.ErrorIs(t, Connect(s.Port, s.Port), ErrInvalidConnection)

	require.NoError(t, Connect(s.Port, r.Port))
	require.ErrorIs(t, Connect(s.Port, r.Port), ErrAlreadyConnected)

	require.NoError(t, r2.Close())
	require.ErrorIs(t, Connect(s.Port, r2.Port), ErrPortClosed)

	require.ErrorIs(t, Disconnect(s.Port, r2.Port), ErrNotConnected)
}

func TestConnect_RejectsLoops(t *testing.T) {
	t.Parallel()

	pass := func([]float32, int, Timestamp) {}
	a, err := NewFilterPort("a", "A", audio.LineFormat, pass, 0)
	require.NoError(t, err)
	b, err := NewFilterPort("b", "B", audio.LineFormat, pass, 0)
	require.NoError(t, err)

	require.NoError(t, Connect(a.Port, b.Port))
	require.ErrorIs(t, Connect(b.Port, a.Port), ErrInvalidConnection)
}

func TestConnect_ConcurrentOppositeDirections(t *testing.T) {
	t.Parallel()

	pass := func([]float32, int, Timestamp) {}
	for range 50 {
		a, err := NewFilterPort("a", "A", audio.LineFormat, pass, 0)
		require.NoError(t, err)
		b, err := NewFilterPort("b", "B", audio.LineFormat, pass, 0)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = Connect(a.Port, b.Port)
		}()
		go func() {
			defer wg.Done()
			errs[1] = Connect(b.Port, a.Port)
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrInvalidConnection)
			}
		}
		require.Equal(t, 1, succeeded)
		assert.Equal(t, 1, len(a.Sources())+len(b.Sources()))
	}
}

func TestConnect_SourcesAndDestinations(t *testing.T) {
	t.Parallel()

	s1 := newSender(t, audio.LineFormat)
	s2 := newSender(t, audio.LineFormat)
	r := newReceiver(t, audio.LineFormat)

	require.NoError(t, Connect(s1.Port, r.Port))
	require.NoError(t, Connect(s2.Port, r.Port))

	assert.Equal(t, []*Port{s1.Port, s2.Port}, r.Sources())
	assert.Equal(t, []*Port{r.Port}, s1.Destinations())
	assert.True(t, r.IsConnected())

	require.NoError(t, Disconnect(s1.Port, r.Port))
	assert.Equal(t, []*Port{s2.Port}, r.Sources())
	assert.Empty(t, s1.Destinations())
	assert.False(t, s1.IsConnected())

	peers := DisconnectAll(r.Port)
	assert.Equal(t, []*Port{s2.Port}, peers)
	assert.False(t, r.IsConnected())
	assert.False(t, s2.IsConnected())
}

func TestPort_CloseDisconnects(t *testing.T) {
	t.Parallel()

	s := newSender(t, audio.LineFormat)
	r := newReceiver(t, audio.LineFormat)
	require.NoError(t, Connect(s.Port, r.Port))

	require.NoError(t, s.Close())
	assert.True(t, s.IsClosed())
	assert.False(t, r.IsConnected())
	require.NoError(t, s.Close())
}

func TestPort_SetClientFormatWhileConnected(t *testing.T) {
	t.Parallel()

	s := newSender(t, audio.LineFormat)
	r := newReceiver(t, audio.LineFormat)

	mono := audio.Format{SampleRate: 48000, Channels: 1}
	require.NoError(t, s.SetClientFormat(mono))
	assert.Equal(t, mono, s.ClientFormat())

	require.NoError(t, Connect(s.Port, r.Port))
	require.ErrorIs(t, s.SetClientFormat(audio.LineFormat), ErrPortConnected)
	require.ErrorIs(t, r.SetClientFormat(mono), ErrPortConnected)
	require.ErrorIs(t, s.SetClientFormat(audio.Format{}), audio.ErrInvalidFormat)

	require.NoError(t, Disconnect(s.Port, r.Port))
	require.NoError(t, r.SetClientFormat(mono))
	assert.Equal(t, mono, r.ClientFormat())
}

func TestPort_ConnectedPortAttributes(t *testing.T) {
	t.Parallel()

	s := newSender(t, audio.LineFormat)
	plain := newReceiver(t, audio.LineFormat)
	live := newReceiver(t, audio.LineFormat, WithAttributes(AttributePlaysLiveAudio))

	require.NoError(t, Connect(s.Port, plain.Port))
	assert.Equal(t, AttributeNone, s.ConnectedPortAttributes())

	require.NoError(t, Connect(s.Port, live.Port))
	assert.Equal(t, AttributePlaysLiveAudio, s.ConnectedPortAttributes())
	assert.Equal(t, AttributeNone, live.ConnectedPortAttributes())
}

func TestFilter_UpstreamAndDownstreamAttributes(t *testing.T) {
	t.Parallel()

	pass := func([]float32, int, Timestamp) {}
	f, err := NewFilterPort("f", "F", audio.LineFormat, pass, 0)
	require.NoError(t, err)

	const tagged Attributes = 1 << 4
	s := newSender(t, audio.LineFormat, WithAttributes(tagged))
	live := newReceiver(t, audio.LineFormat, WithAttributes(AttributePlaysLiveAudio))
	require.NoError(t, Connect(s.Port, f.Port))

	assert.Equal(t, tagged, f.UpstreamPortAttributes())
	assert.Equal(t, AttributeNone, f.DownstreamPortAttributes())

	require.NoError(t, Connect(f.Port, live.Port))
	assert.Equal(t, AttributePlaysLiveAudio, f.DownstreamPortAttributes())
	assert.Equal(t, AttributePlaysLiveAudio, f.ConnectedPortAttributes())
	assert.Equal(t, AttributeNone, live.ConnectedPortAttributes())
}

func TestPort_MuteGracePeriod(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newSender(t, audio.LineFormat, WithClock(clock.Now), WithMuteGrace(time.Second))
	plain := newReceiver(t, audio.LineFormat)
	live := newReceiver(t, audio.LineFormat, WithAttributes(AttributePlaysLiveAudio))

	require.NoError(t, Connect(s.Port, plain.Port))
	assert.False(t, s.IsMuted())

	require.NoError(t, Connect(s.Port, live.Port))
	assert.True(t, s.IsMuted())

	require.NoError(t, Disconnect(s.Port, live.Port))
	assert.True(t, s.IsMuted(), "muted right after a live destination leaves")

	clock.Advance(500 * time.Millisecond)
	assert.True(t, s.IsMuted())

	clock.Advance(time.Second)
	assert.False(t, s.IsMuted())

	require.NoError(t, Disconnect(s.Port, plain.Port))
	assert.False(t, s.IsMuted(), "plain destinations never start the grace period")
}

func TestPort_AverageLatency(t *testing.T) {
	t.Parallel()

	s := newSender(t, audio.LineFormat)
	assert.Zero(t, s.AverageLatency())

	r := newReceiver(t, audio.LineFormat)
	require.NoError(t, Connect(s.Port, r.Port))

	require.True(t, s.Send(make([]float32, 441*2), 441, Timestamp{}))
	assert.Equal(t, 10*time.Millisecond, s.AverageLatency())

	s2 := newSender(t, audio.LineFormat)
	f, err := NewFilterPort("f", "F", audio.LineFormat, func([]float32, int, Timestamp) {}, 0)
	require.NoError(t, err)
	require.NoError(t, f.SetLatency(882))

	require.NoError(t, Connect(s2.Port, f.Port))
	require.NoError(t, Connect(f.Port, r.Port))
	assert.Equal(t, 20*time.Millisecond, s2.AverageLatency())
}
