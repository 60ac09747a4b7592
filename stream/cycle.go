// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/port"
)

// Ticker paces a running cycle. *time.Ticker satisfies it through
// TimeTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// TimeTicker wraps time.NewTicker.
func TimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Option configures a Cycle.
type Option func(*Cycle)

// WithRealtime paces steps at the duration of one step of audio.
func WithRealtime() Option {
	return func(c *Cycle) { c.realtime = true }
}

// WithTicker replaces the ticker used by WithRealtime.
func WithTicker(newTicker func(time.Duration) Ticker) Option {
	return func(c *Cycle) { c.newTicker = newTicker }
}

// WithLogger sets the logger of lifecycle messages.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Cycle) { c.log = log }
}

// WithNow sets the clock used for host timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Cycle) { c.now = now }
}

// Cycle steps a set of players, filters, receivers and recorders in a
// fixed order. The Add methods must not be called while it runs.
type Cycle struct {
	frames    int
	realtime  bool
	newTicker func(time.Duration) Ticker
	now       func() time.Time
	log       *logrus.Entry

	players   []*Player
	filters   []*port.FilterPort
	receivers []*port.ReceiverPort
	recorders []*Recorder

	sample  uint64
	running atomic.Bool
}

// NewCycle returns a cycle that advances frames line frames per step.
func NewCycle(frames int, opts ...Option) (*Cycle, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrames, frames)
	}

	c := &Cycle{
		frames:    frames,
		newTicker: TimeTicker,
		now:       time.Now,
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Cycle) AddPlayer(p *Player)              { c.players = append(c.players, p) }
func (c *Cycle) AddFilter(f *port.FilterPort)     { c.filters = append(c.filters, f) }
func (c *Cycle) AddRecorder(r *Recorder)          { c.recorders = append(c.recorders, r) }
func (c *Cycle) AddReceiver(r *port.ReceiverPort) { c.receivers = append(c.receivers, r) }

// Frames is the step size in line frames.
func (c *Cycle) Frames() int { return c.frames }

// SampleTime is the line frame count of the next step.
func (c *Cycle) SampleTime() uint64 { return c.sample }

// Period is how long one step of audio lasts.
func (c *Cycle) Period() time.Duration {
	return time.Duration(c.frames) * time.Second / audio.LineSampleRate
}

// Step runs one step. It reports whether any player still has audio.
func (c *Cycle) Step() (bool, error) {
	ts := port.Timestamp{SampleTime: c.sample, HostTime: c.now()}

	active := false
	for _, p := range c.players {
		if err := p.step(c.frames); err != nil {
			return false, err
		}
		if !p.Done() {
			active = true
		}
	}

	for _, f := range c.filters {
		f.Pump(c.frames, ts)
	}

	for _, r := range c.receivers {
		r.Dispatch()
	}

	for _, r := range c.recorders {
		if err := r.step(c.frames); err != nil {
			return false, err
		}
	}

	c.sample += uint64(c.frames)

	return active, nil
}

// Run steps until every player is done or ctx ends. Without players it
// only stops with ctx, and then only when paced.
func (c *Cycle) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer c.running.Store(false)

	if len(c.players) == 0 && !c.realtime {
		return ErrNothingToPlay
	}

	log := c.log.WithFields(logrus.Fields{
		"function":  "Run",
		"frames":    c.frames,
		"players":   len(c.players),
		"filters":   len(c.filters),
		"recorders": len(c.recorders),
		"realtime":  c.realtime,
	})
	log.Debug("Cycle started")

	var tick <-chan time.Time
	if c.realtime {
		t := c.newTicker(c.Period())
		defer t.Stop()
		tick = t.C()
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				log.WithField("sample_time", c.sample).Debug("Cycle cancelled")
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			log.WithField("sample_time", c.sample).Debug("Cycle cancelled")
			return err
		}

		active, err := c.Step()
		if err != nil {
			log.WithField("error", err.Error()).Error("Cycle step failed")
			return err
		}

		if !active && len(c.players) > 0 {
			log.WithField("sample_time", c.sample).Debug("Cycle finished")
			return nil
		}
	}
}

// Start runs the cycle on its own goroutine. The channel yields the
// result of Run and is then closed.
func (c *Cycle) Start(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		errc <- c.Run(ctx)
	}()

	return errc
}
