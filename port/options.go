// SPDX-License-Identifier: EPL-2.0

package port

import (
	"slices"
	"time"
)

const (
	// DefaultLineFrames is the capacity of a line, about 186ms.
	DefaultLineFrames = 8192
	// DefaultMaxFrames is the largest slice processed in one step.
	DefaultMaxFrames = 4096
	// DefaultMuteGrace keeps a source muted after a live destination leaves.
	DefaultMuteGrace = 500 * time.Millisecond
)

type settings struct {
	owner      string
	attrs      Attributes
	icon       []byte
	lineFrames int
	maxFrames  int
	muteGrace  time.Duration
	now        func() time.Time
}

func defaultSettings() settings {
	return settings{
		lineFrames: DefaultLineFrames,
		maxFrames:  DefaultMaxFrames,
		muteGrace:  DefaultMuteGrace,
		now:        time.Now,
	}
}

// Option configures a port at construction.
type Option func(*settings)

// WithOwner records the id of the session that owns the port.
func WithOwner(owner string) Option {
	return func(s *settings) { s.owner = owner }
}

func WithAttributes(attrs Attributes) Option {
	return func(s *settings) { s.attrs = attrs }
}

func WithIcon(icon []byte) Option {
	return func(s *settings) { s.icon = slices.Clone(icon) }
}

// WithLineFrames sets the capacity of lines whose destination is this
// port.
func WithLineFrames(frames int) Option {
	return func(s *settings) {
		if frames > 0 {
			s.lineFrames = frames
		}
	}
}

// WithMaxFrames sets the largest number of client frames converted in
// one step. Larger requests are split.
func WithMaxFrames(frames int) Option {
	return func(s *settings) {
		if frames > 0 {
			s.maxFrames = frames
		}
	}
}

func WithMuteGrace(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.muteGrace = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
