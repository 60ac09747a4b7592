// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/ik5/audlink/utils"
)

// Converter streams interleaved frames from one Format to another.
// Channels are mapped first, then the sample rate is changed using
// cubic interpolation. A simple low-pass filter is applied when
// downsampling.
//
// Convert, InputFor and Reset never allocate, so a Converter may be
// driven from a realtime goroutine. A Converter is not safe for
// concurrent use.
type Converter struct {
	from Format
	to   Format

	passthrough bool
	sameRate    bool
	ratio       float64 // from.SampleRate / to.SampleRate - how many source frames per output frame

	// History holding 4 frames for cubic interpolation, already in the
	// destination channel layout.
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames [4][]float32
	primed bool

	// Position between frames[1] and frames[2], in source frames.
	pos float64

	mapped []float32

	useFilter   bool
	filterAlpha float32
	filterState []float32
}

// NewConverter returns a converter from one format to another.
func NewConverter(from, to Format) (*Converter, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}

	ratio := float64(from.SampleRate) / float64(to.SampleRate)

	c := &Converter{
		from:        from,
		to:          to,
		passthrough: from == to,
		sameRate:    from.SampleRate == to.SampleRate,
		ratio:       ratio,
		pos:         1,
		mapped:      make([]float32, to.Channels),
		useFilter:   ratio > 1.0,
		filterState: make([]float32, to.Channels),
	}
	if c.useFilter {
		// One-pole low-pass, cutoff near the destination Nyquist frequency.
		c.filterAlpha = 0.5
	}

	for i := range c.frames {
		c.frames[i] = make([]float32, to.Channels)
	}

	return c, nil
}

// MustConverter is like NewConverter but panics on invalid formats.
func MustConverter(from, to Format) *Converter {
	c, err := NewConverter(from, to)
	if err != nil {
		panic(err)
	}

	return c
}

func (c *Converter) From() Format { return c.from }
func (c *Converter) To() Format   { return c.to }

// Passthrough reports whether samples are copied unchanged.
func (c *Converter) Passthrough() bool { return c.passthrough }

// Latency is the delay introduced by interpolation, in output frames.
func (c *Converter) Latency() int {
	if c.sameRate {
		return 0
	}

	return int(math.Ceil(2 / c.ratio))
}

// Reset drops the interpolation history.
func (c *Converter) Reset() {
	c.primed = false
	c.pos = 1
	clear(c.filterState)
}

// InputFor returns how many source frames Convert consumes to produce
// exactly frames output frames from the current state.
func (c *Converter) InputFor(frames int) int {
	if c.sameRate {
		return frames
	}

	pos := c.pos
	need := 0
	for range frames {
		for pos >= 1.0 {
			pos -= 1.0
			need++
		}
		pos += c.ratio
	}

	return need
}

// MaxOutput is an upper bound of the output frames produced by frames
// source frames.
func (c *Converter) MaxOutput(frames int) int {
	if c.sameRate {
		return frames
	}

	return int(math.Ceil(float64(frames+1)/c.ratio)) + 1
}

// MaxInput is an upper bound of InputFor(frames) for any converter state.
func (c *Converter) MaxInput(frames int) int {
	if c.sameRate {
		return frames
	}

	return int(math.Ceil(float64(frames+1)*c.ratio)) + 1
}

// Convert reads source frames from src and writes converted frames to
// dst until either is exhausted. It returns the frames consumed from src
// and produced into dst. Partial trailing frames are ignored.
func (c *Converter) Convert(dst, src []float32) (consumed, produced int) {
	inFrames := len(src) / c.from.Channels
	outFrames := len(dst) / c.to.Channels

	if c.sameRate {
		n := min(inFrames, outFrames)
		if c.passthrough {
			copy(dst, src[:n*c.from.Channels])
			return n, n
		}
		for f := range n {
			c.mapFrame(dst[f*c.to.Channels:(f+1)*c.to.Channels], src[f*c.from.Channels:(f+1)*c.from.Channels])
		}
		return n, n
	}

	for produced < outFrames {
		// pos must be in [0, 1) to interpolate between frames[1] and frames[2]
		for c.pos >= 1.0 {
			if consumed == inFrames {
				return consumed, produced
			}
			c.push(src[consumed*c.from.Channels : (consumed+1)*c.from.Channels])
			consumed++
			c.pos -= 1.0
		}

		alpha := float32(c.pos)
		out := dst[produced*c.to.Channels : (produced+1)*c.to.Channels]
		for ch := range out {
			out[ch] = utils.CatmullRom(c.frames[0][ch], c.frames[1][ch], c.frames[2][ch], c.frames[3][ch], alpha)
		}

		produced++
		c.pos += c.ratio
	}

	return consumed, produced
}

// push maps one source frame and shifts it into the history.
func (c *Converter) push(frame []float32) {
	c.mapFrame(c.mapped, frame)

	if c.useFilter {
		if !c.primed {
			// Avoid warm-up transients
			copy(c.filterState, c.mapped)
		}
		for ch, x := range c.mapped {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			y := c.filterAlpha*x + (1-c.filterAlpha)*c.filterState[ch]
			c.mapped[ch] = y
			c.filterState[ch] = y
		}
	}

	if !c.primed {
		for i := range c.frames {
			copy(c.frames[i], c.mapped)
		}
		c.primed = true
		return
	}

	// Shift frames: [0,1,2,3] -> [1,2,3,new]
	oldest := c.frames[0]
	c.frames[0], c.frames[1], c.frames[2] = c.frames[1], c.frames[2], c.frames[3]
	copy(oldest, c.mapped)
	c.frames[3] = oldest
}

// mapFrame converts a single frame between channel layouts.
func (c *Converter) mapFrame(dst, src []float32) {
	inCh := len(src)
	outCh := len(dst)

	switch {
	case inCh == outCh:
		copy(dst, src)
	case outCh == 1 && inCh == 2: // Stereo (most common)
		dst[0] = (src[0] + src[1]) * 0.5
	case outCh == 1:
		sum := float32(0)
		for _, s := range src {
			sum += s
		}
		dst[0] = sum / float32(inCh)
	case inCh == 1:
		for ch := range dst {
			dst[ch] = src[0]
		}
	case outCh < inCh:
		// Fold extra channels onto the available outputs
		for ch := range dst {
			sum := float32(0)
			count := 0
			for k := ch; k < inCh; k += outCh {
				sum += src[k]
				count++
			}
			dst[ch] = sum / float32(count)
		}
	default:
		for ch := range dst {
			dst[ch] = src[ch%inCh]
		}
	}
}
