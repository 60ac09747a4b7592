// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds sources and helpers shared by tests.
package audiotest

import (
	"io"
	"math"

	"github.com/ik5/audlink/audio"
)

// MockSource generates frames from a waveform function.
// It implements the audio.Source interface.
type MockSource struct {
	format      audio.Format
	totalFrames int
	generated   int
	closed      bool
	waveform    func(frame int, channel int) float32
}

// NewMockSource creates a new mock audio source that yields totalFrames frames.
func NewMockSource(format audio.Format, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		format:      format,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(format audio.Format, totalFrames int) *MockSource {
	return NewConstantSource(format, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave on every channel.
func NewSineSource(format audio.Format, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(format, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(format.SampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(format audio.Format, totalFrames int, value float32) *MockSource {
	return NewMockSource(format, totalFrames, func(int, int) float32 { return value })
}

// NewRampSource creates a mock source whose frame n has the value n/scale
// on every channel. Useful to check ordering.
func NewRampSource(format audio.Format, totalFrames int, scale float32) *MockSource {
	return NewMockSource(format, totalFrames, func(frame int, _ int) float32 {
		return float32(frame) / scale
	})
}

func (m *MockSource) Format() audio.Format { return m.format }
func (m *MockSource) Closed() bool         { return m.closed }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Reset resets the generated frame counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	ch := m.format.Channels
	frames := min(len(dst)/ch, m.totalFrames-m.generated)
	for f := range frames {
		for c := range ch {
			dst[f*ch+c] = m.waveform(m.generated+f, c)
		}
	}
	m.generated += frames

	if m.generated >= m.totalFrames {
		return frames * ch, io.EOF
	}

	return frames * ch, nil
}

// Stereo builds an interleaved stereo buffer from per-frame values.
func Stereo(values ...float32) []float32 {
	out := make([]float32, 0, len(values)*2)
	for _, v := range values {
		out = append(out, v, v)
	}

	return out
}
