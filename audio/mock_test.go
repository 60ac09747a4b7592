// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockSource is a test helper that generates audio data for testing.
// It implements the Source interface and can generate various waveforms.
type mockSource struct {
	format      Format
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32
}

func newMockSource(format Format, totalFrames int, waveform func(frame int, channel int) float32) *mockSource {
	return &mockSource{
		format:      format,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// newSilentSource creates a mock source that generates silence (all zeros).
func newSilentSource(format Format, totalFrames int) *mockSource {
	return newMockSource(format, totalFrames, func(int, int) float32 { return 0 })
}

// newSineSource creates a mock source that generates a sine wave.
func newSineSource(format Format, totalFrames int, frequency float64) *mockSource {
	return newMockSource(format, totalFrames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(format.SampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// newConstantSource creates a mock source with constant value.
func newConstantSource(format Format, totalFrames int, value float32) *mockSource {
	return newMockSource(format, totalFrames, func(int, int) float32 { return value })
}

func (m *mockSource) Format() Format { return m.format }
func (m *mockSource) Close() error   { return nil }

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
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

// readAll drains src into a single slice.
func readAll(src Source) []float32 {
	var out []float32
	buf := make([]float32, 1024*src.Format().Channels)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			return out
		}
	}
}
