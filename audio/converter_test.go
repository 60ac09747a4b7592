// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"math"
	"testing"
)

// convertAll pushes src through c in chunks of chunk frames.
func convertAll(t *testing.T, c *Converter, src []float32, chunk int) []float32 {
	t.Helper()

	inCh := c.From().Channels
	outCh := c.To().Channels
	dst := make([]float32, c.MaxOutput(chunk)*outCh)

	var out []float32
	for i := 0; i < len(src); {
		end := min(i+chunk*inCh, len(src))
		consumed, produced := c.Convert(dst, src[i:end])
		out = append(out, dst[:produced*outCh]...)
		if consumed == 0 && produced == 0 {
			t.Fatalf("Convert() made no progress at sample %d", i)
		}
		i += consumed * inCh
	}

	return out
}

func TestNewConverter_InvalidFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to Format
	}{
		{name: "zero rate", from: Format{0, 2}, to: LineFormat},
		{name: "zero channels", from: LineFormat, to: Format{48000, 0}},
		{name: "negative rate", from: Format{-1, 1}, to: LineFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewConverter(tt.from, tt.to)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("NewConverter() error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestConverter_Passthrough(t *testing.T) {
	t.Parallel()

	c := MustConverter(LineFormat, LineFormat)
	if !c.Passthrough() {
		t.Fatal("Passthrough() = false for identical formats")
	}
	if c.Latency() != 0 {
		t.Errorf("Latency() = %d, want 0", c.Latency())
	}

	src := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	dst := make([]float32, len(src))

	consumed, produced := c.Convert(dst, src)
	if consumed != 3 || produced != 3 {
		t.Fatalf("Convert() = (%d, %d), want (3, 3)", consumed, produced)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], src[i])
		}
	}
}

func TestConverter_ShortDestination(t *testing.T) {
	t.Parallel()

	c := MustConverter(LineFormat, LineFormat)
	src := make([]float32, 20)
	dst := make([]float32, 6)

	consumed, produced := c.Convert(dst, src)
	if consumed != 3 || produced != 3 {
		t.Errorf("Convert() = (%d, %d), want (3, 3)", consumed, produced)
	}
}

func TestConverter_ChannelMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from int
		to   int
		in   []float32
		want []float32
	}{
		{name: "stereo to mono", from: 2, to: 1, in: []float32{0.4, 0.6, -1, 1}, want: []float32{0.5, 0}},
		{name: "mono to stereo", from: 1, to: 2, in: []float32{0.25, -0.5}, want: []float32{0.25, 0.25, -0.5, -0.5}},
		{name: "quad to mono", from: 4, to: 1, in: []float32{0, 0.1, 0.2, 0.3}, want: []float32{0.15}},
		{name: "quad to stereo", from: 4, to: 2, in: []float32{0.2, 0.4, 0.6, 0.8}, want: []float32{0.4, 0.6}},
		{name: "stereo to quad", from: 2, to: 4, in: []float32{0.1, 0.9}, want: []float32{0.1, 0.9, 0.1, 0.9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := MustConverter(Format{LineSampleRate, tt.from}, Format{LineSampleRate, tt.to})
			if c.Passthrough() {
				t.Fatal("Passthrough() = true for different layouts")
			}

			dst := make([]float32, len(tt.want))
			_, produced := c.Convert(dst, tt.in)
			if produced*tt.to != len(tt.want) {
				t.Fatalf("Convert() produced %d frames, want %d", produced, len(tt.want)/tt.to)
			}
			for i := range tt.want {
				if math.Abs(float64(dst[i]-tt.want[i])) > 1e-6 {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], tt.want[i])
				}
			}
		})
	}
}

func TestConverter_InputForIsExact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to Format
	}{
		{name: "44.1k to 48k", from: LineFormat, to: Format{48000, 2}},
		{name: "48k to 44.1k", from: Format{48000, 1}, to: LineFormat},
		{name: "8k to 44.1k", from: Format{8000, 1}, to: LineFormat},
		{name: "44.1k to 16k", from: LineFormat, to: Format{16000, 1}},
		{name: "same rate", from: Format{LineSampleRate, 1}, to: LineFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := MustConverter(tt.from, tt.to)
			for _, frames := range []int{1, 7, 64, 256, 511, 1024, 3} {
				need := c.InputFor(frames)
				if limit := c.MaxInput(frames); need > limit {
					t.Fatalf("InputFor(%d) = %d, above MaxInput %d", frames, need, limit)
				}
				src := make([]float32, need*tt.from.Channels)
				dst := make([]float32, frames*tt.to.Channels)

				consumed, produced := c.Convert(dst, src)
				if consumed != need || produced != frames {
					t.Fatalf("Convert(InputFor(%d)=%d) = (%d, %d), want (%d, %d)",
						frames, need, consumed, produced, need, frames)
				}
			}
		})
	}
}

func TestConverter_Downsampling(t *testing.T) {
	t.Parallel()

	// 1 second of 440Hz at the line rate
	src := readAll(newSineSource(Format{LineSampleRate, 1}, LineSampleRate, 440))

	c := MustConverter(Format{LineSampleRate, 1}, Format{8000, 1})
	out := convertAll(t, c, src, 512)

	if len(out) < 7998 || len(out) > 8002 {
		t.Errorf("Convert() produced %d frames, want ≈8000", len(out))
	}
	for i, s := range out {
		if s < -1.1 || s > 1.1 {
			t.Fatalf("out[%d] = %v out of range", i, s)
		}
	}
}

func TestConverter_Upsampling(t *testing.T) {
	t.Parallel()

	src := readAll(newConstantSource(Format{8000, 1}, 8000, 0.5))

	c := MustConverter(Format{8000, 1}, LineFormat)
	out := convertAll(t, c, src, 100)

	frames := len(out) / LineChannels
	if frames < 44090 || frames > 44110 {
		t.Errorf("Convert() produced %d frames, want ≈44100", frames)
	}
	for i, s := range out {
		if math.Abs(float64(s-0.5)) > 1e-3 {
			t.Fatalf("out[%d] = %v, want 0.5", i, s)
		}
	}
}

func TestConverter_Reset(t *testing.T) {
	t.Parallel()

	c := MustConverter(Format{48000, 2}, LineFormat)
	before := c.InputFor(100)

	src := make([]float32, 333*2)
	dst := make([]float32, c.MaxOutput(333)*2)
	c.Convert(dst, src)

	c.Reset()
	if got := c.InputFor(100); got != before {
		t.Errorf("InputFor() after Reset = %d, want %d", got, before)
	}
}

func TestConverter_Latency(t *testing.T) {
	t.Parallel()

	if got := MustConverter(Format{48000, 2}, LineFormat).Latency(); got != 2 {
		t.Errorf("Latency() = %d, want 2", got)
	}
	if got := MustConverter(Format{LineSampleRate, 1}, LineFormat).Latency(); got != 0 {
		t.Errorf("Latency() = %d, want 0 for channel mapping only", got)
	}
}

func TestConverter_ZeroAllocs(t *testing.T) {
	c := MustConverter(Format{48000, 1}, LineFormat)
	src := make([]float32, 512)
	dst := make([]float32, c.MaxOutput(512)*LineChannels)

	allocs := testing.AllocsPerRun(100, func() {
		c.Convert(dst, src)
		_ = c.InputFor(256)
	})

	if allocs != 0 {
		t.Errorf("Convert() allocated %v times, want 0", allocs)
	}
}

func BenchmarkConverter_Upsample(b *testing.B) {
	c := MustConverter(LineFormat, Format{48000, 2})
	src := make([]float32, 1024*2)
	dst := make([]float32, c.MaxOutput(1024)*2)

	b.ReportAllocs()
	for b.Loop() {
		c.Convert(dst, src)
	}
}
