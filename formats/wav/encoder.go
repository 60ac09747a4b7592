// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/utils"
)

// Encoder streams interleaved float32 samples into an integer PCM WAV
// file. The header is patched with the final sizes on Close, so the
// writer must be seekable.
type Encoder struct {
	enc      *wav.Encoder
	format   audio.Format
	bitDepth int
	intBuf   *goaudio.IntBuffer
	frames   int
	closed   bool
}

// NewEncoder writes format at bitDepth (16, 24 or 32) to w.
func NewEncoder(w io.WriteSeeker, format audio.Format, bitDepth int) (*Encoder, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &Encoder{
		enc:      wav.NewEncoder(w, format.SampleRate, bitDepth, format.Channels, formatPCM),
		format:   format,
		bitDepth: bitDepth,
		intBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (e *Encoder) Format() audio.Format { return e.format }

// Frames counts the frames written so far.
func (e *Encoder) Frames() int { return e.frames }

// WriteSamples appends samples, which must hold whole frames. Values are
// clamped to [-1,1].
func (e *Encoder) WriteSamples(samples []float32) error {
	if e.closed {
		return ErrEncoderClosed
	}
	if len(samples)%e.format.Channels != 0 {
		return audio.ErrInvalidDstSize
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(e.intBuf.Data) < len(samples) {
		e.intBuf.Data = make([]int, len(samples))
	}
	e.intBuf.Data = e.intBuf.Data[:len(samples)]

	for i, v := range samples {
		e.intBuf.Data[i] = utils.Float32ToInt(v, e.bitDepth)
	}

	if err := e.enc.Write(e.intBuf); err != nil {
		return fmt.Errorf("writing PCM: %w", err)
	}
	e.frames += len(samples) / e.format.Channels

	return nil
}

// Close finalizes the header. It does not close the underlying writer.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}
