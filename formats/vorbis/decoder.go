// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audlink/audio"
)

// sampleReader is the part of oggvorbis.Reader a source needs. Read
// returns interleaved values, always a whole number of frames.
type sampleReader interface {
	Read(p []float32) (int, error)
}

type source struct {
	r      sampleReader
	format audio.Format
	done   bool
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Close() error         { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	want := len(dst) - len(dst)%s.format.Channels
	if want == 0 {
		return 0, nil
	}

	total := 0
	for total < want {
		n, err := s.r.Read(dst[total:want])
		total += n

		if errors.Is(err, io.EOF) {
			s.done = true
			return total, io.EOF
		}
		if err != nil {
			return total, fmt.Errorf("decoding vorbis: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return total, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading vorbis header: %w", err)
	}

	format := audio.Format{SampleRate: dec.SampleRate(), Channels: dec.Channels()}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &source{r: dec, format: format}, nil
}
