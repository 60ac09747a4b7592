// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// LineSampleRate is the sample rate every line carries, in Hz.
const LineSampleRate = 44100

// LineChannels is the channel count every line carries.
const LineChannels = 2

// LineFormat is the canonical format that travels between ports.
// Samples are interleaved float32 in [-1,1].
var LineFormat = Format{SampleRate: LineSampleRate, Channels: LineChannels}

// Format describes an interleaved float32 PCM stream.
type Format struct {
	// SampleRate in Hz.
	SampleRate int `yaml:"sample_rate"`
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels int `yaml:"channels"`
}

// Validate reports whether f can be used for conversion.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}

	return nil
}

// IsCompatible reports whether f matches the line format, in which case
// no conversion is performed.
func (f Format) IsCompatible() bool {
	return f == LineFormat
}

// Samples returns the number of interleaved samples that hold frames frames.
func (f Format) Samples(frames int) int {
	return frames * f.Channels
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}
