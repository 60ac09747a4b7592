// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams with github.com/hajimehoshi/go-mp3.
//
// # Output format
//
// The decoder always produces stereo at the stream's own sample rate,
// typically 44.1 or 48 kHz, as float32 in [-1,1):
//
//	f, _ := os.Open("take.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    return err
//	}
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Reads always return whole frames. A sender port declared with
// src.Format() converts the audio to the line format.
//
// # Limitations
//
// Encoding is not supported, and the stream must be read from the
// start.
package mp3
