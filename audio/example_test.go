// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"
	"io"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/internal/audiotest"
)

// Example_converter demonstrates converting a client format to the line format.
func Example_converter() {
	// 1 second of a 440Hz tone at 48kHz mono
	client := audio.Format{SampleRate: 48000, Channels: 1}
	source := audiotest.NewSineSource(client, 48000, 440.0)

	conv, err := audio.NewConverter(client, audio.LineFormat)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	in := make([]float32, 1024)
	out := make([]float32, conv.MaxOutput(1024)*audio.LineChannels)
	total := 0

	for {
		n, err := source.ReadSamples(in)
		_, produced := conv.Convert(out, in[:n])
		total += produced

		if err == io.EOF {
			break
		}
	}

	fmt.Printf("Line format: %s\n", audio.LineFormat)
	fmt.Printf("Frames within 2 of 44100: %v\n", total >= 44098 && total <= 44102)
	// Output:
	// Line format: 44100Hz/2ch
	// Frames within 2 of 44100: true
}

// Example_exactOutput shows how to pull an exact number of frames.
func Example_exactOutput() {
	conv := audio.MustConverter(audio.LineFormat, audio.Format{SampleRate: 48000, Channels: 2})

	// A receiver needs exactly 256 frames at 48kHz
	need := conv.InputFor(256)
	in := make([]float32, need*audio.LineChannels)
	out := make([]float32, 256*2)

	consumed, produced := conv.Convert(out, in)
	fmt.Println(consumed == need, produced)
	// Output:
	// true 256
}

// Example_channelMapping demonstrates mixing stereo down to mono.
func Example_channelMapping() {
	conv := audio.MustConverter(
		audio.Format{SampleRate: 44100, Channels: 2},
		audio.Format{SampleRate: 44100, Channels: 1},
	)

	out := make([]float32, 2)
	conv.Convert(out, []float32{0.2, 0.4, -0.5, 0.5})

	fmt.Printf("%.1f %.1f\n", out[0], out[1])
	// Output:
	// 0.3 0.0
}

type silentDecoder struct{}

func (silentDecoder) Decode(r io.Reader) (audio.Source, error) {
	return audiotest.NewSilentSource(audio.LineFormat, 10), nil
}

// Example_registry demonstrates decoder registration.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("wav", silentDecoder{})
	registry.Register(".OGG", silentDecoder{})

	_, ok := registry.Get("ogg")
	fmt.Println(registry.Formats(), ok)
	// Output:
	// [ogg wav] true
}
