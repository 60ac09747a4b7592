// SPDX-License-Identifier: EPL-2.0

package audlink_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ik5/audlink"
	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/formats/wav"
	"github.com/ik5/audlink/internal/audiotest"
	"github.com/ik5/audlink/session"
)

// Example_bounce mixes two sources, one panned hard left and one at half
// volume, and reads the first frame back.
func Example_bounce() {
	cfg := session.DefaultConfig()
	cfg.LogLevel = "error"

	out := new(bytes.Buffer)
	err := audlink.Bounce(context.Background(), out, cfg,
		audlink.Input{Name: "lead", Source: audiotest.NewConstantSource(audio.LineFormat, 1000, 0.5), Pan: -1},
		audlink.Input{Name: "pad", Source: audiotest.NewConstantSource(audio.LineFormat, 1000, 0.25), Volume: 0.5},
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	src, err := wav.Decoder{}.Decode(out)
	if err != nil {
		fmt.Println(err)
		return
	}

	frame := make([]float32, 2)
	_, _ = src.ReadSamples(frame)

	fmt.Println(src.Format())
	fmt.Printf("%.3f %.3f\n", frame[0], frame[1])
	// Output:
	// 44100Hz/2ch
	// 0.625 0.125
}
