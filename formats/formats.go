// SPDX-License-Identifier: EPL-2.0

// Package formats wires every decoder of the module into an
// audio.Registry keyed by file extension.
package formats

import (
	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/formats/aiff"
	"github.com/ik5/audlink/formats/mp3"
	"github.com/ik5/audlink/formats/vorbis"
	"github.com/ik5/audlink/formats/wav"
)

// Register adds the built-in decoders to r.
func Register(r *audio.Registry) {
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})
}

// NewRegistry returns a registry with the built-in decoders.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)

	return r
}
