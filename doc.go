// SPDX-License-Identifier: EPL-2.0

// Package audlink routes audio between applications running side by side.
//
// Applications join a session.Hub and publish ports: senders that emit
// audio, receivers that take it in and filters that process it in
// place. Any sender or filter can be connected to any filter or
// receiver of any application. Audio travels between ports over lines,
// lock-free rings in a fixed 44.1kHz stereo float32 format, and every
// port converts from and to its own client format.
//
// Applications also publish triggers, buttons and variables that peers
// can press or set remotely.
//
// # Packages
//
//   - audio: formats, the Source interface and the format converter
//   - port: sender, receiver and filter ports and their connections
//   - trigger: local buttons and variables
//   - peer: other applications as discovered, with their remote triggers
//   - session: the hub, sessions, events and configuration
//   - stream: players, recorders and the step loop that drives them
//   - formats: WAV, MP3, Ogg Vorbis and AIFF decoders, WAV output
//
// # Bouncing
//
// Bounce wires decoded sources through a hub into a single mix and
// writes it as 16-bit WAV:
//
//	src, _ := formats.NewRegistry().DecodeFile(name, f)
//	err := audlink.Bounce(ctx, out, session.DefaultConfig(),
//		audlink.Input{Name: "drums", Source: src, Volume: 0.8})
package audlink
