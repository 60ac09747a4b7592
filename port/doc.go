// SPDX-License-Identifier: EPL-2.0

// Package port implements the audio endpoints that sessions publish:
// senders, receivers and filters.
//
// # Lines
//
// Ports talk to each other over lines. A line is a lock-free ring that
// carries audio in audio.LineFormat from one source port to one
// destination port. Every port declares its own client format and
// converts to and from the line format on the way in and out, so a
// 48 kHz mono sender can feed a 44.1 kHz stereo receiver directly.
//
//	s, _ := port.NewSenderPort("out", "Synth", audio.Format{SampleRate: 48000, Channels: 1})
//	r, _ := port.NewReceiverPort("in", "Recorder", audio.LineFormat)
//	if err := port.Connect(s.Port, r.Port); err != nil {
//	    return err
//	}
//
// Connect accepts senders and filters as sources and receivers and
// filters as destinations. Self connections, duplicates and loops
// through filters are rejected with ErrInvalidConnection.
//
// # Senders
//
// A sender pushes client audio into every destination line:
//
//	ok := s.Send(buf, frames, port.Timestamp{SampleTime: t})
//
// Send returns false when nothing is connected or a line had no room.
// Hosts that produce audio in a render callback set a RenderFunc and
// call Render instead; Render silences the local output while IsMuted
// reports that a destination plays the audio live.
//
// # Receivers
//
// Receive always fills exactly the requested number of frames. Missing
// audio becomes silence, and so does any misuse such as naming a port
// that is not a source:
//
//	ts := r.Receive(nil, dst, frames) // mixed mode
//	r.EndReceiveInterval()
//
// In mixed mode every source is summed with the volume and pan set by
// SetVolume and SetPan. Per-source mode reads one line unweighted.
// EndReceiveInterval drops whatever is still buffered so the next
// interval starts fresh. An InputHandler turns the receiver into push
// mode: Dispatch calls it whenever audio is waiting and ends the
// interval afterwards.
//
// # Filters
//
// A filter receives the mix of its sources, processes it in its own
// client format and forwards it to its destinations:
//
//	f, _ := port.NewFilterPort("fx", "Gain", audio.LineFormat, func(buf []float32, frames int, _ port.Timestamp) {
//	    for i := range buf {
//	        buf[i] *= 0.5
//	    }
//	}, 256)
//	f.Pump(frames, ts)
//
// A non-zero block size makes the callback see fixed blocks. A Unit is
// called with whatever each Pump delivers. SetLatency declares the delay
// the filter adds and is refused with ErrLatencyLocked while connected.
// A filter reports the attributes of both neighbours through
// UpstreamPortAttributes and DownstreamPortAttributes.
//
// # Realtime and control domains
//
// Methods fall into two domains. Send, Render, Receive, Pump,
// EndReceiveInterval, Dispatch and the state queries (IsConnected,
// IsMuted, IsConnectedToSelf, volume and pan) run in the realtime
// domain: they never lock, log or allocate. Everything else, including
// Connect and Disconnect, belongs to the control domain. Connection
// snapshots are copy-on-write, so a realtime call sees either the old
// graph or the new one.
//
// All Receive calls on one receiver must come from the same goroutine.
// The same holds for Send on a sender and Pump on a filter.
package port
