// SPDX-License-Identifier: EPL-2.0

// Package session ties ports and triggers to applications.
//
// # Hub and sessions
//
// A Hub is the in-process controller. Every application joins it and
// gets a Session, registers its ports and triggers there, and sees the
// other sessions as peers:
//
//	hub, err := session.NewHub(session.DefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer hub.Close()
//
//	synth, _ := hub.Join(session.Info{Name: "synth"})
//	out, _ := synth.AddSenderPort("out", "Synth Out", audio.LineFormat)
//
//	rec, _ := hub.Join(session.Info{Name: "recorder"})
//	in, _ := rec.AddReceiverPort("in", "Recorder In", audio.LineFormat)
//
//	err = rec.Connect(out.Port, in.Port)
//
// Ports created through a session take their line size, slice size and
// mute grace period from the hub's Config. Only registered ports can be
// connected through the hub.
//
// # Events
//
// Graph changes, peer discovery and trigger updates are reported on the
// session's event channel:
//
//	for ev := range rec.Events() {
//	    switch ev.Type {
//	    case session.EventPeerAppeared:
//	        log.Println("found", ev.Peer.Name())
//	    case session.EventConnectionsChanged:
//	        log.Println(ev.Source, "->", ev.Destination, ev.Connected)
//	    }
//	}
//
// The channel is buffered by Config.EventQueue. Events that do not fit
// are dropped, logged and counted by Dropped; the hub never waits for a
// slow reader. The channel closes with the session.
//
// # Triggers
//
// Triggers added with AddTrigger show up on every peer as remote
// triggers. Invocations from a peer run on the hub's control queue,
// never on the caller's goroutine. Sync waits for queued invocations.
//
// # Configuration
//
// Config is loaded from YAML on top of DefaultConfig:
//
//	device_name: studio
//	line_frames: 4096
//	mute_grace: 500ms
//	log_level: debug
//
// Unknown keys are rejected. NewLogger builds a logrus logger at the
// configured level.
package session
