// SPDX-License-Identifier: EPL-2.0

// Package peer describes other sessions as a session sees them: their
// identity, the ports they publish and the triggers they expose.
//
// Everything on a Peer is a read-only snapshot that the hub refreshes as
// the other session changes. Remote triggers forward activations and
// value changes through an Invoker, without waiting for the other side.
package peer
