// SPDX-License-Identifier: EPL-2.0

package session

import (
	"fmt"

	"github.com/ik5/audlink/peer"
	"github.com/ik5/audlink/port"
	"github.com/ik5/audlink/trigger"
)

// EventType names what changed.
type EventType uint8

const (
	EventConnectionsChanged EventType = iota + 1
	EventPortAdded
	EventPortRemoved
	EventPeerAppeared
	EventPeerDisappeared
	EventTriggerChanged
)

func (t EventType) String() string {
	switch t {
	case EventConnectionsChanged:
		return "connections-changed"
	case EventPortAdded:
		return "port-added"
	case EventPortRemoved:
		return "port-removed"
	case EventPeerAppeared:
		return "peer-appeared"
	case EventPeerDisappeared:
		return "peer-disappeared"
	case EventTriggerChanged:
		return "trigger-changed"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is delivered on a session's event channel. Only the fields that
// apply to Type are set.
type Event struct {
	Type EventType

	// Port is the port added or removed.
	Port *port.Port
	// Source and Destination are the ends of a changed connection.
	Source      *port.Port
	Destination *port.Port
	// Connected is false when the connection went away.
	Connected bool

	// Peer is the peer that appeared, disappeared, published the port
	// or owns the trigger. nil for the session's own ports.
	Peer    *peer.Peer
	Trigger trigger.ID
}
