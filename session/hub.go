// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audlink/internal/queue"
	"github.com/ik5/audlink/peer"
	"github.com/ik5/audlink/port"
	"github.com/ik5/audlink/trigger"
)

// Hub is the in-process controller every session registers with. It
// handles discovery, the connection graph and trigger invocations.
type Hub struct {
	cfg   Config
	log   *logrus.Logger
	queue *queue.Queue

	// guards sessions and serializes every graph change
	mtx      sync.RWMutex
	sessions []*Session
	closed   bool
}

// NewHub validates cfg and starts the control queue. A nil logger gets
// one built from cfg.
func NewHub(cfg Config, logger *logrus.Logger) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewHub",
			"error":    err.Error(),
		}).Error("Config validation failed")
		return nil, err
	}

	if logger == nil {
		var err error
		if logger, err = cfg.NewLogger(nil); err != nil {
			return nil, err
		}
	}

	h := &Hub{cfg: cfg, log: logger}
	h.queue = queue.New(cfg.ControlQueue, func(err error) {
		h.log.WithFields(logrus.Fields{
			"function": "queue",
			"error":    err.Error(),
		}).Warn("Control operation failed")
	})
	h.queue.Start()

	h.log.WithFields(logrus.Fields{
		"function":    "NewHub",
		"device":      cfg.DeviceName,
		"line_frames": cfg.LineFrames,
		"max_frames":  cfg.MaxFrames,
	}).Debug("Hub created")

	return h, nil
}

func (h *Hub) Config() Config { return h.cfg }

// Join registers a new session. Every present session discovers it as a
// peer and it discovers them.
func (h *Hub) Join(info Info) (*Session, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	s := newSession(h, info)
	for _, other := range h.sessions {
		s.addPeer(h.viewOf(other))
		other.addPeer(h.viewOf(s))
	}
	h.sessions = append(h.sessions, s)

	s.log.WithFields(logrus.Fields{
		"function": "Join",
		"peers":    len(h.sessions) - 1,
	}).Info("Session joined")

	return s, nil
}

// Sessions returns the registered sessions in join order.
func (h *Hub) Sessions() []*Session {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	return slices.Clone(h.sessions)
}

// viewOf builds what other sessions see of s. Caller holds h.mtx.
func (h *Hub) viewOf(s *Session) *peer.Peer {
	p := peer.New(s.peerInfo(), h)
	p.SetPorts(s.Ports())
	p.SetTriggers(s.triggers.Infos())

	return p
}

// owner finds the session that registered p. Caller holds h.mtx.
func (h *Hub) owner(p *port.Port) (*Session, bool) {
	if p == nil {
		return nil, false
	}

	for _, s := range h.sessions {
		if s.id.String() == p.Owner() && s.hasPort(p) {
			return s, true
		}
	}

	return nil, false
}

func (h *Hub) session(id xid.ID) (*Session, bool) {
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	for _, s := range h.sessions {
		if s.id == id {
			return s, true
		}
	}

	return nil, false
}

// Connect opens a line between two registered ports of any sessions.
func (h *Hub) Connect(from, to *port.Port) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	src, dst, err := h.ends(from, to)
	if err != nil {
		return err
	}

	if err := port.Connect(from, to); err != nil {
		h.log.WithFields(logrus.Fields{
			"function": "Connect",
			"from":     from.String(),
			"to":       to.String(),
			"error":    err.Error(),
		}).Warn("Connection refused")
		return err
	}

	h.log.WithFields(logrus.Fields{
		"function": "Connect",
		"from":     from.String(),
		"to":       to.String(),
	}).Info("Ports connected")

	h.connectionChanged(src, dst, from, to, true)

	return nil
}

// Disconnect closes the line between two registered ports.
func (h *Hub) Disconnect(from, to *port.Port) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	src, dst, err := h.ends(from, to)
	if err != nil {
		return err
	}

	if err := port.Disconnect(from, to); err != nil {
		return err
	}

	h.log.WithFields(logrus.Fields{
		"function": "Disconnect",
		"from":     from.String(),
		"to":       to.String(),
	}).Info("Ports disconnected")

	h.connectionChanged(src, dst, from, to, false)

	return nil
}

func (h *Hub) ends(from, to *port.Port) (*Session, *Session, error) {
	if h.closed {
		return nil, nil, ErrHubClosed
	}

	src, ok := h.owner(from)
	if !ok {
		return nil, nil, fmt.Errorf("source %v: %w", from, ErrUnknownPort)
	}
	dst, ok := h.owner(to)
	if !ok {
		return nil, nil, fmt.Errorf("destination %v: %w", to, ErrUnknownPort)
	}

	return src, dst, nil
}

// connectionChanged tells both owners. Caller holds h.mtx.
func (h *Hub) connectionChanged(src, dst *Session, from, to *port.Port, connected bool) {
	ev := Event{
		Type:        EventConnectionsChanged,
		Source:      from,
		Destination: to,
		Connected:   connected,
	}

	src.emit(ev)
	if dst != src {
		dst.emit(ev)
	}
}

// publish refreshes what every other session sees of s and sends them
// ev with Peer set to their view. Caller holds h.mtx.
func (h *Hub) publish(s *Session, ev Event) {
	ports := s.Ports()
	infos := s.triggers.Infos()

	for _, other := range h.sessions {
		if other == s {
			continue
		}

		view, ok := other.Peer(s.id)
		if !ok {
			continue
		}
		view.SetPorts(ports)
		view.SetTriggers(infos)

		ev.Peer = view
		other.emit(ev)
	}
}

// leave drops s from the hub and tells the others. Caller holds h.mtx.
func (h *Hub) leave(s *Session) {
	h.sessions = slices.DeleteFunc(h.sessions, func(o *Session) bool { return o == s })

	for _, other := range h.sessions {
		view, ok := other.removePeer(s.id)
		if !ok {
			continue
		}
		view.SetPresent(false)
		other.emit(Event{Type: EventPeerDisappeared, Peer: view})
	}
}

// ActivateTrigger queues the activation of a button of the given peer.
func (h *Hub) ActivateTrigger(peerID xid.ID, id trigger.ID) {
	h.invoke("ActivateTrigger", peerID, id, func(s *Session) error {
		return s.triggers.Activate(id)
	})
}

// SetTriggerValue queues a value change of a variable of the given peer.
func (h *Hub) SetTriggerValue(peerID xid.ID, id trigger.ID, value float32) {
	h.invoke("SetTriggerValue", peerID, id, func(s *Session) error {
		return s.triggers.SetValue(id, value)
	})
}

func (h *Hub) invoke(function string, peerID xid.ID, id trigger.ID, fn func(*Session) error) {
	err := h.queue.Enqueue(queue.Func(func(context.Context) error {
		s, ok := h.session(peerID)
		if !ok {
			return fmt.Errorf("%s %s/%d: %w", function, peerID, id, ErrUnknownPeer)
		}

		return fn(s)
	}))
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"function": function,
			"peer":     peerID.String(),
			"trigger":  id,
			"error":    err.Error(),
		}).Warn("Trigger invocation dropped")
	}
}

// Sync waits until every queued trigger invocation has run.
func (h *Hub) Sync() error {
	return h.queue.RunSync(func(context.Context) error { return nil })
}

// Close closes every session and stops the control queue.
func (h *Hub) Close() error {
	h.mtx.Lock()
	if h.closed {
		h.mtx.Unlock()
		return nil
	}
	h.closed = true
	sessions := slices.Clone(h.sessions)
	h.mtx.Unlock()

	for _, s := range sessions {
		if err := s.Close(); err != nil {
			h.log.WithFields(logrus.Fields{
				"function": "Close",
				"session":  s.ID().String(),
				"error":    err.Error(),
			}).Warn("Closing session failed")
		}
	}

	h.queue.Close()

	h.log.WithFields(logrus.Fields{
		"function": "Close",
	}).Debug("Hub closed")

	return nil
}
