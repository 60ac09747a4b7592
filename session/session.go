// SPDX-License-Identifier: EPL-2.0

package session

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audlink/audio"
	"github.com/ik5/audlink/peer"
	"github.com/ik5/audlink/port"
	"github.com/ik5/audlink/trigger"
)

// Capability is a bitset of what a session offers.
type Capability uint8

const (
	CapabilitySend Capability = 1 << iota
	CapabilityReceive
	CapabilityFilter
)

// Info describes a session to its peers.
type Info struct {
	Name        string
	DisplayName string
	LaunchURL   string
	Icon        []byte
}

// Session is one application registered with a hub.
type Session struct {
	hub      *Hub
	id       xid.ID
	info     Info
	log      *logrus.Entry
	triggers *trigger.Set

	events  chan Event
	dropped atomic.Uint64

	mtx    sync.Mutex
	ports  []*port.Port
	peers  []*peer.Peer
	closed bool
}

func newSession(h *Hub, info Info) *Session {
	info.Icon = slices.Clone(info.Icon)
	if info.DisplayName == "" {
		info.DisplayName = info.Name
	}

	s := &Session{
		hub:    h,
		id:     xid.New(),
		info:   info,
		events: make(chan Event, h.cfg.EventQueue),
	}
	s.log = h.log.WithFields(logrus.Fields{
		"session": info.Name,
		"id":      s.id.String(),
	})
	s.triggers = trigger.NewSet(s.triggerChanged)

	return s
}

func (s *Session) ID() xid.ID   { return s.id }
func (s *Session) Name() string { return s.info.Name }

// Events delivers what changed around this session. It is closed when
// the session closes. Events are dropped when the channel is full.
func (s *Session) Events() <-chan Event { return s.events }

// Dropped counts events lost to a full channel.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

func (s *Session) peerInfo() peer.Info {
	return peer.Info{
		ID:          s.id,
		Name:        s.info.Name,
		DeviceName:  s.hub.cfg.DeviceName,
		DisplayName: s.info.DisplayName,
		LaunchURL:   s.info.LaunchURL,
		Icon:        s.info.Icon,
	}
}

// Ports returns the session's ports in registration order.
func (s *Session) Ports() []*port.Port {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return slices.Clone(s.ports)
}

// Port finds one of the session's ports by name.
func (s *Session) Port(name string) (*port.Port, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := slices.IndexFunc(s.ports, func(p *port.Port) bool { return p.Name() == name })
	if i < 0 {
		return nil, false
	}

	return s.ports[i], true
}

func (s *Session) hasPort(p *port.Port) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return slices.Contains(s.ports, p)
}

// Capabilities is derived from the kinds of registered ports.
func (s *Session) Capabilities() Capability {
	var caps Capability
	for _, p := range s.Ports() {
		switch p.Kind() {
		case port.KindSender:
			caps |= CapabilitySend
		case port.KindReceiver:
			caps |= CapabilityReceive
		case port.KindFilter:
			caps |= CapabilityFilter
		}
	}

	return caps
}

func (s *Session) portOptions(opts []port.Option) []port.Option {
	all := s.hub.cfg.portOptions()
	all = append(all, opts...)

	return append(all, port.WithOwner(s.id.String()))
}

func (s *Session) AddSenderPort(name, title string, format audio.Format, opts ...port.Option) (*port.SenderPort, error) {
	p, err := port.NewSenderPort(name, title, format, s.portOptions(opts)...)
	if err != nil {
		return nil, err
	}

	return p, s.register(p.Port)
}

func (s *Session) AddReceiverPort(name, title string, format audio.Format, opts ...port.Option) (*port.ReceiverPort, error) {
	p, err := port.NewReceiverPort(name, title, format, s.portOptions(opts)...)
	if err != nil {
		return nil, err
	}

	return p, s.register(p.Port)
}

func (s *Session) AddFilterPort(name, title string, format audio.Format, fn port.FilterFunc, blockSize int, opts ...port.Option) (*port.FilterPort, error) {
	p, err := port.NewFilterPort(name, title, format, fn, blockSize, s.portOptions(opts)...)
	if err != nil {
		return nil, err
	}

	return p, s.register(p.Port)
}

func (s *Session) AddFilterUnitPort(name, title string, format audio.Format, u port.Unit, opts ...port.Option) (*port.FilterPort, error) {
	p, err := port.NewFilterUnitPort(name, title, format, u, s.portOptions(opts)...)
	if err != nil {
		return nil, err
	}

	return p, s.register(p.Port)
}

func (s *Session) register(p *port.Port) error {
	h := s.hub
	h.mtx.Lock()
	defer h.mtx.Unlock()

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return ErrSessionClosed
	}
	if slices.ContainsFunc(s.ports, func(o *port.Port) bool { return o.Name() == p.Name() }) {
		s.mtx.Unlock()
		return fmt.Errorf("%q: %w", p.Name(), ErrDuplicatePort)
	}
	s.ports = append(s.ports, p)
	s.mtx.Unlock()

	s.log.WithFields(logrus.Fields{
		"function": "AddPort",
		"port":     p.String(),
		"format":   p.ClientFormat().String(),
	}).Info("Port registered")

	s.emit(Event{Type: EventPortAdded, Port: p})
	h.publish(s, Event{Type: EventPortAdded, Port: p})

	return nil
}

// RemovePort disconnects p and unregisters it. The port is closed.
func (s *Session) RemovePort(p *port.Port) error {
	h := s.hub
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return s.removePort(p)
}

// removePort does the work of RemovePort. Caller holds h.mtx.
func (s *Session) removePort(p *port.Port) error {
	h := s.hub

	s.mtx.Lock()
	i := slices.Index(s.ports, p)
	if i < 0 {
		s.mtx.Unlock()
		return fmt.Errorf("%v: %w", p, ErrUnknownPort)
	}
	s.ports = slices.Delete(s.ports, i, i+1)
	s.mtx.Unlock()

	sources := p.Sources()
	destinations := p.Destinations()
	_ = p.Close()

	for _, src := range sources {
		if owner, ok := h.owner(src); ok {
			h.connectionChanged(owner, s, src, p, false)
		}
	}
	for _, dst := range destinations {
		if owner, ok := h.owner(dst); ok {
			h.connectionChanged(s, owner, p, dst, false)
		}
	}

	s.log.WithFields(logrus.Fields{
		"function": "RemovePort",
		"port":     p.String(),
	}).Info("Port removed")

	s.emit(Event{Type: EventPortRemoved, Port: p})
	h.publish(s, Event{Type: EventPortRemoved, Port: p})

	return nil
}

// AddTrigger publishes t and returns its id.
func (s *Session) AddTrigger(t trigger.Trigger) (trigger.ID, error) {
	id, err := s.triggers.Add(t)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"function": "AddTrigger",
		"trigger":  id,
	}).Debug("Trigger published")

	s.triggerChanged(t)

	return id, nil
}

func (s *Session) RemoveTrigger(id trigger.ID) bool {
	t, ok := s.triggers.Remove(id)
	if ok {
		s.triggerChanged(t)
	}

	return ok
}

func (s *Session) Triggers() []trigger.Trigger { return s.triggers.All() }

// triggerChanged republishes the trigger snapshot to peers.
func (s *Session) triggerChanged(t trigger.Trigger) {
	h := s.hub
	h.mtx.RLock()
	defer h.mtx.RUnlock()

	h.publish(s, Event{Type: EventTriggerChanged, Trigger: t.ID()})
}

// Peers returns the other sessions as this one sees them.
func (s *Session) Peers() []*peer.Peer {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return slices.Clone(s.peers)
}

func (s *Session) Peer(id xid.ID) (*peer.Peer, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, p := range s.peers {
		if p.ID() == id {
			return p, true
		}
	}

	return nil, false
}

// PeerByName finds a peer by session name.
func (s *Session) PeerByName(name string) (*peer.Peer, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, p := range s.peers {
		if p.Name() == name {
			return p, true
		}
	}

	return nil, false
}

func (s *Session) addPeer(p *peer.Peer) {
	s.mtx.Lock()
	s.peers = append(s.peers, p)
	s.mtx.Unlock()

	s.emit(Event{Type: EventPeerAppeared, Peer: p})
}

func (s *Session) removePeer(id xid.ID) (*peer.Peer, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := slices.IndexFunc(s.peers, func(p *peer.Peer) bool { return p.ID() == id })
	if i < 0 {
		return nil, false
	}

	p := s.peers[i]
	s.peers = slices.Delete(s.peers, i, i+1)

	return p, true
}

// Connect opens a line between any two ports registered with the hub.
func (s *Session) Connect(from, to *port.Port) error {
	return s.hub.Connect(from, to)
}

func (s *Session) Disconnect(from, to *port.Port) error {
	return s.hub.Disconnect(from, to)
}

// emit delivers ev without blocking. Caller holds h.mtx.
func (s *Session) emit(ev Event) {
	s.mtx.Lock()
	closed := s.closed
	s.mtx.Unlock()

	if closed {
		return
	}

	select {
	case s.events <- ev:
	default:
		n := s.dropped.Add(1)
		s.log.WithFields(logrus.Fields{
			"function": "emit",
			"event":    ev.Type.String(),
			"dropped":  n,
		}).Warn("Event channel full, event dropped")
	}
}

// Close removes every port, leaves the hub and closes the event channel.
func (s *Session) Close() error {
	h := s.hub
	h.mtx.Lock()
	defer h.mtx.Unlock()

	s.mtx.Lock()
	if s.closed {
		s.mtx.Unlock()
		return nil
	}
	ports := slices.Clone(s.ports)
	s.mtx.Unlock()

	for _, p := range ports {
		if err := s.removePort(p); err != nil {
			return err
		}
	}

	h.leave(s)

	s.mtx.Lock()
	s.closed = true
	s.peers = nil
	s.mtx.Unlock()
	close(s.events)

	s.log.WithFields(logrus.Fields{
		"function": "Close",
	}).Info("Session closed")

	return nil
}
