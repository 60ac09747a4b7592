// SPDX-License-Identifier: EPL-2.0

package peer

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"

	"github.com/ik5/audlink/port"
	"github.com/ik5/audlink/trigger"
)

// Invoker delivers trigger invocations to the session that owns them.
// Both calls return immediately.
type Invoker interface {
	ActivateTrigger(peer xid.ID, id trigger.ID)
	SetTriggerValue(peer xid.ID, id trigger.ID, value float32)
}

// Info identifies a peer.
type Info struct {
	ID          xid.ID
	Name        string
	DeviceName  string
	DisplayName string
	LaunchURL   string
	Icon        []byte
}

// Peer is a discovered session.
type Peer struct {
	info    Info
	invoker Invoker
	present atomic.Bool

	mtx       sync.RWMutex
	receivers []*port.Port
	senders   []*port.Port
	filters   []*port.Port
	triggers  []RemoteTrigger
}

// New returns a present peer with no ports or triggers.
func New(info Info, invoker Invoker) *Peer {
	info.Icon = slices.Clone(info.Icon)
	if info.DisplayName == "" {
		info.DisplayName = info.Name
	}

	p := &Peer{info: info, invoker: invoker}
	p.present.Store(true)

	return p
}

func (p *Peer) ID() xid.ID          { return p.info.ID }
func (p *Peer) Name() string        { return p.info.Name }
func (p *Peer) DeviceName() string  { return p.info.DeviceName }
func (p *Peer) DisplayName() string { return p.info.DisplayName }
func (p *Peer) LaunchURL() string   { return p.info.LaunchURL }
func (p *Peer) Icon() []byte        { return slices.Clone(p.info.Icon) }

// Present reports whether the peer can still be reached.
func (p *Peer) Present() bool { return p.present.Load() }

func (p *Peer) SetPresent(present bool) { p.present.Store(present) }

func (p *Peer) ReceiverPorts() []*port.Port {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return slices.Clone(p.receivers)
}

func (p *Peer) SenderPorts() []*port.Port {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return slices.Clone(p.senders)
}

func (p *Peer) FilterPorts() []*port.Port {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return slices.Clone(p.filters)
}

// Port finds a published port by its internal name.
func (p *Peer) Port(name string) (*port.Port, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	for _, list := range [][]*port.Port{p.senders, p.receivers, p.filters} {
		for _, pt := range list {
			if pt.Name() == name {
				return pt, true
			}
		}
	}

	return nil, false
}

func (p *Peer) Triggers() []RemoteTrigger {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	return slices.Clone(p.triggers)
}

func (p *Peer) Trigger(id trigger.ID) (RemoteTrigger, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()

	for _, t := range p.triggers {
		if t.ID() == id {
			return t, true
		}
	}

	return nil, false
}

// SetPorts replaces the published ports, sorted into their kinds.
func (p *Peer) SetPorts(ports []*port.Port) {
	var receivers, senders, filters []*port.Port
	for _, pt := range ports {
		switch pt.Kind() {
		case port.KindReceiver:
			receivers = append(receivers, pt)
		case port.KindSender:
			senders = append(senders, pt)
		case port.KindFilter:
			filters = append(filters, pt)
		}
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.receivers, p.senders, p.filters = receivers, senders, filters
}

// SetTriggers replaces the trigger snapshot. Remote triggers whose id and
// kind survive keep their identity and take the new values.
func (p *Peer) SetTriggers(infos []trigger.Info) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	next := make([]RemoteTrigger, 0, len(infos))
	for _, info := range infos {
		if old := findRemote(p.triggers, info); old != nil {
			old.base().update(info)
			next = append(next, old)
			continue
		}
		next = append(next, newRemote(p, info))
	}

	p.triggers = next
}

func findRemote(list []RemoteTrigger, info trigger.Info) RemoteTrigger {
	for _, t := range list {
		if t.ID() == info.ID && t.Kind() == info.Kind {
			return t
		}
	}

	return nil
}
