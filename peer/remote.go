// SPDX-License-Identifier: EPL-2.0

package peer

import (
	"slices"
	"sync"

	"github.com/ik5/audlink/trigger"
	"github.com/ik5/audlink/utils"
)

// RemoteTrigger is a trigger published by a peer.
type RemoteTrigger interface {
	// Peer is the peer that owns the trigger.
	Peer() *Peer
	ID() trigger.ID
	Kind() trigger.Kind
	State() trigger.State
	Title() string

	base() *remote
}

type remote struct {
	peer *Peer

	mtx  sync.RWMutex
	info trigger.Info
}

func (r *remote) base() *remote { return r }

func (r *remote) Peer() *Peer { return r.peer }

func (r *remote) ID() trigger.ID {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.info.ID
}

func (r *remote) Kind() trigger.Kind {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.info.Kind
}

func (r *remote) State() trigger.State {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.info.State
}

func (r *remote) update(info trigger.Info) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.info = info
}

func newRemote(p *Peer, info trigger.Info) RemoteTrigger {
	if info.Kind == trigger.KindVariable {
		return &RemoteVariableTrigger{remote: remote{peer: p, info: info}}
	}

	return &RemoteButtonTrigger{remote: remote{peer: p, info: info}}
}

// RemoteButtonTrigger is a peer's button.
type RemoteButtonTrigger struct {
	remote
}

// Title is the title for the current state.
func (b *RemoteButtonTrigger) Title() string {
	return b.Look(b.State()).Title
}

func (b *RemoteButtonTrigger) Look(s trigger.State) trigger.Look {
	if s > trigger.StateAlternate {
		return trigger.Look{}
	}

	b.mtx.RLock()
	defer b.mtx.RUnlock()

	look := b.info.Looks[s]
	look.Icon = slices.Clone(look.Icon)

	return look
}

// Activate asks the peer to activate the button. It does not wait; the
// new state shows up in a later snapshot.
func (b *RemoteButtonTrigger) Activate() {
	if b.peer.invoker == nil || !b.peer.Present() {
		return
	}

	b.peer.invoker.ActivateTrigger(b.peer.ID(), b.ID())
}

// RemoteVariableTrigger is a peer's variable.
type RemoteVariableTrigger struct {
	remote
}

func (v *RemoteVariableTrigger) Title() string {
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	return v.info.Title
}

func (v *RemoteVariableTrigger) Value() float32 {
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	return v.info.Value
}

// SetValue clamps value into the bounds, keeps it locally and sends it
// to the peer without waiting.
func (v *RemoteVariableTrigger) SetValue(value float32) {
	v.mtx.Lock()
	value = utils.Clamp(value, v.info.Min, v.info.Max)
	v.info.Value = value
	v.mtx.Unlock()

	if v.peer.invoker == nil || !v.peer.Present() {
		return
	}

	v.peer.invoker.SetTriggerValue(v.peer.ID(), v.ID(), value)
}

func (v *RemoteVariableTrigger) Bounds() (lo, hi float32) {
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	return v.info.Min, v.info.Max
}

func (v *RemoteVariableTrigger) DisplayType() trigger.DisplayType {
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	return v.info.Display
}

// Images returns the icons drawn at either end of a slider.
func (v *RemoteVariableTrigger) Images() (minImage, maxImage []byte) {
	v.mtx.RLock()
	defer v.mtx.RUnlock()

	return slices.Clone(v.info.MinImage), slices.Clone(v.info.MaxImage)
}
