// SPDX-License-Identifier: EPL-2.0

package port

import (
	"fmt"
	"slices"
	"sync"
)

// graphMtx serializes connections so the loop check sees a stable graph.
var graphMtx sync.Mutex

// Connect opens a line from a sender or filter to a receiver or filter.
// It is safe to call concurrently; loops are never created.
func Connect(from, to *Port) error {
	if from == nil || to == nil {
		return ErrInvalidConnection
	}
	if from == to {
		return fmt.Errorf("%s to itself: %w", from, ErrInvalidConnection)
	}
	if from.kind == KindReceiver || to.kind == KindSender {
		return fmt.Errorf("%s to %s: %w", from, to, ErrInvalidConnection)
	}

	graphMtx.Lock()
	defer graphMtx.Unlock()

	if reaches(to, from) {
		return fmt.Errorf("%s to %s closes a loop: %w", from, to, ErrInvalidConnection)
	}

	unlock := lockPair(from, to)
	defer unlock()

	if from.closed.Load() || to.closed.Load() {
		return ErrPortClosed
	}
	if to.findInput(from) != nil {
		return fmt.Errorf("%s to %s: %w", from, to, ErrAlreadyConnected)
	}

	l, err := newLink(from, to)
	if err != nil {
		return fmt.Errorf("connecting %s to %s: %w", from, to, err)
	}

	outs := append(slices.Clone(*from.outputs.Load()), l)
	ins := append(slices.Clone(*to.inputs.Load()), l)
	// the destination learns about the line before the source writes to it
	to.inputs.Store(&ins)
	from.outputs.Store(&outs)

	return nil
}

// Disconnect closes the line between from and to.
func Disconnect(from, to *Port) error {
	if from == nil || to == nil {
		return ErrInvalidConnection
	}

	unlock := lockPair(from, to)
	defer unlock()

	l := to.findInput(from)
	if l == nil {
		return fmt.Errorf("%s to %s: %w", from, to, ErrNotConnected)
	}

	outs := slices.DeleteFunc(slices.Clone(*from.outputs.Load()), func(o *link) bool { return o == l })
	ins := slices.DeleteFunc(slices.Clone(*to.inputs.Load()), func(o *link) bool { return o == l })
	from.outputs.Store(&outs)
	to.inputs.Store(&ins)

	if to.Attributes()&AttributePlaysLiveAudio != 0 {
		from.muteUntil.Store(from.opts.now().Add(from.opts.muteGrace).UnixNano())
	}

	return nil
}

// DisconnectAll closes every line of p and returns the ports that were
// on the other end.
func DisconnectAll(p *Port) []*Port {
	var peers []*Port

	for _, src := range p.Sources() {
		if Disconnect(src, p) == nil {
			peers = append(peers, src)
		}
	}
	for _, dst := range p.Destinations() {
		if Disconnect(p, dst) == nil {
			peers = append(peers, dst)
		}
	}

	return peers
}

// lockPair locks two ports in id order.
func lockPair(a, b *Port) func() {
	if a.id.Compare(b.id) > 0 {
		a, b = b, a
	}
	a.mtx.Lock()
	b.mtx.Lock()

	return func() {
		b.mtx.Unlock()
		a.mtx.Unlock()
	}
}

// reaches reports whether target is downstream of p.
func reaches(p, target *Port) bool {
	if p == target {
		return true
	}
	for _, l := range *p.outputs.Load() {
		if reaches(l.to, target) {
			return true
		}
	}

	return false
}
