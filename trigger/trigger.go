// SPDX-License-Identifier: EPL-2.0

package trigger

import (
	"fmt"
	"image/color"
	"slices"
	"sync"
)

// ID identifies a trigger within its session.
type ID uint32

// State is the visual state of a trigger.
type State uint8

const (
	StateNormal State = iota
	StateSelected
	StateAlternate
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateSelected:
		return "selected"
	case StateAlternate:
		return "alternate"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

func (s State) valid() bool { return s <= StateAlternate }

// Kind tells buttons from variables.
type Kind uint8

const (
	KindButton Kind = iota + 1
	KindVariable
)

// DisplayType tells peers how to draw a variable trigger.
type DisplayType uint8

const (
	DisplaySlider DisplayType = iota
	DisplayDial
)

// Look is how a button appears in one state.
type Look struct {
	Title string
	Icon  []byte
	Color color.RGBA
}

func (l Look) clone() Look {
	l.Icon = slices.Clone(l.Icon)
	return l
}

// Info is a snapshot of a trigger, as peers see it.
type Info struct {
	ID    ID
	Kind  Kind
	State State

	// buttons, indexed by State
	Looks [3]Look

	// variables
	Title    string
	Value    float32
	Min      float32
	Max      float32
	Display  DisplayType
	MinImage []byte
	MaxImage []byte
}

// Trigger is implemented by ButtonTrigger and VariableTrigger.
type Trigger interface {
	ID() ID
	Kind() Kind
	State() State
	SetState(State)
	Info() Info

	common() *base
}

// PerformFunc runs when a trigger is activated or its value changes.
type PerformFunc func(t Trigger)

// base holds what buttons and variables share.
type base struct {
	mtx     sync.Mutex
	id      ID
	state   State
	perform PerformFunc

	// set by the owning Set
	owned    bool
	onChange func(Trigger)
}

func (b *base) common() *base { return b }

func (b *base) ID() ID {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.id
}

func (b *base) State() State {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.state
}

// setState stores s and reports whether it changed.
func (b *base) setState(s State) bool {
	if !s.valid() {
		return false
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.state == s {
		return false
	}
	b.state = s

	return true
}

func (b *base) notify(t Trigger) {
	b.mtx.Lock()
	fn := b.onChange
	b.mtx.Unlock()

	if fn != nil {
		fn(t)
	}
}
