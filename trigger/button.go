// SPDX-License-Identifier: EPL-2.0

package trigger

import "slices"

// ButtonTrigger is a discrete trigger with a look per state.
type ButtonTrigger struct {
	base

	looks [3]Look
}

// NewButtonTrigger returns a button in the normal state. perform may be
// nil.
func NewButtonTrigger(title string, icon []byte, perform PerformFunc) *ButtonTrigger {
	b := &ButtonTrigger{}
	b.perform = perform
	for i := range b.looks {
		b.looks[i] = Look{Title: title}.clone()
	}
	b.looks[StateNormal].Icon = slices.Clone(icon)

	return b
}

func (b *ButtonTrigger) Kind() Kind { return KindButton }

// SetLook sets the title, icon and color shown in state s.
func (b *ButtonTrigger) SetLook(s State, look Look) {
	if !s.valid() {
		return
	}

	b.mtx.Lock()
	b.looks[s] = look.clone()
	b.mtx.Unlock()

	b.notify(b)
}

func (b *ButtonTrigger) Look(s State) Look {
	if !s.valid() {
		return Look{}
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.looks[s].clone()
}

func (b *ButtonTrigger) Title() string {
	return b.Look(b.State()).Title
}

func (b *ButtonTrigger) SetState(s State) {
	if b.setState(s) {
		b.notify(b)
	}
}

// Activate runs the perform function.
func (b *ButtonTrigger) Activate() {
	if b.perform != nil {
		b.perform(b)
	}
}

func (b *ButtonTrigger) Info() Info {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	info := Info{ID: b.id, Kind: KindButton, State: b.state}
	for i, l := range b.looks {
		info.Looks[i] = l.clone()
	}
	info.Title = b.looks[StateNormal].Title

	return info
}
