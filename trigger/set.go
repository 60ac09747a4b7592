// SPDX-License-Identifier: EPL-2.0

package trigger

import (
	"fmt"
	"slices"
	"sync"
)

// Set is an ordered collection of triggers that hands out ids.
type Set struct {
	mtx      sync.Mutex
	next     ID
	items    []Trigger
	onChange func(Trigger)
}

// NewSet returns an empty set. onChange, when not nil, runs after any
// member changes state, value or appearance.
func NewSet(onChange func(Trigger)) *Set {
	return &Set{next: 1, onChange: onChange}
}

// Add assigns t the next id and appends it.
func (s *Set) Add(t Trigger) (ID, error) {
	b := t.common()

	s.mtx.Lock()
	defer s.mtx.Unlock()

	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.owned {
		return 0, ErrAlreadyAdded
	}

	id := s.next
	s.next++

	b.id = id
	b.owned = true
	b.onChange = s.onChange
	s.items = append(s.items, t)

	return id, nil
}

// Remove drops the trigger with the given id.
func (s *Set) Remove(id ID) (Trigger, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	i := slices.IndexFunc(s.items, func(t Trigger) bool { return t.ID() == id })
	if i < 0 {
		return nil, false
	}

	t := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)

	b := t.common()
	b.mtx.Lock()
	b.owned = false
	b.onChange = nil
	b.mtx.Unlock()

	return t, true
}

func (s *Set) Get(id ID) (Trigger, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range s.items {
		if t.ID() == id {
			return t, true
		}
	}

	return nil, false
}

// All returns the members in the order they were added.
func (s *Set) All() []Trigger {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return slices.Clone(s.items)
}

func (s *Set) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.items)
}

// Infos snapshots every member.
func (s *Set) Infos() []Info {
	items := s.All()

	infos := make([]Info, 0, len(items))
	for _, t := range items {
		infos = append(infos, t.Info())
	}

	return infos
}

// Activate activates the button with the given id.
func (s *Set) Activate(id ID) error {
	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTrigger, id)
	}

	b, ok := t.(*ButtonTrigger)
	if !ok {
		return fmt.Errorf("activate trigger %d: %w", id, ErrWrongKind)
	}
	b.Activate()

	return nil
}

// SetValue sets the value of the variable with the given id.
func (s *Set) SetValue(id ID, value float32) error {
	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTrigger, id)
	}

	v, ok := t.(*VariableTrigger)
	if !ok {
		return fmt.Errorf("set value of trigger %d: %w", id, ErrWrongKind)
	}
	v.SetValue(value)

	return nil
}
