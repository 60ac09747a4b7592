// SPDX-License-Identifier: EPL-2.0

package trigger

import (
	"fmt"
	"math"
	"slices"

	"github.com/ik5/audlink/utils"
)

// VariableTrigger carries a value that always stays within its bounds.
type VariableTrigger struct {
	base

	title    string
	value    float32
	min      float32
	max      float32
	display  DisplayType
	minImage []byte
	maxImage []byte
}

// NewVariableTrigger returns a slider with bounds [lo, hi] and its
// value at lo.
func NewVariableTrigger(title string, lo, hi float32, perform PerformFunc) (*VariableTrigger, error) {
	if !validBounds(lo, hi) {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidBounds, lo, hi)
	}

	v := &VariableTrigger{title: title, value: lo, min: lo, max: hi}
	v.perform = perform

	return v, nil
}

func (v *VariableTrigger) Kind() Kind { return KindVariable }

func (v *VariableTrigger) Title() string {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return v.title
}

func (v *VariableTrigger) Value() float32 {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return v.value
}

// SetValue clamps value into the bounds and stores it. The perform
// function runs when the stored value changed.
func (v *VariableTrigger) SetValue(value float32) {
	v.mtx.Lock()
	value = utils.Clamp(value, v.min, v.max)
	changed := value != v.value
	v.value = value
	v.mtx.Unlock()

	if !changed {
		return
	}
	if v.perform != nil {
		v.perform(v)
	}
	v.notify(v)
}

func (v *VariableTrigger) Bounds() (lo, hi float32) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return v.min, v.max
}

// SetBounds replaces the bounds and pulls the value back inside them.
func (v *VariableTrigger) SetBounds(lo, hi float32) error {
	if !validBounds(lo, hi) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidBounds, lo, hi)
	}

	v.mtx.Lock()
	v.min, v.max = lo, hi
	v.value = utils.Clamp(v.value, lo, hi)
	v.mtx.Unlock()

	v.notify(v)

	return nil
}

func (v *VariableTrigger) DisplayType() DisplayType {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return v.display
}

func (v *VariableTrigger) SetDisplayType(d DisplayType) {
	v.mtx.Lock()
	v.display = d
	v.mtx.Unlock()

	v.notify(v)
}

// SetImages sets the icons drawn at either end of a slider. Dials
// ignore them.
func (v *VariableTrigger) SetImages(minImage, maxImage []byte) {
	v.mtx.Lock()
	v.minImage = slices.Clone(minImage)
	v.maxImage = slices.Clone(maxImage)
	v.mtx.Unlock()

	v.notify(v)
}

func (v *VariableTrigger) SetState(s State) {
	if v.setState(s) {
		v.notify(v)
	}
}

func (v *VariableTrigger) Info() Info {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return Info{
		ID:       v.id,
		Kind:     KindVariable,
		State:    v.state,
		Title:    v.title,
		Value:    v.value,
		Min:      v.min,
		Max:      v.max,
		Display:  v.display,
		MinImage: slices.Clone(v.minImage),
		MaxImage: slices.Clone(v.maxImage),
	}
}

func validBounds(lo, hi float32) bool {
	return lo <= hi && !math.IsInf(float64(hi-lo), 0)
}
