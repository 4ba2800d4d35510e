// Package pool tracks the positional pool selector shown next to the draw
// deck: a fixed number of slots over the top of the draw pile, plus a cursor
// marking the slot the player is interested in.
package pool

import (
	"errors"
	"fmt"
)

// DefaultSize is the number of selector slots shown by default
const DefaultSize = 16

var ErrInvalidSlot = errors.New("invalid pool slot")

// Slot is one selector position
type Slot struct {
	Index  int
	Card   string // empty when the slot is inactive
	Active bool
}

// Window is the top-K view over the draw deck
type Window struct {
	size     int
	names    []string
	selected int
}

// New creates a window with k slots. Non-positive k uses DefaultSize.
func New(k int) *Window {
	if k <= 0 {
		k = DefaultSize
	}
	return &Window{size: k, selected: -1}
}

// Size returns K
func (w *Window) Size() int {
	return w.size
}

// Refresh recomputes the window from the draw deck's names in storage order.
// The cursor is dropped if its slot became inactive.
func (w *Window) Refresh(draw []string) {
	n := min(w.size, len(draw))
	w.names = make([]string, n)
	copy(w.names, draw[:n])
	if w.selected >= n {
		w.selected = -1
	}
}

// Len returns the number of active slots
func (w *Window) Len() int {
	return len(w.names)
}

// Slots returns all K slots, active ones first
func (w *Window) Slots() []Slot {
	slots := make([]Slot, w.size)
	for i := range slots {
		slots[i].Index = i
		if i < len(w.names) {
			slots[i].Card = w.names[i]
			slots[i].Active = true
		}
	}
	return slots
}

// Activate moves the cursor to slot i. Only active slots can be selected.
func (w *Window) Activate(i int) error {
	if i < 0 || i >= w.size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSlot, i, w.size)
	}
	if i >= len(w.names) {
		return fmt.Errorf("%w: slot %d is inactive", ErrInvalidSlot, i)
	}
	w.selected = i
	return nil
}

// Active returns the selected slot, if any
func (w *Window) Active() (Slot, bool) {
	if w.selected < 0 {
		return Slot{}, false
	}
	return Slot{Index: w.selected, Card: w.names[w.selected], Active: true}, true
}

// Reset clears the window and the cursor
func (w *Window) Reset() {
	w.names = nil
	w.selected = -1
}
