package view

import (
	"fmt"

	"github.com/johnsiilver/boutique"
)

// View wraps the boutique.Store that backs the presentation layer.
type View struct {
	store *boutique.Store
}

// New is the constructor for a View with nothing selected.
func New() (*View, error) {
	d := State{
		Quotes:   map[string]Quote{},
		Holdings: map[string]int64{},
	}
	store, err := boutique.New(d, Modifiers, nil)
	if err != nil {
		return nil, fmt.Errorf("view store: %w", err)
	}
	return &View{store: store}, nil
}

// State returns the current snapshot.
func (v *View) State() State {
	return v.store.State().Data.(State)
}

// Version counts committed changes.
func (v *View) Version() uint64 {
	return v.store.State().Version
}

// Perform applies a, as built by the action helpers in this package.
func (v *View) Perform(a boutique.Action) error {
	return v.store.Perform(a)
}

// Subscribe notifies ch on any change. A subscriber that is still busy with the
// previous signal misses the intermediate one; State always has the latest.
// Calling cancel closes ch.
func (v *View) Subscribe() (chan boutique.Signal, boutique.CancelFunc, error) {
	return v.store.Subscribe(boutique.Any)
}

// FromSignal extracts the State carried by sig.
func FromSignal(sig boutique.Signal) State {
	return sig.State.Data.(State)
}
