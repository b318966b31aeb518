package models

import (
	"github.com/pkg/errors"

	"github.com/tatianab/scottfree/internal/gameerr"
)

// Snapshot is a copy of the mutable part of a world: the session state and
// every item location. It is what undo, RAM save and save files hold.
type Snapshot struct {
	State         SessionState `yaml:"state"`
	ItemLocations []int        `yaml:"item_locations,flow"`
}

// Snapshot captures the current session.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{State: w.State, ItemLocations: make([]int, len(w.Items))}
	for i, it := range w.Items {
		s.ItemLocations[i] = it.Location
	}
	return s
}

// Validate checks that s fits this world without changing anything.
func (w *World) Validate(s Snapshot) error {
	nr := w.Header.NumRooms
	if len(s.ItemLocations) != len(w.Items) {
		return errors.Wrapf(gameerr.ErrBadSave, "%d item locations for %d items", len(s.ItemLocations), len(w.Items))
	}
	if s.State.CurrentLoc < 1 || s.State.CurrentLoc > nr {
		return errors.Wrapf(gameerr.ErrBadSave, "current location %d", s.State.CurrentLoc)
	}
	if s.State.SavedRoom < 0 || s.State.SavedRoom > nr {
		return errors.Wrapf(gameerr.ErrBadSave, "saved room %d", s.State.SavedRoom)
	}
	for i, r := range s.State.RoomSaved {
		if r < 0 || r > nr {
			return errors.Wrapf(gameerr.ErrBadSave, "saved room slot %d holds %d", i, r)
		}
	}
	for i, loc := range s.ItemLocations {
		if loc != Carried && (loc < 0 || loc > nr) {
			return errors.Wrapf(gameerr.ErrBadSave, "item %d at %d", i, loc)
		}
	}
	return nil
}

// Restore applies s. The world is left untouched when s does not fit.
func (w *World) Restore(s Snapshot) error {
	if err := w.Validate(s); err != nil {
		return err
	}
	w.State = s.State
	for i := range w.Items {
		w.Items[i].Location = s.ItemLocations[i]
	}
	return nil
}
