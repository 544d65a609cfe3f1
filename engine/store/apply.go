package store

import "github.com/loomwright/grue/types"

// Apply commits a batch of changes atomically: either every change is
// applied and appended to history, or none is and an error is returned
// (spec.md §4.1). The live World is read by callers concurrently with
// Apply only insofar as the engine is single-threaded (spec.md §5) — no
// internal locking is performed.
func (w *World) Apply(changes []types.StateChange) error {
	if len(changes) == 0 {
		return nil
	}

	s := w.newScratch()

	for i, c := range changes {
		if err := s.fold(c); err != nil {
			err.ChangeIndex = i
			return err
		}
	}

	if err := checkInvariants(s); err != nil {
		return err
	}
	if err := checkTouchedMonotonic(w.items, s.items); err != nil {
		return err
	}

	w.commit(s, changes)
	return nil
}

// commit swaps the folded scratch into the live World and appends the
// batch to history with monotonically increasing per-turn timestamps.
func (w *World) commit(s *scratch, changes []types.StateChange) {
	w.items = s.items
	w.locations = s.locations
	w.player = s.player
	w.globals = s.globals
	w.flags = s.flags
	w.counters = s.counters
	w.pronouns = s.pronouns
	w.fuses = s.fuses
	w.fuseOrder = s.fuseOrder
	w.daemons = s.daemons
	w.daemonOrder = s.daemonOrder

	for _, c := range changes {
		w.timestamp++
		w.history = append(w.history, types.ChangeHistoryEntry{Timestamp: w.timestamp, Change: c})
	}
}
