package store

import (
	"maps"
	"slices"

	"github.com/loomwright/grue/types"
)

// Snapshot is the full exportable state of a World. engine/save builds its
// JSON-serializable format from this without needing access to World's
// private fields, keeping store the only package that knows how a World is
// actually laid out in memory (spec.md §6: "consumed as a byte blob
// round-trip on the committed world state").
type Snapshot struct {
	Items       map[types.ItemID]types.Item
	Locations   map[types.LocationID]types.Location
	Player      types.Player
	Globals     map[types.GlobalID]types.AttrValue
	Flags       map[string]bool
	Counters    map[string]int
	Pronouns    map[types.Pronoun]map[types.ItemID]struct{}
	Fuses       map[types.FuseID]types.Fuse
	FuseOrder   []types.FuseID
	Daemons     map[types.DaemonID]types.Daemon
	DaemonOrder []types.DaemonID
	TurnCount   int
	CommandLog  []string
	HistoryLen  int
}

// Snapshot copies out every piece of mutable state a save needs to
// reconstruct this World exactly (short of the full change history, which
// a save only records the length of; the log itself is never exported, in
// verbose mode or otherwise).
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Items:       make(map[types.ItemID]types.Item, len(w.items)),
		Locations:   make(map[types.LocationID]types.Location, len(w.locations)),
		Player:      w.player,
		Globals:     maps.Clone(w.globals),
		Flags:       maps.Clone(w.flags),
		Counters:    maps.Clone(w.counters),
		Pronouns:    make(map[types.Pronoun]map[types.ItemID]struct{}, len(w.pronouns)),
		Fuses:       maps.Clone(w.fuses),
		FuseOrder:   slices.Clone(w.fuseOrder),
		Daemons:     maps.Clone(w.daemons),
		DaemonOrder: slices.Clone(w.daemonOrder),
		TurnCount:   w.turnCount,
		CommandLog:  slices.Clone(w.commandLog),
		HistoryLen:  len(w.history),
	}
	for id, it := range w.items {
		s.Items[id] = cloneItem(it)
	}
	for id, loc := range w.locations {
		s.Locations[id] = cloneLocation(loc)
	}
	for p, set := range w.pronouns {
		s.Pronouns[p] = maps.Clone(set)
	}
	return s
}

// Restore rebuilds a World from a Snapshot against the given Defs, bypassing
// New's blueprint-seeded construction entirely — a restored World's items,
// locations, and every other field come from the snapshot, not the
// blueprint. The change history starts empty; a restored World has no
// memory of how it reached this state, only that it did.
func Restore(defs *Defs, snap Snapshot) *World {
	w := &World{
		defs:        defs,
		items:       make(map[types.ItemID]types.Item, len(snap.Items)),
		locations:   make(map[types.LocationID]types.Location, len(snap.Locations)),
		player:      snap.Player,
		globals:     maps.Clone(snap.Globals),
		flags:       maps.Clone(snap.Flags),
		counters:    maps.Clone(snap.Counters),
		pronouns:    make(map[types.Pronoun]map[types.ItemID]struct{}, len(snap.Pronouns)),
		fuses:       maps.Clone(snap.Fuses),
		fuseOrder:   slices.Clone(snap.FuseOrder),
		daemons:     maps.Clone(snap.Daemons),
		daemonOrder: slices.Clone(snap.DaemonOrder),
		turnCount:   snap.TurnCount,
		commandLog:  slices.Clone(snap.CommandLog),
	}
	for id, it := range snap.Items {
		w.items[id] = cloneItem(it)
	}
	for id, loc := range snap.Locations {
		w.locations[id] = cloneLocation(loc)
	}
	for p, set := range snap.Pronouns {
		w.pronouns[p] = maps.Clone(set)
	}
	if w.globals == nil {
		w.globals = map[types.GlobalID]types.AttrValue{}
	}
	if w.flags == nil {
		w.flags = map[string]bool{}
	}
	if w.counters == nil {
		w.counters = map[string]int{}
	}
	if w.fuses == nil {
		w.fuses = map[types.FuseID]types.Fuse{}
	}
	if w.daemons == nil {
		w.daemons = map[types.DaemonID]types.Daemon{}
	}
	return w
}
