package store

import (
	"maps"

	"github.com/loomwright/grue/types"
)

// World is the complete mutable game state. Zero value is not usable;
// construct with New.
type World struct {
	defs *Defs

	items     map[types.ItemID]types.Item
	locations map[types.LocationID]types.Location

	player   types.Player
	globals  map[types.GlobalID]types.AttrValue
	flags    map[string]bool
	counters map[string]int
	pronouns map[types.Pronoun]map[types.ItemID]struct{}

	fuses       map[types.FuseID]types.Fuse
	fuseOrder   []types.FuseID
	daemons     map[types.DaemonID]types.Daemon
	daemonOrder []types.DaemonID

	history   []types.ChangeHistoryEntry
	timestamp int64
	turnCount int

	commandLog []string
}

// New builds a fresh World from a Game Blueprint: a deep-ish copy of the
// blueprint's items/locations (attribute maps are cloned so Apply never
// mutates the immutable Defs), player starting state, and empty
// globals/pronouns/history/fuses/daemons.
func New(defs *Defs) *World {
	w := &World{
		defs:      defs,
		items:     make(map[types.ItemID]types.Item, len(defs.Items)),
		locations: make(map[types.LocationID]types.Location, len(defs.Locations)),
		player:    defs.PlayerStats,
		globals:   map[types.GlobalID]types.AttrValue{},
		flags:     map[string]bool{},
		counters:  map[string]int{},
		pronouns:  map[types.Pronoun]map[types.ItemID]struct{}{},
		fuses:     map[types.FuseID]types.Fuse{},
		daemons:   map[types.DaemonID]types.Daemon{},
	}
	w.player.CurrentLocation = defs.Start
	for id, it := range defs.Items {
		w.items[id] = cloneItem(it)
	}
	for id, loc := range defs.Locations {
		w.locations[id] = cloneLocation(loc)
	}
	return w
}

func cloneItem(it types.Item) types.Item {
	cp := it
	cp.Attributes = maps.Clone(it.Attributes)
	return cp
}

func cloneLocation(loc types.Location) types.Location {
	cp := loc
	cp.Attributes = maps.Clone(loc.Attributes)
	return cp
}

// Defs returns the immutable blueprint this World was built from.
func (w *World) Defs() *Defs { return w.defs }

// Item returns a copy of the item's current runtime state.
func (w *World) Item(id types.ItemID) (types.Item, bool) {
	it, ok := w.items[id]
	return it, ok
}

// Location returns a copy of the location's current runtime state.
func (w *World) Location(id types.LocationID) (types.Location, bool) {
	loc, ok := w.locations[id]
	return loc, ok
}

// Player returns the current player state.
func (w *World) Player() types.Player { return w.player }

// Global returns a global value and whether it is set.
func (w *World) Global(id types.GlobalID) (types.AttrValue, bool) {
	v, ok := w.globals[id]
	return v, ok
}

// Flag returns a named boolean flag. Unset flags read as false.
func (w *World) Flag(name string) bool { return w.flags[name] }

// Counter returns a named integer counter. Unset counters read as 0.
func (w *World) Counter(name string) int { return w.counters[name] }

// Pronoun returns the current target set for a pronoun word.
func (w *World) Pronoun(p types.Pronoun) (map[types.ItemID]struct{}, bool) {
	set, ok := w.pronouns[p]
	return set, ok
}

// ItemsIn returns the IDs of every item whose current parent equals p.
func (w *World) ItemsIn(p types.Parent) []types.ItemID {
	var out []types.ItemID
	for id, it := range w.items {
		if it.Parent.Equal(p) {
			out = append(out, id)
		}
	}
	return out
}

// ChangeHistory returns the full ordered sequence of committed changes.
func (w *World) ChangeHistory() []types.ChangeHistoryEntry { return w.history }

// Fuse returns a fuse's state and whether it is currently active.
func (w *World) Fuse(id types.FuseID) (types.Fuse, bool) {
	f, ok := w.fuses[id]
	return f, ok
}

// ActiveFuses returns active fuses in insertion order (spec.md §5: "fuses
// fire in insertion order after tied-for-zero decrement").
func (w *World) ActiveFuses() []types.Fuse {
	out := make([]types.Fuse, 0, len(w.fuseOrder))
	for _, id := range w.fuseOrder {
		if f, ok := w.fuses[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ActiveDaemons returns active daemons in registration order.
func (w *World) ActiveDaemons() []types.Daemon {
	out := make([]types.Daemon, 0, len(w.daemonOrder))
	for _, id := range w.daemonOrder {
		if d, ok := w.daemons[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// TurnCount returns the number of turns executed so far.
func (w *World) TurnCount() int { return w.turnCount }

// IncrementTurn advances the turn counter. Called by the Turn Engine, not
// by Apply, since not every Execute call commits a StateChange batch
// (e.g. a parse error that doesn't consume a turn).
func (w *World) IncrementTurn() { w.turnCount++ }

// CommandLog returns the raw input strings seen so far, in order.
func (w *World) CommandLog() []string { return w.commandLog }

// LogCommand appends a raw input line to the command log.
func (w *World) LogCommand(input string) { w.commandLog = append(w.commandLog, input) }

// InCombat reports whether the player is currently in a combat encounter.
func (w *World) InCombat() bool { return w.player.Combat.Active }
