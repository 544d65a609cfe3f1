package store

import (
	"maps"
	"slices"

	"github.com/loomwright/grue/types"
)

// scratch is a working copy of every mutable slice of World. Apply folds
// a batch of changes onto a scratch, validates invariants against it, and
// only swaps it into the live World on success — the live World is never
// touched if anything in the batch fails (spec.md §4.1 steps 2-5).
type scratch struct {
	items     map[types.ItemID]types.Item
	locations map[types.LocationID]types.Location
	player    types.Player
	globals   map[types.GlobalID]types.AttrValue
	flags     map[string]bool
	counters  map[string]int
	pronouns  map[types.Pronoun]map[types.ItemID]struct{}

	fuses       map[types.FuseID]types.Fuse
	fuseOrder   []types.FuseID
	daemons     map[types.DaemonID]types.Daemon
	daemonOrder []types.DaemonID
}

func (w *World) newScratch() *scratch {
	s := &scratch{
		items:     make(map[types.ItemID]types.Item, len(w.items)),
		locations: make(map[types.LocationID]types.Location, len(w.locations)),
		player:    w.player,
		globals:   maps.Clone(w.globals),
		flags:     maps.Clone(w.flags),
		counters:  maps.Clone(w.counters),
		pronouns:  make(map[types.Pronoun]map[types.ItemID]struct{}, len(w.pronouns)),
		fuses:     maps.Clone(w.fuses),
		fuseOrder: slices.Clone(w.fuseOrder),
		daemons:   maps.Clone(w.daemons),
		daemonOrder: slices.Clone(w.daemonOrder),
	}
	for id, it := range w.items {
		s.items[id] = cloneItem(it)
	}
	for id, loc := range w.locations {
		s.locations[id] = cloneLocation(loc)
	}
	for p, set := range w.pronouns {
		s.pronouns[p] = maps.Clone(set)
	}
	return s
}

func (s *scratch) itemExists(id types.ItemID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *scratch) locationExists(id types.LocationID) bool {
	_, ok := s.locations[id]
	return ok
}

func (s *scratch) parentExists(p types.Parent) bool {
	switch p.Kind {
	case types.ParentLocation:
		return s.locationExists(p.Location)
	case types.ParentItem:
		return s.itemExists(p.Item)
	default:
		return true // Player, Nowhere always "exist"
	}
}

// fold validates and applies a single change onto the scratch in place.
// Returns a structured error (without an index — the caller fills that
// in) on the first problem.
func (s *scratch) fold(c types.StateChange) *ApplyError {
	switch c.Kind {
	case types.ChangeMoveItem:
		if !s.itemExists(c.ItemID) {
			return &ApplyError{Kind: ErrUnknownEntity, Detail: "item " + string(c.ItemID)}
		}
		if !s.parentExists(c.NewParent) {
			return &ApplyError{Kind: ErrUnknownEntity, Detail: "new parent for " + string(c.ItemID)}
		}
		it := s.items[c.ItemID]
		it.Parent = c.NewParent
		s.items[c.ItemID] = it

	case types.ChangeSetItemAttribute:
		it, ok := s.items[c.ItemID]
		if !ok {
			return &ApplyError{Kind: ErrUnknownEntity, Detail: "item " + string(c.ItemID)}
		}
		if c.OldValue != nil {
			cur, has := it.Attributes[c.Attribute]
			if !has || !cur.Equal(*c.OldValue) {
				return &ApplyError{Kind: ErrOldValueMismatch, Detail: string(c.Attribute) + " on " + string(c.ItemID)}
			}
		}
		if it.Attributes == nil {
			it.Attributes = map[types.AttributeID]types.AttrValue{}
		}
		it.Attributes[c.Attribute] = c.NewValue
		s.items[c.ItemID] = it

	case types.ChangeSetLocationAttribute:
		locID := c.TargetLocation
		loc, ok := s.locations[locID]
		if !ok {
			return &ApplyError{Kind: ErrUnknownEntity, Detail: "location " + string(locID)}
		}
		if c.OldValue != nil {
			cur, has := loc.Attributes[c.Attribute]
			if !has || !cur.Equal(*c.OldValue) {
				return &ApplyError{Kind: ErrOldValueMismatch, Detail: string(c.Attribute) + " on " + string(locID)}
			}
		}
		if loc.Attributes == nil {
			loc.Attributes = map[types.AttributeID]types.AttrValue{}
		}
		loc.Attributes[c.Attribute] = c.NewValue
		s.locations[locID] = loc

	case types.ChangeSetGlobal:
		s.globals[c.GlobalID] = c.GlobalValue

	case types.ChangeClearGlobal:
		delete(s.globals, c.GlobalID)

	case types.ChangeSetFlag:
		s.flags[c.FlagName] = true

	case types.ChangeClearFlag:
		s.flags[c.FlagName] = false

	case types.ChangeSetCounter:
		s.counters[c.CounterName] = c.CounterValue

	case types.ChangeSetPronoun:
		for id := range c.PronounTargets {
			if !s.itemExists(id) {
				return &ApplyError{Kind: ErrUnknownEntity, Detail: "pronoun target " + string(id)}
			}
		}
		s.pronouns[c.PronounWord] = c.PronounTargets

	case types.ChangeMovePlayer:
		if !s.locationExists(c.Destination) {
			return &ApplyError{Kind: ErrUnknownEntity, Detail: "location " + string(c.Destination)}
		}
		s.player.CurrentLocation = c.Destination

	case types.ChangeSetPlayerScore:
		s.player.Score = c.ScoreValue

	case types.ChangeAddFuse:
		if _, exists := s.fuses[c.Fuse.ID]; !exists {
			s.fuseOrder = append(s.fuseOrder, c.Fuse.ID)
		}
		s.fuses[c.Fuse.ID] = c.Fuse

	case types.ChangeRemoveFuse:
		delete(s.fuses, c.FuseID)
		s.fuseOrder = removeFuseID(s.fuseOrder, c.FuseID)

	case types.ChangeDecrementFuses:
		for id, f := range s.fuses {
			if f.TurnsLeft > 0 {
				f.TurnsLeft--
				s.fuses[id] = f
			}
		}

	case types.ChangeAddDaemon:
		if _, exists := s.daemons[c.DaemonVal.ID]; !exists {
			s.daemonOrder = append(s.daemonOrder, c.DaemonVal.ID)
		}
		s.daemons[c.DaemonVal.ID] = c.DaemonVal

	case types.ChangeRemoveDaemon:
		delete(s.daemons, c.DaemonID)
		s.daemonOrder = removeDaemonID(s.daemonOrder, c.DaemonID)

	case types.ChangeSetCombatState:
		if c.CombatValue == nil {
			s.player.Combat = types.CombatState{}
		} else {
			s.player.Combat = *c.CombatValue
		}
	}
	return nil
}

func removeFuseID(ids []types.FuseID, target types.FuseID) []types.FuseID {
	for i, id := range ids {
		if id == target {
			return slices.Delete(ids, i, i+1)
		}
	}
	return ids
}

func removeDaemonID(ids []types.DaemonID, target types.DaemonID) []types.DaemonID {
	for i, id := range ids {
		if id == target {
			return slices.Delete(ids, i, i+1)
		}
	}
	return ids
}
