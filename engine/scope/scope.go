// Package scope computes lighting and reachability over a World snapshot:
// what the player can touch, what the player can see, and whether a given
// location is currently lit.
package scope

import (
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// Resolver answers scope queries against a single World snapshot. It holds
// no state of its own beyond the World it was built from, so it's cheap to
// construct once per turn.
type Resolver struct {
	w *store.World
}

// New builds a Resolver over the given World snapshot.
func New(w *store.World) *Resolver {
	return &Resolver{w: w}
}

// IsLocationLit reports whether loc is inherently lit, or lit by a light
// source that is (a) in loc, (b) carried by the player while the player is
// in loc, or (c) on a surface / in an open-or-transparent container
// recursively contained in (a) or (b).
func (r *Resolver) IsLocationLit(loc types.LocationID) bool {
	if r.w.LocationAttrBool(loc, types.AttrIsInherentlyLit) {
		return true
	}

	playerHere := r.w.Player().CurrentLocation == loc
	for _, id := range r.w.ItemsIn(types.ParentOfLocation(loc)) {
		if r.isLitSourceReachableFrom(id, true) {
			return true
		}
	}
	if playerHere {
		for _, id := range r.w.ItemsIn(types.ParentOfPlayer()) {
			if r.isLitSourceReachableFrom(id, true) {
				return true
			}
		}
	}
	return false
}

// isLitSourceReachableFrom walks id and, if root is true, its recursive
// contents via surfaces (always) and open-or-transparent containers, to
// find a lit light source.
func (r *Resolver) isLitSourceReachableFrom(id types.ItemID, root bool) bool {
	if r.w.ItemAttrBool(id, types.AttrIsLightSource) && r.w.ItemAttrBool(id, types.AttrIsOn) {
		return true
	}
	isContainer := r.w.ItemAttrBool(id, types.AttrIsContainer)
	isSurface := r.w.ItemAttrBool(id, types.AttrIsSurface)
	if !isContainer && !isSurface {
		return false
	}
	open := r.w.ItemAttrBool(id, types.AttrIsOpen)
	transparent := r.w.ItemAttrBool(id, types.AttrIsTransparent)
	crossable := isSurface || open || transparent
	if !crossable {
		return false
	}
	for _, childID := range r.w.ItemsIn(types.ParentOfItem(id)) {
		if r.isLitSourceReachableFrom(childID, false) {
			return true
		}
	}
	return false
}

// ItemsReachableByPlayer returns the set of items the player can currently
// touch: the player's inventory and worn items (plus their recursive
// contents through open-or-transparent containers and surfaces), and the
// player's location and its localGlobals, under the same crossing rule.
// Darkness does not affect reachability.
func (r *Resolver) ItemsReachableByPlayer() map[types.ItemID]struct{} {
	out := map[types.ItemID]struct{}{}
	r.collectReachable(types.ParentOfPlayer(), out)

	player := r.w.Player()
	r.collectReachable(types.ParentOfLocation(player.CurrentLocation), out)
	if loc, ok := r.w.Location(player.CurrentLocation); ok {
		for g := range loc.LocalGlobals {
			out[g] = struct{}{}
		}
	}
	return out
}

func (r *Resolver) collectReachable(p types.Parent, out map[types.ItemID]struct{}) {
	for _, id := range r.w.ItemsIn(p) {
		out[id] = struct{}{}
		isContainer := r.w.ItemAttrBool(id, types.AttrIsContainer)
		isSurface := r.w.ItemAttrBool(id, types.AttrIsSurface)
		if isSurface {
			r.collectReachable(types.ParentOfItem(id), out)
			continue
		}
		if !isContainer {
			continue
		}
		open := r.w.ItemAttrBool(id, types.AttrIsOpen)
		transparent := r.w.ItemAttrBool(id, types.AttrIsTransparent)
		if open || transparent {
			r.collectReachable(types.ParentOfItem(id), out)
		}
	}
}

// ItemsVisibleToPlayer is like ItemsReachableByPlayer (same open-or-
// transparent container crossing rule) but additionally requires light: if
// the player's location is dark and no carried/applicable light source is
// on, only items carried by the player are visible.
func (r *Resolver) ItemsVisibleToPlayer() map[types.ItemID]struct{} {
	out := map[types.ItemID]struct{}{}
	r.collectVisible(types.ParentOfPlayer(), out)

	player := r.w.Player()
	if r.IsLocationLit(player.CurrentLocation) {
		r.collectVisible(types.ParentOfLocation(player.CurrentLocation), out)
		if loc, ok := r.w.Location(player.CurrentLocation); ok {
			for g := range loc.LocalGlobals {
				out[g] = struct{}{}
			}
		}
	}
	return out
}

func (r *Resolver) collectVisible(p types.Parent, out map[types.ItemID]struct{}) {
	for _, id := range r.w.ItemsIn(p) {
		out[id] = struct{}{}
		isContainer := r.w.ItemAttrBool(id, types.AttrIsContainer)
		isSurface := r.w.ItemAttrBool(id, types.AttrIsSurface)
		if isSurface {
			r.collectVisible(types.ParentOfItem(id), out)
			continue
		}
		if !isContainer {
			continue
		}
		open := r.w.ItemAttrBool(id, types.AttrIsOpen)
		transparent := r.w.ItemAttrBool(id, types.AttrIsTransparent)
		if open || transparent {
			r.collectVisible(types.ParentOfItem(id), out)
		}
	}
}
