// Package timers implements fuses (countdown triggers) and daemons
// (per-turn hooks, each gated by its own Conditions), run as the last step of every turn
// after the action and its hooks have committed (spec.md §4.7 step 5).
package timers

import (
	"github.com/loomwright/grue/engine/effects"
	"github.com/loomwright/grue/engine/rules"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// Tick decrements every active fuse's turn counter and fires any that
// reach zero, in insertion order, then runs every active daemon in
// registration order. It returns the combined StateChanges (including
// the ChangeRemoveFuse for each fuse that fired) and output lines the
// caller should commit and emit; Tick itself never mutates the World.
func Tick(w *store.World) ([]types.StateChange, []string) {
	var changes []types.StateChange
	var output []string

	changes = append(changes, types.StateChange{Kind: types.ChangeDecrementFuses})
	decremented := decrementedView(w.ActiveFuses())

	for _, f := range decremented {
		if f.TurnsLeft > 0 {
			continue
		}
		fireChanges, fireOutput := fireFuse(w, f)
		changes = append(changes, fireChanges...)
		output = append(output, fireOutput...)
		changes = append(changes, types.StateChange{Kind: types.ChangeRemoveFuse, FuseID: f.ID})
	}

	for _, d := range w.ActiveDaemons() {
		if !rules.EvalAllConditions(d.Conditions, w) {
			continue
		}
		c, _, out := effects.Compile(w, d.Effects, effects.Context{})
		changes = append(changes, c...)
		output = append(output, out...)
	}

	return changes, output
}

// decrementedView mirrors the ChangeDecrementFuses commit logic on a
// read-only snapshot, so Tick can determine which fuses would fire
// without applying anything itself.
func decrementedView(fuses []types.Fuse) []types.Fuse {
	out := make([]types.Fuse, len(fuses))
	for i, f := range fuses {
		if f.TurnsLeft > 0 {
			f.TurnsLeft--
		}
		out[i] = f
	}
	return out
}

// fireFuse compiles a fired fuse's payload. Payload is free-form authored
// data (spec.md §3's Game Blueprint shape); two keys are understood here:
// "message" (string, appended directly to output) and "effects"
// ([]types.Effect, compiled the same way rules/hooks/dialogue are).
func fireFuse(w *store.World, f types.Fuse) ([]types.StateChange, []string) {
	var output []string
	if msg, ok := f.Payload["message"].(string); ok && msg != "" {
		output = append(output, msg)
	}
	effList, _ := f.Payload["effects"].([]types.Effect)
	changes, _, compiledOutput := effects.Compile(w, effList, effects.Context{})
	output = append(output, compiledOutput...)
	return changes, output
}
