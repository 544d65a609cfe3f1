// Package hooks implements the Event Dispatcher (spec.md §4.6): per-item
// and per-location before/after-turn hooks, plus a reactive single-pass
// On(event) layer.
package hooks

import (
	"go.uber.org/zap"

	"github.com/loomwright/grue/engine/effects"
	"github.com/loomwright/grue/engine/rules"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// Dispatcher runs before/after-turn hooks and the reactive event layer.
// Hooks are data (Conditions + Effects + optional short-circuit Message),
// so dispatch needs no per-game registration beyond the Blueprint.
type Dispatcher struct {
	log *zap.Logger
}

// New creates a Dispatcher. A nil logger is replaced with a no-op one.
func New(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log}
}

// scopedHooks returns the hook tables in dispatch order: the direct
// object item, the indirect object item, then the current location.
func scopedHooks(w *store.World, cmd types.Command) [][]types.BeforeAfterHook {
	var scopes [][]types.BeforeAfterHook
	if cmd.DirectObject != "" {
		if it, ok := w.Item(cmd.DirectObject); ok && len(it.Hooks) > 0 {
			scopes = append(scopes, it.Hooks)
		}
	}
	if cmd.IndirectObject != "" && cmd.IndirectObject != cmd.DirectObject {
		if it, ok := w.Item(cmd.IndirectObject); ok && len(it.Hooks) > 0 {
			scopes = append(scopes, it.Hooks)
		}
	}
	if loc, ok := w.Location(w.Player().CurrentLocation); ok && len(loc.Hooks) > 0 {
		scopes = append(scopes, loc.Hooks)
	}
	return scopes
}

// RunBefore runs before-turn hooks in dispatch order. A hook whose
// Conditions pass contributes its Effects regardless of outcome; if it
// also carries a non-empty Message, dispatch stops there and short
// reports the turn's outcome (accumulating every change seen so far,
// including this hook's own). If short is nil, the default action
// handler should run next, and changes/output (possibly empty) should
// still be folded into its result.
func (d *Dispatcher) RunBefore(w *store.World, cmd types.Command) (short *types.ActionResult, changes []types.StateChange, output []string) {
	for _, scope := range scopedHooks(w, cmd) {
		for _, hook := range scope {
			if hook.When != "before" {
				continue
			}
			hookChanges, hookOutput, matched := d.runHook(w, cmd, hook)
			if !matched {
				continue
			}
			changes = append(changes, hookChanges...)
			output = append(output, hookOutput...)
			if hook.Message != "" {
				msg := hook.Message
				for _, line := range hookOutput {
					msg += "\n\n" + line
				}
				return &types.ActionResult{Message: msg, Changes: changes}, changes, output
			}
		}
	}
	return nil, changes, output
}

// RunAfter runs after-turn hooks in the same dispatch order, over the
// already-committed world (spec.md §9 Open Question (c)): they see the
// final state, not a pre-commit snapshot.
func (d *Dispatcher) RunAfter(w *store.World, cmd types.Command) (changes []types.StateChange, output []string) {
	for _, scope := range scopedHooks(w, cmd) {
		for _, hook := range scope {
			if hook.When != "after" {
				continue
			}
			hookChanges, hookOutput, matched := d.runHook(w, cmd, hook)
			if !matched {
				continue
			}
			changes = append(changes, hookChanges...)
			output = append(output, hookOutput...)
		}
	}
	return changes, output
}

// runHook evaluates one hook's Conditions and, if they pass, compiles its
// Effects. A panicking hook is recovered, logged, and treated as having
// no opinion (matched=false) — the turn continues (spec.md §4.6).
func (d *Dispatcher) runHook(w *store.World, cmd types.Command, hook types.BeforeAfterHook) (changes []types.StateChange, output []string, matched bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("turn hook panicked; treating as no opinion",
				zap.String("hook_id", hook.ID), zap.Any("panic", r))
			changes, output, matched = nil, nil, false
		}
	}()
	if !rules.EvalAllConditions(hook.Conditions, w) {
		return nil, nil, false
	}
	ctx := effects.Context{Verb: string(cmd.Verb), ObjectID: cmd.DirectObject, TargetID: cmd.IndirectObject}
	c, _, out := effects.Compile(w, hook.Effects, ctx)
	return c, out, true
}

// DispatchReactive runs the single-pass reactive On(event) layer: for
// each emitted event, every EventHandler whose EventType matches and
// whose Conditions pass contributes its Effects. No recursion — effects
// produced here are not themselves re-dispatched against.
func (d *Dispatcher) DispatchReactive(events []types.Event, handlers []types.EventHandler, w *store.World) []types.Effect {
	var result []types.Effect
	for _, event := range events {
		for _, handler := range handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !rules.EvalAllConditions(handler.Conditions, w) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}
	return result
}
