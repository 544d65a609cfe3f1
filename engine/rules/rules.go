package rules

import (
	"sort"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// Evaluate runs the author-rule overlay (collect → filter → rank → select)
// for a resolved command and returns the matched rule's effects. The bool
// reports whether a rule actually matched (true) vs. fallback text was
// produced (false) — callers use this to decide whether a built-in Action
// Handler should still run.
func Evaluate(w *store.World, cmd types.Command) ([]types.Effect, bool) {
	for _, bucket := range collect(w, cmd) {
		if winner := filterRankSelect(bucket, w, cmd); winner != nil {
			return winner.Effects, true
		}
	}
	return fallback(w, cmd), false
}

// collect gathers candidate rule buckets in resolution order: current
// location's rules, indirect object's rules, direct object's rules, then
// global rules.
func collect(w *store.World, cmd types.Command) [][]types.RuleDef {
	var buckets [][]types.RuleDef

	if loc, ok := w.Location(w.Player().CurrentLocation); ok && len(loc.Rules) > 0 {
		buckets = append(buckets, loc.Rules)
	}
	if cmd.IndirectObject != "" {
		if it, ok := w.Item(cmd.IndirectObject); ok && len(it.Rules) > 0 {
			buckets = append(buckets, it.Rules)
		}
	}
	if cmd.DirectObject != "" && cmd.DirectObject != cmd.IndirectObject {
		if it, ok := w.Item(cmd.DirectObject); ok && len(it.Rules) > 0 {
			buckets = append(buckets, it.Rules)
		}
	}
	if defs := w.Defs(); defs != nil && len(defs.GlobalRules) > 0 {
		buckets = append(buckets, defs.GlobalRules)
	}
	return buckets
}

// filterRankSelect filters a bucket of rules, ranks them, and returns the
// top-ranked matching rule, or nil if none match.
func filterRankSelect(candidateRules []types.RuleDef, w *store.World, cmd types.Command) *types.RuleDef {
	var candidates []types.RuleDef
	for _, rule := range candidateRules {
		if !MatchesCommand(rule.When, cmd, w) {
			continue
		}
		if !EvalAllConditions(rule.Conditions, w) {
			continue
		}
		candidates = append(candidates, rule)
	}
	if len(candidates) == 0 {
		return nil
	}

	// Rank: specificity (desc) → priority (desc) → source order (asc).
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := Specificity(candidates[i]), Specificity(candidates[j])
		if si != sj {
			return si > sj
		}
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].SourceOrder < candidates[j].SourceOrder
	})
	return &candidates[0]
}

// fallback produces effects when no rule matched: location fallback
// (verb-specific) → location fallback (default) → global default. Items
// have no fallback map of their own (spec.md's Location is the only type
// that carries one) — an author wanting item-specific fallback text
// expresses it as a rule instead.
func fallback(w *store.World, cmd types.Command) []types.Effect {
	verb := string(cmd.Verb)
	if loc, ok := w.Location(w.Player().CurrentLocation); ok {
		if text, ok := loc.Fallbacks[verb]; ok {
			return []types.Effect{sayEffect(text)}
		}
		if text, ok := loc.Fallbacks["default"]; ok {
			return []types.Effect{sayEffect(text)}
		}
	}
	return []types.Effect{sayEffect("You can't do that.")}
}

func sayEffect(text string) types.Effect {
	return types.Effect{Type: "say", Params: map[string]any{"text": text}}
}
