package rules

import (
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// MatchesCommand checks if a rule's When criteria match the resolved command.
func MatchesCommand(when types.MatchCriteria, cmd types.Command, w *store.World) bool {
	if when.Verb != cmd.Verb {
		return false
	}
	if when.Object != "" && when.Object != cmd.DirectObject {
		return false
	}
	if when.Target != "" && when.Target != cmd.IndirectObject {
		return false
	}
	if len(when.ObjectProp) > 0 && cmd.DirectObject != "" {
		for attr, expected := range when.ObjectProp {
			v, ok := w.ItemAttr(cmd.DirectObject, attr)
			if !ok || !attrEqualsAny(v, expected) {
				return false
			}
		}
	}
	if len(when.TargetProp) > 0 && cmd.IndirectObject != "" {
		for attr, expected := range when.TargetProp {
			v, ok := w.ItemAttr(cmd.IndirectObject, attr)
			if !ok || !attrEqualsAny(v, expected) {
				return false
			}
		}
	}
	return true
}

// Specificity returns a numeric score for ranking rules. Higher is more
// specific.
func Specificity(rule types.RuleDef) int {
	score := 0
	if rule.When.Target != "" {
		score += 4
	}
	if rule.When.Object != "" {
		score += 2
	}
	if len(rule.When.ObjectProp) > 0 || len(rule.When.TargetProp) > 0 {
		score += 1
	}
	return score
}
