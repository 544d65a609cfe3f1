package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect types (engine/effects.Compile's recognized Kinds).
var validEffectTypes = map[string]bool{
	"say":             true,
	"give_item":       true,
	"remove_item":     true,
	"move_item":       true,
	"set_flag":        true,
	"inc_counter":     true,
	"set_counter":     true,
	"set_item_attr":   true,
	"move_player":     true,
	"emit_event":      true,
	"start_combat":    true,
	"end_combat":      true,
	"damage":          true,
	"heal":            true,
	"stop":            true,
}

// Known condition types (engine/rules.EvalCondition's recognized Kinds).
var validConditionTypes = map[string]bool{
	"has_item":        true,
	"item_in_location": true,
	"flag_set":        true,
	"flag_not":        true,
	"flag_is":         true,
	"counter_gt":      true,
	"counter_lt":      true,
	"in_location":     true,
	"item_attr_is":    true,
	"not":             true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *store.Defs) error {
	ve := &ValidationError{}

	if defs.Title == "" {
		ve.Errors = append(ve.Errors, "Game title is required")
	}

	if defs.Start == "" {
		ve.Errors = append(ve.Errors, "Game start location is required")
	} else if _, ok := defs.Locations[defs.Start]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start location %q not found in defined locations", defs.Start))
	}

	for locID, loc := range defs.Locations {
		for dir, exit := range loc.Exits {
			if _, ok := defs.Locations[exit.Destination]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q exit %q points to undefined location %q", locID, dir, exit.Destination))
			}
			if exit.Door != "" {
				if _, ok := defs.Items[exit.Door]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"location %q exit %q door references undefined item %q", locID, dir, exit.Door))
				}
			}
		}
		validateRules(loc.Rules, defs, ve)
		validateHooks(loc.Hooks, defs, ve)
	}

	ruleIDs := map[string]bool{}
	for _, rule := range collectAllRules(defs) {
		if ruleIDs[rule.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate rule ID %q", rule.ID))
		}
		ruleIDs[rule.ID] = true
	}

	validateRules(defs.GlobalRules, defs, ve)

	for itemID, item := range defs.Items {
		validateRules(item.Rules, defs, ve)
		validateHooks(item.Hooks, defs, ve)

		for _, topic := range item.Topics {
			validateConditions(topic.Requires, defs, ve)
			validateEffects(topic.Effects, defs, ve)
		}

		if item.Parent.Kind == types.ParentLocation {
			if _, ok := defs.Locations[item.Parent.Location]; !ok {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"item %q location %q does not match any defined location", itemID, item.Parent.Location))
			}
		}
		if item.Parent.Kind == types.ParentItem {
			if _, ok := defs.Items[item.Parent.Item]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"item %q parent %q does not match any defined item", itemID, item.Parent.Item))
			}
		}
	}

	for _, handler := range defs.Handlers {
		validateConditions(handler.Conditions, defs, ve)
		validateEffects(handler.Effects, defs, ve)
	}

	hasEnemies := false
	for itemID, item := range defs.Items {
		if boolAttr(item, types.AttrIsEnemy) {
			hasEnemies = true
			validateEnemy(itemID, item, defs, ve)
		}
	}
	if hasEnemies && defs.PlayerStats.MaxHealth <= 0 {
		ve.Warnings = append(ve.Warnings, "enemy items exist but Game player max_health is not positive")
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateRules(rules []types.RuleDef, defs *store.Defs, ve *ValidationError) {
	for _, rule := range rules {
		validateConditions(rule.Conditions, defs, ve)
		validateEffects(rule.Effects, defs, ve)

		if rule.When.Verb != "" && !isKnownVerb(rule.When.Verb) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"rule %q uses unrecognized verb %q", rule.ID, rule.When.Verb))
		}
	}
}

func validateHooks(hooks []types.BeforeAfterHook, defs *store.Defs, ve *ValidationError) {
	for _, hook := range hooks {
		if hook.When != "before" && hook.When != "after" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"hook %q When must be \"before\" or \"after\", got %q", hook.ID, hook.When))
		}
		validateConditions(hook.Conditions, defs, ve)
		validateEffects(hook.Effects, defs, ve)
	}
}

func validateConditions(conditions []types.Condition, defs *store.Defs, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown condition type %q", cond.Type))
		}

		switch cond.Type {
		case "has_item":
			if item, ok := cond.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[types.ItemID(item)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition has_item references undefined item %q", item))
				}
			}
		case "item_in_location":
			if item, ok := cond.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[types.ItemID(item)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition item_in_location references undefined item %q", item))
				}
			}
			if loc, ok := cond.Params["location"].(string); ok && !isTemplate(loc) {
				if _, ok := defs.Locations[types.LocationID(loc)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition item_in_location references undefined location %q", loc))
				}
			}
		case "in_location":
			if loc, ok := cond.Params["location"].(string); ok && !isTemplate(loc) {
				if _, ok := defs.Locations[types.LocationID(loc)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition in_location references undefined location %q", loc))
				}
			}
		case "item_attr_is":
			if item, ok := cond.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[types.ItemID(item)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"condition item_attr_is references undefined item %q", item))
				}
			}
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, defs, ve)
			}
		}
	}
}

func validateEffects(effects []types.Effect, defs *store.Defs, ve *ValidationError) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("unknown effect type %q", eff.Type))
		}

		switch eff.Type {
		case "give_item", "remove_item":
			if item, ok := eff.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[types.ItemID(item)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect %s references undefined item %q", eff.Type, item))
				}
			}
		case "move_item":
			if item, ok := eff.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[types.ItemID(item)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect move_item references undefined item %q", item))
				}
			}
			if loc, ok := eff.Params["location"].(string); ok && !isTemplate(loc) {
				if _, ok := defs.Locations[types.LocationID(loc)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect move_item references undefined location %q", loc))
				}
			}
		case "set_item_attr":
			if item, ok := eff.Params["item"].(string); ok && !isTemplate(item) {
				if _, ok := defs.Items[types.ItemID(item)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect set_item_attr references undefined item %q", item))
				}
			}
		case "move_player":
			if loc, ok := eff.Params["location"].(string); ok && !isTemplate(loc) {
				if _, ok := defs.Locations[types.LocationID(loc)]; !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect move_player references undefined location %q", loc))
				}
			}
		case "start_combat":
			if enemy, ok := eff.Params["enemy"].(string); ok && !isTemplate(enemy) {
				it, ok := defs.Items[types.ItemID(enemy)]
				if !ok {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect start_combat references undefined item %q", enemy))
				} else if !boolAttr(it, types.AttrIsEnemy) {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"effect start_combat target %q is not marked isEnemy", enemy))
				}
			}
		}
	}
}

// collectAllRules gathers all rules from all scopes.
func collectAllRules(defs *store.Defs) []types.RuleDef {
	var all []types.RuleDef
	all = append(all, defs.GlobalRules...)
	for _, loc := range defs.Locations {
		all = append(all, loc.Rules...)
	}
	for _, item := range defs.Items {
		all = append(all, item.Rules...)
	}
	return all
}

// isTemplate returns true if the string contains a template variable.
func isTemplate(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}

// knownVerbs mirrors the core VerbID vocabulary. Compass directions are
// not in it: they parse as movement shorthand for go, never as a
// MatchCriteria.Verb of their own.
var knownVerbs = map[types.VerbID]bool{
	types.VerbTake: true, types.VerbDrop: true, types.VerbInsert: true,
	types.VerbPutOn: true, types.VerbOpen: true, types.VerbClose: true,
	types.VerbLock: true, types.VerbUnlock: true, types.VerbRead: true,
	types.VerbLook: true, types.VerbExamine: true, types.VerbTurnOn: true,
	types.VerbTurnOff: true, types.VerbRemove: true, types.VerbWear: true,
	types.VerbGo: true, types.VerbInventory: true,
	types.VerbAttack: true, types.VerbDefend: true, types.VerbFlee: true,
	types.VerbTalk: true,
}

func isKnownVerb(verb types.VerbID) bool {
	return knownVerbs[verb]
}

func boolAttr(item types.Item, attr types.AttributeID) bool {
	if item.Attributes == nil {
		return false
	}
	v, ok := item.Attributes[attr]
	return ok && v.Kind == types.AttrKindBool && v.Bool
}

func intAttr(item types.Item, attr types.AttributeID) (int, bool) {
	if item.Attributes == nil {
		return 0, false
	}
	v, ok := item.Attributes[attr]
	if !ok || v.Kind != types.AttrKindInt {
		return 0, false
	}
	return v.Int, true
}

// validateEnemy checks that an enemy item carries the stats combat needs.
func validateEnemy(itemID string, item types.Item, defs *store.Defs, ve *ValidationError) {
	for _, stat := range []types.AttributeID{types.AttrHealth, types.AttrMaxHealth, types.AttrAttack, types.AttrDefense} {
		n, ok := intAttr(item, stat)
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"enemy %q missing required integer attribute %q", itemID, stat))
			continue
		}
		if n <= 0 && (stat == types.AttrHealth || stat == types.AttrMaxHealth) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"enemy %q attribute %q must be positive, got %d", itemID, stat, n))
		}
	}

	if _, hasBehavior := item.Attributes[types.AttrBehavior]; !hasBehavior {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"enemy %q has no behavior attribute (defaults to attack-only)", itemID))
	}

	if lootVal, ok := item.Attributes[types.AttrLoot]; ok && lootVal.Kind == types.AttrKindStringSet {
		for lootID := range lootVal.StrSet {
			if _, ok := defs.Items[types.ItemID(lootID)]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"enemy %q loot references undefined item %q", itemID, lootID))
			}
		}
	}
}
