// Package effects compiles data-authored Effect instructions — the output
// of engine/rules and of dialogue Topic gates — into committable
// StateChange values. Compile only reads the World (for template
// interpolation and counter/HP deltas); it never mutates anything itself.
// The caller passes the returned changes to World.Apply.
package effects

import (
	"strings"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// Context carries the resolved command context needed for template
// interpolation and for effects like give_item that reference "{object}".
type Context struct {
	Verb     string
	ObjectID types.ItemID
	TargetID types.ItemID
}

// Compile turns a list of authored effects into the changes, events, and
// output lines they produce. A "stop" effect truncates the remaining list.
func Compile(w *store.World, list []types.Effect, ctx Context) ([]types.StateChange, []types.Event, []string) {
	var changes []types.StateChange
	var events []types.Event
	var output []string

	for _, eff := range list {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, w, ctx))

		case "give_item":
			item := resolveItemParam(eff.Params["item"], ctx)
			changes = append(changes, types.StateChange{
				Kind: types.ChangeMoveItem, ItemID: item, NewParent: types.ParentOfPlayer(),
			})
			events = append(events, types.Event{Type: "item_taken", Data: map[string]any{"item": string(item)}})

		case "remove_item":
			item := resolveItemParam(eff.Params["item"], ctx)
			changes = append(changes, types.StateChange{
				Kind: types.ChangeMoveItem, ItemID: item, NewParent: types.ParentOfNowhere(),
			})
			events = append(events, types.Event{Type: "item_dropped", Data: map[string]any{"item": string(item)}})

		case "move_item":
			item := resolveItemParam(eff.Params["item"], ctx)
			loc, _ := eff.Params["location"].(string)
			changes = append(changes, types.StateChange{
				Kind: types.ChangeMoveItem, ItemID: item, NewParent: types.ParentOfLocation(types.LocationID(loc)),
			})
			events = append(events, types.Event{Type: "item_moved", Data: map[string]any{"item": string(item), "location": loc}})

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value, _ := eff.Params["value"].(bool)
			kind := types.ChangeClearFlag
			if value {
				kind = types.ChangeSetFlag
			}
			changes = append(changes, types.StateChange{Kind: kind, FlagName: flag})
			events = append(events, types.Event{Type: "flag_changed", Data: map[string]any{"flag": flag, "value": value}})

		case "inc_counter":
			counter, _ := eff.Params["counter"].(string)
			amount := toInt(eff.Params["amount"])
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetCounter, CounterName: counter, CounterValue: w.Counter(counter) + amount,
			})

		case "set_counter":
			counter, _ := eff.Params["counter"].(string)
			value := toInt(eff.Params["value"])
			changes = append(changes, types.StateChange{Kind: types.ChangeSetCounter, CounterName: counter, CounterValue: value})

		case "set_item_attr":
			item := resolveItemParam(eff.Params["item"], ctx)
			attr, _ := eff.Params["attr"].(string)
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetItemAttribute, ItemID: item,
				Attribute: types.AttributeID(attr), NewValue: toAttrValue(eff.Params["value"]),
			})

		case "move_player":
			loc, _ := eff.Params["location"].(string)
			changes = append(changes, types.StateChange{Kind: types.ChangeMovePlayer, Destination: types.LocationID(loc)})
			events = append(events, types.Event{Type: "room_entered", Data: map[string]any{"location": loc}})

		case "emit_event":
			event, _ := eff.Params["event"].(string)
			events = append(events, types.Event{Type: event, Data: map[string]any{}})

		case "start_combat":
			enemy := resolveItemParam(eff.Params["enemy"], ctx)
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetCombatState,
				CombatValue: &types.CombatState{
					Active: true, EnemyID: enemy, PreviousLocation: w.Player().CurrentLocation,
				},
			})
			events = append(events, types.Event{Type: "combat_started", Data: map[string]any{"enemy": string(enemy)}})

		case "end_combat":
			changes = append(changes, types.StateChange{Kind: types.ChangeSetCombatState, CombatValue: nil})
			events = append(events, types.Event{Type: "combat_ended", Data: map[string]any{}})

		case "damage":
			target := resolveItemParam(eff.Params["target"], ctx)
			amount := toInt(eff.Params["amount"])
			remaining := w.ItemAttrInt(target, types.AttrHealth) - amount
			if remaining < 0 {
				remaining = 0
			}
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetItemAttribute, ItemID: target,
				Attribute: types.AttrHealth, NewValue: types.IntValue(remaining),
			})
			events = append(events, types.Event{Type: "entity_damaged",
				Data: map[string]any{"target": string(target), "amount": amount, "remaining": remaining}})
			if remaining <= 0 {
				changes = append(changes, types.StateChange{Kind: types.ChangeSetCombatState, CombatValue: nil})
				events = append(events, types.Event{Type: "enemy_defeated", Data: map[string]any{"enemy": string(target)}})
			}

		case "heal":
			target := resolveItemParam(eff.Params["target"], ctx)
			amount := toInt(eff.Params["amount"])
			current := w.ItemAttrInt(target, types.AttrHealth)
			max := w.ItemAttrInt(target, types.AttrMaxHealth)
			next := current + amount
			if max > 0 && next > max {
				next = max
			}
			changes = append(changes, types.StateChange{
				Kind: types.ChangeSetItemAttribute, ItemID: target,
				Attribute: types.AttrHealth, NewValue: types.IntValue(next),
			})
			events = append(events, types.Event{Type: "entity_healed",
				Data: map[string]any{"target": string(target), "amount": amount, "current": next}})

		case "stop":
			return changes, events, output

		default:
			// Unknown effect type — ignore silently; authoring mistakes are
			// caught at Blueprint load time, not here.
		}
	}

	return changes, events, output
}

func resolveItemParam(v any, ctx Context) types.ItemID {
	s, _ := v.(string)
	switch s {
	case "{object}":
		return ctx.ObjectID
	case "{target}":
		return ctx.TargetID
	default:
		return types.ItemID(s)
	}
}

func toAttrValue(v any) types.AttrValue {
	switch val := v.(type) {
	case bool:
		return types.BoolValue(val)
	case string:
		return types.StringValue(val)
	case int:
		return types.IntValue(val)
	case float64:
		return types.IntValue(int(val))
	default:
		return types.AttrValue{}
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

// interpolate replaces the small set of template variables say effects may
// reference.
func interpolate(text string, w *store.World, ctx Context) string {
	r := strings.NewReplacer(
		"{verb}", ctx.Verb,
		"{object}", w.ItemName(ctx.ObjectID),
		"{target}", w.ItemName(ctx.TargetID),
	)
	text = r.Replace(text)
	if strings.Contains(text, "{player.location}") {
		loc, _ := w.Location(w.Player().CurrentLocation)
		text = strings.ReplaceAll(text, "{player.location}", loc.Name)
	}
	if strings.Contains(text, "{room.description}") {
		loc, _ := w.Location(w.Player().CurrentLocation)
		text = strings.ReplaceAll(text, "{room.description}", loc.Description)
	}
	if strings.Contains(text, "{player.inventory}") {
		text = strings.ReplaceAll(text, "{player.inventory}", formatInventory(w))
	}
	return text
}

func formatInventory(w *store.World) string {
	ids := w.ItemsIn(types.ParentOfPlayer())
	if len(ids) == 0 {
		return "You are carrying nothing."
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, w.ItemName(id))
	}
	return strings.Join(names, ", ")
}
