// Package rules evaluates data-authored Condition/Effect pairs (rule
// "When" clauses, dialogue topic gates, before/after-turn hook gates)
// against a World snapshot.
package rules

import (
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// EvalCondition evaluates a single condition against the current world.
func EvalCondition(c types.Condition, w *store.World) bool {
	switch c.Type {
	case "has_item":
		item, _ := c.Params["item"].(string)
		it, ok := w.Item(types.ItemID(item))
		return ok && it.Parent.Kind == types.ParentPlayer

	case "item_in_location":
		item, _ := c.Params["item"].(string)
		loc, _ := c.Params["location"].(string)
		it, ok := w.Item(types.ItemID(item))
		return ok && it.Parent.Kind == types.ParentLocation && it.Parent.Location == types.LocationID(loc)

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return w.Flag(flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !w.Flag(flag)

	case "flag_is":
		flag, _ := c.Params["flag"].(string)
		value, _ := c.Params["value"].(bool)
		return w.Flag(flag) == value

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return w.Counter(counter) > value

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		value := toInt(c.Params["value"])
		return w.Counter(counter) < value

	case "in_location":
		loc, _ := c.Params["location"].(string)
		return string(w.Player().CurrentLocation) == loc

	case "item_attr_is":
		item, _ := c.Params["item"].(string)
		attr, _ := c.Params["attr"].(string)
		expected := c.Params["value"]
		v, ok := w.ItemAttr(types.ItemID(item), types.AttributeID(attr))
		if !ok {
			return expected == nil
		}
		return attrEqualsAny(v, expected)

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, w)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic). An
// empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, w *store.World) bool {
	for _, c := range conditions {
		if !EvalCondition(c, w) {
			return false
		}
	}
	return true
}

func attrEqualsAny(v types.AttrValue, expected any) bool {
	switch v.Kind {
	case types.AttrKindBool:
		b, ok := expected.(bool)
		return ok && v.Bool == b
	case types.AttrKindInt:
		return v.Int == toInt(expected)
	case types.AttrKindString:
		s, ok := expected.(string)
		return ok && v.Str == s
	default:
		return false
	}
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
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
