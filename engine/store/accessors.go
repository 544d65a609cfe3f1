package store

import "github.com/loomwright/grue/types"

// ItemAttr returns an item's attribute value and whether it is set.
func (w *World) ItemAttr(id types.ItemID, attr types.AttributeID) (types.AttrValue, bool) {
	it, ok := w.items[id]
	if !ok {
		return types.AttrValue{}, false
	}
	v, ok := it.Attributes[attr]
	return v, ok
}

// ItemAttrBool reads a boolean attribute; unset or wrong-kind reads false.
func (w *World) ItemAttrBool(id types.ItemID, attr types.AttributeID) bool {
	it, ok := w.items[id]
	if !ok {
		return false
	}
	return attrBool(it.Attributes, attr)
}

// ItemAttrInt reads an integer attribute; unset or wrong-kind reads 0.
func (w *World) ItemAttrInt(id types.ItemID, attr types.AttributeID) int {
	it, ok := w.items[id]
	if !ok {
		return 0
	}
	return attrInt(it.Attributes, attr)
}

// ItemAttrString reads a string attribute; unset or wrong-kind reads "".
func (w *World) ItemAttrString(id types.ItemID, attr types.AttributeID) string {
	v, ok := w.ItemAttr(id, attr)
	if !ok || v.Kind != types.AttrKindString {
		return ""
	}
	return v.Str
}

// LocationAttrBool reads a boolean location attribute.
func (w *World) LocationAttrBool(id types.LocationID, attr types.AttributeID) bool {
	loc, ok := w.locations[id]
	if !ok {
		return false
	}
	return attrBool(loc.Attributes, attr)
}

// ItemName returns the item's display name, falling back to its id.
func (w *World) ItemName(id types.ItemID) string {
	it, ok := w.items[id]
	if !ok || it.Name == "" {
		return string(id)
	}
	return it.Name
}

// Exits returns the location's exits (direction -> spec). Door gating is
// resolved separately via the door item's isOpen/isLocked attributes —
// the exit graph itself is immutable once authored.
func (w *World) Exits(id types.LocationID) map[string]types.ExitSpec {
	loc, ok := w.locations[id]
	if !ok {
		return nil
	}
	return loc.Exits
}
