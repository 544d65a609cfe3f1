package actions

import (
	"maps"

	"github.com/loomwright/grue/engine/scope"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// turnOnHandler switches on a device or light source.
type turnOnHandler struct{}

func (turnOnHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Turn on what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsDevice) && !ctx.World.ItemAttrBool(id, types.AttrIsLightSource) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("cant_turn_on", nil)}
	}
	if ctx.World.ItemAttrBool(id, types.AttrIsOn) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("already_on", nil)}
	}
	return nil
}

func (turnOnHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsOn, NewValue: types.BoolValue(true)},
	}
	msg := ctx.Messenger.Default("turned_on", map[string]string{"item": itemName(ctx, id)})
	if ctx.World.ItemAttrBool(id, types.AttrIsLightSource) {
		loc := ctx.World.Player().CurrentLocation
		wasLit := ctx.Scope.IsLocationLit(loc)
		if !wasLit {
			msg = ctx.Messenger.Default("light_floods_in", map[string]string{"item": itemName(ctx, id)})
		}
	}
	return &types.ActionResult{Message: msg, Changes: changes}, nil
}

// turnOffHandler switches off a device or light source. Darkening the
// player's current location is reported in the same turn (spec.md §4.5:
// "the turn that darkens a location must itself report the darkness").
type turnOffHandler struct{}

func (turnOffHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Turn off what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsDevice) && !ctx.World.ItemAttrBool(id, types.AttrIsLightSource) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("cant_turn_off", nil)}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsOn) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("already_off", nil)}
	}
	return nil
}

func (turnOffHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsOn, NewValue: types.BoolValue(false)},
	}
	msg := ctx.Messenger.Default("turned_off", map[string]string{"item": itemName(ctx, id)})
	if ctx.World.ItemAttrBool(id, types.AttrIsLightSource) {
		loc := ctx.World.Player().CurrentLocation
		wasLit := ctx.Scope.IsLocationLit(loc)
		if wasLit && !afterTurningOff(ctx.World, id, loc) {
			msg = ctx.Messenger.Default("darkness_falls", map[string]string{"item": itemName(ctx, id)})
		}
	}
	return &types.ActionResult{Message: msg, Changes: changes}, nil
}

// afterTurningOff reports whether loc is still lit once id stops shining,
// by querying a scratch World (a Snapshot with id's AttrIsOn flipped off,
// restored against the same Defs) rather than scanning only the player's
// and location's direct children: a second lit lamp on a surface or inside
// an open container elsewhere in the room must still count.
func afterTurningOff(w *store.World, id types.ItemID, loc types.LocationID) bool {
	snap := w.Snapshot()
	it := snap.Items[id]
	if it.Attributes == nil {
		it.Attributes = map[types.AttributeID]types.AttrValue{}
	} else {
		it.Attributes = maps.Clone(it.Attributes)
	}
	it.Attributes[types.AttrIsOn] = types.BoolValue(false)
	snap.Items[id] = it

	scratch := store.Restore(w.Defs(), snap)
	return scope.New(scratch).IsLocationLit(loc)
}

// readHandler prints an item's readable text, provided the player can see
// it (location lit, or the item is itself a lit light source).
type readHandler struct{}

func (readHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Read what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsReadable) {
		return &types.ActionResponse{Kind: types.RespItemNotReadable, Message: "There's nothing to read there."}
	}
	loc := ctx.World.Player().CurrentLocation
	lit := ctx.Scope.IsLocationLit(loc)
	selfLit := ctx.World.ItemAttrBool(id, types.AttrIsLightSource) && ctx.World.ItemAttrBool(id, types.AttrIsOn)
	if !lit && !selfLit {
		return &types.ActionResponse{Kind: types.RespRoomIsDark, Message: "It's too dark to read that."}
	}
	return nil
}

func (readHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	text := ctx.World.ItemAttrString(id, types.AttrReadText)
	if text == "" {
		text = ctx.Messenger.Default("nothing_written", map[string]string{"item": itemName(ctx, id)})
	}
	changes := []types.StateChange{
		{Kind: types.ChangeSetPronoun, PronounWord: types.PronounIt,
			PronounTargets: map[types.ItemID]struct{}{id: {}}},
	}
	return &types.ActionResult{Message: text, Changes: changes}, nil
}
