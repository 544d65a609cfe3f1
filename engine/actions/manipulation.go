package actions

import "github.com/loomwright/grue/types"

// takeHandler implements spec.md §4.5's representative "Take" contract.
type takeHandler struct{}

func (takeHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Take what?"}
	}
	reachable := ctx.Scope.ItemsReachableByPlayer()
	if _, ok := reachable[id]; !ok {
		return &types.ActionResponse{Kind: types.RespItemNotAccessible, Message: ctx.Messenger.Default("cant_see_that", nil)}
	}
	it, _ := ctx.World.Item(id)
	if it.Parent.Kind == types.ParentPlayer {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("already_have", nil)}
	}
	if it.Parent.Kind == types.ParentItem {
		isContainer := ctx.World.ItemAttrBool(it.Parent.Item, types.AttrIsContainer)
		isSurface := ctx.World.ItemAttrBool(it.Parent.Item, types.AttrIsSurface)
		open := ctx.World.ItemAttrBool(it.Parent.Item, types.AttrIsOpen)
		transparent := ctx.World.ItemAttrBool(it.Parent.Item, types.AttrIsTransparent)
		if !isSurface && (!isContainer || !(open || transparent)) {
			return &types.ActionResponse{Kind: types.RespTargetNotContainer,
				Message: ctx.Messenger.Default("cant_take_from", map[string]string{"item": itemName(ctx, it.Parent.Item)})}
		}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsTakable) || ctx.World.ItemAttrBool(id, types.AttrIsFixed) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("cant_take", map[string]string{"item": itemName(ctx, id)})}
	}
	size := ctx.World.ItemAttrInt(id, types.AttrSize)
	carried := 0
	for _, cid := range ctx.World.ItemsIn(types.ParentOfPlayer()) {
		carried += ctx.World.ItemAttrInt(cid, types.AttrSize)
	}
	cap := ctx.World.Player().CarryingCapacity
	if cap > 0 && carried+size > cap {
		return &types.ActionResponse{Kind: types.RespItemTooLarge, Message: ctx.Messenger.Default("hands_full", nil)}
	}
	return nil
}

func (takeHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeMoveItem, ItemID: id, NewParent: types.ParentOfPlayer()},
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsTouched) {
		changes = append(changes, types.StateChange{
			Kind: types.ChangeSetItemAttribute, ItemID: id,
			Attribute: types.AttrIsTouched, NewValue: types.BoolValue(true),
		})
	}
	changes = append(changes, types.StateChange{
		Kind: types.ChangeSetPronoun, PronounWord: types.PronounIt,
		PronounTargets: map[types.ItemID]struct{}{id: {}},
	})
	return &types.ActionResult{Message: "Taken.", Changes: changes}, nil
}

// dropHandler releases a held item into the player's current location.
type dropHandler struct{}

func (dropHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Drop what?"}
	}
	it, ok := ctx.World.Item(id)
	if !ok || it.Parent.Kind != types.ParentPlayer {
		return &types.ActionResponse{Kind: types.RespItemNotHeld, Message: "You don't have that."}
	}
	return nil
}

func (dropHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	loc := ctx.World.Player().CurrentLocation
	changes := []types.StateChange{
		{Kind: types.ChangeMoveItem, ItemID: id, NewParent: types.ParentOfLocation(loc)},
		{Kind: types.ChangeSetPronoun, PronounWord: types.PronounIt,
			PronounTargets: map[types.ItemID]struct{}{id: {}}},
	}
	return &types.ActionResult{Message: "Dropped.", Changes: changes}, nil
}

// wearHandler puts a held wearable item on.
type wearHandler struct{}

func (wearHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Wear what?"}
	}
	it, ok := ctx.World.Item(id)
	if !ok || it.Parent.Kind != types.ParentPlayer {
		return &types.ActionResponse{Kind: types.RespItemNotHeld, Message: "You don't have that."}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsWearable) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "You can't wear that."}
	}
	if ctx.World.ItemAttrBool(id, types.AttrIsWorn) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "You're already wearing that."}
	}
	return nil
}

func (wearHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsWorn, NewValue: types.BoolValue(true)},
	}
	return &types.ActionResult{Message: "You put on the " + itemName(ctx, id) + ".", Changes: changes}, nil
}

// removeHandler takes a worn item off.
type removeHandler struct{}

func (removeHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Remove what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsWorn) {
		return &types.ActionResponse{Kind: types.RespItemNotRemovable, Message: "You're not wearing that."}
	}
	return nil
}

func (removeHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsWorn, NewValue: types.BoolValue(false)},
	}
	return &types.ActionResult{Message: "You take off the " + itemName(ctx, id) + ".", Changes: changes}, nil
}
