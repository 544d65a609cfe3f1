package actions

import "github.com/loomwright/grue/types"

// validatePlacement resolves and validates the common direct/indirect object
// shape shared by insertHandler and putOnHandler.
func validatePlacement(ctx *Context, wantContainer bool) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	target := ctx.Cmd.IndirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Put what?"}
	}
	if target == "" {
		if wantContainer {
			return &types.ActionResponse{Kind: types.RespCustom, Message: "Insert it in what?"}
		}
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Put it on what?"}
	}
	if id == target {
		return &types.ActionResponse{Kind: types.RespSelfInsertion, Message: "You can't put the " + itemName(ctx, id) + " in itself."}
	}
	it, ok := ctx.World.Item(id)
	if !ok || it.Parent.Kind != types.ParentPlayer {
		return &types.ActionResponse{Kind: types.RespItemNotHeld, Message: "You're not holding that."}
	}
	reachable := ctx.Scope.ItemsReachableByPlayer()
	if _, ok := reachable[target]; !ok {
		return &types.ActionResponse{Kind: types.RespItemNotAccessible, Message: "You can't see any such thing."}
	}
	if wantContainer {
		if !ctx.World.ItemAttrBool(target, types.AttrIsContainer) {
			return &types.ActionResponse{Kind: types.RespTargetNotContainer, Message: "You can't put things in the " + itemName(ctx, target) + "."}
		}
		if ctx.World.ItemAttrBool(target, types.AttrIsOpenable) && !ctx.World.ItemAttrBool(target, types.AttrIsOpen) {
			return &types.ActionResponse{Kind: types.RespContainerClosed, Message: "The " + itemName(ctx, target) + " is closed."}
		}
	} else {
		if !ctx.World.ItemAttrBool(target, types.AttrIsSurface) {
			return &types.ActionResponse{Kind: types.RespTargetNotContainer, Message: "You can't put things on the " + itemName(ctx, target) + "."}
		}
	}
	// Walk target's ancestry to rule out the indirect object being id itself
	// nested inside something id already contains (spec.md §3 containment
	// cycle invariant — rejected here with a specific message rather than
	// the generic invariant-violation error).
	seen := map[types.ItemID]bool{}
	cur := target
	for {
		item, ok := ctx.World.Item(cur)
		if !ok || item.Parent.Kind != types.ParentItem {
			break
		}
		if item.Parent.Item == id {
			return &types.ActionResponse{Kind: types.RespIndirectRecursion,
				Message: "You can't put the " + itemName(ctx, id) + " inside the " + itemName(ctx, target) +
					", because the " + itemName(ctx, target) + " is inside the " + itemName(ctx, id) + "!"}
		}
		if seen[item.Parent.Item] {
			break
		}
		seen[item.Parent.Item] = true
		cur = item.Parent.Item
	}
	if wantContainer {
		capacity := ctx.World.ItemAttrInt(target, types.AttrCapacity)
		if capacity > 0 {
			used := 0
			for _, cid := range ctx.World.ItemsIn(types.ParentOfItem(target)) {
				used += ctx.World.ItemAttrInt(cid, types.AttrSize)
			}
			if used+ctx.World.ItemAttrInt(id, types.AttrSize) > capacity {
				return &types.ActionResponse{Kind: types.RespContainerFull, Message: "The " + itemName(ctx, target) + " is full."}
			}
		}
	}
	return nil
}

// containerDescriptor names a container by its open/closed state, matching
// Zork-style phrasing ("the open box") when the destination is a
// currently-open container.
func containerDescriptor(ctx *Context, id types.ItemID) string {
	name := itemName(ctx, id)
	if ctx.World.ItemAttrBool(id, types.AttrIsContainer) && ctx.World.ItemAttrBool(id, types.AttrIsOpen) {
		return "open " + name
	}
	return name
}

func placementChanges(ctx *Context) []types.StateChange {
	id := ctx.Cmd.DirectObject
	target := ctx.Cmd.IndirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeMoveItem, ItemID: id, NewParent: types.ParentOfItem(target)},
		{Kind: types.ChangeSetPronoun, PronounWord: types.PronounIt,
			PronounTargets: map[types.ItemID]struct{}{id: {}}},
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsTouched) {
		changes = append(changes, types.StateChange{
			Kind: types.ChangeSetItemAttribute, ItemID: id,
			Attribute: types.AttrIsTouched, NewValue: types.BoolValue(true),
		})
	}
	return changes
}

// insertHandler places a held item inside a container.
type insertHandler struct{}

func (insertHandler) Validate(ctx *Context) *types.ActionResponse {
	return validatePlacement(ctx, true)
}

func (insertHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id, target := ctx.Cmd.DirectObject, ctx.Cmd.IndirectObject
	msg := "You put the " + itemName(ctx, id) + " in the " + containerDescriptor(ctx, target) + "."
	return &types.ActionResult{Message: msg, Changes: placementChanges(ctx)}, nil
}

// putOnHandler places a held item on a surface, or — when the command's
// preposition is "in" — inside a container. Vocabulary aliases "put" to
// this single verb regardless of preposition, so the branch happens here.
type putOnHandler struct{}

func (putOnHandler) Validate(ctx *Context) *types.ActionResponse {
	if ctx.Cmd.HasPreposition && ctx.Cmd.Preposition == types.PrepIn {
		return validatePlacement(ctx, true)
	}
	return validatePlacement(ctx, false)
}

func (putOnHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id, target := ctx.Cmd.DirectObject, ctx.Cmd.IndirectObject
	var msg string
	if ctx.Cmd.HasPreposition && ctx.Cmd.Preposition == types.PrepIn {
		msg = "You put the " + itemName(ctx, id) + " in the " + containerDescriptor(ctx, target) + "."
	} else {
		msg = "You put the " + itemName(ctx, id) + " on the " + itemName(ctx, target) + "."
	}
	return &types.ActionResult{Message: msg, Changes: placementChanges(ctx)}, nil
}

// openHandler opens an openable, unlocked container or door.
type openHandler struct{}

func (openHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Open what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsOpenable) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "You can't open the " + itemName(ctx, id) + "."}
	}
	if ctx.World.ItemAttrBool(id, types.AttrIsOpen) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "That's already open."}
	}
	if ctx.World.ItemAttrBool(id, types.AttrIsLocked) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "The " + itemName(ctx, id) + " is locked."}
	}
	return nil
}

func (openHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsOpen, NewValue: types.BoolValue(true)},
	}
	return &types.ActionResult{Message: "Opened.", Changes: changes}, nil
}

// closeHandler closes an open, openable item.
type closeHandler struct{}

func (closeHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Close what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsOpenable) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "You can't close the " + itemName(ctx, id) + "."}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsOpen) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "That's already closed."}
	}
	return nil
}

func (closeHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsOpen, NewValue: types.BoolValue(false)},
	}
	return &types.ActionResult{Message: "Closed.", Changes: changes}, nil
}

// unlockHandler unlocks a lockable item using a held key matching its
// lockKey attribute.
type unlockHandler struct{}

func (unlockHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	key := ctx.Cmd.IndirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Unlock what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsLockable) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "That's not something you can unlock."}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsLocked) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "That's already unlocked."}
	}
	if key == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Unlock it with what?"}
	}
	it, ok := ctx.World.Item(key)
	if !ok || it.Parent.Kind != types.ParentPlayer {
		return &types.ActionResponse{Kind: types.RespItemNotHeld, Message: "You're not holding that."}
	}
	wantKey := ctx.World.ItemAttrString(id, types.AttrLockKey)
	if wantKey == "" || types.ItemID(wantKey) != key {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "The " + itemName(ctx, key) + " doesn't fit."}
	}
	return nil
}

func (unlockHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsLocked, NewValue: types.BoolValue(false)},
	}
	return &types.ActionResult{Message: "Unlocked.", Changes: changes}, nil
}

// lockHandler locks a closed, lockable item using the matching held key.
type lockHandler struct{}

func (lockHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	key := ctx.Cmd.IndirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Lock what?"}
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsLockable) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "That's not something you can lock."}
	}
	if ctx.World.ItemAttrBool(id, types.AttrIsOpen) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "You'll have to close it first."}
	}
	if ctx.World.ItemAttrBool(id, types.AttrIsLocked) {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "That's already locked."}
	}
	if key == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Lock it with what?"}
	}
	it, ok := ctx.World.Item(key)
	if !ok || it.Parent.Kind != types.ParentPlayer {
		return &types.ActionResponse{Kind: types.RespItemNotHeld, Message: "You're not holding that."}
	}
	wantKey := ctx.World.ItemAttrString(id, types.AttrLockKey)
	if wantKey == "" || types.ItemID(wantKey) != key {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "The " + itemName(ctx, key) + " doesn't fit."}
	}
	return nil
}

func (lockHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: id, Attribute: types.AttrIsLocked, NewValue: types.BoolValue(true)},
	}
	return &types.ActionResult{Message: "Locked.", Changes: changes}, nil
}
