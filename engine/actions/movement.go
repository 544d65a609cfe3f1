package actions

import "github.com/loomwright/grue/types"

// goHandler moves the player through an exit, respecting door state
// (spec.md §4.5 "Go"): locked doors block movement; closed-but-unlocked
// openable doors auto-open as part of the move.
type goHandler struct{}

func (goHandler) Validate(ctx *Context) *types.ActionResponse {
	if ctx.Cmd.Direction == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Go where?"}
	}
	exits := ctx.World.Exits(ctx.World.Player().CurrentLocation)
	exit, ok := exits[ctx.Cmd.Direction]
	if !ok {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("no_exit", nil)}
	}
	if exit.Door != "" {
		if ctx.World.ItemAttrBool(exit.Door, types.AttrIsLocked) {
			return &types.ActionResponse{Kind: types.RespCustom,
				Message: ctx.Messenger.Default("locked", map[string]string{"item": itemName(ctx, exit.Door)})}
		}
	}
	return nil
}

func (goHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	exits := ctx.World.Exits(ctx.World.Player().CurrentLocation)
	exit := exits[ctx.Cmd.Direction]

	var changes []types.StateChange
	if exit.Door != "" && !ctx.World.ItemAttrBool(exit.Door, types.AttrIsOpen) {
		if !ctx.World.ItemAttrBool(exit.Door, types.AttrIsOpenable) {
			return nil, &types.ActionResponse{Kind: types.RespCustom,
				Message: "The " + itemName(ctx, exit.Door) + " is in the way."}
		}
		changes = append(changes, types.StateChange{
			Kind: types.ChangeSetItemAttribute, ItemID: exit.Door,
			Attribute: types.AttrIsOpen, NewValue: types.BoolValue(true),
		})
	}
	changes = append(changes, types.StateChange{
		Kind: types.ChangeMovePlayer, Destination: exit.Destination,
	})
	return &types.ActionResult{Message: describeLocation(ctx, exit.Destination), Changes: changes}, nil
}
