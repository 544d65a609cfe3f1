package actions

import (
	"sort"
	"strings"

	"github.com/loomwright/grue/types"
)

// lookHandler prints the location header, its description, the names of
// the non-scenery items lying directly in the location, and its exits.
// Items on surfaces or inside containers are not listed (spec.md §4.5
// "Look").
type lookHandler struct{}

func (lookHandler) Validate(ctx *Context) *types.ActionResponse { return nil }

func (lookHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	loc := ctx.World.Player().CurrentLocation
	return &types.ActionResult{Message: describeLocation(ctx, loc)}, nil
}

// describeLocation renders a location's header, description (or a
// darkness notice), visible items, and exits.
func describeLocation(ctx *Context, loc types.LocationID) string {
	if !ctx.Scope.IsLocationLit(loc) {
		return ctx.Messenger.Default("dark_room", nil)
	}

	location, ok := ctx.World.Location(loc)
	if !ok {
		return ctx.Messenger.Default("nowhere", nil)
	}

	var b strings.Builder
	b.WriteString(location.Name)
	if location.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(location.Description)
	}

	var names []string
	for _, id := range ctx.World.ItemsIn(types.ParentOfLocation(loc)) {
		if ctx.World.ItemAttrBool(id, types.AttrIsScenery) {
			continue
		}
		names = append(names, itemName(ctx, id))
	}
	sort.Strings(names)
	if len(names) > 0 {
		b.WriteString("\n\nYou see: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(".")
	}

	exits := ctx.World.Exits(loc)
	if len(exits) > 0 {
		dirs := make([]string, 0, len(exits))
		for dir := range exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		b.WriteString("\n\nExits: ")
		b.WriteString(strings.Join(dirs, ", "))
		b.WriteString(".")
	}
	return b.String()
}

// examineHandler prints an item's description, its contents (only if open
// or transparent), and marks it touched, setting the "it" pronoun.
type examineHandler struct{}

func (examineHandler) Validate(ctx *Context) *types.ActionResponse {
	if ctx.Cmd.DirectObject == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Examine what?"}
	}
	return nil
}

func (examineHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	desc := ctx.World.ItemAttrString(id, types.AttrDescription)
	if desc == "" {
		desc = ctx.Messenger.Default("no_description", map[string]string{"item": itemName(ctx, id)})
	}

	var b strings.Builder
	b.WriteString(desc)

	isContainer := ctx.World.ItemAttrBool(id, types.AttrIsContainer)
	isSurface := ctx.World.ItemAttrBool(id, types.AttrIsSurface)
	open := ctx.World.ItemAttrBool(id, types.AttrIsOpen)
	transparent := ctx.World.ItemAttrBool(id, types.AttrIsTransparent)
	if isSurface || (isContainer && (open || transparent)) {
		var names []string
		for _, childID := range ctx.World.ItemsIn(types.ParentOfItem(id)) {
			names = append(names, itemName(ctx, childID))
		}
		sort.Strings(names)
		if len(names) > 0 {
			verb := "On it"
			if isContainer {
				verb = "Inside"
			}
			b.WriteString("\n\n" + verb + " you see: " + strings.Join(names, ", ") + ".")
		}
	}

	changes := []types.StateChange{
		{Kind: types.ChangeSetPronoun, PronounWord: types.PronounIt,
			PronounTargets: map[types.ItemID]struct{}{id: {}}},
	}
	if !ctx.World.ItemAttrBool(id, types.AttrIsTouched) {
		changes = append(changes, types.StateChange{
			Kind: types.ChangeSetItemAttribute, ItemID: id,
			Attribute: types.AttrIsTouched, NewValue: types.BoolValue(true),
		})
	}
	return &types.ActionResult{Message: b.String(), Changes: changes}, nil
}

// inventoryHandler lists items carried by the player.
type inventoryHandler struct{}

func (inventoryHandler) Validate(ctx *Context) *types.ActionResponse { return nil }

func (inventoryHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	var names []string
	for _, id := range ctx.World.ItemsIn(types.ParentOfPlayer()) {
		names = append(names, itemName(ctx, id))
	}
	sort.Strings(names)
	if len(names) == 0 {
		return &types.ActionResult{Message: ctx.Messenger.Default("carrying_nothing", nil)}, nil
	}
	msg := ctx.Messenger.Default("carrying", map[string]string{"items": strings.Join(names, ", ")})
	return &types.ActionResult{Message: msg}, nil
}
