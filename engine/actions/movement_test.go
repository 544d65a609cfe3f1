package actions

import (
	"strings"
	"testing"

	"github.com/loomwright/grue/engine/messenger"
	"github.com/loomwright/grue/engine/rng"
	"github.com/loomwright/grue/engine/scope"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

func movementDefs() *store.Defs {
	return &store.Defs{
		Start: "yard",
		Locations: map[types.LocationID]types.Location{
			"yard": {ID: "yard", Name: "Yard", Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsInherentlyLit: types.BoolValue(true),
			}, Exits: map[string]types.ExitSpec{
				"north": {Destination: "cellar"},
				"east":  {Destination: "shed", Door: "shed_door"},
				"west":  {Destination: "tower", Door: "tower_gate"},
			}},
			"cellar": {ID: "cellar", Name: "Cellar", Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsInherentlyLit: types.BoolValue(true),
			}},
			"shed":   {ID: "shed", Name: "Shed", Attributes: map[types.AttributeID]types.AttrValue{types.AttrIsInherentlyLit: types.BoolValue(true)}},
			"tower":  {ID: "tower", Name: "Tower", Attributes: map[types.AttributeID]types.AttrValue{types.AttrIsInherentlyLit: types.BoolValue(true)}},
		},
		Items: map[types.ItemID]types.Item{
			"shed_door": {ID: "shed_door", Name: "shed door", Parent: types.ParentOfLocation("yard"),
				Attributes: map[types.AttributeID]types.AttrValue{
					types.AttrIsOpenable: types.BoolValue(true), types.AttrIsOpen: types.BoolValue(false),
				}},
			"tower_gate": {ID: "tower_gate", Name: "tower gate", Parent: types.ParentOfLocation("yard"),
				Attributes: map[types.AttributeID]types.AttrValue{
					types.AttrIsOpenable: types.BoolValue(true), types.AttrIsOpen: types.BoolValue(false),
					types.AttrIsLocked: types.BoolValue(true),
				}},
		},
	}
}

func movementCtx(cmd types.Command) *Context {
	w := store.New(movementDefs())
	return &Context{Cmd: cmd, World: w, Scope: scope.New(w), RNG: rng.New(1), Messenger: messenger.New()}
}

func TestGoHandlerRejectsNoDirection(t *testing.T) {
	ctx := movementCtx(types.Command{Verb: types.VerbGo})
	resp := goHandler{}.Validate(ctx)
	if resp == nil {
		t.Fatal("expected validate failure with no direction")
	}
}

func TestGoHandlerRejectsMissingExit(t *testing.T) {
	ctx := movementCtx(types.Command{Verb: types.VerbGo, Direction: "south"})
	resp := goHandler{}.Validate(ctx)
	if resp == nil {
		t.Fatal("expected validate failure for a nonexistent exit")
	}
}

func TestGoHandlerRejectsLockedDoor(t *testing.T) {
	ctx := movementCtx(types.Command{Verb: types.VerbGo, Direction: "west"})
	resp := goHandler{}.Validate(ctx)
	if resp == nil {
		t.Fatal("expected validate failure for a locked gate")
	}
}

func TestGoHandlerMovesThroughOpenExit(t *testing.T) {
	ctx := movementCtx(types.Command{Verb: types.VerbGo, Direction: "north"})
	if resp := goHandler{}.Validate(ctx); resp != nil {
		t.Fatalf("unexpected validate failure: %v", resp)
	}
	result, resp := goHandler{}.Process(ctx)
	if resp != nil {
		t.Fatalf("unexpected process failure: %v", resp)
	}
	var moved bool
	for _, c := range result.Changes {
		if c.Kind == types.ChangeMovePlayer && c.Destination == "cellar" {
			moved = true
		}
	}
	if !moved {
		t.Errorf("expected a move to cellar, got %v", result.Changes)
	}
}

func TestGoHandlerAutoOpensClosedUnlockedDoor(t *testing.T) {
	ctx := movementCtx(types.Command{Verb: types.VerbGo, Direction: "east"})
	if resp := goHandler{}.Validate(ctx); resp != nil {
		t.Fatalf("unexpected validate failure: %v", resp)
	}
	result, _ := goHandler{}.Process(ctx)
	var opened, moved bool
	for _, c := range result.Changes {
		if c.Kind == types.ChangeSetItemAttribute && c.ItemID == "shed_door" && c.NewValue.Bool {
			opened = true
		}
		if c.Kind == types.ChangeMovePlayer && c.Destination == "shed" {
			moved = true
		}
	}
	if !opened || !moved {
		t.Errorf("expected the shed door to auto-open and the player to move, got %v", result.Changes)
	}
}

func TestGoHandlerDescribesDestination(t *testing.T) {
	ctx := movementCtx(types.Command{Verb: types.VerbGo, Direction: "north"})
	result, _ := goHandler{}.Process(ctx)
	if !strings.Contains(result.Message, "Cellar") {
		t.Errorf("expected the destination's name in the message, got %q", result.Message)
	}
}
