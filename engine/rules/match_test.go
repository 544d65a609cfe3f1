package rules

import (
	"testing"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

func matchTestWorld(t *testing.T) *store.World {
	t.Helper()
	defs := &store.Defs{
		Start: "hall",
		Locations: map[types.LocationID]types.Location{
			"hall": {ID: "hall", Name: "Hall"},
		},
		Items: map[types.ItemID]types.Item{
			"rusty_key": {ID: "rusty_key", Name: "Rusty Key", Parent: types.ParentOfLocation("hall"),
				Attributes: map[types.AttributeID]types.AttrValue{
					types.AttrIsTakable: types.BoolValue(true),
				}},
			"iron_door": {ID: "iron_door", Name: "Iron Door", Parent: types.ParentOfLocation("hall"),
				Attributes: map[types.AttributeID]types.AttrValue{
					types.AttrIsLocked: types.BoolValue(true),
				}},
		},
	}
	return store.New(defs)
}

func TestMatchesCommand(t *testing.T) {
	w := matchTestWorld(t)

	tests := []struct {
		name string
		when types.MatchCriteria
		cmd  types.Command
		want bool
	}{
		{"verb matches", types.MatchCriteria{Verb: types.VerbTake}, types.Command{Verb: types.VerbTake, DirectObject: "rusty_key"}, true},
		{"verb mismatch", types.MatchCriteria{Verb: types.VerbDrop}, types.Command{Verb: types.VerbTake, DirectObject: "rusty_key"}, false},
		{"object matches specific ID", types.MatchCriteria{Verb: types.VerbTake, Object: "rusty_key"}, types.Command{Verb: types.VerbTake, DirectObject: "rusty_key"}, true},
		{"object mismatch", types.MatchCriteria{Verb: types.VerbTake, Object: "golden_key"}, types.Command{Verb: types.VerbTake, DirectObject: "rusty_key"}, false},
		{"target matches", types.MatchCriteria{Verb: types.VerbInsert, Object: "rusty_key", Target: "iron_door"}, types.Command{Verb: types.VerbInsert, DirectObject: "rusty_key", IndirectObject: "iron_door"}, true},
		{"target mismatch", types.MatchCriteria{Verb: types.VerbInsert, Target: "wooden_door"}, types.Command{Verb: types.VerbInsert, DirectObject: "rusty_key", IndirectObject: "iron_door"}, false},
		{"object prop matches", types.MatchCriteria{Verb: types.VerbTake, ObjectProp: map[types.AttributeID]any{types.AttrIsTakable: true}}, types.Command{Verb: types.VerbTake, DirectObject: "rusty_key"}, true},
		{"object prop mismatch", types.MatchCriteria{Verb: types.VerbTake, ObjectProp: map[types.AttributeID]any{types.AttrIsTakable: false}}, types.Command{Verb: types.VerbTake, DirectObject: "rusty_key"}, false},
		{"target prop matches", types.MatchCriteria{Verb: types.VerbInsert, TargetProp: map[types.AttributeID]any{types.AttrIsLocked: true}}, types.Command{Verb: types.VerbInsert, DirectObject: "rusty_key", IndirectObject: "iron_door"}, true},
		{"verb only, no object required", types.MatchCriteria{Verb: types.VerbLook}, types.Command{Verb: types.VerbLook}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesCommand(tt.when, tt.cmd, w); got != tt.want {
				t.Errorf("MatchesCommand() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		name string
		rule types.RuleDef
		want int
	}{
		{"verb only", types.RuleDef{When: types.MatchCriteria{Verb: types.VerbTake}}, 0},
		{"verb + object", types.RuleDef{When: types.MatchCriteria{Verb: types.VerbTake, Object: "key"}}, 2},
		{"verb + target", types.RuleDef{When: types.MatchCriteria{Verb: types.VerbInsert, Target: "door"}}, 4},
		{"verb + object + target", types.RuleDef{When: types.MatchCriteria{Verb: types.VerbInsert, Object: "key", Target: "door"}}, 6},
		{"verb + object + props", types.RuleDef{When: types.MatchCriteria{Verb: types.VerbTake, Object: "key", ObjectProp: map[types.AttributeID]any{"shiny": true}}}, 3},
		{"verb + object + target + props", types.RuleDef{When: types.MatchCriteria{Verb: types.VerbInsert, Object: "key", Target: "door", TargetProp: map[types.AttributeID]any{types.AttrIsLocked: true}}}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Specificity(tt.rule); got != tt.want {
				t.Errorf("Specificity() = %d, want %d", got, tt.want)
			}
		})
	}
}
