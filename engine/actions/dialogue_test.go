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

func dialogueDefs() *store.Defs {
	return &store.Defs{
		Start: "dock",
		Locations: map[types.LocationID]types.Location{
			"dock": {ID: "dock", Name: "Dock", Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsInherentlyLit: types.BoolValue(true),
			}},
		},
		Items: map[types.ItemID]types.Item{
			"sailor": {ID: "sailor", Name: "sailor", Parent: types.ParentOfLocation("dock"),
				Topics: map[string]types.Topic{
					"gossip": {Text: "The tide's been strange lately."},
					"quest": {
						Text:     "Bring me the lost compass and I'll pay handsomely.",
						Requires: []types.Condition{{Type: "flag_not", Params: map[string]any{"flag": "has_compass"}}},
						Effects:  []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "quest_offered", "value": true}}},
					},
					"reward": {
						Text:     "Here's your gold, as promised!",
						Requires: []types.Condition{{Type: "flag_set", Params: map[string]any{"flag": "has_compass"}}},
						Effects:  []types.Effect{{Type: "give_item", Params: map[string]any{"item": "gold"}}},
					},
				}},
			"statue": {ID: "statue", Name: "statue", Parent: types.ParentOfLocation("dock")},
			"gold":   {ID: "gold", Name: "gold", Parent: types.ParentOfNowhere()},
		},
	}
}

func dialogueCtx(cmd types.Command) *Context {
	w := store.New(dialogueDefs())
	return &Context{Cmd: cmd, World: w, Scope: scope.New(w), RNG: rng.New(1), Messenger: messenger.New()}
}

func TestTalkHandlerRejectsNoDirectObject(t *testing.T) {
	ctx := dialogueCtx(types.Command{Verb: types.VerbTalk})
	resp := talkHandler{}.Validate(ctx)
	if resp == nil {
		t.Fatal("expected validate failure with no direct object")
	}
}

func TestTalkHandlerRejectsItemWithNoTopics(t *testing.T) {
	ctx := dialogueCtx(types.Command{Verb: types.VerbTalk, DirectObject: "statue"})
	resp := talkHandler{}.Validate(ctx)
	if resp == nil {
		t.Fatal("expected validate failure for an item with no Topics")
	}
}

func TestTalkHandlerSelectsFirstPassingTopicAlphabetically(t *testing.T) {
	// "gossip" has no Requires and sorts before "quest" and "reward", so it
	// wins even though "quest"'s Requires would also currently pass.
	ctx := dialogueCtx(types.Command{Verb: types.VerbTalk, DirectObject: "sailor"})
	result, resp := talkHandler{}.Process(ctx)
	if resp != nil {
		t.Fatalf("unexpected process failure: %v", resp)
	}
	if !strings.Contains(result.Message, "tide's been strange") {
		t.Errorf("expected the gossip topic to win alphabetically, got %q", result.Message)
	}
}

func TestTalkHandlerSkipsUnmetTopicForNextCandidate(t *testing.T) {
	// Clear "gossip" from contention by removing it, leaving "quest" (whose
	// Requires pass while has_compass is unset) ahead of "reward" (whose
	// Requires do not).
	ctx := dialogueCtx(types.Command{Verb: types.VerbTalk, DirectObject: "sailor"})
	it, _ := ctx.World.Item("sailor")
	delete(it.Topics, "gossip")
	result, _ := talkHandler{}.Process(ctx)
	if !strings.Contains(result.Message, "lost compass") {
		t.Errorf("expected the quest topic to be offered, got %q", result.Message)
	}
	if ctx.World.Flag("quest_offered") {
		t.Errorf("expected the quest topic's set_flag effect to not be committed until the caller applies it")
	}
}

func TestTalkHandlerAppliesTopicEffects(t *testing.T) {
	ctx := dialogueCtx(types.Command{Verb: types.VerbTalk, DirectObject: "sailor"})
	it, _ := ctx.World.Item("sailor")
	delete(it.Topics, "gossip")
	result, _ := talkHandler{}.Process(ctx)
	var sawSetFlag bool
	for _, c := range result.Changes {
		if c.Kind == types.ChangeSetFlag && c.FlagName == "quest_offered" {
			sawSetFlag = true
		}
	}
	if !sawSetFlag {
		t.Errorf("expected the quest topic's set_flag effect in the returned Changes, got %v", result.Changes)
	}
}

func TestTalkHandlerFallsBackWhenNoTopicQualifies(t *testing.T) {
	ctx := dialogueCtx(types.Command{Verb: types.VerbTalk, DirectObject: "sailor"})
	it, _ := ctx.World.Item("sailor")
	delete(it.Topics, "gossip")
	delete(it.Topics, "quest")
	if err := ctx.World.Apply([]types.StateChange{
		{Kind: types.ChangeSetFlag, FlagName: "has_compass"},
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	delete(it.Topics, "reward")
	result, _ := talkHandler{}.Process(ctx)
	if !strings.Contains(result.Message, "nothing to say") {
		t.Errorf("expected the nothing-to-say fallback, got %q", result.Message)
	}
}
