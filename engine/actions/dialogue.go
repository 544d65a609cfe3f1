package actions

import (
	"sort"

	"github.com/loomwright/grue/engine/effects"
	"github.com/loomwright/grue/engine/rules"
	"github.com/loomwright/grue/types"
)

// talkHandler opens a conversation with an NPC, selecting the first topic,
// in alphabetical order of topic key, whose Requires are currently
// satisfied; how many conditions a topic's gate has plays no part in the
// choice (spec.md §9 Open Question — dialogue topic selection has no player-facing
// "ask about" phrase in this vocabulary, so Talk surfaces that first
// passing topic directly rather than prompting for one).
type talkHandler struct{}

func (talkHandler) Validate(ctx *Context) *types.ActionResponse {
	id := ctx.Cmd.DirectObject
	if id == "" {
		return &types.ActionResponse{Kind: types.RespCustom, Message: "Talk to whom?"}
	}
	it, ok := ctx.World.Item(id)
	if !ok || it.Topics == nil {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("no_one_to_talk_to", nil)}
	}
	return nil
}

func (talkHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	id := ctx.Cmd.DirectObject
	it, _ := ctx.World.Item(id)

	var keys []string
	for key := range it.Topics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		topic := it.Topics[key]
		if rules.EvalAllConditions(topic.Requires, ctx.World) {
			changes, _, extra := effects.Compile(ctx.World, topic.Effects, effects.Context{
				Verb: string(ctx.Cmd.Verb), ObjectID: id,
			})
			msg := topic.Text
			for _, line := range extra {
				msg += "\n\n" + line
			}
			return &types.ActionResult{Message: msg, Changes: changes}, nil
		}
	}
	return &types.ActionResult{Message: ctx.Messenger.Default("nothing_to_say", map[string]string{"item": itemName(ctx, id)})}, nil
}
