// Package actions implements the Action Handlers (spec.md §4.5): one
// validate/process pair per verb. Handlers never mutate the world
// directly — they return an ActionResult carrying StateChanges for the
// Turn Engine to commit atomically through the World Store.
package actions

import (
	"github.com/loomwright/grue/engine/rng"
	"github.com/loomwright/grue/engine/scope"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/engine/vocab"
	"github.com/loomwright/grue/types"
)

// Context bundles everything a handler needs: the parsed command, a
// read-only World snapshot, a Scope Resolver over that snapshot, the
// Messenger for default response text, and the shared RNG for handlers
// (combat) whose outcome is randomized.
type Context struct {
	Cmd       types.Command
	World     *store.World
	Scope     *scope.Resolver
	Messenger store.Messenger
	Vocab     *vocab.Vocabulary
	RNG       *rng.RNG
}

// Handler is the contract every verb implementation satisfies.
type Handler interface {
	Validate(ctx *Context) *types.ActionResponse
	Process(ctx *Context) (*types.ActionResult, *types.ActionResponse)
}

// Registry maps a VerbID to its Handler.
type Registry struct {
	handlers map[types.VerbID]Handler
}

// NewRegistry builds a Registry pre-populated with every built-in verb.
func NewRegistry() *Registry {
	r := &Registry{handlers: map[types.VerbID]Handler{}}
	r.Register(types.VerbTake, takeHandler{})
	r.Register(types.VerbDrop, dropHandler{})
	r.Register(types.VerbInsert, insertHandler{})
	r.Register(types.VerbPutOn, putOnHandler{})
	r.Register(types.VerbOpen, openHandler{})
	r.Register(types.VerbClose, closeHandler{})
	r.Register(types.VerbLock, lockHandler{})
	r.Register(types.VerbUnlock, unlockHandler{})
	r.Register(types.VerbRead, readHandler{})
	r.Register(types.VerbLook, lookHandler{})
	r.Register(types.VerbExamine, examineHandler{})
	r.Register(types.VerbTurnOn, turnOnHandler{})
	r.Register(types.VerbTurnOff, turnOffHandler{})
	r.Register(types.VerbRemove, removeHandler{})
	r.Register(types.VerbWear, wearHandler{})
	r.Register(types.VerbGo, goHandler{})
	r.Register(types.VerbInventory, inventoryHandler{})
	r.Register(types.VerbAttack, attackHandler{})
	r.Register(types.VerbDefend, defendHandler{})
	r.Register(types.VerbFlee, fleeHandler{})
	r.Register(types.VerbTalk, talkHandler{})
	return r
}

// Register adds or overrides the handler bound to verb — author-declared
// verbs use this to plug in custom behavior.
func (r *Registry) Register(verb types.VerbID, h Handler) {
	r.handlers[verb] = h
}

// Lookup returns the handler bound to verb, if any.
func (r *Registry) Lookup(verb types.VerbID) (Handler, bool) {
	h, ok := r.handlers[verb]
	return h, ok
}

// Dispatch runs validate then process for cmd.Verb's handler.
func Dispatch(r *Registry, ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	h, ok := r.Lookup(ctx.Cmd.Verb)
	if !ok {
		return nil, &types.ActionResponse{Kind: types.RespCustom, Message: "You can't do that."}
	}
	if resp := h.Validate(ctx); resp != nil {
		return nil, resp
	}
	return h.Process(ctx)
}

func itemName(ctx *Context, id types.ItemID) string {
	return ctx.World.ItemName(id)
}
