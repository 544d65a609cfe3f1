package actions

import (
	"fmt"

	"github.com/loomwright/grue/types"
)

// damageRoll computes damage: max(1, roll(1d6) + attack - defense), with a
// +2 defense bonus while defending. Returns (damage, dieRoll).
func damageRoll(rng interface {
	Roll(sides int) int
}, attack, defense int, defending bool) (damage, roll int) {
	roll = rng.Roll(6)
	if defending {
		defense += 2
	}
	damage = roll + attack - defense
	if damage < 1 {
		damage = 1
	}
	return damage, roll
}

func combatantName(ctx *Context, id types.ItemID) string {
	if id == "" {
		return "You"
	}
	return itemName(ctx, id)
}

// attackHandler strikes the enemy currently engaged in combat.
type attackHandler struct{}

func (attackHandler) Validate(ctx *Context) *types.ActionResponse {
	if !ctx.World.InCombat() {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("no_combat", nil)}
	}
	return nil
}

func (attackHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	enemy := ctx.World.Player().Combat.EnemyID
	playerAttack := ctx.World.Player().Attack
	enemyDefense := ctx.World.ItemAttrInt(enemy, types.AttrDefense)
	enemyDefending := ctx.World.ItemAttrBool(enemy, types.AttrDefending)

	dmg, roll := damageRoll(ctx.RNG, playerAttack, enemyDefense, enemyDefending)
	defDisplay := enemyDefense
	if enemyDefending {
		defDisplay += 2
	}
	msg := fmt.Sprintf("You strike the %s!\n  Roll: 1d6+%d → [%d]+%d = %d vs defense %d → %d damage",
		combatantName(ctx, enemy), playerAttack, roll, playerAttack, roll+playerAttack, defDisplay, dmg)

	health := ctx.World.ItemAttrInt(enemy, types.AttrHealth) - dmg
	changes := []types.StateChange{
		{Kind: types.ChangeSetItemAttribute, ItemID: enemy, Attribute: types.AttrHealth, NewValue: types.IntValue(health)},
	}
	if health <= 0 {
		changes = append(changes, types.StateChange{Kind: types.ChangeSetCombatState, CombatValue: nil})
		msg += fmt.Sprintf("\n\nThe %s is defeated!", combatantName(ctx, enemy))
	}
	return &types.ActionResult{Message: msg, Changes: changes}, nil
}

// defendHandler braces the player: it sets Defending on the player's
// combat state. Nothing in the engine reads that flag, so it does not
// change any damage roll.
type defendHandler struct{}

func (defendHandler) Validate(ctx *Context) *types.ActionResponse {
	if !ctx.World.InCombat() {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("no_combat", nil)}
	}
	return nil
}

func (defendHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	cs := ctx.World.Player().Combat
	cs.Defending = true
	changes := []types.StateChange{
		{Kind: types.ChangeSetCombatState, CombatValue: &cs},
	}
	return &types.ActionResult{Message: ctx.Messenger.Default("you_brace", nil), Changes: changes}, nil
}

// fleeHandler attempts to escape combat: a 1d6 roll of 4+ succeeds and
// returns the player to the location combat began in; otherwise the
// player stays in combat and no state changes.
type fleeHandler struct{}

func (fleeHandler) Validate(ctx *Context) *types.ActionResponse {
	if !ctx.World.InCombat() {
		return &types.ActionResponse{Kind: types.RespCustom, Message: ctx.Messenger.Default("no_combat", nil)}
	}
	return nil
}

func (fleeHandler) Process(ctx *Context) (*types.ActionResult, *types.ActionResponse) {
	roll := ctx.RNG.Roll(6)
	if roll >= 4 {
		prev := ctx.World.Player().Combat.PreviousLocation
		if prev == "" {
			prev = ctx.World.Player().CurrentLocation
		}
		changes := []types.StateChange{
			{Kind: types.ChangeSetCombatState, CombatValue: nil},
			{Kind: types.ChangeMovePlayer, Destination: prev},
		}
		msg := fmt.Sprintf("You turn and run! Roll: 1d6 → [%d] — you escape!", roll)
		return &types.ActionResult{Message: msg, Changes: changes}, nil
	}
	msg := fmt.Sprintf("You try to run but can't escape! Roll: 1d6 → [%d]", roll)
	return &types.ActionResult{Message: msg}, nil
}
