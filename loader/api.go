package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "location_id", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Room "id" { ... } — curried: Room("id") returns a function that takes a table.
	L.SetGlobal("Room", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.rooms = append(coll.rooms, rawRoom{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Item "id" { ... } — curried, kind = "item".
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.entities = append(coll.entities, rawEntity{id: id, kind: "item", table: tbl})
			return 0
		}))
		return 1
	}))

	// NPC "id" { ... } — curried, kind = "npc".
	L.SetGlobal("NPC", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.entities = append(coll.entities, rawEntity{id: id, kind: "npc", table: tbl})
			return 0
		}))
		return 1
	}))

	// Enemy "id" { ... } — curried, kind = "enemy" (combat extension).
	L.SetGlobal("Enemy", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.entities = append(coll.entities, rawEntity{id: id, kind: "enemy", table: tbl})
			return 0
		}))
		return 1
	}))

	// Contains("container_id") — an item's "in" field: parented inside
	// another item (a container). On and Contains are the same marker;
	// which wording reads better depends on whether the parent is a
	// container or a surface, the isContainer/isSurface attribute (not
	// the parent itself) decides that at runtime.
	containedIn := func(L *lua.LState) int {
		id := L.CheckString(1)
		marker := L.NewTable()
		marker.RawSetString("__parent_item", lua.LString(id))
		L.Push(marker)
		return 1
	}
	L.SetGlobal("Contains", L.NewFunction(containedIn))
	L.SetGlobal("On", L.NewFunction(containedIn))

	// Synonyms("lamp", "lantern", ...) — returns an array table of words.
	L.SetGlobal("Synonyms", L.NewFunction(varargStrings))
	// Adjectives("brass", "rusty", ...) — returns an array table of words.
	L.SetGlobal("Adjectives", L.NewFunction(varargStrings))

	// Exit("north", "destination_id") or Exit("north", "destination_id", "door_id").
	L.SetGlobal("Exit", L.NewFunction(func(L *lua.LState) int {
		dir := L.CheckString(1)
		dest := L.CheckString(2)
		marker := L.NewTable()
		marker.RawSetString("__direction", lua.LString(dir))
		marker.RawSetString("__destination", lua.LString(dest))
		if L.GetTop() >= 3 {
			marker.RawSetString("__door", lua.LString(L.CheckString(3)))
		}
		L.Push(marker)
		return 1
	}))

	// Rule("id", when, conditions, then)
	// conditions may be nil.
	// Returns a marker table with __rule_id for scoping.
	L.SetGlobal("Rule", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		when := L.CheckTable(2)

		var conditions *lua.LTable
		// Arg 3 can be a conditions table or nil (if nil, arg 4 is the then table at position 3).
		// We need to handle: Rule("id", when, conds, then) and Rule("id", when, then)
		arg3 := L.Get(3)
		arg4 := L.Get(4)

		var thenTbl *lua.LTable
		if arg4 != lua.LNil {
			// 4-arg form: Rule("id", when, conditions, then)
			if t, ok := arg3.(*lua.LTable); ok {
				conditions = t
			}
			thenTbl = L.CheckTable(4)
		} else {
			// 3-arg form: Rule("id", when, then)
			thenTbl = L.CheckTable(3)
		}

		order := coll.nextSourceOrder()
		coll.rules = append(coll.rules, rawRule{
			id:         id,
			when:       when,
			conditions: conditions,
			then:       thenTbl,
			scope:      "global",
			order:      order,
		})

		// Return a marker table so rooms/entities can reference this rule.
		marker := L.NewTable()
		marker.RawSetString("__rule_id", lua.LString(id))
		L.Push(marker)
		return 1
	}))

	// Hook("when", conditions, effects, message) — a before/after-turn hook,
	// scoped the same way a Rule is: reference the marker from a Room's or
	// Item's "hooks" list.
	L.SetGlobal("Hook", L.NewFunction(func(L *lua.LState) int {
		id := coll.nextHookID()
		when := L.CheckString(1)
		conditions := L.OptTable(2, nil)
		effects := L.OptTable(3, nil)
		message := L.OptString(4, "")

		coll.hooks = append(coll.hooks, rawHook{
			id: id, when: when, conditions: conditions, effects: effects, message: message, scope: "global",
		})

		marker := L.NewTable()
		marker.RawSetString("__hook_id", lua.LString(id))
		L.Push(marker)
		return 1
	}))

	// OnEvent("event_type", { conditions = {...}, effects = {...} })
	L.SetGlobal("OnEvent", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventType: eventType, table: tbl})
		return 0
	}))

	// When { verb = "..." } — pass-through, returns the table.
	L.SetGlobal("When", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		L.Push(tbl)
		return 1
	}))

	// Then { effect1, effect2, ... } — pass-through, returns the table.
	L.SetGlobal("Then", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		L.Push(tbl)
		return 1
	}))
}

func varargStrings(L *lua.LState) int {
	tbl := L.NewTable()
	n := L.GetTop()
	for i := 1; i <= n; i++ {
		tbl.Append(lua.LString(L.CheckString(i)))
	}
	L.Push(tbl)
	return 1
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("item_id") — item_id is held by the player.
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("has_item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// ItemInLocation("item_id", "location_id")
	L.SetGlobal("ItemInLocation", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		loc := L.CheckString(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("item_in_location"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("location", lua.LString(loc))
		L.Push(tbl)
		return 1
	}))

	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag_set"))
		tbl.RawSetString("flag", lua.LString(flag))
		L.Push(tbl)
		return 1
	}))

	// FlagNot("flag")
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag_not"))
		tbl.RawSetString("flag", lua.LString(flag))
		L.Push(tbl)
		return 1
	}))

	// FlagIs("flag", value)
	L.SetGlobal("FlagIs", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.CheckBool(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("flag_is"))
		tbl.RawSetString("flag", lua.LString(flag))
		tbl.RawSetString("value", lua.LBool(value))
		L.Push(tbl)
		return 1
	}))

	// InLocation("location_id")
	L.SetGlobal("InLocation", L.NewFunction(func(L *lua.LState) int {
		loc := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("in_location"))
		tbl.RawSetString("location", lua.LString(loc))
		L.Push(tbl)
		return 1
	}))

	// ItemAttrIs("item_id", "attr", value)
	L.SetGlobal("ItemAttrIs", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		attr := L.CheckString(2)
		value := L.Get(3)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("item_attr_is"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("attr", lua.LString(attr))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// CounterGt("counter", value)
	L.SetGlobal("CounterGt", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("counter_gt"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// CounterLt("counter", value)
	L.SetGlobal("CounterLt", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("counter_lt"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("say"))
		tbl.RawSetString("text", lua.LString(text))
		L.Push(tbl)
		return 1
	}))

	// GiveItem("id")
	L.SetGlobal("GiveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("give_item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// RemoveItem("id")
	L.SetGlobal("RemoveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("remove_item"))
		tbl.RawSetString("item", lua.LString(item))
		L.Push(tbl)
		return 1
	}))

	// MoveItem("id", "location_id")
	L.SetGlobal("MoveItem", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		loc := L.CheckString(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("move_item"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("location", lua.LString(loc))
		L.Push(tbl)
		return 1
	}))

	// SetFlag("flag", value)
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.CheckBool(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_flag"))
		tbl.RawSetString("flag", lua.LString(flag))
		tbl.RawSetString("value", lua.LBool(value))
		L.Push(tbl)
		return 1
	}))

	// IncCounter("counter", amount)
	L.SetGlobal("IncCounter", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		amount := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("inc_counter"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// SetCounter("counter", value)
	L.SetGlobal("SetCounter", L.NewFunction(func(L *lua.LState) int {
		counter := L.CheckString(1)
		value := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_counter"))
		tbl.RawSetString("counter", lua.LString(counter))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// SetItemAttr("item", "attr", value)
	L.SetGlobal("SetItemAttr", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		attr := L.CheckString(2)
		value := L.Get(3)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_item_attr"))
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("attr", lua.LString(attr))
		tbl.RawSetString("value", value)
		L.Push(tbl)
		return 1
	}))

	// MovePlayer("location_id")
	L.SetGlobal("MovePlayer", L.NewFunction(func(L *lua.LState) int {
		loc := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("move_player"))
		tbl.RawSetString("location", lua.LString(loc))
		L.Push(tbl)
		return 1
	}))

	// EmitEvent("type")
	L.SetGlobal("EmitEvent", L.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("emit_event"))
		tbl.RawSetString("event", lua.LString(event))
		L.Push(tbl)
		return 1
	}))

	// StartCombat("enemy_id")
	L.SetGlobal("StartCombat", L.NewFunction(func(L *lua.LState) int {
		enemy := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("start_combat"))
		tbl.RawSetString("enemy", lua.LString(enemy))
		L.Push(tbl)
		return 1
	}))

	// EndCombat()
	L.SetGlobal("EndCombat", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("end_combat"))
		L.Push(tbl)
		return 1
	}))

	// Damage("target", amount)
	L.SetGlobal("Damage", L.NewFunction(func(L *lua.LState) int {
		target := L.CheckString(1)
		amount := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("damage"))
		tbl.RawSetString("target", lua.LString(target))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// Heal("target", amount)
	L.SetGlobal("Heal", L.NewFunction(func(L *lua.LState) int {
		target := L.CheckString(1)
		amount := L.CheckNumber(2)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("heal"))
		tbl.RawSetString("target", lua.LString(target))
		tbl.RawSetString("amount", amount)
		L.Push(tbl)
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("stop"))
		L.Push(tbl)
		return 1
	}))
}
