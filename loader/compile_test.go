package loader

import (
	"testing"

	"github.com/loomwright/grue/engine/store"
	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}

func TestCompileGame(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Game {
			title = "Test Game",
			author = "Author",
			start = "hall",
			intro = "Welcome!",
			rng_seed = 7,
			player = { capacity = 10, health = 20, max_health = 20 }
		}
	`); err != nil {
		t.Fatal(err)
	}

	defs := &store.Defs{}
	compileGame(coll.game, defs)

	if defs.Title != "Test Game" {
		t.Errorf("Title = %q, want %q", defs.Title, "Test Game")
	}
	if defs.Author != "Author" {
		t.Errorf("Author = %q, want %q", defs.Author, "Author")
	}
	if defs.Start != "hall" {
		t.Errorf("Start = %q, want %q", defs.Start, "hall")
	}
	if defs.Intro != "Welcome!" {
		t.Errorf("Intro = %q, want %q", defs.Intro, "Welcome!")
	}
	if defs.RNGSeed != 7 {
		t.Errorf("RNGSeed = %d, want 7", defs.RNGSeed)
	}
	if defs.PlayerStats.CarryingCapacity != 10 || defs.PlayerStats.MaxHealth != 20 {
		t.Errorf("PlayerStats = %+v", defs.PlayerStats)
	}
}

func TestCompileRoom_WithExitsAndFallbacks(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		local r = Rule("room_rule",
			When { verb = "look" },
			Then { Say("You see a room.") }
		)
		Room "hall" {
			name = "Hall",
			description = "A grand hall.",
			exits = { Exit("north", "garden"), Exit("south", "cellar", "trapdoor") },
			fallbacks = { push = "Nothing to push." },
			rules = { r }
		}
	`); err != nil {
		t.Fatal(err)
	}

	if len(coll.rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(coll.rooms))
	}

	loc, scopedRules, scopedHooks, err := compileRoom(coll.rooms[0])
	if err != nil {
		t.Fatal(err)
	}

	if string(loc.ID) != "hall" {
		t.Errorf("ID = %q, want %q", loc.ID, "hall")
	}
	if loc.Description != "A grand hall." {
		t.Errorf("Description = %q, want %q", loc.Description, "A grand hall.")
	}
	if loc.Exits["north"].Destination != "garden" {
		t.Errorf("Exits[north] = %+v, want destination garden", loc.Exits["north"])
	}
	if loc.Exits["south"].Destination != "cellar" || loc.Exits["south"].Door != "trapdoor" {
		t.Errorf("Exits[south] = %+v, want {cellar, trapdoor}", loc.Exits["south"])
	}
	if loc.Fallbacks["push"] != "Nothing to push." {
		t.Errorf("Fallbacks[push] = %q, want %q", loc.Fallbacks["push"], "Nothing to push.")
	}
	if len(scopedRules) != 1 || scopedRules[0] != "room_rule" {
		t.Errorf("scopedRules = %v, want [room_rule]", scopedRules)
	}
	if len(scopedHooks) != 0 {
		t.Errorf("scopedHooks = %v, want empty", scopedHooks)
	}
}

func TestCompileEntity_ItemWithAttrsAndParent(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Item "key" {
			name = "rusty key",
			synonyms = Synonyms("key"),
			location = "hall",
			attrs = { isTakable = true, size = 1 }
		}
	`); err != nil {
		t.Fatal(err)
	}

	item, _, _, err := compileEntity(coll.entities[0])
	if err != nil {
		t.Fatal(err)
	}

	if item.Name != "rusty key" {
		t.Errorf("Name = %q, want %q", item.Name, "rusty key")
	}
	if _, ok := item.Synonyms["key"]; !ok {
		t.Errorf("Synonyms missing 'key': %v", item.Synonyms)
	}
	if item.Parent.Location != "hall" {
		t.Errorf("Parent.Location = %q, want hall", item.Parent.Location)
	}
	if !item.Attributes["isTakable"].Bool {
		t.Error("isTakable attribute not set")
	}
}

func TestCompileEntity_ItemParentedInContainer(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Item "coin" {
			name = "gold coin",
			synonyms = Synonyms("coin"),
			parent = Contains("box")
		}
	`); err != nil {
		t.Fatal(err)
	}

	item, _, _, err := compileEntity(coll.entities[0])
	if err != nil {
		t.Fatal(err)
	}
	if item.Parent.Item != "box" {
		t.Errorf("Parent.Item = %q, want box", item.Parent.Item)
	}
}

func TestCompileEntity_NPCWithTopics(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		NPC "guard" {
			name = "guard",
			location = "hall",
			topics = {
				greet = {
					text = "Hello!",
					effects = { SetFlag("met_guard", true) }
				},
				quest = {
					text = "Find the gem.",
					requires = { FlagSet("met_guard") },
					effects = { SetFlag("quest_given", true) }
				}
			}
		}
	`); err != nil {
		t.Fatal(err)
	}

	item, _, _, err := compileEntity(coll.entities[0])
	if err != nil {
		t.Fatal(err)
	}

	if len(item.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(item.Topics))
	}
	if item.Topics["greet"].Text != "Hello!" {
		t.Errorf("greet.Text = %q, want %q", item.Topics["greet"].Text, "Hello!")
	}
	if len(item.Topics["quest"].Requires) != 1 {
		t.Fatalf("quest.Requires length = %d, want 1", len(item.Topics["quest"].Requires))
	}
	if item.Topics["quest"].Requires[0].Type != "flag_set" {
		t.Errorf("quest.Requires[0].Type = %q, want %q",
			item.Topics["quest"].Requires[0].Type, "flag_set")
	}
}

func TestCompileConditions_AllTypes(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	tests := []struct {
		lua      string
		wantType string
		checkKey string
		wantVal  any
	}{
		{`HasItem("key")`, "has_item", "item", "key"},
		{`FlagSet("door_open")`, "flag_set", "flag", "door_open"},
		{`FlagNot("dead")`, "flag_not", "flag", "dead"},
		{`FlagIs("verbose", true)`, "flag_is", "flag", "verbose"},
		{`InLocation("hall")`, "in_location", "location", "hall"},
		{`ItemAttrIs("door", "isLocked", true)`, "item_attr_is", "item", "door"},
		{`CounterGt("turns", 5)`, "counter_gt", "counter", "turns"},
		{`CounterLt("health", 3)`, "counter_lt", "counter", "health"},
		{`Not(FlagSet("done"))`, "not", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			if err := L.DoString("return " + tt.lua); err != nil {
				t.Fatal(err)
			}
			tbl := L.CheckTable(-1)
			L.Pop(1)

			cond := compileCondition(tbl)
			if cond.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", cond.Type, tt.wantType)
			}
			if tt.wantType == "not" {
				if cond.Inner == nil {
					t.Error("Not condition: Inner is nil")
				} else if cond.Inner.Type != "flag_set" {
					t.Errorf("Not inner Type = %q, want flag_set", cond.Inner.Type)
				}
				if !cond.Negate {
					t.Error("Not condition: Negate should be true")
				}
			} else if tt.checkKey != "" {
				got, ok := cond.Params[tt.checkKey]
				if !ok {
					t.Errorf("missing param %q", tt.checkKey)
				} else if got != tt.wantVal {
					t.Errorf("Params[%q] = %v, want %v", tt.checkKey, got, tt.wantVal)
				}
			}
		})
	}
}

func TestCompileEffects_AllTypes(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	tests := []struct {
		lua      string
		wantType string
		checkKey string
		wantVal  any
	}{
		{`Say("hello")`, "say", "text", "hello"},
		{`GiveItem("key")`, "give_item", "item", "key"},
		{`RemoveItem("key")`, "remove_item", "item", "key"},
		{`MoveItem("key", "hall")`, "move_item", "item", "key"},
		{`SetFlag("done", true)`, "set_flag", "flag", "done"},
		{`IncCounter("score", 10)`, "inc_counter", "counter", "score"},
		{`SetCounter("lives", 3)`, "set_counter", "counter", "lives"},
		{`SetItemAttr("door", "isLocked", false)`, "set_item_attr", "item", "door"},
		{`MovePlayer("garden")`, "move_player", "location", "garden"},
		{`EmitEvent("explosion")`, "emit_event", "event", "explosion"},
		{`StartCombat("goblin")`, "start_combat", "enemy", "goblin"},
		{`EndCombat()`, "end_combat", "", nil},
		{`Damage("goblin", 3)`, "damage", "target", "goblin"},
		{`Heal("player", 5)`, "heal", "target", "player"},
		{`Stop()`, "stop", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			if err := L.DoString("return " + tt.lua); err != nil {
				t.Fatal(err)
			}
			tbl := L.CheckTable(-1)
			L.Pop(1)

			eff := compileEffect(tbl)
			if eff.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", eff.Type, tt.wantType)
			}
			if tt.checkKey != "" {
				got, ok := eff.Params[tt.checkKey]
				if !ok {
					t.Errorf("missing param %q", tt.checkKey)
				} else if got != tt.wantVal {
					t.Errorf("Params[%q] = %v (%T), want %v (%T)",
						tt.checkKey, got, got, tt.wantVal, tt.wantVal)
				}
			}
		})
	}
}

func TestCompileMatchCriteria_Full(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		return {
			verb = "use",
			object = "key",
			target = "door",
			object_prop = { shiny = true },
			target_prop = { isLocked = true }
		}
	`); err != nil {
		t.Fatal(err)
	}
	tbl := L.CheckTable(-1)

	mc := compileMatchCriteria(tbl)
	if mc.Verb != "use" {
		t.Errorf("Verb = %q, want %q", mc.Verb, "use")
	}
	if mc.Object != "key" {
		t.Errorf("Object = %q, want %q", mc.Object, "key")
	}
	if mc.Target != "door" {
		t.Errorf("Target = %q, want %q", mc.Target, "door")
	}
	if mc.ObjectProp["shiny"] != true {
		t.Errorf("ObjectProp[shiny] = %v, want true", mc.ObjectProp["shiny"])
	}
	if mc.TargetProp["isLocked"] != true {
		t.Errorf("TargetProp[isLocked] = %v, want true", mc.TargetProp["isLocked"])
	}
}

func TestCompileRule_ScopeResolution(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		local r = Rule("scoped_rule",
			When { verb = "look" },
			Then { Say("You look around.") }
		)
		Room "hall" {
			name = "Hall",
			rules = { r }
		}
	`); err != nil {
		t.Fatal(err)
	}

	if coll.rules[0].scope != "global" {
		t.Errorf("initial scope = %q, want %q", coll.rules[0].scope, "global")
	}

	_, scopedRules, _, err := compileRoom(coll.rooms[0])
	if err != nil {
		t.Fatal(err)
	}

	markScopedRules(coll, scopedRules, "location:hall")

	if coll.rules[0].scope != "location:hall" {
		t.Errorf("after marking, scope = %q, want %q", coll.rules[0].scope, "location:hall")
	}

	rule, err := compileRule(coll.rules[0])
	if err != nil {
		t.Fatal(err)
	}
	if rule.Scope != "location:hall" {
		t.Errorf("compiled scope = %q, want %q", rule.Scope, "location:hall")
	}
}

func TestCompileRule_WithConditions(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Rule("guarded_rule",
			When { verb = "take", object = "gem" },
			{ HasItem("key"), FlagSet("door_open") },
			Then { Say("You take the gem."), GiveItem("gem") }
		)
	`); err != nil {
		t.Fatal(err)
	}

	if len(coll.rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(coll.rules))
	}

	rule, err := compileRule(coll.rules[0])
	if err != nil {
		t.Fatal(err)
	}

	if len(rule.Conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(rule.Conditions))
	}
	if rule.Conditions[0].Type != "has_item" {
		t.Errorf("cond[0].Type = %q, want %q", rule.Conditions[0].Type, "has_item")
	}
	if rule.Conditions[1].Type != "flag_set" {
		t.Errorf("cond[1].Type = %q, want %q", rule.Conditions[1].Type, "flag_set")
	}
	if len(rule.Effects) != 2 {
		t.Fatalf("expected 2 effects, got %d", len(rule.Effects))
	}
}

func TestCompileRule_WithoutConditions(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Rule("simple",
			When { verb = "look" },
			Then { Say("You see nothing special.") }
		)
	`); err != nil {
		t.Fatal(err)
	}

	rule, err := compileRule(coll.rules[0])
	if err != nil {
		t.Fatal(err)
	}

	if len(rule.Conditions) != 0 {
		t.Errorf("expected 0 conditions, got %d", len(rule.Conditions))
	}
	if len(rule.Effects) != 1 {
		t.Fatalf("expected 1 effect, got %d", len(rule.Effects))
	}
	if rule.Effects[0].Type != "say" {
		t.Errorf("effect type = %q, want %q", rule.Effects[0].Type, "say")
	}
}

func TestCompileHook(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Hook("before", { FlagSet("trap_armed") }, { Say("Something clicks.") }, "A trap springs!")
	`); err != nil {
		t.Fatal(err)
	}

	if len(coll.hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(coll.hooks))
	}

	hook, err := compileHook(coll.hooks[0])
	if err != nil {
		t.Fatal(err)
	}
	if hook.When != "before" {
		t.Errorf("When = %q, want before", hook.When)
	}
	if hook.Message != "A trap springs!" {
		t.Errorf("Message = %q", hook.Message)
	}
	if len(hook.Conditions) != 1 || len(hook.Effects) != 1 {
		t.Errorf("hook = %+v", hook)
	}
}

func TestCompileHandler(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		OnEvent("door_opened", {
			conditions = { InLocation("hall") },
			effects = { Say("The door creaks open.") }
		})
	`); err != nil {
		t.Fatal(err)
	}

	if len(coll.handlers) != 1 {
		t.Fatalf("expected 1 handler, got %d", len(coll.handlers))
	}

	handler, err := compileHandler(coll.handlers[0])
	if err != nil {
		t.Fatal(err)
	}

	if handler.EventType != "door_opened" {
		t.Errorf("EventType = %q, want %q", handler.EventType, "door_opened")
	}
	if len(handler.Conditions) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(handler.Conditions))
	}
	if handler.Conditions[0].Type != "in_location" {
		t.Errorf("condition type = %q, want %q", handler.Conditions[0].Type, "in_location")
	}
	if len(handler.Effects) != 1 {
		t.Fatalf("expected 1 effect, got %d", len(handler.Effects))
	}
}

func TestSourceOrder_AutoIncrement(t *testing.T) {
	L, coll := newTestVM()
	defer L.Close()

	if err := L.DoString(`
		Rule("first", When { verb = "look" }, Then { Say("1") })
		Rule("second", When { verb = "take" }, Then { Say("2") })
		Rule("third", When { verb = "drop" }, Then { Say("3") })
	`); err != nil {
		t.Fatal(err)
	}

	if len(coll.rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(coll.rules))
	}

	for i, raw := range coll.rules {
		if raw.order != i+1 {
			t.Errorf("rule %d order = %d, want %d", i, raw.order, i+1)
		}
	}
}
