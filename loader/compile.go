// Package loader loads Lua game content into Go structs at compile time.
// The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"sort"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
	lua "github.com/yuin/gopher-lua"
)

// rawRoom holds a location table before compilation.
type rawRoom struct {
	id    string
	table *lua.LTable
}

// rawEntity holds an item/NPC/enemy table before compilation.
type rawEntity struct {
	id    string
	kind  string
	table *lua.LTable
}

// rawRule holds a rule before compilation.
type rawRule struct {
	id         string
	when       *lua.LTable
	conditions *lua.LTable // may be nil
	then       *lua.LTable
	scope      string
	order      int
}

// rawHook holds a before/after-turn hook before compilation.
type rawHook struct {
	id         string
	when       string
	conditions *lua.LTable // may be nil
	effects    *lua.LTable // may be nil
	message    string
	scope      string
}

// rawHandler holds a reactive event handler before compilation.
type rawHandler struct {
	eventType string
	table     *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getInt64 returns an int64 field from a Lua table, or 0 if missing.
func getInt64(tbl *lua.LTable, key string) int64 {
	return int64(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Check if it's an array (sequential integer keys starting at 1).
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		// Otherwise treat as map.
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToAnyMap converts a Lua table to a map[string]any.
func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

// toAttrValue converts a decoded Lua value into the engine's tagged
// AttrValue union, inferring Kind from the Go type toGoValue produced.
func toAttrValue(v any) types.AttrValue {
	switch val := v.(type) {
	case bool:
		return types.BoolValue(val)
	case int:
		return types.IntValue(val)
	case string:
		return types.StringValue(val)
	case []any:
		words := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				words = append(words, s)
			}
		}
		return types.StringSetValue(words...)
	default:
		return types.StringValue(fmt.Sprintf("%v", val))
	}
}

// attrsToMap converts a Lua attrs={...} table into the engine's typed
// attribute map, the generic pass-through the whole attribute model is
// built on: no per-attribute hand mapping.
func attrsToMap(tbl *lua.LTable) map[types.AttributeID]types.AttrValue {
	if tbl == nil {
		return nil
	}
	out := map[types.AttributeID]types.AttrValue{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		out[types.AttributeID(string(ks))] = toAttrValue(toGoValue(v))
	})
	return out
}

// stringSet converts a Synonyms(...)/Adjectives(...)-produced array table
// (or a plain {"a","b"} literal) into a word set.
func stringSet(tbl *lua.LTable) map[string]struct{} {
	if tbl == nil {
		return nil
	}
	out := map[string]struct{}{}
	maxN := tbl.MaxN()
	for i := 1; i <= maxN; i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out[string(s)] = struct{}{}
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*store.Defs, error) {
	defs := &store.Defs{
		Locations: map[types.LocationID]types.Location{},
		Items:     map[types.ItemID]types.Item{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	compileGame(coll.game, defs)

	// Locations — track which rules/hooks are scoped to each.
	for _, raw := range coll.rooms {
		loc, scopedRules, scopedHooks, err := compileRoom(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling location %s: %w", raw.id, err)
		}
		defs.Locations[loc.ID] = loc
		markScopedRules(coll, scopedRules, "location:"+raw.id)
		markScopedHooks(coll, scopedHooks, "location:"+raw.id)
	}

	// Items — track which rules/hooks are scoped to each.
	for _, raw := range coll.entities {
		item, scopedRules, scopedHooks, err := compileEntity(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.id, err)
		}
		defs.Items[item.ID] = item
		markScopedRules(coll, scopedRules, "item:"+raw.id)
		markScopedHooks(coll, scopedHooks, "item:"+raw.id)
	}

	// Rules.
	for i := range coll.rules {
		rule, err := compileRule(coll.rules[i])
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", coll.rules[i].id, err)
		}
		switch {
		case rule.Scope == "global":
			defs.GlobalRules = append(defs.GlobalRules, rule)
		case len(rule.Scope) > 9 && rule.Scope[:9] == "location:":
			locID := types.LocationID(rule.Scope[9:])
			if l, ok := defs.Locations[locID]; ok {
				l.Rules = append(l.Rules, rule)
				defs.Locations[locID] = l
			}
		case len(rule.Scope) > 5 && rule.Scope[:5] == "item:":
			itemID := types.ItemID(rule.Scope[5:])
			if it, ok := defs.Items[itemID]; ok {
				it.Rules = append(it.Rules, rule)
				defs.Items[itemID] = it
			}
		}
	}

	// Hooks — global hooks have no home (BeforeAfterHook only lives on
	// Location/Item); an unscoped Hook() is a loader error.
	for i := range coll.hooks {
		hook, err := compileHook(coll.hooks[i])
		if err != nil {
			return nil, fmt.Errorf("compiling hook %s: %w", coll.hooks[i].id, err)
		}
		switch {
		case len(coll.hooks[i].scope) > 9 && coll.hooks[i].scope[:9] == "location:":
			locID := types.LocationID(coll.hooks[i].scope[9:])
			l, ok := defs.Locations[locID]
			if !ok {
				return nil, fmt.Errorf("hook %s scoped to unknown location %s", hook.ID, locID)
			}
			l.Hooks = append(l.Hooks, hook)
			defs.Locations[locID] = l
		case len(coll.hooks[i].scope) > 5 && coll.hooks[i].scope[:5] == "item:":
			itemID := types.ItemID(coll.hooks[i].scope[5:])
			it, ok := defs.Items[itemID]
			if !ok {
				return nil, fmt.Errorf("hook %s scoped to unknown item %s", hook.ID, itemID)
			}
			it.Hooks = append(it.Hooks, hook)
			defs.Items[itemID] = it
		default:
			return nil, fmt.Errorf("hook %s is not referenced from any location's or item's hooks list", hook.ID)
		}
	}

	// Reactive event handlers.
	for _, raw := range coll.handlers {
		handler, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling handler: %w", err)
		}
		defs.Handlers = append(defs.Handlers, handler)
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable, defs *store.Defs) {
	defs.Title = getString(tbl, "title")
	defs.AbbrevTitle = getString(tbl, "abbrev_title")
	defs.Author = getString(tbl, "author")
	defs.Release = getString(tbl, "release")
	defs.Intro = getString(tbl, "intro")
	defs.MaxScore = getInt(tbl, "max_score")
	defs.Start = types.LocationID(getString(tbl, "start"))
	seed := getInt64(tbl, "rng_seed")
	if seed == 0 {
		seed = 1
	}
	defs.RNGSeed = seed

	player := types.Player{CarryingCapacity: 0, Health: 100, MaxHealth: 100, Attack: 1, Defense: 0}
	if pt := getTable(tbl, "player"); pt != nil {
		if v := pt.RawGetString("capacity"); v != lua.LNil {
			player.CarryingCapacity = getInt(pt, "capacity")
		}
		if v := pt.RawGetString("health"); v != lua.LNil {
			player.Health = getInt(pt, "health")
		}
		if v := pt.RawGetString("max_health"); v != lua.LNil {
			player.MaxHealth = getInt(pt, "max_health")
		}
		if v := pt.RawGetString("attack"); v != lua.LNil {
			player.Attack = getInt(pt, "attack")
		}
		if v := pt.RawGetString("defense"); v != lua.LNil {
			player.Defense = getInt(pt, "defense")
		}
	}
	defs.PlayerStats = player
}

// compileRoom compiles a raw location into a types.Location and returns
// the rule/hook IDs scoped to it.
func compileRoom(raw rawRoom) (types.Location, []string, []string, error) {
	tbl := raw.table
	loc := types.Location{
		ID:          types.LocationID(raw.id),
		Name:        getString(tbl, "name"),
		Description: getString(tbl, "description"),
		Attributes:  attrsToMap(getTable(tbl, "attrs")),
		Fallbacks:   map[string]string{},
	}

	if ft := getTable(tbl, "fallbacks"); ft != nil {
		ft.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				if vs, ok := v.(lua.LString); ok {
					loc.Fallbacks[string(ks)] = string(vs)
				}
			}
		})
	}

	if exitsTbl := getTable(tbl, "exits"); exitsTbl != nil {
		loc.Exits = map[string]types.ExitSpec{}
		exitsTbl.ForEach(func(_, v lua.LValue) {
			marker, ok := v.(*lua.LTable)
			if !ok {
				return
			}
			dir := getString(marker, "__direction")
			if dir == "" {
				return
			}
			loc.Exits[dir] = types.ExitSpec{
				Destination: types.LocationID(getString(marker, "__destination")),
				Door:        types.ItemID(getString(marker, "__door")),
			}
		})
	}

	if localsTbl := getTable(tbl, "locals"); localsTbl != nil {
		loc.LocalGlobals = map[types.ItemID]struct{}{}
		maxN := localsTbl.MaxN()
		for i := 1; i <= maxN; i++ {
			if s, ok := localsTbl.RawGetInt(i).(lua.LString); ok {
				loc.LocalGlobals[types.ItemID(string(s))] = struct{}{}
			}
		}
	}

	scopedRules := markerIDs(getTable(tbl, "rules"), "__rule_id")
	scopedHooks := markerIDs(getTable(tbl, "hooks"), "__hook_id")
	return loc, scopedRules, scopedHooks, nil
}

// compileEntity compiles a raw item/NPC/enemy into a types.Item and
// returns the rule/hook IDs scoped to it.
func compileEntity(raw rawEntity) (types.Item, []string, []string, error) {
	tbl := raw.table
	item := types.Item{
		ID:         types.ItemID(raw.id),
		Name:       getString(tbl, "name"),
		Synonyms:   stringSet(getTable(tbl, "synonyms")),
		Adjectives: stringSet(getTable(tbl, "adjectives")),
		Attributes: attrsToMap(getTable(tbl, "attrs")),
	}

	switch {
	case getString(tbl, "location") != "":
		item.Parent = types.ParentOfLocation(types.LocationID(getString(tbl, "location")))
	case getTable(tbl, "parent") != nil:
		marker := getTable(tbl, "parent")
		if pid := getString(marker, "__parent_item"); pid != "" {
			item.Parent = types.ParentOfItem(types.ItemID(pid))
		}
	default:
		item.Parent = types.ParentOfNowhere()
	}

	if raw.kind == "enemy" {
		if item.Attributes == nil {
			item.Attributes = map[types.AttributeID]types.AttrValue{}
		}
		if _, ok := item.Attributes[types.AttrIsEnemy]; !ok {
			item.Attributes[types.AttrIsEnemy] = types.BoolValue(true)
		}
	}

	if topicsTbl := getTable(tbl, "topics"); topicsTbl != nil {
		item.Topics = compileTopics(topicsTbl)
	}

	scopedRules := markerIDs(getTable(tbl, "rules"), "__rule_id")
	scopedHooks := markerIDs(getTable(tbl, "hooks"), "__hook_id")
	return item, scopedRules, scopedHooks, nil
}

// markerIDs collects the id field named by idKey from an array of marker
// tables (as produced by Rule/Hook's returned marker values).
func markerIDs(tbl *lua.LTable, idKey string) []string {
	if tbl == nil {
		return nil
	}
	var ids []string
	tbl.ForEach(func(_, v lua.LValue) {
		if marker, ok := v.(*lua.LTable); ok {
			if id := getString(marker, idKey); id != "" {
				ids = append(ids, id)
			}
		}
	})
	return ids
}

func compileTopics(tbl *lua.LTable) map[string]types.Topic {
	topics := map[string]types.Topic{}
	tbl.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		topicTbl, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		topic := types.Topic{
			Text: getString(topicTbl, "text"),
		}
		if reqTbl := getTable(topicTbl, "requires"); reqTbl != nil {
			topic.Requires = compileConditions(reqTbl)
		}
		if effTbl := getTable(topicTbl, "effects"); effTbl != nil {
			topic.Effects = compileEffects(effTbl)
		}
		topics[string(key)] = topic
	})
	return topics
}

func compileRule(raw rawRule) (types.RuleDef, error) {
	rule := types.RuleDef{
		ID:          raw.id,
		Scope:       raw.scope,
		When:        compileMatchCriteria(raw.when),
		Effects:     compileEffects(raw.then),
		SourceOrder: raw.order,
	}
	if raw.conditions != nil {
		rule.Conditions = compileConditions(raw.conditions)
	}
	rule.Priority = getInt(raw.when, "priority")
	return rule, nil
}

func compileHook(raw rawHook) (types.BeforeAfterHook, error) {
	hook := types.BeforeAfterHook{
		ID:      raw.id,
		When:    raw.when,
		Message: raw.message,
	}
	if raw.conditions != nil {
		hook.Conditions = compileConditions(raw.conditions)
	}
	if raw.effects != nil {
		hook.Effects = compileEffects(raw.effects)
	}
	return hook, nil
}

func compileMatchCriteria(tbl *lua.LTable) types.MatchCriteria {
	mc := types.MatchCriteria{
		Verb:   types.VerbID(getString(tbl, "verb")),
		Object: types.ItemID(getString(tbl, "object")),
		Target: types.ItemID(getString(tbl, "target")),
	}
	if tp := getTable(tbl, "target_prop"); tp != nil {
		mc.TargetProp = toAttrAnyMap(tp)
	}
	if op := getTable(tbl, "object_prop"); op != nil {
		mc.ObjectProp = toAttrAnyMap(op)
	}
	return mc
}

func toAttrAnyMap(tbl *lua.LTable) map[types.AttributeID]any {
	m := map[types.AttributeID]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[types.AttributeID(string(ks))] = toGoValue(v)
		}
	})
	return m
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	tbl.ForEach(func(k, v lua.LValue) {
		// Only process integer-keyed entries (array elements).
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if condTbl, ok := v.(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	})
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		innerTbl := getTable(tbl, "inner")
		if innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})

	return types.Condition{
		Type:   condType,
		Params: params,
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	tbl.ForEach(func(k, v lua.LValue) {
		if _, ok := k.(lua.LNumber); !ok {
			return
		}
		if effTbl, ok := v.(*lua.LTable); ok {
			effects = append(effects, compileEffect(effTbl))
		}
	})
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	effType := getString(tbl, "type")
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			key := string(ks)
			if key != "type" {
				params[key] = toGoValue(v)
			}
		}
	})
	return types.Effect{
		Type:   effType,
		Params: params,
	}
}

func compileHandler(raw rawHandler) (types.EventHandler, error) {
	handler := types.EventHandler{
		EventType: raw.eventType,
	}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		handler.Conditions = compileConditions(condTbl)
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		handler.Effects = compileEffects(effTbl)
	}
	return handler, nil
}

// markScopedRules updates raw rules in the collector to set their scope.
func markScopedRules(coll *collector, ruleIDs []string, scope string) {
	idSet := map[string]bool{}
	for _, id := range ruleIDs {
		idSet[id] = true
	}
	for i := range coll.rules {
		if idSet[coll.rules[i].id] {
			coll.rules[i].scope = scope
		}
	}
}

// markScopedHooks updates raw hooks in the collector to set their scope.
func markScopedHooks(coll *collector, hookIDs []string, scope string) {
	idSet := map[string]bool{}
	for _, id := range hookIDs {
		idSet[id] = true
	}
	for i := range coll.hooks {
		if idSet[coll.hooks[i].id] {
			coll.hooks[i].scope = scope
		}
	}
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
