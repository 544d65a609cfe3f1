// Package store owns the mutable World: items, locations, the player,
// globals, pronouns, fuses/daemons, and the change history, and is the
// only component with interior mutability (spec.md §4.1, §5). Mutation is
// exclusively through Apply, which commits a batch of types.StateChange
// atomically or not at all.
package store

import "github.com/loomwright/grue/types"

// Defs is the immutable Game Blueprint produced by the loader (or by a
// test fixture) and consumed at engine construction (spec.md §6).
type Defs struct {
	Title         string
	AbbrevTitle   string
	Author        string
	Release       string
	Intro         string
	MaxScore      int
	Start         types.LocationID
	PlayerStats   types.Player // initial health/capacity/etc.
	RNGSeed       int64

	Locations map[types.LocationID]types.Location
	Items     map[types.ItemID]types.Item

	GlobalRules []types.RuleDef
	Handlers    []types.EventHandler // reactive On(event) handlers

	Messenger Messenger
}

// Messenger is the pluggable default-phrase generator (spec.md §9 "Messaging").
// Games may substitute a localized or flavour-randomized implementation;
// the engine only ever calls Default.
type Messenger interface {
	Default(key string, args map[string]string) string
}
