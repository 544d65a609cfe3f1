package actions

import (
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/loomwright/grue/engine/scope"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// SceneryMatch scans every description string currently visible to the
// player for word and its 4+-letter significant entries in mods, in a
// single Aho-Corasick pass, instead of the naive approach of running
// strings.Contains once per description per candidate word. A hit means
// the player is looking at set dressing mentioned only in prose — the
// location or item text itself — rather than a defined, reachable Item.
func SceneryMatch(w *store.World, word string, mods []string) bool {
	patterns := significantPatterns(word, mods)
	if len(patterns) == 0 {
		return false
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return false
	}

	for _, desc := range visibleDescriptions(w) {
		if len(automaton.FindAllOverlapping([]byte(strings.ToLower(desc)))) > 0 {
			return true
		}
	}
	return false
}

// significantPatterns lowercases word and mods and keeps any entry at
// least 4 characters long, deduplicated and ready for the automaton
// builder. word itself is always included regardless of length.
func significantPatterns(word string, mods []string) []string {
	seen := map[string]struct{}{}
	var patterns []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		patterns = append(patterns, s)
	}

	add(word)
	for _, m := range mods {
		if len(m) >= 4 {
			add(m)
		}
	}
	return patterns
}

// visibleDescriptions gathers the location description, every visible
// item's description, and every carried item's description: the same
// surface a "look"/"examine" response draws from.
func visibleDescriptions(w *store.World) []string {
	var out []string

	loc := w.Player().CurrentLocation
	if l, ok := w.Location(loc); ok && l.Description != "" {
		out = append(out, l.Description)
	}

	res := scope.New(w)
	for id := range res.ItemsVisibleToPlayer() {
		if desc := w.ItemAttrString(id, types.AttrDescription); desc != "" {
			out = append(out, desc)
		}
	}
	for _, id := range w.ItemsIn(types.ParentOfPlayer()) {
		if desc := w.ItemAttrString(id, types.AttrDescription); desc != "" {
			out = append(out, desc)
		}
	}

	return out
}

// SceneryMessage produces the generic response for a scenery noun that
// matched description text but has no rule or Item of its own: a verb-
// appropriate canned line rather than "you don't see that here", since
// the player plainly does see it, described in prose.
func SceneryMessage(verb types.VerbID, word string) string {
	switch verb {
	case types.VerbExamine, types.VerbLook:
		return "You see nothing special about the " + word + "."
	case types.VerbTake:
		return "You can't take the " + word + "."
	default:
		return "You can't do anything useful with the " + word + "."
	}
}
