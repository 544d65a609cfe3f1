// Package messenger provides the default Messenger implementation
// (spec.md §9 "Messaging"): default response strings live here, keyed by
// name, so that localisation or flavour-variant swaps touch only this
// package and never the handlers that call it. Generalized from a
// single ID-to-name lookup into a keyed phrase-template registry, since
// the Messenger is pluggable by string key rather than one hardcoded
// function.
package messenger

import "strings"

// Default is the built-in Messenger: a flat map of phrase templates.
// Args are substituted by brace-delimited name, e.g. "{item}"; a key with
// no matching arg is left untouched. Unknown keys fall back to key itself
// so a missing phrase never crashes a turn, it just reads oddly — easy to
// spot in playtesting.
type Default struct {
	phrases map[string]string
}

// New builds the built-in Messenger, seeded with every phrase the engine
// ships referencing by key. Games may call Set to override or add to the
// defaults before handing the Messenger to the store.Defs.
func New() *Default {
	d := &Default{phrases: map[string]string{}}
	for k, v := range builtinPhrases {
		d.phrases[k] = v
	}
	return d
}

// Set overrides or adds a phrase template, for author-authored flavour
// variants or localisation.
func (d *Default) Set(key, template string) {
	d.phrases[key] = template
}

// Default renders the phrase registered under key, substituting args.
func (d *Default) Default(key string, args map[string]string) string {
	tmpl, ok := d.phrases[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// builtinPhrases mirrors the generic (non-entity-specific) responses the
// teacher's engine hardcoded directly into its handler functions. Keys
// name what the phrase is for, not where it's used.
var builtinPhrases = map[string]string{
	"nowhere":              "You are nowhere in particular.",
	"dark_room":            "It is pitch dark. You are likely to be eaten by a grue.",
	"no_description":       "You see nothing special about the {item}.",
	"carrying_nothing":     "You are carrying nothing.",
	"carrying":             "You are carrying: {items}.",
	"no_exit":              "You can't go that way.",
	"cant_see_that":        "You can't see any such thing.",
	"already_have":         "You already have that.",
	"cant_take":            "You can't take the {item}.",
	"cant_take_from":       "You can't take things out of the {item}.",
	"hands_full":           "Your hands are full.",
	"already_on":           "That's already on.",
	"already_off":          "That's already off.",
	"cant_turn_on":         "You can't turn that on.",
	"cant_turn_off":        "You can't turn that off.",
	"light_floods_in":      "The {item} is now on.\n\nLight floods the area.",
	"darkness_falls":       "The {item} is now off.\nIt is now pitch black. You are likely to be eaten by a grue.",
	"turned_on":            "The {item} is now on.",
	"turned_off":           "The {item} is now off.",
	"nothing_written":      "There's nothing written on the {item}.",
	"locked":               "The {item} is locked.",
	"no_combat":            "You're not fighting anything.",
	"you_brace":            "You brace yourself. (+2 defense this round)",
	"nothing_to_say":       "The {item} has nothing to say.",
	"no_one_to_talk_to":    "There's no one there to talk to.",
}
