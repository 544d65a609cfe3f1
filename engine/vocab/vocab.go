// Package vocab builds the Vocabulary (spec.md §4.3) from a Game Blueprint:
// verb/noun/adjective/preposition/direction/noise-word/pronoun lookup
// tables. All lookups are by lowercased word.
package vocab

import (
	"strings"

	"github.com/orsinium-labs/stopwords"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// Direction is one of the compass/vertical movement words.
type Direction string

const (
	DirNorth     Direction = "north"
	DirSouth     Direction = "south"
	DirEast      Direction = "east"
	DirWest      Direction = "west"
	DirNortheast Direction = "northeast"
	DirNorthwest Direction = "northwest"
	DirSoutheast Direction = "southeast"
	DirSouthwest Direction = "southwest"
	DirUp        Direction = "up"
	DirDown      Direction = "down"
)

var defaultVerbSynonyms = map[string]types.VerbID{
	"take": types.VerbTake, "get": types.VerbTake, "grab": types.VerbTake,
	"hold": types.VerbTake, "carry": types.VerbTake,

	"drop": types.VerbDrop, "discard": types.VerbDrop,

	"insert":  types.VerbInsert,
	"put":     types.VerbPutOn,
	"putdown": types.VerbDrop,

	"open": types.VerbOpen,
	"close": types.VerbClose, "shut": types.VerbClose,

	"lock":   types.VerbLock,
	"unlock": types.VerbUnlock,

	"read": types.VerbRead,

	"look": types.VerbLook, "l": types.VerbLook,
	"examine": types.VerbExamine, "x": types.VerbExamine, "inspect": types.VerbExamine,
	"check": types.VerbExamine, "study": types.VerbExamine, "describe": types.VerbExamine,

	"turnon": types.VerbTurnOn, "activate": types.VerbTurnOn, "switchon": types.VerbTurnOn,
	"turnoff": types.VerbTurnOff, "deactivate": types.VerbTurnOff, "switchoff": types.VerbTurnOff,

	"remove": types.VerbRemove, "takeoff": types.VerbRemove,
	"wear": types.VerbWear, "don": types.VerbWear,

	"go": types.VerbGo, "walk": types.VerbGo, "move": types.VerbGo,
	"head": types.VerbGo, "proceed": types.VerbGo, "enter": types.VerbGo, "travel": types.VerbGo,

	"inventory": types.VerbInventory, "inv": types.VerbInventory, "i": types.VerbInventory,

	"attack": types.VerbAttack, "hit": types.VerbAttack, "fight": types.VerbAttack,
	"strike": types.VerbAttack, "kill": types.VerbAttack,
	"defend": types.VerbDefend, "block": types.VerbDefend,
	"flee": types.VerbFlee, "run": types.VerbFlee, "escape": types.VerbFlee,

	"talk": types.VerbTalk, "ask": types.VerbTalk, "speak": types.VerbTalk,
	"chat": types.VerbTalk, "tell": types.VerbTalk,
}

var defaultPrepositions = map[string]types.Preposition{
	"in":     types.PrepIn,
	"into":   types.PrepIn,
	"inside": types.PrepIn,
	"on":     types.PrepOn,
	"onto":   types.PrepOn,
	"under":  types.PrepUnder,
	"behind": types.PrepBehind,
	"with":   types.PrepWith,
	"using":  types.PrepWith,
	"to":     types.PrepTo,
	"from":   types.PrepFrom,
	"at":     types.PrepAt,
}

var defaultDirections = map[string]Direction{
	"n": DirNorth, "north": DirNorth,
	"s": DirSouth, "south": DirSouth,
	"e": DirEast, "east": DirEast,
	"w": DirWest, "west": DirWest,
	"ne": DirNortheast, "northeast": DirNortheast,
	"nw": DirNorthwest, "northwest": DirNorthwest,
	"se": DirSoutheast, "southeast": DirSoutheast,
	"sw": DirSouthwest, "southwest": DirSouthwest,
	"u": DirUp, "up": DirUp,
	"d": DirDown, "down": DirDown,
}

var defaultPronouns = map[string]types.Pronoun{
	"it":   types.PronounIt,
	"them": types.PronounThem,
	"him":  types.PronounHim,
	"her":  types.PronounHer,
}

// ifNoiseWords covers determiners and filler words common in IF commands
// that the English stopword set doesn't carry (or carries too broadly to
// reuse directly).
var ifNoiseWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "please": {},
	"my": {}, "that": {}, "this": {},
}

// Vocabulary is the built lookup tables for one Game Blueprint.
type Vocabulary struct {
	verbs        map[string]types.VerbID
	nouns        map[string]map[types.ItemID]struct{}
	adjectives   map[string]map[types.ItemID]struct{}
	prepositions map[string]types.Preposition
	directions   map[string]Direction
	pronouns     map[string]types.Pronoun
	noise        *stopwords.Stopwords
}

// Build constructs a Vocabulary from the blueprint's items and default verb
// table, augmented by author-declared verb synonyms.
func Build(defs *store.Defs, authorVerbs map[string]types.VerbID) *Vocabulary {
	v := &Vocabulary{
		verbs:        map[string]types.VerbID{},
		nouns:        map[string]map[types.ItemID]struct{}{},
		adjectives:   map[string]map[types.ItemID]struct{}{},
		prepositions: defaultPrepositions,
		directions:   defaultDirections,
		pronouns:     defaultPronouns,
		noise:        stopwords.MustGet("en"),
	}

	for word, id := range defaultVerbSynonyms {
		v.verbs[word] = id
	}
	for word, id := range authorVerbs {
		v.verbs[strings.ToLower(word)] = id
	}

	for id, it := range defs.Items {
		v.addNoun(strings.ToLower(it.Name), id)
		for syn := range it.Synonyms {
			v.addNoun(strings.ToLower(syn), id)
		}
		for adj := range it.Adjectives {
			v.addAdjective(strings.ToLower(adj), id)
		}
	}

	return v
}

func (v *Vocabulary) addNoun(word string, id types.ItemID) {
	if word == "" {
		return
	}
	set, ok := v.nouns[word]
	if !ok {
		set = map[types.ItemID]struct{}{}
		v.nouns[word] = set
	}
	set[id] = struct{}{}
}

func (v *Vocabulary) addAdjective(word string, id types.ItemID) {
	if word == "" {
		return
	}
	set, ok := v.adjectives[word]
	if !ok {
		set = map[types.ItemID]struct{}{}
		v.adjectives[word] = set
	}
	set[id] = struct{}{}
}

// Verb looks up a word (already lowercased) as a verb.
func (v *Vocabulary) Verb(word string) (types.VerbID, bool) {
	id, ok := v.verbs[word]
	return id, ok
}

// Noun looks up a word as a noun, returning the set of items it can name.
func (v *Vocabulary) Noun(word string) map[types.ItemID]struct{} {
	return v.nouns[word]
}

// KnowsNoun reports whether word is registered as a noun for anything.
func (v *Vocabulary) KnowsNoun(word string) bool {
	_, ok := v.nouns[word]
	return ok
}

// Adjective looks up a word as an adjective, returning items it can modify.
func (v *Vocabulary) Adjective(word string) map[types.ItemID]struct{} {
	return v.adjectives[word]
}

// Preposition looks up a word as a preposition.
func (v *Vocabulary) Preposition(word string) (types.Preposition, bool) {
	p, ok := v.prepositions[word]
	return p, ok
}

// Direction looks up a word as a direction.
func (v *Vocabulary) Direction(word string) (Direction, bool) {
	d, ok := v.directions[word]
	return d, ok
}

// Pronoun looks up a word as a pronoun.
func (v *Vocabulary) Pronoun(word string) (types.Pronoun, bool) {
	p, ok := v.pronouns[word]
	return p, ok
}

// IsNoise reports whether word should be dropped during de-noising: either
// an IF-specific filler word or an English stopword, but never a word that
// is also a registered verb, noun, adjective, preposition, pronoun or
// direction (so names like "a" in "plan A" aren't blindly stripped if ever
// declared as a noun).
func (v *Vocabulary) IsNoise(word string) bool {
	if v.KnowsNoun(word) {
		return false
	}
	if _, ok := v.adjectives[word]; ok {
		return false
	}
	if _, ok := v.verbs[word]; ok {
		return false
	}
	if _, ok := v.prepositions[word]; ok {
		return false
	}
	if _, ok := v.pronouns[word]; ok {
		return false
	}
	if _, ok := v.directions[word]; ok {
		return false
	}
	if _, ok := ifNoiseWords[word]; ok {
		return true
	}
	return v.noise.Contains(word)
}
