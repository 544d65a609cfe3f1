package parser

import "github.com/loomwright/grue/types"

// SyntaxRule describes one admissible shape for a verb's argument slots
// (spec.md §4.4 step 6): an optional indirect-object slot gated by one of
// a set of prepositions. Rules for a verb are tried in declared order;
// the first whose preposition (or absence of one) matches the input wins.
type SyntaxRule struct {
	AllowsIndirect bool
	// Prepositions, when AllowsIndirect is true, restricts which
	// prepositions this rule accepts. Empty means any preposition.
	Prepositions []types.Preposition
}

var directOnly = []SyntaxRule{{AllowsIndirect: false}}

// defaultSyntaxRules is the built-in per-verb rule table. Author verbs
// without an entry here fall back to directOnly.
var defaultSyntaxRules = map[types.VerbID][]SyntaxRule{
	types.VerbInsert: {
		{AllowsIndirect: true, Prepositions: []types.Preposition{types.PrepIn}},
	},
	// PutOn accepts any preposition: the handler itself branches on
	// c.Preposition (PrepOn for a surface, PrepIn when "put X in Y" is
	// used interchangeably with "insert").
	types.VerbPutOn: {
		{AllowsIndirect: true},
	},
	types.VerbUnlock: {
		{AllowsIndirect: true, Prepositions: []types.Preposition{types.PrepWith}},
		{AllowsIndirect: false},
	},
	types.VerbLock: {
		{AllowsIndirect: true, Prepositions: []types.Preposition{types.PrepWith}},
		{AllowsIndirect: false},
	},
	types.VerbTalk: {
		{AllowsIndirect: true, Prepositions: []types.Preposition{types.PrepTo, types.PrepWith}},
		{AllowsIndirect: false},
	},
	types.VerbAttack: {
		{AllowsIndirect: true, Prepositions: []types.Preposition{types.PrepWith}},
		{AllowsIndirect: false},
	},

	types.VerbTake:      directOnly,
	types.VerbDrop:      directOnly,
	types.VerbOpen:      directOnly,
	types.VerbClose:     directOnly,
	types.VerbRead:      directOnly,
	types.VerbLook:      directOnly,
	types.VerbExamine:   directOnly,
	types.VerbTurnOn:    directOnly,
	types.VerbTurnOff:   directOnly,
	types.VerbRemove:    directOnly,
	types.VerbWear:      directOnly,
	types.VerbInventory: directOnly,
	types.VerbDefend:    directOnly,
	types.VerbFlee:      directOnly,
}

// rulesFor returns the declared syntax rules for a verb, or directOnly if
// the verb (typically an author-declared one) has none registered.
func rulesFor(verb types.VerbID) []SyntaxRule {
	if rules, ok := defaultSyntaxRules[verb]; ok {
		return rules
	}
	return directOnly
}
