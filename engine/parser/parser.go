// Package parser converts raw input lines into a types.Command or a
// structured types.ParseError, per spec.md §4.4: tokenise, de-noise, match
// a verb's declared syntax rule, extract direct/indirect phrases, and
// resolve each phrase against the current scope.
package parser

import (
	"strings"
	"unicode"

	"github.com/loomwright/grue/engine/scope"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/engine/vocab"
	"github.com/loomwright/grue/types"
)

// Parser holds the vocabulary it parses against. Vocabulary is rebuilt (or
// refreshed) by the Turn Engine when the Game Blueprint's items change;
// the scope it resolves against is read fresh from the World on every call.
type Parser struct {
	vocab *vocab.Vocabulary
}

// New builds a Parser bound to the given vocabulary.
func New(v *vocab.Vocabulary) *Parser {
	return &Parser{vocab: v}
}

// Parse runs the full ten-step algorithm against raw input, resolving
// object references against w's current scope.
func (p *Parser) Parse(raw string, w *store.World) (*types.Command, *types.ParseError) {
	tokens := tokenize(raw)
	// A leading two-word verb ("turn off", "put down") is looked up as the
	// single word the vocabulary registers it under ("turnoff", "putdown").
	if len(tokens) >= 2 {
		if _, ok := p.vocab.Verb(tokens[0] + tokens[1]); ok {
			tokens = append([]string{tokens[0] + tokens[1]}, tokens[2:]...)
		}
	}
	tokens = p.denoise(tokens)

	if len(tokens) == 0 {
		return nil, &types.ParseError{Kind: types.ErrEmptyInput, Message: "I beg your pardon?"}
	}

	if len(tokens) == 1 {
		if dir, ok := p.vocab.Direction(tokens[0]); ok {
			return &types.Command{Verb: types.VerbGo, Direction: string(dir), RawInput: raw}, nil
		}
	} else if _, ok := p.vocab.Direction(tokens[0]); ok {
		return nil, &types.ParseError{Kind: types.ErrBadGrammar, Message: "I don't understand that sentence."}
	}

	verbWord := tokens[0]
	verb, ok := p.vocab.Verb(verbWord)
	if !ok {
		return nil, &types.ParseError{Kind: types.ErrVerbUnknown, Word: verbWord,
			Message: "I don't know the word \"" + verbWord + "\"."}
	}
	rest := tokens[1:]

	cmd, perr := p.matchRule(verb, rest, w)
	if perr != nil {
		return nil, perr
	}
	cmd.RawInput = raw
	return cmd, nil
}

// matchRule tries verb's declared syntax rules in order against rest,
// splitting on the first recognised preposition when a rule allows an
// indirect slot, then resolves whatever phrases result.
func (p *Parser) matchRule(verb types.VerbID, rest []string, w *store.World) (*types.Command, *types.ParseError) {
	prepIdx, prep := -1, types.Preposition("")
	for i, tok := range rest {
		if pr, ok := p.vocab.Preposition(tok); ok {
			prepIdx, prep = i, pr
			break
		}
	}

	for _, rule := range rulesFor(verb) {
		if prepIdx == -1 {
			if rule.AllowsIndirect {
				continue
			}
			return p.buildCommand(verb, rest, nil, types.Preposition(""), false, w)
		}

		if !rule.AllowsIndirect {
			continue
		}
		if len(rule.Prepositions) > 0 && !prepositionAllowed(rule.Prepositions, prep) {
			continue
		}
		direct := rest[:prepIdx]
		indirect := rest[prepIdx+1:]
		return p.buildCommand(verb, direct, indirect, prep, true, w)
	}

	// No rule matched this shape (commonly: a preposition present that the
	// verb doesn't accept). Leave it to phrase extraction / completion to
	// surface as bad grammar.
	return p.buildCommand(verb, rest, nil, types.Preposition(""), false, w)
}

func prepositionAllowed(allowed []types.Preposition, want types.Preposition) bool {
	for _, a := range allowed {
		if a == want {
			return true
		}
	}
	return false
}

func (p *Parser) buildCommand(verb types.VerbID, directTokens, indirectTokens []string, prep types.Preposition, hasPrep bool, w *store.World) (*types.Command, *types.ParseError) {
	cmd := &types.Command{Verb: verb, Preposition: prep, HasPreposition: hasPrep}

	res := scope.New(w)

	if len(directTokens) > 0 {
		id, mods, perr := p.resolvePhrase(directTokens, w, res)
		if perr != nil {
			perr.Verb = verb
			return nil, perr
		}
		cmd.DirectObject = id
		cmd.DirectModifiers = mods
	}

	if len(indirectTokens) > 0 {
		id, mods, perr := p.resolvePhrase(indirectTokens, w, res)
		if perr != nil {
			perr.Verb = verb
			return nil, perr
		}
		cmd.IndirectObject = id
		cmd.IndirectModifiers = mods
	}

	return cmd, nil
}

// resolvePhrase extracts a phrase from tokens and resolves it to a single
// item id, per spec.md §4.4 steps 7-8.
func (p *Parser) resolvePhrase(tokens []string, w *store.World, res *scope.Resolver) (types.ItemID, []string, *types.ParseError) {
	ph, perr := p.extractPhrase(tokens)
	if perr != nil {
		return "", nil, perr
	}

	if ph.isPronoun {
		return p.resolvePronoun(ph.pronoun, w, res)
	}
	return p.resolveNoun(ph.noun, ph.modifiers, res)
}

type phrase struct {
	isPronoun bool
	pronoun   types.Pronoun
	noun      string
	modifiers []string
}

// extractPhrase implements spec.md §4.4 step 7: a maximal run of
// adjective/noun/pronoun tokens. A lone pronoun token is its own phrase.
// Otherwise the last token recognised as a noun becomes the noun; every
// other token in the run must be a recognised adjective.
func (p *Parser) extractPhrase(tokens []string) (*phrase, *types.ParseError) {
	if len(tokens) == 1 {
		if pr, ok := p.vocab.Pronoun(tokens[0]); ok {
			return &phrase{isPronoun: true, pronoun: pr}, nil
		}
	}

	nounIdx := -1
	for i := len(tokens) - 1; i >= 0; i-- {
		if p.vocab.KnowsNoun(tokens[i]) {
			nounIdx = i
			break
		}
	}
	if nounIdx == -1 {
		nounIdx = len(tokens) - 1
	}

	var mods []string
	for i, tok := range tokens {
		if i == nounIdx {
			continue
		}
		if set := p.vocab.Adjective(tok); len(set) == 0 {
			return nil, &types.ParseError{Kind: types.ErrBadGrammar,
				Message: "I don't understand that sentence."}
		}
		mods = append(mods, tok)
	}
	return &phrase{noun: tokens[nounIdx], modifiers: mods}, nil
}

func (p *Parser) resolvePronoun(pr types.Pronoun, w *store.World, res *scope.Resolver) (types.ItemID, []string, *types.ParseError) {
	targets, ok := w.Pronoun(pr)
	if !ok || len(targets) == 0 {
		return "", nil, &types.ParseError{Kind: types.ErrPronounNotSet,
			Message: "I don't know what you're referring to."}
	}

	reachable := res.ItemsReachableByPlayer()
	var inScope []types.ItemID
	for id := range targets {
		if _, ok := reachable[id]; ok {
			inScope = append(inScope, id)
		}
	}
	switch len(inScope) {
	case 0:
		return "", nil, &types.ParseError{Kind: types.ErrPronounRefersToOutOfScopeItem,
			Message: "You can't see that here anymore."}
	case 1:
		return inScope[0], nil, nil
	default:
		return "", nil, &types.ParseError{Kind: types.ErrAmbiguousPronounReference,
			Message: "Which one do you mean?"}
	}
}

func (p *Parser) resolveNoun(word string, modifiers []string, res *scope.Resolver) (types.ItemID, []string, *types.ParseError) {
	known := p.vocab.KnowsNoun(word)
	candidateSet := p.vocab.Noun(word)
	visible := res.ItemsVisibleToPlayer()

	var inScope []types.ItemID
	for id := range candidateSet {
		if _, ok := visible[id]; ok {
			inScope = append(inScope, id)
		}
	}

	if len(inScope) == 0 {
		if !known {
			return "", nil, &types.ParseError{Kind: types.ErrNounUnknown, Word: word,
				Message: "I don't know the word \"" + word + "\"."}
		}
		return "", nil, &types.ParseError{Kind: types.ErrItemNotInScope, Word: word,
			Message: "You can't see any such thing."}
	}

	if len(modifiers) == 0 {
		if len(inScope) == 1 {
			return inScope[0], nil, nil
		}
		return "", nil, &types.ParseError{Kind: types.ErrAmbiguity,
			Message: "Which " + word + " do you mean?"}
	}

	// Open Question (a): modifier-mismatch wins over ambiguity whenever
	// every candidate that matched the noun fails the modifier filter.
	var filtered []types.ItemID
	for _, id := range inScope {
		if itemHasAllModifiers(id, modifiers, p.vocab) {
			filtered = append(filtered, id)
		}
	}

	switch len(filtered) {
	case 0:
		return "", nil, &types.ParseError{Kind: types.ErrModifierMismatch, Word: word, Mods: modifiers,
			Message: "I don't see a " + strings.Join(modifiers, " ") + " " + word + " here."}
	case 1:
		return filtered[0], modifiers, nil
	default:
		return "", nil, &types.ParseError{Kind: types.ErrAmbiguity,
			Message: "Which " + word + " do you mean?"}
	}
}

func itemHasAllModifiers(id types.ItemID, modifiers []string, v *vocab.Vocabulary) bool {
	for _, mod := range modifiers {
		if _, ok := v.Adjective(mod)[id]; !ok {
			return false
		}
	}
	return true
}

// tokenize lowercases raw input and splits on whitespace and punctuation,
// retaining the ordered word list (spec.md §4.4 step 1).
func tokenize(raw string) []string {
	raw = strings.ToLower(raw)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// denoise drops tokens the vocabulary classifies as noise (spec.md §4.4
// step 2).
func (p *Parser) denoise(tokens []string) []string {
	out := tokens[:0:0]
	for _, tok := range tokens {
		if !p.vocab.IsNoise(tok) {
			out = append(out, tok)
		}
	}
	return out
}
