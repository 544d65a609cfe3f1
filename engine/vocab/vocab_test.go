package vocab

import (
	"testing"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

func fixtureDefs() *store.Defs {
	return &store.Defs{
		Items: map[types.ItemID]types.Item{
			"lamp": {
				ID: "lamp", Name: "brass lamp",
				Synonyms:   map[string]struct{}{"lantern": {}},
				Adjectives: map[string]struct{}{"brass": {}},
			},
			"sword": {
				ID: "sword", Name: "rusty sword",
				Adjectives: map[string]struct{}{"rusty": {}},
			},
		},
	}
}

func TestVerbSynonymsResolve(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	if id, ok := v.Verb("get"); !ok || id != types.VerbTake {
		t.Fatalf("expected 'get' to resolve to take, got %v ok=%v", id, ok)
	}
	if id, ok := v.Verb("x"); !ok || id != types.VerbExamine {
		t.Fatalf("expected 'x' to resolve to examine, got %v ok=%v", id, ok)
	}
	if id, ok := v.Verb("l"); !ok || id != types.VerbLook {
		t.Fatalf("expected 'l' to resolve to look, got %v ok=%v", id, ok)
	}
}

func TestAuthorVerbsAugmentDefaults(t *testing.T) {
	v := Build(fixtureDefs(), map[string]types.VerbID{"rub": "polish"})
	if id, ok := v.Verb("rub"); !ok || id != types.VerbID("polish") {
		t.Fatalf("expected author verb 'rub' to resolve to polish, got %v ok=%v", id, ok)
	}
}

func TestNounLookupIncludesSynonyms(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	set := v.Noun("lantern")
	if _, ok := set["lamp"]; !ok {
		t.Fatal("expected 'lantern' synonym to resolve to lamp")
	}
	set = v.Noun("lamp")
	if _, ok := set["lamp"]; !ok {
		t.Fatal("expected item's own name to resolve to itself")
	}
}

func TestAdjectiveLookup(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	set := v.Adjective("rusty")
	if _, ok := set["sword"]; !ok {
		t.Fatal("expected 'rusty' to resolve to sword")
	}
	if _, ok := set["lamp"]; ok {
		t.Fatal("'rusty' should not resolve to lamp")
	}
}

func TestDirectionLookup(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	if d, ok := v.Direction("n"); !ok || d != DirNorth {
		t.Fatalf("expected 'n' to resolve to north, got %v ok=%v", d, ok)
	}
	if d, ok := v.Direction("southwest"); !ok || d != DirSouthwest {
		t.Fatalf("expected 'southwest' to resolve, got %v ok=%v", d, ok)
	}
}

func TestPrepositionLookup(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	if p, ok := v.Preposition("in"); !ok || p != types.PrepIn {
		t.Fatalf("expected 'in' to resolve to PrepIn, got %v ok=%v", p, ok)
	}
}

func TestNoiseWordsStrippedButNotNouns(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	if !v.IsNoise("the") {
		t.Fatal("'the' should be noise")
	}
	if !v.IsNoise("please") {
		t.Fatal("'please' should be noise")
	}
	if v.IsNoise("lamp") {
		t.Fatal("a registered noun must never be treated as noise")
	}
	if v.IsNoise("take") {
		t.Fatal("a registered verb must never be treated as noise")
	}
}

func TestPronounLookup(t *testing.T) {
	v := Build(fixtureDefs(), nil)
	if p, ok := v.Pronoun("it"); !ok || p != types.PronounIt {
		t.Fatalf("expected 'it' to resolve, got %v ok=%v", p, ok)
	}
	if _, ok := v.Pronoun("xyzzy"); ok {
		t.Fatal("unregistered word should not resolve as a pronoun")
	}
}
