package engine

import (
	"strings"
	"testing"

	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// baseLocations returns a small two-room fixture shared by every scenario
// below: a lit "living room" the player starts in, and a lit "kitchen"
// with no exits between them that the tests don't otherwise use.
func baseLocations() map[types.LocationID]types.Location {
	return map[types.LocationID]types.Location{
		"living_room": {ID: "living_room", Name: "Living Room",
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsInherentlyLit: types.BoolValue(true),
			}},
		"kitchen": {ID: "kitchen", Name: "Kitchen",
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsInherentlyLit: types.BoolValue(true),
			}},
	}
}

func newTestEngine(items map[types.ItemID]types.Item) *Engine {
	defs := &store.Defs{
		Start:       "living_room",
		RNGSeed:     1,
		PlayerStats: types.Player{CarryingCapacity: 0, Health: 10, MaxHealth: 10},
		Locations:   baseLocations(),
		Items:       items,
	}
	return New(defs, Config{})
}

func lastOutput(r types.Result) string {
	return strings.Join(r.Output, "\n\n")
}

// Scenario 1 (spec.md §8): taking an item reports "Taken."
func TestScenarioTake(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"lamp": {ID: "lamp", Name: "brass lantern", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"lantern": {}, "lamp": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsTakable: types.BoolValue(true),
			}},
	})
	r := e.Execute("take lantern")
	if got := lastOutput(r); got != "Taken." {
		t.Fatalf("want %q, got %q", "Taken.", got)
	}
	it, _ := e.World.Item("lamp")
	if it.Parent.Kind != types.ParentPlayer {
		t.Fatalf("expected lamp to be carried, got parent %+v", it.Parent)
	}
}

// Scenario 2: inserting into an open container.
func TestScenarioInsertIntoOpenContainer(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"coin": {ID: "coin", Name: "gold coin", Parent: types.ParentOfPlayer(),
			Synonyms: map[string]struct{}{"coin": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsTakable: types.BoolValue(true),
			}},
		"box": {ID: "box", Name: "box", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"box": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsContainer: types.BoolValue(true),
				types.AttrIsOpenable:  types.BoolValue(true),
				types.AttrIsOpen:      types.BoolValue(true),
			}},
	})
	r := e.Execute("put coin in box")
	want := "You put the gold coin in the open box."
	if got := lastOutput(r); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	it, _ := e.World.Item("coin")
	if it.Parent.Kind != types.ParentItem || it.Parent.Item != "box" {
		t.Fatalf("expected coin inside box, got parent %+v", it.Parent)
	}
}

// Scenario 3: inserting into a closed container fails without mutation.
func TestScenarioInsertIntoClosedContainer(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"coin": {ID: "coin", Name: "gold coin", Parent: types.ParentOfPlayer(),
			Synonyms: map[string]struct{}{"coin": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsTakable: types.BoolValue(true),
			}},
		"box": {ID: "box", Name: "wooden box", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"box": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsContainer: types.BoolValue(true),
				types.AttrIsOpenable:  types.BoolValue(true),
				types.AttrIsOpen:      types.BoolValue(false),
			}},
	})
	r := e.Execute("put coin in box")
	want := "The wooden box is closed."
	if got := lastOutput(r); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	it, _ := e.World.Item("coin")
	if it.Parent.Kind != types.ParentPlayer {
		t.Fatalf("expected coin to remain held after a rejected insert, got parent %+v", it.Parent)
	}
}

// Scenario 4: a containment cycle is rejected with the Infocom-style message.
// The player carries box A, which holds box B.
func TestScenarioContainmentCycleRejected(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"box_a": {ID: "box_a", Name: "box A", Parent: types.ParentOfPlayer(),
			Synonyms: map[string]struct{}{"a": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsContainer: types.BoolValue(true),
				types.AttrIsOpenable:  types.BoolValue(true),
				types.AttrIsOpen:      types.BoolValue(true),
			}},
		"box_b": {ID: "box_b", Name: "box B", Parent: types.ParentOfItem("box_a"),
			Synonyms: map[string]struct{}{"b": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsContainer: types.BoolValue(true),
				types.AttrIsOpenable:  types.BoolValue(true),
				types.AttrIsOpen:      types.BoolValue(true),
			}},
	})
	r := e.Execute("put a in b")
	want := "You can't put the box A inside the box B, because the box B is inside the box A!"
	if got := lastOutput(r); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

// Scenario 5: turning off the last light source darkens the room, and the
// turn that darkens it reports the darkness in the same output.
func TestScenarioTurnOffLastLight(t *testing.T) {
	defs := &store.Defs{
		Start:       "dark_cellar",
		RNGSeed:     1,
		PlayerStats: types.Player{CarryingCapacity: 0},
		Locations: map[types.LocationID]types.Location{
			"dark_cellar": {ID: "dark_cellar", Name: "Dark Cellar"},
		},
		Items: map[types.ItemID]types.Item{
			"lamp": {ID: "lamp", Name: "brass lantern", Parent: types.ParentOfPlayer(),
				Synonyms: map[string]struct{}{"lantern": {}, "lamp": {}},
				Attributes: map[types.AttributeID]types.AttrValue{
					types.AttrIsLightSource: types.BoolValue(true),
					types.AttrIsDevice:      types.BoolValue(true),
					types.AttrIsOn:          types.BoolValue(true),
				}},
		},
	}
	e := New(defs, Config{})
	r := e.Execute("turn off lantern")
	want := "The brass lantern is now off.\nIt is now pitch black. You are likely to be eaten by a grue."
	if got := lastOutput(r); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

// Scenario 6: an ambiguous noun with no disambiguating modifier asks
// "Which X do you mean?" and consumes no turn (parse errors don't commit).
func TestScenarioAmbiguousReference(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"lamp1": {ID: "lamp1", Name: "brass lantern", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"lantern": {}}},
		"lamp2": {ID: "lamp2", Name: "rusty lantern", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"lantern": {}}},
	})
	r := e.Execute("take lantern")
	want := "Which lantern do you mean?"
	if got := lastOutput(r); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if e.World.TurnCount() != 0 {
		t.Fatalf("expected a parse error not to consume a turn, got turn count %d", e.World.TurnCount())
	}
}

// Scenario 7: dropping something referred to by a pronoun resolves it and
// reports "Dropped."
func TestScenarioPronounResolutionDrop(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"sword": {ID: "sword", Name: "rusty sword", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"sword": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsTakable: types.BoolValue(true),
			}},
	})
	if got := lastOutput(e.Execute("take sword")); got != "Taken." {
		t.Fatalf("setup take failed: %q", got)
	}
	r := e.Execute("drop it")
	if got := lastOutput(r); got != "Dropped." {
		t.Fatalf("want %q, got %q", "Dropped.", got)
	}
	it, _ := e.World.Item("sword")
	if it.Parent.Kind != types.ParentLocation || it.Parent.Location != "living_room" {
		t.Fatalf("expected sword dropped in living_room, got parent %+v", it.Parent)
	}
}

// A rejected action never mutates the world and never advances the turn
// counter (spec.md §4.7 step 4: only a successful commit advances the turn).
func TestActionResponseDoesNotMutateOrAdvanceTurn(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"rock": {ID: "rock", Name: "heavy rock", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"rock": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsFixed: types.BoolValue(true),
			}},
	})
	before := e.World.TurnCount()
	r := e.Execute("take rock")
	if len(r.Changes) != 0 {
		t.Fatalf("expected no changes from a rejected take, got %v", r.Changes)
	}
	it, _ := e.World.Item("rock")
	if it.Parent.Kind != types.ParentLocation {
		t.Fatalf("expected the rock to remain in place, got parent %+v", it.Parent)
	}
	if e.World.TurnCount() != before {
		t.Fatalf("expected turn count unchanged after a rejected action, got %d", e.World.TurnCount())
	}
}

// Empty input is a parse error, not a crash, and consumes no turn.
func TestEmptyInputIsParseError(t *testing.T) {
	e := newTestEngine(nil)
	r := e.Execute("   ")
	if got := lastOutput(r); got != "I beg your pardon?" {
		t.Fatalf("want %q, got %q", "I beg your pardon?", got)
	}
	if e.World.TurnCount() != 0 {
		t.Fatalf("expected empty input not to consume a turn, got %d", e.World.TurnCount())
	}
}

// fakeIO is a minimal types.IOHandler driving RunLoop from an in-memory
// line list.
type fakeIO struct {
	lines   []string
	i       int
	written []string
	flushes int
}

func (f *fakeIO) ReadLine() (string, bool) {
	if f.i >= len(f.lines) {
		return "", false
	}
	line := f.lines[f.i]
	f.i++
	return line, true
}
func (f *fakeIO) Write(text string) { f.written = append(f.written, text) }
func (f *fakeIO) Flush()            { f.flushes++ }

func TestRunLoopDrivesExecuteUntilEndOfInput(t *testing.T) {
	e := newTestEngine(map[types.ItemID]types.Item{
		"sword": {ID: "sword", Name: "rusty sword", Parent: types.ParentOfLocation("living_room"),
			Synonyms: map[string]struct{}{"sword": {}},
			Attributes: map[types.AttributeID]types.AttrValue{
				types.AttrIsTakable: types.BoolValue(true),
			}},
	})
	io := &fakeIO{lines: []string{"take sword", "drop sword"}}
	e.RunLoop(io)
	if io.flushes != 2 {
		t.Fatalf("expected a flush per processed line, got %d", io.flushes)
	}
	if len(io.written) != 2 || io.written[0] != "Taken." || io.written[1] != "Dropped." {
		t.Fatalf("unexpected output sequence: %v", io.written)
	}
}
