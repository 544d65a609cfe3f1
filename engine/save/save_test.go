package save

import (
	"encoding/json"
	"testing"

	"github.com/loomwright/grue/engine/rng"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

func saveDefs() *store.Defs {
	return &store.Defs{
		Start: "hall",
		Locations: map[types.LocationID]types.Location{
			"hall":   {ID: "hall", Name: "Hall", Exits: map[string]types.ExitSpec{"north": {Destination: "garden"}}},
			"garden": {ID: "garden", Name: "Garden"},
		},
		Items: map[types.ItemID]types.Item{
			"key": {ID: "key", Name: "brass key", Parent: types.ParentOfLocation("hall")},
		},
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	defs := saveDefs()
	w := store.New(defs)
	r := rng.New(42)
	r.Roll(6)
	r.Roll(6)

	if err := w.Apply([]types.StateChange{
		{Kind: types.ChangeMoveItem, ItemID: "key", NewParent: types.ParentOfPlayer()},
		{Kind: types.ChangeMovePlayer, Destination: "garden"},
		{Kind: types.ChangeSetFlag, FlagName: "door_open"},
		{Kind: types.ChangeSetCounter, CounterName: "visits", CounterValue: 3},
		{Kind: types.ChangeAddFuse, Fuse: types.Fuse{ID: "torch_out", TurnsLeft: 2,
			Payload: map[string]any{
				"message": "The torch gutters.",
				"effects": []types.Effect{{Type: "set_flag", Params: map[string]any{"flag": "dark", "value": true}}},
			}}},
		{Kind: types.ChangeAddDaemon, DaemonVal: types.Daemon{ID: "heartbeat",
			Effects: []types.Effect{{Type: "inc_counter", Params: map[string]any{"counter": "pulses", "amount": 1}}}}},
		{Kind: types.ChangeSetPronoun, PronounWord: types.PronounIt, PronounTargets: map[types.ItemID]struct{}{"key": {}}},
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	w.IncrementTurn()
	w.LogCommand("take key")
	w.LogCommand("go north")

	data, err := Save(w, r, "Test Game")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("Save output is not valid JSON")
	}

	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	w2, r2 := Restore(defs, sd)

	if w2.Player().CurrentLocation != "garden" {
		t.Errorf("expected location garden, got %q", w2.Player().CurrentLocation)
	}
	key, ok := w2.Item("key")
	if !ok || key.Parent.Kind != types.ParentPlayer {
		t.Errorf("expected key carried, got %+v ok=%v", key.Parent, ok)
	}
	if !w2.Flag("door_open") {
		t.Error("expected door_open flag true")
	}
	if w2.Counter("visits") != 3 {
		t.Errorf("expected visits=3, got %d", w2.Counter("visits"))
	}
	if w2.TurnCount() != 1 {
		t.Errorf("expected turn count 1, got %d", w2.TurnCount())
	}
	if log := w2.CommandLog(); len(log) != 2 || log[0] != "take key" || log[1] != "go north" {
		t.Errorf("command log mismatch: %v", log)
	}
	targets, ok := w2.Pronoun(types.PronounIt)
	if !ok {
		t.Fatal("expected pronoun 'it' to be set")
	}
	if _, has := targets["key"]; !has {
		t.Errorf("expected pronoun 'it' to target key, got %v", targets)
	}

	f, ok := w2.Fuse("torch_out")
	if !ok || f.TurnsLeft != 2 {
		t.Fatalf("expected fuse torch_out with TurnsLeft=2, got %+v ok=%v", f, ok)
	}
	effs, ok := f.Payload["effects"].([]types.Effect)
	if !ok || len(effs) != 1 || effs[0].Type != "set_flag" {
		t.Errorf("expected fuse payload effects to survive round-trip as []types.Effect, got %#v", f.Payload["effects"])
	}

	daemons := w2.ActiveDaemons()
	if len(daemons) != 1 || daemons[0].ID != "heartbeat" {
		t.Errorf("expected daemon heartbeat to survive round-trip, got %v", daemons)
	}

	if r2.Seed() != 42 || r2.Position() != 2 {
		t.Errorf("expected RNG seed=42 position=2, got seed=%d position=%d", r2.Seed(), r2.Position())
	}
}

func TestLoadRejectsUnsupportedSchemaVersion(t *testing.T) {
	data := []byte(`{"schema_version":"99"}`)
	if _, err := Load(data); err == nil {
		t.Fatal("expected an error for an unsupported schema_version")
	}
}

func TestLoadFillsNilCollections(t *testing.T) {
	data := []byte(`{"schema_version":"1"}`)
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.Items == nil || sd.Locations == nil || sd.Globals == nil || sd.Flags == nil ||
		sd.Counters == nil || sd.Pronouns == nil || sd.Fuses == nil || sd.Daemons == nil || sd.CommandLog == nil {
		t.Errorf("expected every collection to be non-nil after loading a minimal save, got %+v", sd)
	}
}

func TestSaveTagsEachSaveWithAFreshRunID(t *testing.T) {
	defs := saveDefs()
	w := store.New(defs)
	r := rng.New(1)

	data1, err := Save(w, r, "Test Game")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data2, err := Save(w, r, "Test Game")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	sd1, _ := Load(data1)
	sd2, _ := Load(data2)
	if sd1.RunID == "" || sd2.RunID == "" || sd1.RunID == sd2.RunID {
		t.Errorf("expected distinct non-empty run ids, got %q and %q", sd1.RunID, sd2.RunID)
	}
}
