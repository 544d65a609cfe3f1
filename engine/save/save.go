// Package save implements JSON serialization and deserialization of a
// World Store snapshot (spec.md §6: "Save/restore persistence: consumed as
// a byte blob round-trip on the committed world state"). A tagged
// SaveData struct round-trips through encoding/json, covering
// store.Snapshot's full item/location/fuse/daemon/pronoun state, plus a
// schema_version compatibility rule and a google/uuid run id.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/loomwright/grue/engine/rng"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/types"
)

// SchemaVersion is the current save format version. Load rejects a save
// written by any other version: it is a strict equality check, and older
// versions are not accepted.
const SchemaVersion = "1"

// SaveData is the JSON-serializable save format (spec.md §6.4).
type SaveData struct {
	SchemaVersion string `json:"schema_version"`
	RunID         string `json:"run_id"`
	Title         string `json:"title"`

	Items       map[types.ItemID]types.Item                 `json:"items"`
	Locations   map[types.LocationID]types.Location          `json:"locations"`
	Player      types.Player                                 `json:"player"`
	Globals     map[types.GlobalID]types.AttrValue           `json:"globals"`
	Flags       map[string]bool                              `json:"flags"`
	Counters    map[string]int                               `json:"counters"`
	Pronouns    map[types.Pronoun]map[types.ItemID]struct{}  `json:"pronouns"`
	Fuses       map[types.FuseID]types.Fuse                  `json:"fuses"`
	FuseOrder   []types.FuseID                                `json:"fuse_order"`
	Daemons     map[types.DaemonID]types.Daemon              `json:"daemons"`
	DaemonOrder []types.DaemonID                              `json:"daemon_order"`

	TurnCount  int      `json:"turn_count"`
	CommandLog []string `json:"command_log"`
	HistoryLen int      `json:"history_len"`

	RNGSeed     int64 `json:"rng_seed"`
	RNGPosition int64 `json:"rng_position"`
}

// Save serializes a World and its RNG into JSON bytes, tagged with a fresh
// run id so a transcript or audit-log entry written afterward can be
// traced back to the save that produced it.
func Save(w *store.World, r *rng.RNG, title string) ([]byte, error) {
	snap := w.Snapshot()
	data := SaveData{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.NewString(),
		Title:         title,

		Items:       snap.Items,
		Locations:   snap.Locations,
		Player:      snap.Player,
		Globals:     snap.Globals,
		Flags:       snap.Flags,
		Counters:    snap.Counters,
		Pronouns:    snap.Pronouns,
		Fuses:       snap.Fuses,
		FuseOrder:   snap.FuseOrder,
		Daemons:     snap.Daemons,
		DaemonOrder: snap.DaemonOrder,

		TurnCount:  snap.TurnCount,
		CommandLog: snap.CommandLog,
		HistoryLen: snap.HistoryLen,

		RNGSeed:     r.Seed(),
		RNGPosition: r.Position(),
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData, rejecting a schema_version
// this reader doesn't recognize and fixing up Fuse payloads, whose
// "effects" entry round-trips through encoding/json's untyped any as
// []interface{} rather than []types.Effect.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("save: unsupported schema_version %q (reader supports %q)", sd.SchemaVersion, SchemaVersion)
	}
	if sd.Items == nil {
		sd.Items = map[types.ItemID]types.Item{}
	}
	if sd.Locations == nil {
		sd.Locations = map[types.LocationID]types.Location{}
	}
	if sd.Globals == nil {
		sd.Globals = map[types.GlobalID]types.AttrValue{}
	}
	if sd.Flags == nil {
		sd.Flags = map[string]bool{}
	}
	if sd.Counters == nil {
		sd.Counters = map[string]int{}
	}
	if sd.Pronouns == nil {
		sd.Pronouns = map[types.Pronoun]map[types.ItemID]struct{}{}
	}
	if sd.Fuses == nil {
		sd.Fuses = map[types.FuseID]types.Fuse{}
	}
	if sd.Daemons == nil {
		sd.Daemons = map[types.DaemonID]types.Daemon{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	for id, f := range sd.Fuses {
		if err := fixupFusePayload(&f); err != nil {
			return nil, fmt.Errorf("save: fuse %q payload: %w", id, err)
		}
		sd.Fuses[id] = f
	}
	return &sd, nil
}

// fixupFusePayload re-decodes Payload["effects"], which json.Unmarshal
// left as []interface{} of map[string]interface{} rather than
// []types.Effect, back into its concrete type via a marshal/unmarshal
// round-trip scoped to that one key.
func fixupFusePayload(f *types.Fuse) error {
	raw, ok := f.Payload["effects"]
	if !ok {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var effs []types.Effect
	if err := json.Unmarshal(b, &effs); err != nil {
		return err
	}
	f.Payload["effects"] = effs
	return nil
}

// Restore rebuilds a World and an RNG from loaded SaveData against the
// given Defs (the author-declared blueprint is not itself part of a save;
// only runtime state is).
func Restore(defs *store.Defs, sd *SaveData) (*store.World, *rng.RNG) {
	snap := store.Snapshot{
		Items:       sd.Items,
		Locations:   sd.Locations,
		Player:      sd.Player,
		Globals:     sd.Globals,
		Flags:       sd.Flags,
		Counters:    sd.Counters,
		Pronouns:    sd.Pronouns,
		Fuses:       sd.Fuses,
		FuseOrder:   sd.FuseOrder,
		Daemons:     sd.Daemons,
		DaemonOrder: sd.DaemonOrder,
		TurnCount:   sd.TurnCount,
		CommandLog:  sd.CommandLog,
		HistoryLen:  sd.HistoryLen,
	}
	w := store.Restore(defs, snap)
	r := rng.Restore(sd.RNGSeed, sd.RNGPosition)
	return w, r
}
