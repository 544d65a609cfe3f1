// Package engine provides the Turn Engine orchestrator (spec.md §4.7): it
// wires the Parser, the author-rule overlay, the built-in Action Handlers,
// the before/after-turn Event Dispatcher, and Fuses/Daemons into a single
// execute(raw_input) call per turn, plus a run_loop over an IOHandler.
package engine

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomwright/grue/engine/actions"
	"github.com/loomwright/grue/engine/audit"
	"github.com/loomwright/grue/engine/effects"
	"github.com/loomwright/grue/engine/hooks"
	"github.com/loomwright/grue/engine/messenger"
	"github.com/loomwright/grue/engine/parser"
	"github.com/loomwright/grue/engine/rng"
	"github.com/loomwright/grue/engine/rules"
	"github.com/loomwright/grue/engine/scope"
	"github.com/loomwright/grue/engine/store"
	"github.com/loomwright/grue/engine/timers"
	"github.com/loomwright/grue/engine/vocab"
	"github.com/loomwright/grue/types"
)

// Config governs the orchestrator's configurable policy points.
type Config struct {
	// ParseErrorsConsumeTurn resolves spec.md §9 Open Question (b): the
	// source behaviour was inconsistent, so this defaults to false.
	ParseErrorsConsumeTurn bool

	// AuthorVerbs supplements the vocabulary's default verb synonym table
	// with blueprint-declared custom verbs.
	AuthorVerbs map[string]types.VerbID

	// Logger receives structured records of EngineError commit failures
	// and recovered hook panics. A nil Logger is replaced with a no-op one.
	Logger *zap.Logger

	// Audit, if non-nil, receives every committed StateChange batch under
	// RunID (generated automatically if RunID is empty).
	Audit *audit.Log
	RunID string
}

// Engine holds the Game Blueprint, the mutable World, and every
// collaborator a turn's dispatch needs.
type Engine struct {
	Defs      *store.Defs
	World     *store.World
	RNG       *rng.RNG
	Vocab     *vocab.Vocabulary
	Parser    *parser.Parser
	Registry  *actions.Registry
	Hooks     *hooks.Dispatcher
	Messenger store.Messenger

	cfg Config
	log *zap.Logger
}

// New builds an Engine from a Game Blueprint. The Blueprint's own
// Messenger is used if set, otherwise the built-in default phrase table.
func New(defs *store.Defs, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	msgr := defs.Messenger
	if msgr == nil {
		msgr = messenger.New()
	}
	v := vocab.Build(defs, cfg.AuthorVerbs)

	return &Engine{
		Defs:      defs,
		World:     store.New(defs),
		RNG:       rng.New(defs.RNGSeed),
		Vocab:     v,
		Parser:    parser.New(v),
		Registry:  actions.NewRegistry(),
		Hooks:     hooks.New(cfg.Logger),
		Messenger: msgr,
		cfg:       cfg,
		log:       cfg.Logger,
	}
}

// Execute runs one full turn (spec.md §4.7):
//  1. pre-turn fuse/daemon inspection (implicit — nothing fires before
//     the action commits; see Tick at step 5),
//  2. parse,
//  3. before-hooks / action,
//  4. atomic commit, then reactive handlers and after-hooks (each
//     committed separately, observing the post-commit state),
//  5. fuse/daemon firing,
//  6. the caller (RunLoop, or a direct caller of Execute) emits the text.
func (e *Engine) Execute(raw string) types.Result {
	var result types.Result

	cmd, perr := e.Parser.Parse(raw, e.World)
	e.World.LogCommand(raw)
	if perr != nil {
		if handled, sceneryResult := e.resolveScenery(raw, perr); handled {
			return sceneryResult
		}
		if e.cfg.ParseErrorsConsumeTurn {
			e.World.IncrementTurn()
		}
		result.Output = append(result.Output, perr.Error())
		return result
	}

	short, beforeChanges, beforeOutput := e.Hooks.RunBefore(e.World, *cmd)

	var message string
	var preCommit []types.StateChange
	var events []types.Event

	if short != nil {
		message = short.Message
		preCommit = short.Changes
	} else {
		actionMsg, actionChanges, actionEvents, resp := e.runAction(*cmd)
		if resp != nil {
			result.Output = append(result.Output, resp.Message)
			return result
		}
		preCommit = append(append([]types.StateChange{}, beforeChanges...), actionChanges...)
		events = actionEvents

		parts := append([]string{}, beforeOutput...)
		if actionMsg != "" {
			parts = append(parts, actionMsg)
		}
		message = strings.Join(parts, "\n\n")
	}

	if !e.commit(preCommit) {
		result.Output = []string{"Something went wrong."}
		return result
	}
	result.Changes = append(result.Changes, preCommit...)
	if message != "" {
		result.Output = append(result.Output, message)
	}
	e.World.IncrementTurn()

	if len(events) > 0 {
		result.Events = append(result.Events, events...)
		if reactiveEffs := e.Hooks.DispatchReactive(events, e.Defs.Handlers, e.World); len(reactiveEffs) > 0 {
			rc, _, rout := effects.Compile(e.World, reactiveEffs, effects.Context{})
			if e.commit(rc) {
				result.Changes = append(result.Changes, rc...)
			}
			result.Output = append(result.Output, rout...)
		}
	}

	afterChanges, afterOutput := e.Hooks.RunAfter(e.World, *cmd)
	if e.commit(afterChanges) {
		result.Changes = append(result.Changes, afterChanges...)
		result.Output = append(result.Output, afterOutput...)
	}

	fuseChanges, fuseOutput := timers.Tick(e.World)
	if e.commit(fuseChanges) {
		result.Changes = append(result.Changes, fuseChanges...)
		result.Output = append(result.Output, fuseOutput...)
	}

	return result
}

// resolveScenery implements spec.md §4.5's engine-level fallback for a
// noun the Parser couldn't resolve to an in-scope Item: the word may
// still be set dressing the author only described in prose, rather than
// a defined entity. A location- or global-scoped rule authored against
// the raw word (RuleDef.When.Object set to the word itself, not a real
// ItemID) takes priority; failing that, an Aho-Corasick scan of every
// currently-visible description decides whether the word is mentioned at
// all, and a generic response replaces the bare parse error.
func (e *Engine) resolveScenery(raw string, perr *types.ParseError) (bool, types.Result) {
	var result types.Result
	switch perr.Kind {
	case types.ErrNounUnknown, types.ErrItemNotInScope, types.ErrModifierMismatch:
	default:
		return false, result
	}
	if perr.Word == "" {
		return false, result
	}

	pseudo := types.Command{Verb: perr.Verb, DirectObject: types.ItemID(perr.Word), RawInput: raw}
	if effs, matched := rules.Evaluate(e.World, pseudo); matched {
		changes, events, out := effects.Compile(e.World, effs, effectsContext(pseudo))
		if !e.commit(changes) {
			result.Output = []string{"Something went wrong."}
			return true, result
		}
		result.Changes = changes
		result.Events = events
		result.Output = out
		e.World.IncrementTurn()
		return true, result
	}

	if actions.SceneryMatch(e.World, perr.Word, perr.Mods) {
		result.Output = []string{actions.SceneryMessage(perr.Verb, perr.Word)}
		e.World.IncrementTurn()
		return true, result
	}

	return false, result
}

// runAction decides whether a matched author rule, a built-in Action
// Handler, or (when the verb has neither) the rules fallback text
// produces this turn's changes and message.
func (e *Engine) runAction(cmd types.Command) (message string, changes []types.StateChange, events []types.Event, resp *types.ActionResponse) {
	effs, matched := rules.Evaluate(e.World, cmd)
	if matched {
		c, evts, out := effects.Compile(e.World, effs, effectsContext(cmd))
		return strings.Join(out, "\n\n"), c, evts, nil
	}

	if _, ok := e.Registry.Lookup(cmd.Verb); ok {
		actx := &actions.Context{
			Cmd:       cmd,
			World:     e.World,
			Scope:     scope.New(e.World),
			Messenger: e.Messenger,
			Vocab:     e.Vocab,
			RNG:       e.RNG,
		}
		ar, r := actions.Dispatch(e.Registry, actx)
		if r != nil {
			return "", nil, nil, r
		}
		return ar.Message, ar.Changes, nil, nil
	}

	// No rule, no registered handler: the author-declared fallback text
	// rules.Evaluate already computed for this verb/location.
	c, evts, out := effects.Compile(e.World, effs, effectsContext(cmd))
	return strings.Join(out, "\n\n"), c, evts, nil
}

func effectsContext(cmd types.Command) effects.Context {
	return effects.Context{Verb: string(cmd.Verb), ObjectID: cmd.DirectObject, TargetID: cmd.IndirectObject}
}

// commit applies changes, logging and reporting rejection through the
// EngineError policy of spec.md §7: a commit failure is a programming
// bug in a handler or hook, not a player-facing error. The world is
// never left partially mutated — Apply itself guarantees that.
func (e *Engine) commit(changes []types.StateChange) bool {
	if len(changes) == 0 {
		return true
	}
	before := len(e.World.ChangeHistory())
	if err := e.World.Apply(changes); err != nil {
		e.log.Error("turn commit rejected", zap.Error(err))
		return false
	}
	e.recordAudit(changes, before)
	return true
}

// recordAudit appends the just-committed batch to the audit log, if
// configured, tagging each entry with the logical timestamp the World
// Store itself assigned (so the audit log and the in-memory change
// history agree on ordering).
func (e *Engine) recordAudit(changes []types.StateChange, before int) {
	if e.cfg.Audit == nil {
		return
	}
	hist := e.World.ChangeHistory()
	turn := e.World.TurnCount()
	for i, c := range changes {
		idx := before + i
		ts := int64(idx)
		if idx < len(hist) {
			ts = hist[idx].Timestamp
		}
		if err := e.cfg.Audit.Append(e.cfg.RunID, turn, ts, c); err != nil {
			e.log.Error("audit log append failed", zap.Error(err))
		}
	}
}

// RunLoop drives Execute from an IOHandler until it reports end of
// input (spec.md §4.7, §5): the only two suspension points are the
// read and the write; the host may cancel the read, which the loop
// treats as end-of-input and a clean stop.
func (e *Engine) RunLoop(io types.IOHandler) {
	for {
		line, ok := io.ReadLine()
		if !ok {
			io.Flush()
			return
		}
		result := e.Execute(line)
		for _, out := range result.Output {
			io.Write(out)
		}
		io.Flush()
	}
}
