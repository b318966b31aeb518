// Package engine runs a loaded game. It evaluates the canonical action table
// against player commands, implements the built-in verbs the table leaves to
// the interpreter and drives the turn sequence: implicit actions, room view,
// undo snapshot, player command, light countdown.
package engine

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

// Verbs with built-in behaviour. Every game uses these dictionary slots.
const (
	VerbGo   = 1
	VerbTake = 10
	VerbDrop = 18
)

// Outcome is the result of evaluating one command against the action table.
type Outcome int

const (
	Success            Outcome = iota
	RanAllLinesNoMatch         // no row answered to the verb and noun
	RanAllLines                // rows answered but none of them fired
	GameOver
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case RanAllLinesNoMatch:
		return "no match"
	case RanAllLines:
		return "ran all lines"
	case GameOver:
		return "game over"
	}
	return "unknown"
}

// LineResult is the result of performing one action row.
type LineResult int

const (
	LineFailure LineResult = iota
	LineSuccess
	LineContinue
	LineGameOver
)

// Effect is a request the engine cannot carry out itself.
type Effect int

const (
	EffectClearScreen Effect = iota
	EffectSave
	EffectRestore
	EffectRestart
	EffectDelay
	EffectGameOver
	EffectScriptOn
	EffectScriptOff
)

func (e Effect) String() string {
	return [...]string{"clear screen", "save", "restore", "restart", "delay", "game over", "script on", "script off"}[e]
}

// OutputSink receives game text.
type OutputSink interface {
	Emit(text string)
}

// LookSink is told whenever the room view should be redrawn.
type LookSink interface {
	Refresh(w *models.World)
}

// EffectSink carries out screen, file and timing requests.
type EffectSink interface {
	Effect(e Effect)
}

// Randomizer is the random source of implicit actions.
type Randomizer interface {
	Intn(n int) int
}

// Options configure an Engine. Nil sinks discard what they would receive.
type Options struct {
	Output  OutputSink
	Look    LookSink
	Effects EffectSink
	Rand    Randomizer

	// YouAre selects the "You are ..." system messages.
	YouAre bool
	// ScottLight counts down the last turns of light explicitly.
	ScottLight bool
	// PrehistoricLamp destroys an exhausted light source.
	PrehistoricLamp bool
}

// Diagnostic describes an action row the engine had to abandon.
type Diagnostic struct {
	Row  int
	Code int
	Err  error
}

type discard struct{}

func (discard) Emit(string)           {}
func (discard) Refresh(*models.World) {}
func (discard) Effect(Effect)         {}

// maxUndo bounds the undo history.
const maxUndo = 100

// Engine plays one game session. It is not safe for concurrent use.
type Engine struct {
	w       *models.World
	msgs    *sysmsg.Table
	out     OutputSink
	look    LookSink
	effects EffectSink
	rnd     Randomizer
	opts    Options

	cur      Command
	stopTime int
	skipRest bool
	over     bool
	turns    int

	initial models.Snapshot
	undo    []models.Snapshot
	ram     *models.Snapshot

	diags []Diagnostic
}

// New returns an engine for w. The world's current state becomes the state
// RESTART returns to.
func New(w *models.World, opts Options) *Engine {
	e := &Engine{
		w:       w,
		msgs:    sysmsg.English(opts.YouAre),
		out:     opts.Output,
		look:    opts.Look,
		effects: opts.Effects,
		rnd:     opts.Rand,
		opts:    opts,
		initial: w.Snapshot(),
	}
	e.msgs.Override(w.Directions)
	if e.out == nil {
		e.out = discard{}
	}
	if e.look == nil {
		e.look = discard{}
	}
	if e.effects == nil {
		e.effects = discard{}
	}
	if e.rnd == nil {
		e.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// World returns the world the engine plays.
func (e *Engine) World() *models.World {
	return e.w
}

// Messages returns the system message table in use.
func (e *Engine) Messages() *sysmsg.Table {
	return e.msgs
}

// Over reports whether the game has ended.
func (e *Engine) Over() bool {
	return e.over
}

// Diagnostics returns the rows abandoned so far.
func (e *Engine) Diagnostics() []Diagnostic {
	return e.diags
}

func (e *Engine) emit(s string) {
	if s != "" {
		e.out.Emit(s)
	}
}

func (e *Engine) sys(id sysmsg.ID) {
	e.emit(e.msgs.Get(id))
}

func (e *Engine) refresh() {
	e.look.Refresh(e.w)
}

func (e *Engine) ti() bool {
	return e.w.Origin == models.OriginTI994A
}

// diagnose records a malformed row. The caller abandons the row.
func (e *Engine) diagnose(row, code int, format string, args ...any) {
	err := errors.Wrapf(gameerr.ErrMalformedAction, format, args...)
	log.Warnf("engine: row %d, code %d: %v", row, code, err)
	e.diags = append(e.diags, Diagnostic{Row: row, Code: code, Err: err})
}

// randomPercent reports success with probability n percent.
func (e *Engine) randomPercent(n int) bool {
	return e.rnd.Intn(100) < n
}
