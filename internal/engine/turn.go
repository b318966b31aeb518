package engine

import (
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

// ExtraCommand is an interpreter command that is only tried when the game's
// own action table does not take the input.
type ExtraCommand int

const (
	ExtraNone ExtraCommand = iota
	ExtraSave
	ExtraRestore
	ExtraRestart
	ExtraUndo
	ExtraScriptOn
	ExtraScriptOff
	ExtraRamSave
	ExtraRamLoad
)

// Command is one resolved player command.
type Command struct {
	Verb int
	Noun int

	// Item is the item an ALL command is expanded for.
	Item int
	// All marks the commands of an ALL expansion, LastAll the final one.
	All     bool
	LastAll bool

	// Extra is the interpreter command the input also spells, if any.
	Extra ExtraCommand
	// NounWord is the noun as typed.
	NounWord string
}

// midAll reports whether more commands of an ALL expansion follow.
func (c Command) midAll() bool {
	return c.All && !c.LastAll
}

// Prologue runs the start of the first turn: implicit actions, the room view
// and the first undo snapshot.
func (e *Engine) Prologue() {
	e.beginTurn(Command{})
}

// beginTurn runs the steps that come before reading the next command. prev is
// the command just performed.
func (e *Engine) beginTurn(prev Command) {
	if e.over {
		return
	}
	if e.stopTime == 0 {
		e.cur = Command{}
		e.Evaluate(0, 0)
		if e.over {
			return
		}
	}
	if !prev.midAll() {
		e.refresh()
		if e.stopTime == 0 {
			e.saveUndo()
		}
	}
}

// Perform evaluates cmd and reports the standard responses to commands the
// game could not use. It does not advance the turn.
func (e *Engine) Perform(cmd Command) Outcome {
	e.cur = cmd
	out := e.Evaluate(cmd.Verb, cmd.Noun)
	switch out {
	case RanAllLinesNoMatch:
		if cmd.Extra != ExtraNone && e.extra(cmd.Extra) {
			e.stopTime = 1
			return Success
		}
		e.sys(sysmsg.IDontUnderstand)
		e.skipRest = true
	case RanAllLines:
		e.sys(sysmsg.YouCantDoThatYet)
		e.skipRest = true
	case Success:
		e.turns++
	}
	if e.over {
		return GameOver
	}
	return out
}

// Turn performs cmd, burns one turn of light and runs the start of the next
// turn.
func (e *Engine) Turn(cmd Command) Outcome {
	if e.over {
		return GameOver
	}
	out := e.Perform(cmd)
	if out == GameOver {
		return out
	}
	e.burnLight()
	if e.stopTime > 0 {
		e.stopTime--
	}
	e.beginTurn(cmd)
	if e.over {
		return GameOver
	}
	return out
}

// Play runs the commands of one input line. It stops early when a command
// fails, a dark room ends an ALL expansion or the game ends.
func (e *Engine) Play(cmds []Command) Outcome {
	out := Success
	e.skipRest = false
	for _, c := range cmds {
		out = e.Turn(c)
		if out == GameOver {
			break
		}
		if e.skipRest {
			e.skipRest = false
			if c.midAll() {
				// The room view was held back for the rest of the expansion.
				e.refresh()
			}
			break
		}
	}
	return out
}

// burnLight counts down the light source.
func (e *Engine) burnLight() {
	w := e.w
	st := &w.State
	if !w.HasItem(models.LightSource) {
		return
	}
	light := &w.Items[models.LightSource]
	if light.Location == models.Destroyed || st.LightTime == -1 || e.stopTime != 0 {
		return
	}
	st.LightTime--
	if st.LightTime < 1 {
		st.SetFlag(models.LightOutBit, true)
		if w.LightPresent() {
			e.sys(sysmsg.LightHasRunOut)
		}
		if e.opts.PrehistoricLamp || w.Mysterious || e.ti() {
			light.Location = models.Destroyed
		}
		return
	}
	if st.LightTime < 25 && w.LightPresent() {
		if e.opts.ScottLight || w.Mysterious {
			e.emit(fmt.Sprintf("%s %d %s\n", e.msgs.Get(sysmsg.LightRunsOutIn), st.LightTime, e.msgs.Get(sysmsg.TurnsLeft)))
		} else if st.LightTime%5 == 0 {
			e.sys(sysmsg.LightGrowingDim)
		}
	}
}

// extra runs an interpreter command. It reports whether the command applied.
func (e *Engine) extra(x ExtraCommand) bool {
	log.Debugf("engine: extra command %d", x)
	switch x {
	case ExtraSave:
		e.effects.Effect(EffectSave)
	case ExtraRestore:
		e.effects.Effect(EffectRestore)
	case ExtraRestart:
		e.effects.Effect(EffectRestart)
		e.Restart()
	case ExtraUndo:
		e.restoreUndo()
	case ExtraScriptOn:
		e.effects.Effect(EffectScriptOn)
	case ExtraScriptOff:
		e.effects.Effect(EffectScriptOff)
	case ExtraRamSave:
		s := e.w.Snapshot()
		e.ram = &s
		e.sys(sysmsg.StateSaved)
	case ExtraRamLoad:
		if e.ram == nil {
			e.sys(sysmsg.NoSavedState)
			break
		}
		if err := e.w.Restore(*e.ram); err != nil {
			log.Warnf("engine: RAM state: %v", err)
			e.sys(sysmsg.NoSavedState)
			break
		}
		e.sys(sysmsg.StateRestored)
		e.refresh()
	default:
		return false
	}
	return true
}

// saveUndo records the current state unless it is the latest one recorded.
func (e *Engine) saveUndo() {
	s := e.w.Snapshot()
	if n := len(e.undo); n > 0 && sameSnapshot(e.undo[n-1], s) {
		return
	}
	e.undo = append(e.undo, s)
	if len(e.undo) > maxUndo {
		e.undo = e.undo[len(e.undo)-maxUndo:]
	}
}

func sameSnapshot(a, b models.Snapshot) bool {
	return a.State == b.State && slices.Equal(a.ItemLocations, b.ItemLocations)
}

// restoreUndo goes back to the snapshot before the current one. The restored
// snapshot leaves the history and is taken again when the next turn starts.
func (e *Engine) restoreUndo() {
	if e.turns == 0 {
		e.sys(sysmsg.CantUndoOnFirstTurn)
		return
	}
	if len(e.undo) < 2 {
		e.sys(sysmsg.CantUndo)
		return
	}
	prev := e.undo[len(e.undo)-2]
	if err := e.w.Restore(prev); err != nil {
		log.Warnf("engine: undo: %v", err)
		e.sys(sysmsg.CantUndo)
		return
	}
	e.undo = e.undo[:len(e.undo)-2]
	e.sys(sysmsg.MoveUndone)
}

// Restart returns to the state the game started in. Prologue starts play
// again.
func (e *Engine) Restart() {
	if err := e.w.Restore(e.initial); err != nil {
		log.Errorf("engine: restart: %v", err)
		return
	}
	e.undo = nil
	e.stopTime = 0
	e.over = false
	e.turns = 0
	e.skipRest = true
}

// Resume applies a session produced by models.Serialize. A session that does
// not fit the game leaves it untouched.
func (e *Engine) Resume(data []byte) error {
	if err := models.Deserialize(e.w, data); err != nil {
		return err
	}
	e.over = false
	e.stopTime = 1
	e.turns++
	e.refresh()
	return nil
}
