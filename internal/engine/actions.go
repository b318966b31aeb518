package engine

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

// Command ids with engine behaviour beyond printing a message.
const (
	cmdGet          = 52
	cmdDrop         = 53
	cmdGoto         = 54
	cmdDestroy      = 55
	cmdSetDark      = 56
	cmdClearDark    = 57
	cmdSetFlag      = 58
	cmdDestroy2     = 59
	cmdClearFlag    = 60
	cmdDie          = 61
	cmdPutItem      = 62
	cmdGameOver     = 63
	cmdLook         = 64
	cmdScore        = 65
	cmdInventory    = 66
	cmdSetFlag0     = 67
	cmdClearFlag0   = 68
	cmdRefillLight  = 69
	cmdClearScreen  = 70
	cmdSaveGame     = 71
	cmdSwapItems    = 72
	cmdContinue     = 73
	cmdSuperGet     = 74
	cmdPutWith      = 75
	cmdLook2        = 76
	cmdDecCounter   = 77
	cmdPrintCounter = 78
	cmdSetCounter   = 79
	cmdSwapRoom     = 80
	cmdSwapCounter  = 81
	cmdAddCounter   = 82
	cmdSubCounter   = 83
	cmdPrintNoun    = 84
	cmdPrintNounNL  = 85
	cmdNewline      = 86
	cmdSwapSaved    = 87
	cmdDelay        = 88
	cmdDrawPicture  = 89
	cmdDrawHulk     = 90

	lastLowMessage   = 51
	firstHighMessage = 102
	highMessageShift = 50
)

// condition evaluates condition code against parameter p. It reports
// ok=false, without touching the world, when the parameter does not name
// what the code needs.
func (e *Engine) condition(code, p int) (pass, ok bool) {
	w := e.w
	st := &w.State
	loc := func() (int, bool) {
		if !w.HasItem(p) {
			return 0, false
		}
		return w.Items[p].Location, true
	}

	switch code {
	case 1, 2, 3, 5, 6, 12, 13, 14, 17, 18:
		l, ok := loc()
		if !ok {
			return false, false
		}
		here := st.CurrentLoc
		switch code {
		case 1:
			return l == models.Carried, true
		case 2:
			return l == here, true
		case 3:
			return l == models.Carried || l == here, true
		case 5:
			return l != here, true
		case 6:
			return l != models.Carried, true
		case 12:
			return l != models.Carried && l != here, true
		case 13:
			return l != models.Destroyed, true
		case 14:
			return l == models.Destroyed, true
		case 17:
			return l == w.Items[p].InitialLoc, true
		default:
			return l != w.Items[p].InitialLoc, true
		}
	case 4:
		return st.CurrentLoc == p, true
	case 7:
		return st.CurrentLoc != p, true
	case 8:
		return st.Flag(p), true
	case 9:
		return !st.Flag(p), true
	case 10:
		return w.CountCarried() != 0, true
	case 11:
		return w.CountCarried() == 0, true
	case 15:
		return st.CurrentCounter <= p, true
	case 16:
		return st.CurrentCounter > p, true
	case 19:
		return st.CurrentCounter == p, true
	}
	return false, false
}

// params is the queue condition code 0 fills for the commands of a row.
type params struct {
	v   []int
	row int
	cmd int
	e   *Engine
	bad bool
}

func (q *params) next() int {
	if len(q.v) == 0 {
		if !q.bad {
			q.e.diagnose(q.row, q.cmd, "command %d is missing a parameter", q.cmd)
		}
		q.bad = true
		return 0
	}
	p := q.v[0]
	q.v = q.v[1:]
	return p
}

// PerformLine evaluates action row ct. The conditions are tested in order
// and the first failing one ends the row with nothing changed. Otherwise the
// commands run in order.
func (e *Engine) PerformLine(ct int) LineResult {
	if ct < 0 || ct >= len(e.w.Actions) {
		return LineFailure
	}
	a := e.w.Actions[ct]
	q := &params{row: ct, e: e}

	for _, c := range a.Condition {
		code, p := models.UnpackCondition(c)
		if code == 0 {
			q.v = append(q.v, p)
			continue
		}
		pass, ok := e.condition(code, p)
		if !ok {
			e.diagnose(ct, code, "condition %d has bad parameter %d", code, p)
			return LineFailure
		}
		if !pass {
			return LineFailure
		}
	}

	log.Debugf("engine: performing row %d", ct)
	continuation, dead := false, false
	for _, cmd := range a.Commands() {
		q.cmd = cmd
		res, ok := e.command(ct, cmd, q)
		if !ok || q.bad {
			return LineFailure
		}
		switch res {
		case LineContinue:
			continuation = true
		case LineGameOver:
			dead = true
		case lineStop:
			return LineSuccess
		}
	}
	switch {
	case dead:
		return LineGameOver
	case continuation:
		return LineContinue
	}
	return LineSuccess
}

// lineStop ends a row early without failing it.
const lineStop LineResult = -1

// command runs one command. It reports ok=false when the row has to be
// abandoned.
func (e *Engine) command(row, cmd int, q *params) (LineResult, bool) {
	w := e.w
	st := &w.State

	if cmd >= 1 && cmd <= lastLowMessage {
		e.printMessage(cmd)
		return LineSuccess, true
	}
	if cmd >= firstHighMessage {
		e.printMessage(cmd - highMessageShift)
		return LineSuccess, true
	}

	item := func() (*models.Item, bool) {
		p := q.next()
		if q.bad {
			return nil, false
		}
		if !w.HasItem(p) {
			e.diagnose(row, cmd, "command %d has bad item %d", cmd, p)
			return nil, false
		}
		return &w.Items[p], true
	}
	room := func(allowCarried bool) (int, bool) {
		p := q.next()
		if q.bad {
			return 0, false
		}
		if !w.HasRoom(p) && !(allowCarried && p == models.Carried) {
			e.diagnose(row, cmd, "command %d has bad room %d", cmd, p)
			return 0, false
		}
		return p, true
	}
	num := func() (int, bool) {
		p := q.next()
		return p, !q.bad
	}
	flag := func() (int, bool) {
		p := q.next()
		if q.bad {
			return 0, false
		}
		if p >= models.MaxFlags {
			e.diagnose(row, cmd, "command %d has bad flag %d", cmd, p)
			return 0, false
		}
		return p, true
	}

	switch cmd {
	case 0, cmdLook:
	case cmdGet:
		if w.CountCarried() >= w.Header.MaxCarry {
			e.sys(sysmsg.YoureCarryingTooMuch)
			return lineStop, true
		}
		it, ok := item()
		if !ok {
			return 0, false
		}
		it.Location = models.Carried
	case cmdDrop:
		it, ok := item()
		if !ok {
			return 0, false
		}
		it.Location = st.CurrentLoc
	case cmdGoto:
		r, ok := room(false)
		if !ok {
			return 0, false
		}
		st.CurrentLoc = r
		e.refresh()
	case cmdDestroy, cmdDestroy2:
		it, ok := item()
		if !ok {
			return 0, false
		}
		it.Location = models.Destroyed
	case cmdSetDark:
		st.SetFlag(models.DarkBit, true)
	case cmdClearDark:
		st.SetFlag(models.DarkBit, false)
	case cmdSetFlag, cmdClearFlag:
		f, ok := flag()
		if !ok {
			return 0, false
		}
		st.SetFlag(f, cmd == cmdSetFlag)
	case cmdDie:
		e.sys(sysmsg.ImDead)
		st.SetFlag(models.DarkBit, false)
		st.CurrentLoc = w.Header.NumRooms
	case cmdPutItem:
		it, ok := item()
		if !ok {
			return 0, false
		}
		r, ok := room(true)
		if !ok {
			return 0, false
		}
		wasHere := it.Location == st.CurrentLoc
		it.Location = r
		if wasHere {
			e.refresh()
		}
	case cmdGameOver:
		e.gameOver()
		return LineGameOver, true
	case cmdScore:
		e.stopTime = 2
		if e.Score() {
			return LineGameOver, true
		}
	case cmdInventory:
		e.Inventory()
		e.stopTime = 2
	case cmdSetFlag0:
		st.SetFlag(0, true)
	case cmdClearFlag0:
		st.SetFlag(0, false)
	case cmdRefillLight:
		if !w.HasItem(models.LightSource) {
			e.diagnose(row, cmd, "no light source item")
			return 0, false
		}
		st.LightTime = w.LightRefill
		w.Items[models.LightSource].Location = models.Carried
		st.SetFlag(models.LightOutBit, false)
	case cmdClearScreen:
		e.effects.Effect(EffectClearScreen)
	case cmdSaveGame:
		e.effects.Effect(EffectSave)
		e.stopTime = 2
	case cmdSwapItems:
		a, ok := item()
		if !ok {
			return 0, false
		}
		b, ok := item()
		if !ok {
			return 0, false
		}
		a.Location, b.Location = b.Location, a.Location
	case cmdContinue:
		return LineContinue, true
	case cmdSuperGet:
		it, ok := item()
		if !ok {
			return 0, false
		}
		it.Location = models.Carried
	case cmdPutWith:
		a, ok := item()
		if !ok {
			return 0, false
		}
		b, ok := item()
		if !ok {
			return 0, false
		}
		a.Location = b.Location
	case cmdLook2:
		e.refresh()
	case cmdDecCounter:
		if st.CurrentCounter >= 1 {
			st.CurrentCounter--
		}
	case cmdPrintCounter:
		e.emit(fmt.Sprintf("%d ", st.CurrentCounter))
	case cmdSetCounter:
		n, ok := num()
		if !ok {
			return 0, false
		}
		st.CurrentCounter = n
	case cmdSwapRoom:
		st.CurrentLoc, st.SavedRoom = st.SavedRoom, st.CurrentLoc
	case cmdSwapCounter:
		i, ok := num()
		if !ok {
			return 0, false
		}
		if i >= models.NumCounters {
			log.Warnf("engine: row %d: counter %d out of range, using %d", row, i, models.NumCounters-1)
			i = models.NumCounters - 1
		}
		st.CurrentCounter, st.Counters[i] = st.Counters[i], st.CurrentCounter
	case cmdAddCounter:
		n, ok := num()
		if !ok {
			return 0, false
		}
		st.CurrentCounter += n
	case cmdSubCounter:
		n, ok := num()
		if !ok {
			return 0, false
		}
		st.CurrentCounter -= n
		if st.CurrentCounter < -1 {
			st.CurrentCounter = -1
		}
	case cmdPrintNoun:
		e.emit(e.cur.NounWord)
	case cmdPrintNounNL:
		e.emit(e.cur.NounWord)
		e.emit("\n")
	case cmdNewline:
		e.emit("\n")
	case cmdSwapSaved:
		i, ok := num()
		if !ok {
			return 0, false
		}
		if i >= models.NumCounters {
			e.diagnose(row, cmd, "saved room slot %d", i)
			return 0, false
		}
		st.CurrentLoc, st.RoomSaved[i] = st.RoomSaved[i], st.CurrentLoc
		e.refresh()
	case cmdDelay:
		e.effects.Effect(EffectDelay)
	case cmdDrawPicture, cmdDrawHulk:
		if len(q.v) > 0 {
			q.v = q.v[1:]
		}
	default:
		e.diagnose(row, cmd, "unknown command %d", cmd)
		return 0, false
	}
	return LineSuccess, true
}

// printMessage prints message n followed by the message delimiter, unless
// the text already ends a line.
func (e *Engine) printMessage(n int) {
	m := e.w.Message(n)
	if m == "" {
		return
	}
	e.emit(m)
	if last := m[len(m)-1]; last != '\n' && last != '\r' {
		e.sys(sysmsg.MessageDelimiter)
	}
}

// Evaluate runs the action table for verb and noun, then the built-in verbs
// when no row took the command. Verb 0 is the implicit pass. Noun 0 means no
// noun was given.
func (e *Engine) Evaluate(vb, no int) Outcome {
	w := e.w

	if vb == VerbGo && no < 1 {
		e.sys(sysmsg.Direction)
		return Success
	}
	if vb == VerbGo && no <= 6 {
		e.move(no)
		return Success
	}

	dark := w.IsDark()
	if e.cur.All && vb == e.cur.Verb && !(dark && vb == VerbTake) && w.HasItem(e.cur.Item) {
		e.emit(w.Items[e.cur.Item].Text)
		e.emit("....")
	}

	flag := RanAllLinesNoMatch
	doagain, foundMatch := false, false
	for ct := 0; ct < len(w.Actions); ct++ {
		vocab := w.Actions[ct].Vocab
		if vb != 0 && doagain && vocab != 0 {
			break
		}
		if vb != 0 && !doagain && flag == Success {
			break
		}
		verb, noun := models.UnpackVocab(vocab)
		if verb == vb || (doagain && vocab == 0) {
			fire := (verb == 0 && e.randomPercent(noun)) || doagain ||
				(verb != 0 && (noun == no || noun == 0))
			if fire {
				if verb == vb && vb != 0 && noun == no && no > 0 {
					foundMatch = true
				}
				if flag == RanAllLinesNoMatch {
					flag = RanAllLines
				}
				switch e.PerformLine(ct) {
				case LineFailure:
				case LineGameOver:
					return GameOver
				case LineContinue:
					flag = Success
					doagain = true
				default:
					flag = Success
					if vb != 0 && !doagain {
						return Success
					}
				}
			}
		}
		if ct+1 < len(w.Actions) && w.Actions[ct+1].Vocab != 0 {
			doagain = false
		}
	}

	if foundMatch || flag == Success {
		return flag
	}
	if vb == VerbTake || vb == VerbDrop {
		return e.takeOrDrop(vb, no)
	}
	return flag
}
