package engine

import (
	"strings"

	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

// move walks in direction d, 1 to 6.
func (e *Engine) move(d int) {
	w := e.w
	st := &w.State
	dark := w.IsDark()
	if dark {
		e.sys(sysmsg.DangerousToMoveInDark)
	}
	next := 0
	if w.HasRoom(st.CurrentLoc) {
		next = w.Rooms[st.CurrentLoc].Exits[d-1]
	}
	if next != 0 {
		if e.ti() {
			e.sys(sysmsg.OK)
		}
		st.CurrentLoc = next
		return
	}
	if dark {
		st.SetFlag(models.DarkBit, false)
		st.CurrentLoc = w.Header.NumRooms
		e.sys(sysmsg.YouFellAndBrokeYourNeck)
		return
	}
	e.sys(sysmsg.YouCantGoThatWay)
}

// takeOrDrop is the fallback for TAKE and DROP when no row took them.
func (e *Engine) takeOrDrop(vb, no int) Outcome {
	w := e.w
	here := w.State.CurrentLoc
	item := -1

	if e.cur.All {
		if vb == VerbTake && w.IsDark() {
			e.sys(sysmsg.TooDarkToSee)
			e.skipRest = true
			return Success
		}
		want := models.Carried
		if vb == VerbTake {
			want = here
		}
		if !w.HasItem(e.cur.Item) || w.Items[e.cur.Item].Location != want {
			return Success
		}
		item = e.cur.Item
	}

	if item < 0 && no < 1 {
		e.sys(sysmsg.Huh)
		return Success
	}

	if vb == VerbTake {
		if w.CountCarried() >= w.Header.MaxCarry {
			e.sys(sysmsg.YoureCarryingTooMuch)
			return Success
		}
		if item < 0 {
			item = e.matchUpItem(no, here)
		}
		if item < 0 {
			switch {
			case e.matchUpItem(no, models.Carried) >= 0:
				e.sys(sysmsg.YouHaveIt)
			case e.matchUpItem(no, 0) >= 0:
				e.sys(sysmsg.YouDontSeeIt)
			default:
				e.sys(sysmsg.ThatsBeyondMyPower)
			}
			return Success
		}
		w.Items[item].Location = models.Carried
		e.takenOrDropped(sysmsg.Taken)
		return Success
	}

	if item < 0 {
		item = e.matchUpItem(no, models.Carried)
	}
	if item < 0 {
		if e.matchUpItem(no, 0) >= 0 {
			e.sys(sysmsg.YouHaventGotIt)
		} else {
			e.sys(sysmsg.ThatsBeyondMyPower)
		}
		return Success
	}
	w.Items[item].Location = here
	e.takenOrDropped(sysmsg.Dropped)
	return Success
}

func (e *Engine) takenOrDropped(id sysmsg.ID) {
	m := e.msgs.Get(id)
	e.emit(m)
	if strings.HasSuffix(m, "\n") || strings.HasSuffix(m, "\r") {
		return
	}
	e.emit("\n")
}

// mapSynonym returns the noun that noun n stands for. A noun starting with
// '*' is a synonym of the closest plain noun before it.
func (e *Engine) mapSynonym(n int) string {
	last := ""
	for i := 1; i < len(e.w.Nouns) && i <= n; i++ {
		word := e.w.Nouns[i]
		if strings.HasPrefix(word, "*") {
			word = word[1:]
		} else {
			last = word
		}
		if i == n {
			if last == "" {
				return word
			}
			return last
		}
	}
	return ""
}

// matchUpItem finds an item whose auto-get word matches noun n. With loc 0
// the item may be anywhere.
func (e *Engine) matchUpItem(n, loc int) int {
	word := e.mapSynonym(n)
	if word == "" {
		return -1
	}
	wl := e.w.Header.WordLength
	for i, it := range e.w.Items {
		if it.AutoGet == "" || (loc != 0 && it.Location != loc) {
			continue
		}
		if prefixFold(it.AutoGet, wl) == prefixFold(word, wl) {
			return i
		}
	}
	return -1
}

// prefixFold returns the first n bytes of s in upper case.
func prefixFold(s string, n int) string {
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	return strings.ToUpper(s)
}
