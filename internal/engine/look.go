package engine

import (
	"fmt"
	"strings"

	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/sysmsg"
)

// RoomDescription renders the current room: its text, the obvious exits and
// the items lying there.
func (e *Engine) RoomDescription() string {
	w := e.w
	m := e.msgs
	if w.IsDark() {
		return m.Get(sysmsg.TooDarkToSee)
	}
	if !w.HasRoom(w.State.CurrentLoc) {
		return ""
	}
	r := w.Rooms[w.State.CurrentLoc]

	var b strings.Builder
	if text, ok := strings.CutPrefix(r.Text, "*"); ok {
		b.WriteString(text)
	} else {
		b.WriteString(m.Get(sysmsg.YouAre))
		b.WriteString(r.Text)
	}

	b.WriteString("\n")
	b.WriteString(m.Get(sysmsg.Exits))
	var exits []string
	for d, to := range r.Exits {
		if to != 0 {
			exits = append(exits, m.DirectionName(d+1))
		}
	}
	if len(exits) == 0 {
		b.WriteString(m.Get(sysmsg.None))
	} else {
		b.WriteString(strings.Join(exits, m.Get(sysmsg.ExitsDelimiter)))
	}
	b.WriteString(".\n")

	if items := e.itemsAt(w.State.CurrentLoc); len(items) > 0 {
		b.WriteString(m.Get(sysmsg.YouSee))
		b.WriteString(strings.Join(items, m.Get(sysmsg.ItemDelimiter)))
		if e.ti() {
			b.WriteString(".")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// itemsAt lists the texts of the visible items at loc.
func (e *Engine) itemsAt(loc int) []string {
	var out []string
	for _, it := range e.w.Items {
		if it.Location == loc && it.Text != "" {
			out = append(out, it.Text)
		}
	}
	return out
}

// Inventory prints what the player carries.
func (e *Engine) Inventory() {
	e.sys(sysmsg.IAmCarrying)
	items := e.itemsAt(models.Carried)
	if len(items) == 0 {
		e.sys(sysmsg.Nothing)
		return
	}
	e.emit(strings.Join(items, e.msgs.Get(sysmsg.ItemDelimiter)))
	if e.ti() {
		last := items[len(items)-1]
		if !strings.HasSuffix(last, ".") && !strings.HasSuffix(last, "!") {
			e.emit(".")
		}
	}
	e.emit("\n")
}

// Score prints how many treasures are stored. It reports whether the game
// has been solved, in which case the game is over.
func (e *Engine) Score() bool {
	w := e.w
	n := 0
	for _, it := range w.Items {
		if it.Location == w.Header.TreasureRoom && strings.HasPrefix(it.Text, "*") {
			n++
		}
	}
	rating := 0
	if w.Header.Treasures > 0 {
		rating = n * 100 / w.Header.Treasures
	}
	e.emit(fmt.Sprintf("%s %d %s%s %d.\n", e.msgs.Get(sysmsg.IveStored), n,
		e.msgs.Get(sysmsg.Treasures), e.msgs.Get(sysmsg.OnAScaleThatRates), rating))
	if w.Header.Treasures > 0 && n == w.Header.Treasures {
		e.sys(sysmsg.YouveSolvedIt)
		e.gameOver()
		return true
	}
	return false
}

func (e *Engine) gameOver() {
	e.over = true
	e.effects.Effect(EffectGameOver)
}
