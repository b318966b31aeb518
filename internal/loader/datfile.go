package loader

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tatianab/scottfree/internal/models"
)

// DatabaseDialect is the dialect name of plain-text databases.
const DatabaseDialect = "database"

// maxDatabaseCount bounds every count in a database header.
const maxDatabaseCount = 1000

// datReader tokenises a plain-text ScottFree database: whitespace separated
// integers and double-quoted strings.
type datReader struct {
	data []byte
	pos  int
}

func (r *datReader) skipSpace() {
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			r.pos++
		default:
			return
		}
	}
}

func (r *datReader) number(what string) (int, error) {
	r.skipSpace()
	start := r.pos
	if r.pos < len(r.data) && (r.data[r.pos] == '-' || r.data[r.pos] == '+') {
		r.pos++
	}
	for r.pos < len(r.data) && r.data[r.pos] >= '0' && r.data[r.pos] <= '9' {
		r.pos++
	}
	v, err := strconv.Atoi(string(r.data[start:r.pos]))
	if err != nil {
		return 0, errors.Errorf("%s: expected a number at byte %d", what, start)
	}
	return v, nil
}

// quoted reads a quoted string. A doubled quote stands for one quote, a
// backquote is read as a quote, carriage returns are dropped and any other
// unprintable byte becomes '?'.
func (r *datReader) quoted(what string) (string, error) {
	r.skipSpace()
	if r.pos >= len(r.data) || r.data[r.pos] != '"' {
		return "", errors.Errorf("%s: expected a quoted string at byte %d", what, r.pos)
	}
	r.pos++
	s := strings.Builder{}
	for {
		if r.pos >= len(r.data) {
			return "", errors.Errorf("%s: end of file in string", what)
		}
		c := r.data[r.pos]
		r.pos++
		if c == '"' {
			if r.pos < len(r.data) && r.data[r.pos] == '"' {
				r.pos++
			} else {
				return s.String(), nil
			}
		}
		switch {
		case c == '`':
			s.WriteByte('"')
		case c == '\n':
			s.WriteByte('\n')
		case c == '\r':
			// dropped
		case c >= 0x20 && c <= 0x7e:
			s.WriteByte(c)
		default:
			s.WriteByte('?')
		}
	}
}

// ParseDatabase decodes a plain-text ScottFree database. It returns a nil
// world on any error. Databases are not held to the binary header bounds.
func ParseDatabase(data []byte) (*models.World, error) {
	r := &datReader{data: data}

	var v [12]int
	for i := range v {
		n, err := r.number("header")
		if err != nil {
			return nil, err
		}
		v[i] = n
	}
	h := models.Header{
		NumItems:     v[1],
		NumActions:   v[2],
		NumWords:     v[3],
		NumRooms:     v[4],
		MaxCarry:     v[5],
		PlayerRoom:   v[6],
		Treasures:    v[7],
		WordLength:   v[8],
		LightTime:    v[9],
		NumMessages:  v[10],
		TreasureRoom: v[11],
	}
	if h.NumItems < 0 || h.NumActions < 0 || h.NumWords < 0 || h.NumRooms < 0 || h.NumMessages < 0 {
		return nil, errors.Errorf("header: negative count in %v", v)
	}
	if h.NumItems > maxDatabaseCount || h.NumActions > maxDatabaseCount || h.NumWords > maxDatabaseCount ||
		h.NumRooms > maxDatabaseCount || h.NumMessages > maxDatabaseCount {
		return nil, errors.Errorf("header: count too large in %v", v)
	}

	w := &models.World{
		Title:       "ScottFree database",
		Dialect:     DatabaseDialect,
		Origin:      models.OriginDatabase,
		Header:      h,
		LightRefill: h.LightTime,
		Actions:     make([]models.Action, h.NumActions+1),
		Verbs:       make([]string, h.NumWords+1),
		Nouns:       make([]string, h.NumWords+1),
		Rooms:       make([]models.Room, h.NumRooms+1),
		Messages:    make([]string, h.NumMessages+1),
		Items:       make([]models.Item, h.NumItems+1),
	}

	for i := range w.Actions {
		var f [8]int
		for j := range f {
			n, err := r.number("action")
			if err != nil {
				return nil, errors.Wrapf(err, "action %d", i)
			}
			f[j] = n
		}
		a := &w.Actions[i]
		a.Vocab = f[0]
		copy(a.Condition[:], f[1:6])
		copy(a.Command[:], f[6:8])
	}

	for i := range w.Verbs {
		var err error
		if w.Verbs[i], err = r.quoted("verb"); err != nil {
			return nil, errors.Wrapf(err, "word %d", i)
		}
		if w.Nouns[i], err = r.quoted("noun"); err != nil {
			return nil, errors.Wrapf(err, "word %d", i)
		}
	}

	for i := range w.Rooms {
		rm := &w.Rooms[i]
		for j := range rm.Exits {
			n, err := r.number("room exit")
			if err != nil {
				return nil, errors.Wrapf(err, "room %d", i)
			}
			rm.Exits[j] = n
		}
		text, err := r.quoted("room")
		if err != nil {
			return nil, errors.Wrapf(err, "room %d", i)
		}
		rm.Text = text
	}

	for i := range w.Messages {
		var err error
		if w.Messages[i], err = r.quoted("message"); err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
	}

	for i := range w.Items {
		text, err := r.quoted("item")
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		loc, err := r.number("item location")
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		it := &w.Items[i]
		it.Text, it.AutoGet = splitAutoGet(text)
		it.Location = loc & 0xff
		it.InitialLoc = it.Location
	}

	// Action comments are not kept.
	for i := range w.Actions {
		if _, err := r.quoted("comment"); err != nil {
			return nil, errors.Wrapf(err, "action comment %d", i)
		}
	}

	var err error
	if w.Version, err = r.number("version"); err != nil {
		return nil, err
	}
	if w.Adventure, err = r.number("adventure number"); err != nil {
		return nil, err
	}
	return w, nil
}
