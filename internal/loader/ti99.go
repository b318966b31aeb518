package loader

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/binread"
	"github.com/tatianab/scottfree/internal/catalog"
	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
	"github.com/tatianab/scottfree/internal/ti99"
)

// tiHeader is the data header of a TI-99/4A image. The pointers are console
// addresses; tiImage.fix turns them into file offsets.
type tiHeader struct {
	numObjects, numVerbs, numNouns int
	redRoom, maxCarry, beginLoc    int
	numTreasures, cmdLength        int
	lightTurns                     int
	treasureLoc                    int

	objTable, origItems, objLink, objDescr int
	message, roomExit, roomDescr           int
	nounTable, verbTable                   int
	explicit, implicit                     int
}

type tiImage struct {
	c        *binread.Cursor
	data     []byte
	baseline int
	h        tiHeader
}

// fix converts a console address into a file offset.
func (t *tiImage) fix(addr int) int {
	return addr - catalog.TI994AAddressBase + t.baseline
}

// word reads the big-endian word at file offset pos.
func (t *tiImage) word(pos int) (int, error) {
	v, err := t.c.Uint16BE(pos)
	return int(v), err
}

func (t *tiImage) readHeader() error {
	if err := t.c.Seek(t.baseline + catalog.TI994AHeader); err != nil {
		return errors.Wrap(err, "TI-99/4A header")
	}
	raw, err := t.c.ReadBytes(12)
	if err != nil {
		return errors.Wrap(gameerr.ErrOffsetBeyondFile, "TI-99/4A header")
	}
	h := &t.h
	h.numObjects, h.numVerbs, h.numNouns = int(raw[0]), int(raw[1]), int(raw[2])
	h.redRoom, h.maxCarry, h.beginLoc = int(raw[3]), int(raw[4]), int(raw[5])
	h.numTreasures, h.cmdLength = int(raw[6]), int(raw[7])
	h.lightTurns = int(raw[8])<<8 | int(raw[9])
	h.treasureLoc = int(raw[10])

	ptrs := []*int{
		&h.objTable, &h.origItems, &h.objLink, &h.objDescr, &h.message, &h.roomExit,
		&h.roomDescr, &h.nounTable, &h.verbTable, &h.explicit, &h.implicit,
	}
	for _, p := range ptrs {
		v, err := t.c.ReadUint16BE()
		if err != nil {
			return errors.Wrap(gameerr.ErrOffsetBeyondFile, "TI-99/4A header pointers")
		}
		*p = int(v)
		if off := t.fix(*p); off < 0 || off > len(t.data) {
			return errors.Wrapf(gameerr.ErrOffsetBeyondFile, "TI-99/4A pointer %#04x", v)
		}
	}
	return nil
}

// stringAt decodes entry i of a string pointer table. The string lies
// between the addresses in entries i and i+1.
func (t *tiImage) stringAt(table, i int) (string, error) {
	base := t.fix(table)
	from, err := t.word(base + 2*i)
	if err != nil {
		return "", err
	}
	to, err := t.word(base + 2*i + 2)
	if err != nil {
		return "", err
	}
	return binread.TokenString(t.data, t.fix(from), t.fix(to))
}

// words decodes n dictionary words. A word spans the bytes between two
// consecutive pointers; equal pointers give the "." placeholder.
func (t *tiImage) words(table, n int) ([]string, error) {
	base := t.fix(table)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a, err := t.word(base + 2*i)
		if err != nil {
			return nil, err
		}
		b, err := t.word(base + 2*i + 2)
		if err != nil {
			return nil, err
		}
		from, to := t.fix(a), t.fix(b)
		if from == to {
			out = append(out, ".")
			continue
		}
		if from < 0 || to > len(t.data) || from > to {
			return nil, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "word %d at %#x..%#x", i, from, to)
		}
		w := t.data[from:to]
		for _, c := range w {
			if !binread.IsASCII(c) {
				return nil, errors.Wrapf(gameerr.ErrNonASCII, "word %d", i)
			}
		}
		out = append(out, string(w))
	}
	return out, nil
}

// bytesAt returns n bytes at file offset pos.
func (t *tiImage) bytesAt(pos, n int) ([]byte, error) {
	if err := t.c.Seek(pos); err != nil {
		return nil, err
	}
	return t.c.ReadBytes(n)
}

// loadTI994A decodes a TI-99/4A image whose baseline Detect found.
func loadTI994A(data []byte, baseline int) (*models.World, error) {
	t := &tiImage{c: binread.NewCursor(data), data: data, baseline: baseline}
	if err := t.readHeader(); err != nil {
		return nil, err
	}
	h := t.h

	// The message table holds one pointer per message plus the end pointer.
	first, err := t.word(t.fix(h.message))
	if err != nil {
		return nil, errors.Wrap(err, "message table")
	}
	pointers := (t.fix(first) - t.fix(h.message)) / 2
	if pointers < 2 {
		return nil, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "message table of %d pointers", pointers)
	}

	hdr := models.Header{
		NumItems:     h.numObjects,
		NumWords:     max(h.numVerbs, h.numNouns),
		NumRooms:     h.redRoom,
		MaxCarry:     h.maxCarry,
		PlayerRoom:   h.beginLoc,
		WordLength:   h.cmdLength,
		LightTime:    h.lightTurns,
		NumMessages:  pointers - 2,
		TreasureRoom: h.treasureLoc,
	}
	if err := sanityCheck(hdr, false); err != nil {
		return nil, err
	}
	log.Debugf("loader: TI-99/4A header %+v", hdr)

	w := &models.World{
		Title:       "TI-99/4A game",
		Dialect:     catalog.TI994A.String(),
		Origin:      models.OriginTI994A,
		LightRefill: hdr.LightTime,
		Rooms:       make([]models.Room, hdr.NumRooms+1),
		Messages:    make([]string, hdr.NumMessages+1),
		Items:       make([]models.Item, hdr.NumItems+1),
	}

	for i := range w.Rooms {
		if w.Rooms[i].Text, err = t.stringAt(h.roomDescr, i); err != nil {
			return nil, errors.Wrapf(err, "room %d", i)
		}
	}
	for i := range w.Messages {
		if w.Messages[i], err = t.stringAt(h.message, i); err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
	}
	for i := range w.Items {
		if w.Items[i].Text, err = t.stringAt(h.objDescr, i); err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		if len(w.Items[i].Text) > 0 && w.Items[i].Text[0] == '*' {
			hdr.Treasures++
		}
	}

	exits, err := t.bytesAt(t.fix(h.roomExit), 6*len(w.Rooms))
	if err != nil {
		return nil, errors.Wrap(err, "room exits")
	}
	for i := range w.Rooms {
		for j := range w.Rooms[i].Exits {
			w.Rooms[i].Exits[j] = int(exits[6*i+j])
		}
	}

	locs, err := t.bytesAt(t.fix(h.origItems), len(w.Items))
	if err != nil {
		return nil, errors.Wrap(err, "item locations")
	}
	for i, b := range locs {
		w.Items[i].Location = int(b)
		w.Items[i].InitialLoc = int(b)
	}

	verbs, err := t.words(h.verbTable, h.numVerbs+1)
	if err != nil {
		return nil, errors.Wrap(err, "verbs")
	}
	nouns, err := t.words(h.nounTable, h.numNouns+1)
	if err != nil {
		return nil, errors.Wrap(err, "nouns")
	}
	w.Verbs = padWords(verbs, hdr.NumWords+1)
	w.Nouns = padWords(nouns, hdr.NumWords+1)

	links, err := t.bytesAt(t.fix(h.objLink), len(w.Items))
	if err != nil {
		return nil, errors.Wrap(err, "item links")
	}
	for i, n := range links {
		if n != 0 && int(n) < len(w.Nouns) {
			w.Items[i].AutoGet = w.Nouns[n]
		}
	}

	if w.Actions, err = t.actions(); err != nil {
		return nil, err
	}
	hdr.NumActions = len(w.Actions) - 1
	w.Header = hdr
	return w, nil
}

// actions compiles the implicit chain followed by the explicit chains of
// every verb.
func (t *tiImage) actions() ([]models.Action, error) {
	var rows []models.Action
	compile := func(verb int, blocks []ti99.Block) error {
		for _, b := range blocks {
			out, err := ti99.Compile(verb, b.Key, b.Code)
			if err != nil {
				return errors.Wrapf(err, "verb %d noun %d", verb, b.Key)
			}
			rows = append(rows, out...)
		}
		return nil
	}

	p := t.fix(t.h.implicit)
	if p < 0 || p >= len(t.data) {
		return nil, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "implicit actions at %#x", p)
	}
	if t.data[p] != 0 {
		blocks, err := ti99.ReadBlocks(t.data, p)
		if err != nil {
			return nil, errors.Wrap(err, "implicit actions")
		}
		if err := compile(0, blocks); err != nil {
			return nil, err
		}
	}

	table := t.fix(t.h.explicit)
	for v := 0; v <= t.h.numVerbs; v++ {
		addr, err := t.word(table + 2*v)
		if err != nil {
			return nil, errors.Wrap(err, "explicit action table")
		}
		if addr == 0 {
			continue
		}
		blocks, err := ti99.ReadBlocks(t.data, t.fix(addr))
		if err != nil {
			return nil, errors.Wrapf(err, "explicit actions of verb %d", v)
		}
		if err := compile(v, blocks); err != nil {
			return nil, err
		}
	}
	log.Debugf("loader: compiled %d TI-99/4A action rows", len(rows))
	return rows, nil
}
