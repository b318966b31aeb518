package loader

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tatianab/scottfree/internal/catalog"
	"github.com/tatianab/scottfree/internal/engine"
	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
)

type textSink struct {
	strings.Builder
}

func (s *textSink) Emit(text string) { s.WriteString(text) }

// builder assembles synthetic game images.
type builder struct {
	buf []byte
}

func (b *builder) pos() int { return len(b.buf) }

func (b *builder) le(vs ...int) {
	for _, v := range vs {
		b.buf = append(b.buf, byte(v), byte(v>>8))
	}
}

func (b *builder) be(vs ...int) {
	for _, v := range vs {
		b.buf = append(b.buf, byte(v>>8), byte(v))
	}
}

func (b *builder) raw(vs ...int) {
	for _, v := range vs {
		b.buf = append(b.buf, byte(v))
	}
}

func (b *builder) cstrings(ss ...string) {
	for _, s := range ss {
		b.buf = append(b.buf, s...)
		b.buf = append(b.buf, 0)
	}
}

// binaryImage builds a four letter uncompressed image with an early header
// and the recipe that loads it. The image has one real action row: OPEN DOOR
// while the door is here puts the key in the room and prints message 1.
func binaryImage(numItems int) ([]byte, catalog.Entry) {
	const (
		numRooms    = 10
		numActions  = 100
		numWords    = 50
		numMessages = 3
		wordLength  = 4
	)
	b := &builder{}
	b.le(0, numItems, numActions, numWords, numRooms, 6, 1, 0, wordLength, 200, numMessages, 0)
	b.le(make([]int, catalog.HeaderWords-12)...)

	actionsAt := b.pos()
	b.le(models.PackVocab(5, 7), models.PackCondition(2, 1), models.PackCondition(0, 2), 0, 0, 0,
		models.PackCommands(53, 1), 0)
	b.le(make([]int, 8*numActions)...)

	dictAt := b.pos()
	verbs := make([]string, numWords+1)
	verbs[0], verbs[1], verbs[5] = "AUTO", "GO", "OPEN"
	nouns := make([]string, numWords+1)
	copy(nouns, []string{"ANY", "NORT", "SOUT", "EAST", "WEST", "UP", "DOWN", "DOOR"})
	for i, w := range append(verbs, nouns...) {
		if i > 0 {
			b.raw(0)
		}
		word := make([]byte, wordLength)
		copy(word, w)
		b.buf = append(b.buf, word...)
	}

	rooms := make([]string, numRooms+1)
	rooms[1], rooms[2] = "dusty hall", "*I'm in a cellar"
	b.cstrings(rooms...)
	exits := make([]int, 6*(numRooms+1))
	exits[6*1+0] = 2
	exits[6*2+4] = 1
	b.raw(exits...)
	b.cstrings("", "The door creaks.", "Two.", "Three.")

	items := make([]string, numItems+1)
	items[1], items[2] = "Oak door", "Brass key/KEY/"
	b.cstrings(items...)
	locs := make([]int, numItems+1)
	locs[1] = 1
	b.raw(locs...)

	sysAt := b.pos()
	b.cstrings("NORTH", "SOUTH", "EAST", "WEST", "UP", "DOWN")
	for i := 6; i < numSystemMessages; i++ {
		b.cstrings(fmt.Sprintf("MSG %d", i))
	}

	e := catalog.Entry{
		Name:                    "Test Adventure",
		Subtype:                 catalog.English,
		Dictionary:              catalog.FourLetterUncompressed,
		Header:                  catalog.Early,
		NumberOfItems:           numItems,
		NumberOfActions:         numActions,
		NumberOfWords:           numWords,
		NumberOfRooms:           numRooms,
		MaxCarried:              6,
		WordLength:              wordLength,
		NumberOfMessages:        numMessages,
		NumberOfVerbs:           numWords + 1,
		NumberOfNouns:           numWords,
		StartOfHeader:           0,
		StartOfActions:          catalog.Offset(actionsAt),
		StartOfDictionary:       catalog.Offset(dictAt),
		StartOfRoomDescriptions: catalog.Follows,
		StartOfRoomConnections:  catalog.Follows,
		StartOfMessages:         catalog.Follows,
		StartOfItemDescriptions: catalog.Follows,
		StartOfItemLocations:    catalog.Follows,
		StartOfSystemMessages:   catalog.Follows,
		StartOfDirections:       catalog.Offset(sysAt),
	}
	return b.buf, e
}

func withEntries(es ...catalog.Entry) Option {
	return WithCatalog(&catalog.Catalog{Entries: es})
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		sig    []byte
		at     int
		want   catalog.Dictionary
		offset int
	}{
		{"four letter", []byte("AUTO\x00GO\x00"), 1000, catalog.FourLetterUncompressed, 1000},
		{"three letter", []byte("AUT\x00GO\x00"), 10, catalog.ThreeLetterUncompressed, 10},
		{"german", []byte("\xc7EHENSTEIGE"), 100, catalog.German, 95},
		{"ti99", catalog.TI994ASignature, catalog.TI994APreamble + 0x10, catalog.TI994A, 0x10},
	}
	for _, test := range tests {
		data := make([]byte, 3000)
		copy(data[test.at:], test.sig)
		dict, off, err := Detect(data)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if dict != test.want || off != test.offset {
			t.Errorf("%s: Detect = %s at %d, want %s at %d", test.name, dict, off, test.want, test.offset)
		}
	}

	if _, _, err := Detect(make([]byte, 100)); !errors.Is(err, gameerr.ErrSignatureNotFound) {
		t.Errorf("blank file: err = %v", err)
	}
	short := make([]byte, 100)
	copy(short[1:], "\xc7EHENSTEIGE")
	if _, _, err := Detect(short); !errors.Is(err, gameerr.ErrOffsetBeyondFile) {
		t.Errorf("german signature at 1: err = %v", err)
	}
}

func TestSanityCheck(t *testing.T) {
	ok := models.Header{NumItems: 10, NumActions: 100, NumWords: 50, NumRooms: 10}
	if err := sanityCheck(ok, true); err != nil {
		t.Errorf("lower bounds: %v", err)
	}
	tests := []struct {
		name    string
		modify  func(h *models.Header)
		actions bool
		wantErr bool
	}{
		{"nine items", func(h *models.Header) { h.NumItems = 9 }, true, true},
		{"501 items", func(h *models.Header) { h.NumItems = 501 }, true, true},
		{"99 actions", func(h *models.Header) { h.NumActions = 99 }, true, true},
		{"actions unchecked", func(h *models.Header) { h.NumActions = 0 }, false, false},
		{"191 words", func(h *models.Header) { h.NumWords = 191 }, true, true},
		{"101 rooms", func(h *models.Header) { h.NumRooms = 101 }, true, true},
		{"upper bounds", func(h *models.Header) {
			*h = models.Header{NumItems: 500, NumActions: 500, NumWords: 190, NumRooms: 100}
		}, true, false},
	}
	for _, test := range tests {
		h := ok
		test.modify(&h)
		err := sanityCheck(h, test.actions)
		if test.wantErr != (err != nil) {
			t.Errorf("%s: err = %v", test.name, err)
		}
		if err != nil && !errors.Is(err, gameerr.ErrHeaderSanity) {
			t.Errorf("%s: err = %v, want ErrHeaderSanity", test.name, err)
		}
	}
}

func TestLoadBinaryImage(t *testing.T) {
	data, e := binaryImage(10)
	w, err := LoadGame(data, withEntries(e))
	if err != nil {
		t.Fatal(err)
	}
	if w.Title != "Test Adventure" || w.Origin != models.OriginBinary || w.Dialect != "four_letter_uncompressed" {
		t.Errorf("world is %q, %s, %s", w.Title, w.Origin, w.Dialect)
	}
	if w.Header.LightTime != 200 || w.LightRefill != 200 || w.Header.WordLength != 4 {
		t.Errorf("header = %+v", w.Header)
	}
	if len(w.Items) != 11 || len(w.Rooms) != 11 || len(w.Actions) != 101 || len(w.Messages) != 4 {
		t.Errorf("sizes: %d items, %d rooms, %d actions, %d messages", len(w.Items), len(w.Rooms), len(w.Actions), len(w.Messages))
	}
	if w.Verbs[0] != "AUTO" || w.Verbs[1] != "GO" || w.Verbs[5] != "OPEN" {
		t.Errorf("verbs = %q", w.Verbs[:6])
	}
	if w.Nouns[5] != "UP" || w.Nouns[7] != "DOOR" || len(w.Nouns) != 51 {
		t.Errorf("nouns = %q", w.Nouns[:8])
	}
	if w.Rooms[1].Text != "dusty hall" || w.Rooms[1].Exits[0] != 2 || w.Rooms[2].Exits[4] != 1 {
		t.Errorf("rooms = %+v", w.Rooms[:3])
	}
	if w.Messages[1] != "The door creaks." {
		t.Errorf("message 1 = %q", w.Messages[1])
	}
	if it := w.Items[2]; it.Text != "Brass key" || it.AutoGet != "KEY" || it.Location != 0 {
		t.Errorf("item 2 = %+v", it)
	}
	if len(w.SystemMessages) != numSystemMessages || w.SystemMessages[44] != "MSG 44" {
		t.Errorf("system messages = %q", w.SystemMessages)
	}
	if want := []string{"NORTH", "SOUTH", "EAST", "WEST", "UP", "DOWN"}; !reflect.DeepEqual(w.Directions, want) {
		t.Errorf("directions = %q", w.Directions)
	}
	if w.State.CurrentLoc != 1 {
		t.Errorf("current location = %d", w.State.CurrentLoc)
	}

	out := &textSink{}
	eng := engine.New(w, engine.Options{Output: out})
	if got := eng.Perform(engine.Command{Verb: 5, Noun: 7}); got != engine.Success {
		t.Errorf("OPEN DOOR = %s", got)
	}
	if out.String() != "The door creaks. " {
		t.Errorf("output = %q", out.String())
	}
	if w.Items[2].Location != 1 {
		t.Errorf("key is at %d, want 1", w.Items[2].Location)
	}
}

func TestLoadBinaryImageErrors(t *testing.T) {
	data, e := binaryImage(9)
	_, err := LoadGame(data, withEntries(e))
	if !errors.Is(err, gameerr.ErrHeaderSanity) || !errors.Is(err, gameerr.ErrLoadFailed) {
		t.Errorf("nine items: err = %v", err)
	}

	data, e = binaryImage(10)
	e.NumberOfItems = 11
	_, err = LoadGame(data, withEntries(e))
	if !errors.Is(err, gameerr.ErrHeaderMismatch) {
		t.Errorf("mismatch: err = %v", err)
	}

	// A header beyond the file rules out the entries that follow.
	_, good := binaryImage(10)
	bad := good
	bad.Name = "Far header"
	bad.StartOfHeader = catalog.Offset(len(data) + 10)
	_, err = LoadGame(data, withEntries(bad, good))
	var lerr *gameerr.LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("far header: err = %v", err)
	}
	if len(lerr.Candidates) != 1 || lerr.Candidates[0].Name != "Far header" {
		t.Errorf("candidates = %+v", lerr.Candidates)
	}
	if !errors.Is(err, gameerr.ErrOffsetBeyondFile) {
		t.Errorf("far header: err = %v", err)
	}

	// No entry for the detected dictionary.
	_, err = LoadGame(data, WithCatalog(&catalog.Catalog{}))
	if !errors.As(err, &lerr) || len(lerr.Candidates) != 1 || lerr.Dialect != "four_letter_uncompressed" {
		t.Errorf("empty catalog: err = %v", err)
	}
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	data, e := binaryImage(10)
	w, err := LoadGame(data, withEntries(e))
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(w); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name string
		row  models.Action
	}{
		{"condition item", models.NewAction(5, 7, [][2]int{{1, 11}}, []int{1})},
		{"condition room", models.NewAction(5, 7, [][2]int{{4, 12}}, []int{1})},
		{"command item", models.NewAction(5, 7, [][2]int{{0, 11}}, []int{53})},
		{"swap room", models.NewAction(5, 7, [][2]int{{0, 2}, {0, 30}}, []int{62})},
	}
	for _, test := range tests {
		w.Actions[0] = test.row
		if err := Validate(w); !errors.Is(err, gameerr.ErrMalformedAction) {
			t.Errorf("%s: err = %v", test.name, err)
		}
	}

	w.Actions[0] = models.NewAction(5, 7, [][2]int{{0, 2}, {0, models.Carried}}, []int{62})
	if err := Validate(w); err != nil {
		t.Errorf("move to carried: %v", err)
	}
	w.Actions[0] = models.NewAction(5, 7, nil, []int{53})
	if err := Validate(w); err != nil {
		t.Errorf("missing parameter: %v", err)
	}
}

const database = `0 2 0 7 2 5 1 1 3 -1 1 2
306 43 0 0 0 0 150 0
"AUT" "ANY"
"GO" "NOR"
"REA" "SOU"
"LOO" "EAS"
"." "WES"
"." "UP"
"." "LAM"
"." "*TOR"
0 0 0 0 0 0 ""
2 0 0 0 0 0 "dusty hall"
0 1 0 0 0 0 "*I'm in the vault"
""
"The lamp says ""hello""."
"*Gold coin*/COI/" 2
"Sign" 1
"Rusty lamp/LAM/" 1
"read lamp"
416 1
`

func TestLoadDatabase(t *testing.T) {
	w, err := LoadGame([]byte(database), WithTitle("test"))
	if err != nil {
		t.Fatal(err)
	}
	if w.Title != "test" || w.Origin != models.OriginDatabase || w.Dialect != DatabaseDialect {
		t.Errorf("world is %q, %s, %s", w.Title, w.Origin, w.Dialect)
	}
	if w.Version != 416 || w.Adventure != 1 {
		t.Errorf("version %d, adventure %d", w.Version, w.Adventure)
	}
	if w.Header.Treasures != 1 || w.Header.TreasureRoom != 2 || w.Header.LightTime != -1 {
		t.Errorf("header = %+v", w.Header)
	}
	if w.Verbs[2] != "REA" || w.Nouns[7] != "*TOR" {
		t.Errorf("words = %q %q", w.Verbs, w.Nouns)
	}
	if w.Rooms[1].Text != "dusty hall" || w.Rooms[1].Exits[0] != 2 {
		t.Errorf("room 1 = %+v", w.Rooms[1])
	}
	if w.Messages[1] != `The lamp says "hello".` {
		t.Errorf("message 1 = %q", w.Messages[1])
	}
	if it := w.Items[2]; it.Text != "Rusty lamp" || it.AutoGet != "LAM" || it.Location != 1 || it.InitialLoc != 1 {
		t.Errorf("item 2 = %+v", it)
	}
	if w.Items[1].AutoGet != "" {
		t.Errorf("item 1 auto-get = %q", w.Items[1].AutoGet)
	}

	out := &textSink{}
	e := engine.New(w, engine.Options{Output: out})
	if got := e.Perform(engine.Command{Verb: 2, Noun: 6}); got != engine.Success {
		t.Errorf("READ LAMP = %s", got)
	}
	if out.String() != `The lamp says "hello". ` {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoadDatabaseErrors(t *testing.T) {
	var lerr *gameerr.LoadError

	bad := strings.Replace(database, "306 43", "306 203", 1) // item 10
	_, err := LoadGame([]byte(bad))
	if !errors.Is(err, gameerr.ErrMalformedAction) || !errors.As(err, &lerr) {
		t.Fatalf("bad row: err = %v", err)
	}
	if lerr.Dialect != DatabaseDialect || lerr.Candidates[0].Name != "database" {
		t.Errorf("load error = %+v", lerr)
	}

	_, err = LoadGame([]byte(database[:200]))
	if !errors.Is(err, gameerr.ErrLoadFailed) || !errors.Is(err, gameerr.ErrSignatureNotFound) {
		t.Errorf("truncated: err = %v", err)
	}

	if _, err := ParseDatabase([]byte("0 2 0 7 2000 5 1 1 3 -1 1 2")); err == nil {
		t.Error("oversized room count accepted")
	}
}

// tiTestImage builds a TI-99/4A image with baseline 0. Verb 2 noun 7 prints
// message 1; an implicit block prints message 2 every turn.
func tiTestImage() []byte {
	const (
		numObjects = 10
		numVerbs   = 50
		numNouns   = 50
		numRooms   = 10
	)
	b := &builder{buf: make([]byte, 0x900)}
	copy(b.buf[catalog.TI994APreamble:], catalog.TI994ASignature)
	addr := func() int { return b.pos() + catalog.TI994AAddressBase }

	// strings writes a pointer table followed by the token strings.
	strs := func(ss []string, tokens bool) int {
		table := addr()
		at := table + 2*(len(ss)+1)
		var data []byte
		for _, s := range ss {
			b.be(at + len(data))
			if !tokens {
				data = append(data, s...)
				continue
			}
			for _, f := range strings.Fields(s) {
				data = append(data, byte(len(f)))
				data = append(data, f...)
			}
		}
		b.be(at + len(data))
		b.buf = append(b.buf, data...)
		return table
	}

	rooms := make([]string, numRooms+1)
	rooms[1] = "dusty hall"
	roomDescr := strs(rooms, true)
	message := strs([]string{"", "You read it.", "Time passes."}, true)
	items := make([]string, numObjects+1)
	items[1], items[2] = "Brass key", "*Gold bar*"
	objDescr := strs(items, true)

	verbs := make([]string, numVerbs+1)
	verbs[0], verbs[1], verbs[2] = "AUT", "GO", "REA"
	verbTable := strs(verbs, false)
	nouns := make([]string, numNouns+1)
	copy(nouns, []string{"ANY", "NOR", "SOU", "EAS", "WES", "UP", "DOW", "KEY"})
	nounTable := strs(nouns, false)

	roomExit := addr()
	exits := make([]int, 6*(numRooms+1))
	exits[6*1+1] = 2
	b.raw(exits...)
	origItems := addr()
	locs := make([]int, numObjects+1)
	locs[1], locs[2] = 1, 2
	b.raw(locs...)
	objLink := addr()
	links := make([]int, numObjects+1)
	links[1] = 7
	b.raw(links...)

	implicit := addr()
	b.raw(100, 0, 0x02, 0xff)
	explicitAt := b.pos()
	b.be(make([]int, numVerbs+1)...)
	block := addr()
	b.raw(7, 0, 0x01, 0xff)
	b.buf[explicitAt+4] = byte(block >> 8)
	b.buf[explicitAt+5] = byte(block)

	h := &builder{}
	h.raw(numObjects, numVerbs, numNouns, numRooms, 6, 1, 1, 3, 0, 200, 3, 0)
	h.be(roomDescr, origItems, objLink, objDescr, message, roomExit, roomDescr,
		nounTable, verbTable, block-2*(numVerbs+1), implicit)
	copy(b.buf[catalog.TI994AHeader:], h.buf)
	return b.buf
}

func TestLoadTI994A(t *testing.T) {
	w, err := LoadGame(tiTestImage())
	if err != nil {
		t.Fatal(err)
	}
	if w.Origin != models.OriginTI994A || w.Dialect != "ti99_4a" {
		t.Errorf("world is %s, %s", w.Origin, w.Dialect)
	}
	hdr := w.Header
	if hdr.NumItems != 10 || hdr.NumRooms != 10 || hdr.NumWords != 50 || hdr.LightTime != 200 ||
		hdr.NumMessages != 2 || hdr.Treasures != 1 || hdr.TreasureRoom != 3 || hdr.WordLength != 3 {
		t.Errorf("header = %+v", hdr)
	}
	if w.Rooms[1].Text != "dusty hall" || w.Rooms[1].Exits[1] != 2 {
		t.Errorf("room 1 = %+v", w.Rooms[1])
	}
	if w.Messages[1] != "You read it." || w.Messages[2] != "Time passes." {
		t.Errorf("messages = %q", w.Messages)
	}
	if it := w.Items[1]; it.Text != "Brass key" || it.AutoGet != "KEY" || it.Location != 1 {
		t.Errorf("item 1 = %+v", it)
	}
	if w.Verbs[2] != "REA" || w.Verbs[3] != "." || w.Nouns[7] != "KEY" {
		t.Errorf("words = %q %q", w.Verbs[:4], w.Nouns[:8])
	}
	want := []models.Action{
		models.NewAction(0, 100, nil, []int{2}),
		models.NewAction(2, 7, nil, []int{1}),
	}
	if !reflect.DeepEqual(w.Actions, want) || hdr.NumActions != 1 {
		t.Errorf("actions = %+v", w.Actions)
	}

	out := &textSink{}
	e := engine.New(w, engine.Options{Output: out})
	e.Prologue()
	if out.String() != "Time passes. " {
		t.Errorf("prologue output = %q", out.String())
	}
}

func TestSplitAutoGet(t *testing.T) {
	tests := []struct {
		in, text, word string
	}{
		{"Rusty lamp/LAMP/", "Rusty lamp", "LAMP"},
		{"Sign", "Sign", ""},
		{"Key/KEY", "Key", "KEY"},
	}
	for _, test := range tests {
		text, word := splitAutoGet(test.in)
		if text != test.text || word != test.word {
			t.Errorf("splitAutoGet(%q) = %q, %q", test.in, text, word)
		}
	}

	packed := []struct {
		in         string
		wordLength int
		text, word string
	}{
		{"Brass key. Key.", 3, "Brass key", "KEY"},
		{"Rusty lamp. Lamp.", 3, "Rusty lamp", "LAMp"},
		{".Nothing", 4, ".Nothing", ""},
		{"Sign", 4, "Sign", ""},
	}
	for _, test := range packed {
		text, word := splitPackedItem(test.in, test.wordLength)
		if text != test.text || word != test.word {
			t.Errorf("splitPackedItem(%q) = %q, %q", test.in, text, word)
		}
	}
}
