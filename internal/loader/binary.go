package loader

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/tatianab/scottfree/internal/binread"
	"github.com/tatianab/scottfree/internal/catalog"
	"github.com/tatianab/scottfree/internal/gameerr"
	"github.com/tatianab/scottfree/internal/models"
)

// Header sanity bounds for binary images.
const (
	minItems, maxItems     = 10, 500
	minActions, maxActions = 100, 500
	minWords, maxWords     = 50, 190
	minRooms, maxRooms     = 10, 100
)

const (
	numSystemMessages    = 45
	numOldSystemMessages = 40
	numDirections        = 6
	// maxRealign bounds the search for the first C64 system message.
	maxRealign = 16
)

// image is the decoding state of one candidate catalog entry.
type image struct {
	c        *binread.Cursor
	entry    catalog.Entry
	baseline int
	cm       *charmap.Charmap
	w        *models.World
}

// tryEntry decodes data following the recipe e. dictStart is the offset of
// the dictionary found by Detect.
func tryEntry(data []byte, dictStart int, e catalog.Entry) (*models.World, error) {
	if e.StartOfDictionary == catalog.Follows {
		return nil, errors.Errorf("entry %q has no dictionary offset", e.Name)
	}
	im := &image{
		c:        binread.NewCursor(data),
		entry:    e,
		baseline: dictStart - int(e.StartOfDictionary),
		w: &models.World{
			Title:      e.Name,
			Dialect:    e.Dictionary.String(),
			Origin:     models.OriginBinary,
			Mysterious: e.Subtype.Has(catalog.Mysterious),
		},
	}
	if e.Subtype.Has(catalog.Localized) || e.Dictionary == catalog.German || e.Dictionary == catalog.Spanish {
		im.cm = charmap.ISO8859_1
	}
	log.Debugf("loader: trying %q with baseline %#x", e.Name, im.baseline)

	if err := im.readHeader(); err != nil {
		return nil, err
	}
	if e.Type == catalog.TypeTextOnly {
		if err := im.loadTextOnly(); err != nil {
			return nil, err
		}
	} else if err := im.loadStandard(); err != nil {
		return nil, err
	}
	return im.w, nil
}

// seek moves to a recipe offset unless it is Follows.
func (im *image) seek(o catalog.Offset, section string) error {
	if o == catalog.Follows {
		return nil
	}
	if err := im.c.Seek(int(o) + im.baseline); err != nil {
		return errors.Wrap(err, section)
	}
	return nil
}

func (im *image) readHeader() error {
	e := im.entry
	if err := im.c.Seek(int(e.StartOfHeader) + im.baseline); err != nil {
		return &fatalError{errors.Wrap(err, "header")}
	}
	words := make([]int, catalog.HeaderWords)
	for i := range words {
		v, err := im.c.ReadUint16LE()
		if err != nil {
			return &fatalError{errors.Wrap(gameerr.ErrOffsetBeyondFile, "header runs past end of file")}
		}
		words[i] = int(v)
	}
	h, err := e.Header.ParseHeader(words)
	if err != nil {
		return err
	}
	if e.Type != catalog.TypeTextOnly {
		if err := sanityCheck(h, true); err != nil {
			return err
		}
	}
	if h.NumItems != e.NumberOfItems || h.NumActions != e.NumberOfActions || h.NumWords != e.NumberOfWords ||
		h.NumRooms != e.NumberOfRooms || h.MaxCarry != e.MaxCarried {
		return errors.Wrapf(gameerr.ErrHeaderMismatch,
			"items %d/%d actions %d/%d words %d/%d rooms %d/%d carry %d/%d",
			h.NumItems, e.NumberOfItems, h.NumActions, e.NumberOfActions, h.NumWords, e.NumberOfWords,
			h.NumRooms, e.NumberOfRooms, h.MaxCarry, e.MaxCarried)
	}
	if e.PlayerRoom != 0 {
		h.PlayerRoom = e.PlayerRoom
	}

	w := im.w
	w.Header = h
	w.LightRefill = h.LightTime
	w.Items = make([]models.Item, h.NumItems+1)
	w.Rooms = make([]models.Room, h.NumRooms+1)
	w.Actions = make([]models.Action, h.NumActions+1)
	w.Messages = make([]string, h.NumMessages+1)
	return nil
}

// sanityCheck applies the header bounds. The TI-99/4A loader builds its own
// action table and skips the action count.
func sanityCheck(h models.Header, actions bool) error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return errors.Wrapf(gameerr.ErrHeaderSanity, "%s %d not in %d..%d", name, v, lo, hi)
		}
		return nil
	}
	if err := check("items", h.NumItems, minItems, maxItems); err != nil {
		return err
	}
	if actions {
		if err := check("actions", h.NumActions, minActions, maxActions); err != nil {
			return err
		}
	}
	if err := check("words", h.NumWords, minWords, maxWords); err != nil {
		return err
	}
	return check("rooms", h.NumRooms, minRooms, maxRooms)
}

func (im *image) loadStandard() error {
	e := im.entry
	w := im.w

	if e.StartOfRoomImageList != 0 {
		if err := im.seek(e.StartOfRoomImageList, "room images"); err != nil {
			return err
		}
		for i := range w.Rooms {
			b, err := im.c.ReadByte()
			if err != nil {
				return errors.Wrap(err, "room images")
			}
			w.Rooms[i].Image = int(b)
		}
	}
	if e.StartOfItemFlags != 0 {
		if err := im.seek(e.StartOfItemFlags, "item flags"); err != nil {
			return err
		}
		for i := range w.Items {
			b, err := im.c.ReadByte()
			if err != nil {
				return errors.Wrap(err, "item flags")
			}
			w.Items[i].Flag = int(b)
		}
	}
	if e.StartOfItemImageList != 0 {
		if err := im.seek(e.StartOfItemImageList, "item images"); err != nil {
			return err
		}
		for i := range w.Items {
			b, err := im.c.ReadByte()
			if err != nil {
				return errors.Wrap(err, "item images")
			}
			w.Items[i].Image = int(b)
		}
	}

	steps := []struct {
		name string
		at   catalog.Offset
		read func() error
	}{
		{"actions", e.StartOfActions, im.readActions},
		{"dictionary", e.StartOfDictionary, im.readDictionary},
		{"rooms", e.StartOfRoomDescriptions, im.readRooms},
		{"room exits", e.StartOfRoomConnections, im.readExits},
		{"messages", e.StartOfMessages, im.readMessages},
		{"items", e.StartOfItemDescriptions, im.readItems},
		{"item locations", e.StartOfItemLocations, im.readItemLocations},
	}
	for _, s := range steps {
		if s.name == "rooms" && s.at == 0 {
			continue
		}
		if err := im.seek(s.at, s.name); err != nil {
			return err
		}
		if err := s.read(); err != nil {
			return errors.Wrap(err, s.name)
		}
	}

	// An image without system messages still loads.
	if err := im.seek(e.StartOfSystemMessages, "system messages"); err != nil {
		log.Debugf("loader: %v", err)
		return nil
	}
	if err := im.readSystemMessages(); err != nil {
		return errors.Wrap(err, "system messages")
	}
	if e.Subtype.Has(catalog.C64 | catalog.English) {
		return nil
	}
	if err := im.seek(e.StartOfDirections, "directions"); err != nil {
		return err
	}
	im.readDirections()
	return nil
}

func (im *image) loadTextOnly() error {
	e := im.entry
	steps := []struct {
		name string
		at   catalog.Offset
		read func() error
	}{
		{"actions", e.StartOfActions, im.readActions},
		{"room exits", e.StartOfRoomConnections, im.readExits},
		{"item locations", e.StartOfItemLocations, im.readItemLocations},
		{"dictionary", e.StartOfDictionary, im.readDictionary},
		{"rooms", e.StartOfRoomDescriptions, im.readRooms},
		{"messages", e.StartOfMessages, im.readMessages},
		{"items", e.StartOfItemDescriptions, im.readItems},
		{"system messages", e.StartOfSystemMessages, im.readOldSystemMessages},
	}
	for _, s := range steps {
		if err := im.seek(s.at, s.name); err != nil {
			return err
		}
		if s.name == "rooms" && s.at == catalog.Follows {
			// A separator byte follows the dictionary.
			if err := im.c.Skip(1); err != nil {
				return errors.Wrap(err, s.name)
			}
		}
		if err := s.read(); err != nil {
			return errors.Wrap(err, s.name)
		}
	}
	if err := im.seek(e.StartOfDirections, "directions"); err != nil {
		return err
	}
	im.readDirections()
	return nil
}

// readActions reads the action table. Compressed rows start with a byte
// holding the number of conditions (low five bits) and command words (top
// three bits) that follow.
func (im *image) readActions() error {
	compressed := im.entry.Actions == catalog.ActionsCompressed
	word := func() (int, error) {
		v, err := im.c.ReadUint16LE()
		return int(v), err
	}
	for i := range im.w.Actions {
		a := &im.w.Actions[i]
		v, err := word()
		if err != nil {
			return err
		}
		a.Vocab = v

		conds, cmds := len(a.Condition), len(a.Command)
		if compressed {
			b, err := im.c.ReadByte()
			if err != nil {
				return err
			}
			conds, cmds = int(b&0x1f), int(b&0xe0)>>5
			if conds > len(a.Condition) {
				log.Warnf("loader: action %d has %d conditions", i, conds)
				conds = len(a.Condition)
			}
			if cmds > len(a.Command) {
				log.Warnf("loader: action %d has %d command words", i, cmds)
				cmds = len(a.Command)
			}
		}
		for j := 0; j < conds; j++ {
			if a.Condition[j], err = word(); err != nil {
				return err
			}
		}
		for j := 0; j < cmds; j++ {
			if a.Command[j], err = word(); err != nil {
				return err
			}
		}
	}
	return nil
}

// readDictionary reads the verb and noun tables stored back to back as
// fixed-width words. Synonyms are returned with a leading '*'.
func (im *image) readDictionary() error {
	e := im.entry
	nv, nn := e.NumberOfVerbs, e.NumberOfNouns
	var verbs, nouns []string

	for n := 0; n <= nv+nn; n++ {
		var word []byte
		var c byte
		for i := 0; i < e.WordLength; i++ {
			var err error
			if c, err = im.c.ReadByte(); err != nil {
				return err
			}
			switch {
			case e.Dictionary.Compressed():
				if len(word) == 0 {
					if c >= 'a' {
						c -= 'a' - 'A'
					} else if c != '.' && c != 0 {
						word = append(word, '*')
					}
				}
			case e.Subtype.Has(catalog.Localized):
				if len(word) == 0 {
					if c&0x80 != 0 {
						c &= 0x7f
					} else if c != '.' {
						word = append(word, '*')
					}
				}
			default:
				if c == 0 && len(word) == 0 {
					// Words may be preceded by a separator.
					if c, err = im.c.ReadByte(); err != nil {
						return err
					}
				}
				if c == '*' {
					i--
				}
			}
			word = append(word, c)
		}
		if i := bytes.IndexByte(word, 0); i >= 0 {
			word = word[:i]
		}
		s := binread.Decode(word, im.cm)
		if n < nv {
			verbs = append(verbs, s)
		} else {
			nouns = append(nouns, s)
		}
		if c != 0 && !binread.IsASCII(c) {
			break
		}
	}

	im.w.Verbs = padWords(verbs, im.w.Header.NumWords+1)
	im.w.Nouns = padWords(nouns, im.w.Header.NumWords+1)
	return nil
}

// padWords extends words with "." placeholders up to n entries.
func padWords(words []string, n int) []string {
	for len(words) < n {
		words = append(words, ".")
	}
	return words
}

func (im *image) compressed() bool {
	return im.entry.Dictionary == catalog.FourLetterCompressed
}

// packed decodes n consecutive packed strings at the cursor and leaves the
// cursor after the last one.
func (im *image) packed(n int) ([]string, error) {
	start := im.c.Pos()
	out := make([]string, n)
	for i := range out {
		s, err := binread.DecompressText(im.c.Data(), start, i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	for i := 0; i < n; i++ {
		b, err := im.c.PeekByte()
		if err != nil {
			return nil, err
		}
		if err := im.c.Skip(int(b & 0x7f)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (im *image) readRooms() error {
	rooms := im.w.Rooms
	if im.compressed() {
		// The last room is the limbo room and has no text.
		texts, err := im.packed(len(rooms) - 1)
		if err != nil {
			return err
		}
		for i, s := range texts {
			if s != "" {
				s = strings.ToLower(s[:1]) + s[1:]
			}
			rooms[i].Text = s
		}
		return nil
	}
	for i := range rooms {
		s, err := im.c.ReadCString(true)
		if err != nil {
			return errors.Wrapf(err, "room %d", i)
		}
		rooms[i].Text = s
	}
	return nil
}

func (im *image) readExits() error {
	for i := range im.w.Rooms {
		for j := range im.w.Rooms[i].Exits {
			b, err := im.c.ReadByte()
			if err != nil {
				return err
			}
			im.w.Rooms[i].Exits[j] = int(b)
		}
	}
	return nil
}

func (im *image) readMessages() error {
	msgs := im.w.Messages
	if im.compressed() {
		texts, err := im.packed(len(msgs))
		if err != nil {
			return err
		}
		copy(msgs, texts)
		return nil
	}
	for i := range msgs {
		s, err := im.cstring()
		if err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
		msgs[i] = s
	}
	return nil
}

// cstring reads a zero terminated string, decoding high-bit bytes.
func (im *image) cstring() (string, error) {
	s, err := im.c.ReadCString(false)
	if err != nil {
		return "", err
	}
	return binread.Decode([]byte(s), im.cm), nil
}

func (im *image) readItems() error {
	items := im.w.Items
	if im.compressed() {
		texts, err := im.packed(len(items))
		if err != nil {
			return err
		}
		for i, s := range texts {
			items[i].Text, items[i].AutoGet = splitPackedItem(s, im.w.Header.WordLength)
		}
		return nil
	}
	for i := range items {
		s, err := im.cstring()
		if err != nil {
			return errors.Wrapf(err, "item %d", i)
		}
		items[i].Text, items[i].AutoGet = splitAutoGet(s)
	}
	return nil
}

// splitAutoGet splits "Text/WORD/" into the item text and its auto-get word.
// A trailing "//" or "/*" means the item has none.
func splitAutoGet(s string) (string, string) {
	i := strings.IndexByte(s, '/')
	if i < 0 || s[i:] == "//" || s[i:] == "/*" {
		return s, ""
	}
	word := s[i+1:]
	if j := strings.IndexByte(word, '/'); j >= 0 {
		word = word[:j]
	}
	return s[:i], word
}

// splitPackedItem splits a packed item text "Text. Word." into the text and
// its auto-get word. The packer capitalises only the first letter of the
// word, so the rest of it is upper-cased up to the word length.
func splitPackedItem(s string, wordLength int) (string, string) {
	if s == "" || s[0] == '.' {
		return s, ""
	}
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return s, ""
	}
	word := s[i+1:]
	if word != "" {
		word = word[1:] // the space added after '.'
	}
	if j := strings.IndexByte(word, '.'); j >= 0 {
		word = word[:j]
	}
	b := []byte(word)
	for k := 1; k < wordLength && k < len(b); k++ {
		if b[k] >= 'a' && b[k] <= 'z' {
			b[k] -= 'a' - 'A'
		}
	}
	return s[:i], string(b)
}

func (im *image) readItemLocations() error {
	for i := range im.w.Items {
		b, err := im.c.ReadByte()
		if err != nil {
			return err
		}
		im.w.Items[i].Location = int(b)
		im.w.Items[i].InitialLoc = int(b)
	}
	return nil
}

// readSystemMessages reads the image's own system messages. C64 images are
// sometimes one byte off; the start is moved back until the first message is
// the first direction name.
func (im *image) readSystemMessages() error {
	start := im.c.Pos()
	realign := im.entry.Subtype.Has(catalog.C64 | catalog.English)
	if realign {
		for back := 0; back <= maxRealign && start-back >= 0; back++ {
			if err := im.c.Seek(start - back); err != nil {
				return err
			}
			seg, err := im.c.NextSegment(nil)
			if err != nil {
				return err
			}
			if bytes.HasPrefix(seg, []byte("NORTH")) {
				start -= back
				break
			}
		}
		if err := im.c.Seek(start); err != nil {
			return err
		}
	}

	msgs := make([]string, 0, numSystemMessages)
	for len(msgs) < numSystemMessages {
		seg, err := im.c.NextSegment(nil)
		if err != nil {
			return err
		}
		msgs = append(msgs, binread.Decode(seg, im.cm))
	}
	im.w.SystemMessages = msgs
	return nil
}

// readOldSystemMessages reads the system messages of text-only images. The
// list ends early at a byte above 0x7f other than 0x83.
func (im *image) readOldSystemMessages() error {
	stop := func(b byte) bool { return !binread.IsASCII(b) && b != 0x83 }
	var msgs []string
	for len(msgs) < numOldSystemMessages {
		seg, err := im.c.NextSegment(stop)
		if err != nil {
			break
		}
		msgs = append(msgs, binread.Decode(seg, im.cm))
	}
	im.w.SystemMessages = msgs
	return nil
}

// readDirections reads the six direction names. Reading stops quietly at
// the first non-ASCII byte or at the end of the file.
func (im *image) readDirections() {
	stop := func(b byte) bool { return !binread.IsASCII(b) }
	var dirs []string
	for len(dirs) < numDirections {
		seg, err := im.c.NextSegment(stop)
		if err != nil {
			break
		}
		dirs = append(dirs, strings.TrimRight(string(seg), "\n"))
	}
	im.w.Directions = dirs
}
