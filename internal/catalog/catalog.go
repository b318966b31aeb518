// Package catalog describes the known binary game-image dialects: the
// signatures that identify a dictionary encoding, the header slot layouts, and
// the per-game recipes giving the offset of every section.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Dictionary identifies how the vocabulary of a game image is encoded. It is
// also the key that ties a signature to the catalog entries worth trying.
type Dictionary int

const (
	NotAGame Dictionary = iota
	FourLetterUncompressed
	ThreeLetterUncompressed
	FiveLetterUncompressed
	FourLetterCompressed
	FiveLetterCompressed
	German
	Spanish
	TI994A
)

var dictionaryNames = map[Dictionary]string{
	NotAGame:                "not_a_game",
	FourLetterUncompressed:  "four_letter_uncompressed",
	ThreeLetterUncompressed: "three_letter_uncompressed",
	FiveLetterUncompressed:  "five_letter_uncompressed",
	FourLetterCompressed:    "four_letter_compressed",
	FiveLetterCompressed:    "five_letter_compressed",
	German:                  "german",
	Spanish:                 "spanish",
	TI994A:                  "ti99_4a",
}

func (d Dictionary) String() string {
	if s, ok := dictionaryNames[d]; ok {
		return s
	}
	return fmt.Sprintf("dictionary(%d)", int(d))
}

// Compressed reports whether dictionary words use the case-marked encoding.
func (d Dictionary) Compressed() bool {
	return d == FourLetterCompressed || d == FiveLetterCompressed
}

func (d *Dictionary) UnmarshalYAML(n *yaml.Node) error {
	return unmarshalName(n, dictionaryNames, d)
}

func (d Dictionary) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// ActionStyle selects the encoding of action rows.
type ActionStyle int

const (
	// ActionsUncompressed rows always hold five conditions and two command words.
	ActionsUncompressed ActionStyle = iota
	// ActionsCompressed rows start with a byte giving how many conditions
	// (low five bits) and command words (top three bits) follow.
	ActionsCompressed
)

var actionStyleNames = map[ActionStyle]string{
	ActionsUncompressed: "uncompressed",
	ActionsCompressed:   "compressed",
}

func (s ActionStyle) String() string { return actionStyleNames[s] }

func (s *ActionStyle) UnmarshalYAML(n *yaml.Node) error {
	return unmarshalName(n, actionStyleNames, s)
}

func (s ActionStyle) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Type distinguishes the two section orders found in game images.
type Type int

const (
	TypeStandard Type = iota
	// TypeTextOnly images store actions, exits and item locations before
	// the dictionary and all text sections.
	TypeTextOnly
)

var typeNames = map[Type]string{
	TypeStandard: "standard",
	TypeTextOnly: "text_only",
}

func (t Type) String() string { return typeNames[t] }

func (t *Type) UnmarshalYAML(n *yaml.Node) error {
	return unmarshalName(n, typeNames, t)
}

func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// Subtype is a set of platform and behaviour flags.
type Subtype uint

const (
	English Subtype = 1 << iota
	C64
	Localized
	Mysterious
)

var subtypeNames = map[Subtype]string{
	English:    "english",
	C64:        "c64",
	Localized:  "localized",
	Mysterious: "mysterious",
}

// Has reports whether all flags in f are set.
func (s Subtype) Has(f Subtype) bool {
	return s&f == f
}

func (s Subtype) String() string {
	var names []string
	for f := English; f <= Mysterious; f <<= 1 {
		if s&f != 0 {
			names = append(names, subtypeNames[f])
		}
	}
	return strings.Join(names, "|")
}

func (s *Subtype) UnmarshalYAML(n *yaml.Node) error {
	var names []string
	if err := n.Decode(&names); err != nil {
		return err
	}
	*s = 0
	for _, name := range names {
		var f Subtype
		if err := unmarshalName(&yaml.Node{Kind: yaml.ScalarNode, Value: name, Line: n.Line}, subtypeNames, &f); err != nil {
			return err
		}
		*s |= f
	}
	return nil
}

func (s Subtype) MarshalYAML() (interface{}, error) {
	var names []string
	for f := English; f <= Mysterious; f <<= 1 {
		if s&f != 0 {
			names = append(names, subtypeNames[f])
		}
	}
	return names, nil
}

// Offset is the position of a section relative to the baseline of the image,
// or Follows when the section starts where the previous one ended.
type Offset int

// Follows marks a section that needs no seek.
const Follows Offset = 0x10000

func (o *Offset) UnmarshalYAML(n *yaml.Node) error {
	if n.Value == "follows" {
		*o = Follows
		return nil
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return errors.Wrapf(err, "line %d: offset", n.Line)
	}
	*o = Offset(v)
	return nil
}

func (o Offset) MarshalYAML() (interface{}, error) {
	if o == Follows {
		return "follows", nil
	}
	return int(o), nil
}

// Entry is the recipe for one historical game image.
type Entry struct {
	Name       string      `yaml:"name"`
	Type       Type        `yaml:"type,omitempty"`
	Subtype    Subtype     `yaml:"subtype,omitempty"`
	Dictionary Dictionary  `yaml:"dictionary"`
	Header     HeaderStyle `yaml:"header_style"`
	Actions    ActionStyle `yaml:"actions_style,omitempty"`

	NumberOfItems    int `yaml:"number_of_items"`
	NumberOfActions  int `yaml:"number_of_actions"`
	NumberOfWords    int `yaml:"number_of_words"`
	NumberOfRooms    int `yaml:"number_of_rooms"`
	MaxCarried       int `yaml:"max_carried"`
	WordLength       int `yaml:"word_length"`
	NumberOfMessages int `yaml:"number_of_messages"`
	NumberOfVerbs    int `yaml:"number_of_verbs"`
	NumberOfNouns    int `yaml:"number_of_nouns"`

	// PlayerRoom overrides the header's starting room when non-zero.
	PlayerRoom int `yaml:"player_room,omitempty"`

	StartOfHeader           Offset `yaml:"start_of_header"`
	StartOfRoomImageList    Offset `yaml:"start_of_room_image_list,omitempty"`
	StartOfItemFlags        Offset `yaml:"start_of_item_flags,omitempty"`
	StartOfItemImageList    Offset `yaml:"start_of_item_image_list,omitempty"`
	StartOfActions          Offset `yaml:"start_of_actions"`
	StartOfDictionary       Offset `yaml:"start_of_dictionary"`
	StartOfRoomDescriptions Offset `yaml:"start_of_room_descriptions"`
	StartOfRoomConnections  Offset `yaml:"start_of_room_connections"`
	StartOfMessages         Offset `yaml:"start_of_messages"`
	StartOfItemDescriptions Offset `yaml:"start_of_item_descriptions"`
	StartOfItemLocations    Offset `yaml:"start_of_item_locations"`
	StartOfSystemMessages   Offset `yaml:"start_of_system_messages"`
	StartOfDirections       Offset `yaml:"start_of_directions"`
}

// Catalog is an ordered list of recipes. Order matters: the loader accepts
// the first entry that parses.
type Catalog struct {
	Entries []Entry `yaml:"games"`
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parsing catalog")
	}
	for i, e := range c.Entries {
		if e.Name == "" {
			return nil, errors.Errorf("catalog entry %d has no name", i)
		}
		if e.Dictionary == NotAGame || e.Dictionary == TI994A {
			return nil, errors.Errorf("catalog entry %q: dictionary %s cannot be used in a recipe", e.Name, e.Dictionary)
		}
	}
	return &c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Extend returns a catalog holding the entries of other followed by c's own,
// so user supplied recipes are tried first.
func (c *Catalog) Extend(other *Catalog) *Catalog {
	out := &Catalog{}
	if other != nil {
		out.Entries = append(out.Entries, other.Entries...)
	}
	out.Entries = append(out.Entries, c.Entries...)
	return out
}

// ForDictionary returns the entries using dictionary d, in catalog order.
func (c *Catalog) ForDictionary(d Dictionary) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if e.Dictionary == d {
			out = append(out, e)
		}
	}
	return out
}

func unmarshalName[T comparable](n *yaml.Node, names map[T]string, out *T) error {
	for k, v := range names {
		if v == n.Value {
			*out = k
			return nil
		}
	}
	return errors.Errorf("line %d: unknown value %q", n.Line, n.Value)
}
