package catalog

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/scottfree/internal/models"
)

// HeaderWords is the number of little-endian words read for a header.
const HeaderWords = 24

// HeaderStyle names a header layout. Dialects put the same counts in
// different slots, and some leave fields out entirely.
type HeaderStyle int

const (
	NoHeader HeaderStyle = iota
	Early
	Late
	Hulk
	SavageIslandC64
	RobinC64
	GremlinsC64
	SupergranC64
	SeasOfBloodC64
)

var headerStyleNames = map[HeaderStyle]string{
	NoHeader:        "none",
	Early:           "early",
	Late:            "late",
	Hulk:            "hulk",
	SavageIslandC64: "savage_island_c64",
	RobinC64:        "robin_c64",
	GremlinsC64:     "gremlins_c64",
	SupergranC64:    "supergran_c64",
	SeasOfBloodC64:  "seas_of_blood_c64",
}

func (s HeaderStyle) String() string { return headerStyleNames[s] }

func (s *HeaderStyle) UnmarshalYAML(n *yaml.Node) error {
	return unmarshalName(n, headerStyleNames, s)
}

func (s HeaderStyle) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// field is either a header slot or a fixed value.
type field struct {
	slot  int
	value int
}

func slot(i int) field  { return field{slot: i} }
func fixed(v int) field { return field{slot: -1, value: v} }

func (f field) get(h []int) int {
	if f.slot < 0 {
		return f.value
	}
	return h[f.slot]
}

// layout maps each header count to its slot.
type layout struct {
	items, actions, words, rooms, maxCarry, playerRoom, treasures, wordLength, lightTime, messages, treasureRoom field
}

var layouts = map[HeaderStyle]layout{
	Early: {
		items: slot(1), actions: slot(2), words: slot(3), rooms: slot(4), maxCarry: slot(5),
		playerRoom: slot(6), treasures: slot(7), wordLength: slot(8), lightTime: slot(9),
		messages: slot(10), treasureRoom: slot(11),
	},
	Late: {
		items: slot(1), actions: slot(2), words: slot(3), rooms: slot(4), maxCarry: slot(5),
		playerRoom: fixed(1), treasures: fixed(0), wordLength: slot(6), lightTime: fixed(-1),
		messages: slot(7), treasureRoom: fixed(0),
	},
	Hulk: {
		items: slot(3), actions: slot(2), words: slot(1), rooms: slot(5), maxCarry: slot(6),
		playerRoom: slot(7), treasures: slot(8), wordLength: slot(0), lightTime: slot(9),
		messages: slot(4), treasureRoom: slot(10),
	},
	SavageIslandC64: {
		items: slot(1), actions: slot(2), words: slot(3), rooms: slot(4), maxCarry: slot(5),
		playerRoom: slot(6), treasures: fixed(0), wordLength: slot(8), lightTime: fixed(-1),
		messages: slot(10), treasureRoom: fixed(0),
	},
	RobinC64: {
		items: slot(1), actions: slot(2), words: slot(6), rooms: slot(4), maxCarry: slot(5),
		playerRoom: fixed(1), treasures: fixed(0), wordLength: slot(7), lightTime: fixed(-1),
		messages: slot(3), treasureRoom: fixed(0),
	},
	GremlinsC64: {
		items: slot(1), actions: slot(2), words: slot(5), rooms: slot(3), maxCarry: slot(6),
		playerRoom: slot(8), treasures: fixed(0), wordLength: slot(7), lightTime: fixed(-1),
		messages: fixed(98), treasureRoom: fixed(0),
	},
	SupergranC64: {
		items: slot(3), actions: slot(1), words: slot(2), rooms: slot(4), maxCarry: slot(8),
		playerRoom: fixed(1), treasures: fixed(0), wordLength: slot(6), lightTime: fixed(-1),
		messages: slot(5), treasureRoom: fixed(0),
	},
	SeasOfBloodC64: {
		items: slot(0), actions: slot(1), words: fixed(134), rooms: slot(3), maxCarry: slot(4),
		playerRoom: fixed(1), treasures: fixed(0), wordLength: slot(6), lightTime: fixed(-1),
		messages: slot(2), treasureRoom: fixed(0),
	},
}

// ParseHeader maps raw header words onto a models.Header.
func (s HeaderStyle) ParseHeader(h []int) (models.Header, error) {
	l, ok := layouts[s]
	if !ok {
		return models.Header{}, errors.Errorf("unhandled header style %s", s)
	}
	if len(h) < HeaderWords {
		return models.Header{}, errors.Errorf("header has %d words, want %d", len(h), HeaderWords)
	}
	return models.Header{
		NumItems:     l.items.get(h),
		NumActions:   l.actions.get(h),
		NumWords:     l.words.get(h),
		NumRooms:     l.rooms.get(h),
		MaxCarry:     l.maxCarry.get(h),
		PlayerRoom:   l.playerRoom.get(h),
		Treasures:    l.treasures.get(h),
		WordLength:   l.wordLength.get(h),
		LightTime:    l.lightTime.get(h),
		NumMessages:  l.messages.get(h),
		TreasureRoom: l.treasureRoom.get(h),
	}, nil
}
