package models

// Special item locations and reserved ids shared by every game.
const (
	Carried     = 255 // item is held by the player
	Destroyed   = 0   // item is off-stage
	LightSource = 9   // item number of the light source
	DarkBit     = 15  // flag set while it is dark
	LightOutBit = 16  // flag set once the light source is exhausted
	NumCounters = 16
	MaxFlags    = 64
)

// Origin records which loader produced a world. Some behaviour (light
// destruction, room description punctuation) depends on it.
type Origin int

const (
	OriginDatabase Origin = iota // plain-text ScottFree database
	OriginBinary                 // one of the binary game image dialects
	OriginTI994A                 // TI-99/4A image with compiled byte-code
)

func (o Origin) String() string {
	switch o {
	case OriginDatabase:
		return "database"
	case OriginBinary:
		return "binary"
	case OriginTI994A:
		return "ti99/4a"
	}
	return "unknown"
}

// Header holds the counts and limits of a loaded game. Counts follow the
// original convention: NumItems is the highest item index, so a game has
// NumItems+1 items.
type Header struct {
	NumItems     int `yaml:"num_items"`
	NumActions   int `yaml:"num_actions"`
	NumWords     int `yaml:"num_words"`
	NumRooms     int `yaml:"num_rooms"`
	MaxCarry     int `yaml:"max_carry"`
	PlayerRoom   int `yaml:"player_room"`
	Treasures    int `yaml:"treasures"`
	WordLength   int `yaml:"word_length"`
	LightTime    int `yaml:"light_time"`
	NumMessages  int `yaml:"num_messages"`
	TreasureRoom int `yaml:"treasure_room"`
}

// Item is a movable object.
type Item struct {
	Text       string `yaml:"text"`
	Location   int    `yaml:"location"`
	InitialLoc int    `yaml:"initial_loc"`
	AutoGet    string `yaml:"auto_get,omitempty"`
	Flag       int    `yaml:"flag,omitempty"`
	Image      int    `yaml:"image,omitempty"`
}

// Room is a location with exits north, south, east, west, up and down.
type Room struct {
	Text  string `yaml:"text"`
	Exits [6]int `yaml:"exits,flow"`
	Image int    `yaml:"image,omitempty"`
}

// World is a loaded game: the static definition decoded by the loader plus
// the mutable session state the action VM works on.
type World struct {
	Title       string `yaml:"title"`
	Dialect     string `yaml:"dialect"`
	Origin      Origin `yaml:"origin"`
	Mysterious  bool   `yaml:"mysterious,omitempty"`
	Header      Header `yaml:"header"`
	LightRefill int    `yaml:"light_refill"`
	Version     int    `yaml:"version,omitempty"`
	Adventure   int    `yaml:"adventure,omitempty"`

	Items          []Item   `yaml:"items"`
	Rooms          []Room   `yaml:"rooms"`
	Verbs          []string `yaml:"verbs"`
	Nouns          []string `yaml:"nouns"`
	Messages       []string `yaml:"messages"`
	Actions        []Action `yaml:"actions"`
	SystemMessages []string `yaml:"system_messages,omitempty"`
	Directions     []string `yaml:"directions,omitempty"`

	State SessionState `yaml:"state"`
}

// SessionState is everything the VM changes apart from item locations.
type SessionState struct {
	BitFlags       uint64           `yaml:"bit_flags"`
	CurrentLoc     int              `yaml:"current_loc"`
	Counters       [NumCounters]int `yaml:"counters,flow"`
	CurrentCounter int              `yaml:"current_counter"`
	RoomSaved      [NumCounters]int `yaml:"room_saved,flow"`
	SavedRoom      int              `yaml:"saved_room"`
	LightTime      int              `yaml:"light_time"`
	AutoInventory  bool             `yaml:"auto_inventory,omitempty"`
}

// Flag reports whether bit flag n is set.
func (s *SessionState) Flag(n int) bool {
	if n < 0 || n >= MaxFlags {
		return false
	}
	return s.BitFlags&(1<<uint(n)) != 0
}

// SetFlag sets or clears bit flag n.
func (s *SessionState) SetFlag(n int, on bool) {
	if n < 0 || n >= MaxFlags {
		return
	}
	if on {
		s.BitFlags |= 1 << uint(n)
	} else {
		s.BitFlags &^= 1 << uint(n)
	}
}

// Reset puts the session into its starting state.
func (w *World) Reset() {
	w.State = SessionState{
		CurrentLoc: w.Header.PlayerRoom,
		LightTime:  w.Header.LightTime,
	}
	for i := range w.Items {
		w.Items[i].Location = w.Items[i].InitialLoc
	}
}

// HasItem reports whether item i exists.
func (w *World) HasItem(i int) bool {
	return i >= 0 && i < len(w.Items)
}

// HasRoom reports whether room r exists.
func (w *World) HasRoom(r int) bool {
	return r >= 0 && r < len(w.Rooms)
}

// CountCarried is the number of items the player holds.
func (w *World) CountCarried() int {
	n := 0
	for _, it := range w.Items {
		if it.Location == Carried {
			n++
		}
	}
	return n
}

// LightPresent reports whether the light source is carried or in the
// current room.
func (w *World) LightPresent() bool {
	if !w.HasItem(LightSource) {
		return false
	}
	loc := w.Items[LightSource].Location
	return loc == Carried || loc == w.State.CurrentLoc
}

// IsDark reports whether the player cannot see.
func (w *World) IsDark() bool {
	return w.State.Flag(DarkBit) && !w.LightPresent()
}

// Message returns message n, or "" when it does not exist.
func (w *World) Message(n int) string {
	if n < 0 || n >= len(w.Messages) {
		return ""
	}
	return w.Messages[n]
}
