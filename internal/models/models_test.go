package models

import (
	"errors"
	"testing"

	"github.com/tatianab/scottfree/internal/gameerr"
)

func testWorld() *World {
	w := &World{
		Title:   "Test Adventure",
		Dialect: "database",
		Header:  Header{NumItems: 2, NumRooms: 3, PlayerRoom: 1, LightTime: 50, MaxCarry: 5},
		Items: []Item{
			{Text: "Sign", Location: 1, InitialLoc: 1},
			{Text: "Lamp", Location: 2, InitialLoc: 2, AutoGet: "LAMP"},
			{Text: "*Gold*", Location: 3, InitialLoc: 3, AutoGet: "GOLD"},
		},
		Rooms: make([]Room, 4),
	}
	w.Reset()
	return w
}

func TestPackConditionRoundTrip(t *testing.T) {
	for c := 1; c <= 19; c++ {
		for p := 0; p <= 1000; p++ {
			gc, gp := UnpackCondition(PackCondition(c, p))
			if gc != c || gp != p {
				t.Fatalf("condition (%d, %d) unpacked as (%d, %d)", c, p, gc, gp)
			}
		}
	}
}

func TestPackCommandsRoundTrip(t *testing.T) {
	for a := 0; a < 150; a++ {
		for b := 0; b < 150; b++ {
			ga, gb := UnpackCommands(PackCommands(a, b))
			if ga != a || gb != b {
				t.Fatalf("commands (%d, %d) unpacked as (%d, %d)", a, b, ga, gb)
			}
		}
	}
}

func TestNewAction(t *testing.T) {
	a := NewAction(10, 25, [][2]int{{1, 9}, {0, 4}}, []int{52, 73, 3})
	if a.Verb() != 10 || a.Noun() != 25 {
		t.Errorf("vocab = (%d, %d), want (10, 25)", a.Verb(), a.Noun())
	}
	if a.Condition[0] != 181 || a.Condition[1] != 80 {
		t.Errorf("conditions = %v", a.Condition)
	}
	if got := a.Commands(); got != [4]int{52, 73, 3, 0} {
		t.Errorf("commands = %v", got)
	}
}

func TestFlags(t *testing.T) {
	var s SessionState
	s.SetFlag(DarkBit, true)
	s.SetFlag(40, true)
	if !s.Flag(DarkBit) || !s.Flag(40) || s.Flag(3) {
		t.Errorf("flags = %b", s.BitFlags)
	}
	s.SetFlag(DarkBit, false)
	if s.Flag(DarkBit) {
		t.Error("dark flag still set")
	}
	s.SetFlag(MaxFlags, true)
	if s.Flag(MaxFlags) {
		t.Error("out of range flag reported set")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	w := testWorld()
	w.State.Counters[3] = 7
	w.State.CurrentLoc = 2
	w.State.SetFlag(DarkBit, true)
	w.Items[1].Location = Carried

	data, err := Serialize(w)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	w2 := testWorld()
	if err := Deserialize(w2, data); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if w2.State != w.State {
		t.Errorf("state = %+v, want %+v", w2.State, w.State)
	}
	if w2.Items[1].Location != Carried {
		t.Errorf("lamp location = %d, want carried", w2.Items[1].Location)
	}
	if w2.Items[1].InitialLoc != 2 {
		t.Errorf("initial location changed to %d", w2.Items[1].InitialLoc)
	}
}

func TestDeserializeRejectsBadState(t *testing.T) {
	w := testWorld()
	w.State.CurrentLoc = 9 // not a room
	data, err := Serialize(w)
	if err != nil {
		t.Fatal(err)
	}

	w2 := testWorld()
	before := w2.Snapshot()
	if err := Deserialize(w2, data); !errors.Is(err, gameerr.ErrBadSave) {
		t.Fatalf("got %v, want ErrBadSave", err)
	}
	if w2.State != before.State {
		t.Error("state changed after a bad restore")
	}

	if err := Deserialize(w2, []byte("not zstd")); !errors.Is(err, gameerr.ErrBadSave) {
		t.Errorf("garbage: got %v, want ErrBadSave", err)
	}
}

func TestSaveSlots(t *testing.T) {
	dir := t.TempDir()
	w := testWorld()
	w.Items[2].Location = Carried
	if err := w.Save(dir, "slot1"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0] != "slot1" {
		t.Errorf("ListSessions = %v", sessions)
	}

	w2 := testWorld()
	if err := w2.LoadSession(dir, "slot1"); err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if w2.Items[2].Location != Carried {
		t.Errorf("gold location = %d, want carried", w2.Items[2].Location)
	}

	other := testWorld()
	other.Title = "Another Game"
	if err := other.LoadSession(dir, "slot1"); !errors.Is(err, gameerr.ErrBadSave) {
		t.Errorf("foreign slot: got %v, want ErrBadSave", err)
	}

	empty, err := ListSessions(t.TempDir() + "/missing")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListSessions(missing) = %v, %v", empty, err)
	}
}
