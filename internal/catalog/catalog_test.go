package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/tatianab/scottfree/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if len(c.Entries) == 0 {
		t.Fatal("built-in catalog is empty")
	}
	for _, e := range c.Entries {
		if _, ok := layouts[e.Header]; !ok {
			t.Errorf("%s: header style %s has no layout", e.Name, e.Header)
		}
		if e.WordLength == 0 {
			t.Errorf("%s: no word length", e.Name)
		}
	}

	four := c.ForDictionary(FourLetterUncompressed)
	if len(four) < 2 {
		t.Fatalf("ForDictionary(four letter) = %d entries", len(four))
	}
	if four[0].Name != "Adventureland (ZX Spectrum)" {
		t.Errorf("first four letter entry = %q", four[0].Name)
	}
	if four[1].StartOfRoomConnections != Follows {
		t.Errorf("room connections = %#x, want follows", int(four[1].StartOfRoomConnections))
	}

	savage := c.ForDictionary(FourLetterCompressed)[0]
	if savage.PlayerRoom != 30 || savage.Actions != ActionsCompressed {
		t.Errorf("savage island recipe = %+v", savage)
	}

	old := c.ForDictionary(ThreeLetterUncompressed)[0]
	if old.Type != TypeTextOnly || !old.Subtype.Has(English) {
		t.Errorf("text only recipe = %+v", old)
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no name", "games:\n  - dictionary: german\n    header_style: early\n"},
		{"bad dictionary", "games:\n  - name: x\n    dictionary: klingon\n    header_style: early\n"},
		{"ti dictionary", "games:\n  - name: x\n    dictionary: ti99_4a\n    header_style: early\n"},
		{"bad subtype", "games:\n  - name: x\n    dictionary: german\n    header_style: early\n    subtype: [amiga]\n"},
	}
	for _, test := range tests {
		if _, err := Parse([]byte(test.doc)); err == nil {
			t.Errorf("%s: Parse succeeded", test.name)
		}
	}
}

func TestLoadAndExtend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	doc := "games:\n  - name: Homebrew\n    dictionary: four_letter_uncompressed\n    header_style: late\n    word_length: 4\n    start_of_dictionary: 0x100\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	extra, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c := Default().Extend(extra)
	first := c.ForDictionary(FourLetterUncompressed)[0]
	if first.Name != "Homebrew" || first.StartOfDictionary != 0x100 {
		t.Errorf("first entry = %+v", first)
	}
}

func TestOffsetYAML(t *testing.T) {
	var v struct {
		A Offset `yaml:"a"`
		B Offset `yaml:"b"`
	}
	if err := yaml.Unmarshal([]byte("a: follows\nb: 0x2a\n"), &v); err != nil {
		t.Fatal(err)
	}
	if v.A != Follows || v.B != 42 {
		t.Errorf("offsets = %#x %#x", int(v.A), int(v.B))
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "a: follows\nb: 42\n" {
		t.Errorf("marshal = %q", out)
	}
}

func TestHeaderLayouts(t *testing.T) {
	h := make([]int, HeaderWords)
	for i := range h {
		h[i] = 100 + i
	}

	tests := []struct {
		style HeaderStyle
		want  models.Header
	}{
		{Early, models.Header{NumItems: 101, NumActions: 102, NumWords: 103, NumRooms: 104, MaxCarry: 105,
			PlayerRoom: 106, Treasures: 107, WordLength: 108, LightTime: 109, NumMessages: 110, TreasureRoom: 111}},
		{Late, models.Header{NumItems: 101, NumActions: 102, NumWords: 103, NumRooms: 104, MaxCarry: 105,
			PlayerRoom: 1, WordLength: 106, LightTime: -1, NumMessages: 107}},
		{Hulk, models.Header{NumItems: 103, NumActions: 102, NumWords: 101, NumRooms: 105, MaxCarry: 106,
			PlayerRoom: 107, Treasures: 108, WordLength: 100, LightTime: 109, NumMessages: 104, TreasureRoom: 110}},
		{SavageIslandC64, models.Header{NumItems: 101, NumActions: 102, NumWords: 103, NumRooms: 104, MaxCarry: 105,
			PlayerRoom: 106, WordLength: 108, LightTime: -1, NumMessages: 110}},
		{RobinC64, models.Header{NumItems: 101, NumActions: 102, NumWords: 106, NumRooms: 104, MaxCarry: 105,
			PlayerRoom: 1, WordLength: 107, LightTime: -1, NumMessages: 103}},
		{GremlinsC64, models.Header{NumItems: 101, NumActions: 102, NumWords: 105, NumRooms: 103, MaxCarry: 106,
			PlayerRoom: 108, WordLength: 107, LightTime: -1, NumMessages: 98}},
		{SupergranC64, models.Header{NumItems: 103, NumActions: 101, NumWords: 102, NumRooms: 104, MaxCarry: 108,
			PlayerRoom: 1, WordLength: 106, LightTime: -1, NumMessages: 105}},
		{SeasOfBloodC64, models.Header{NumItems: 100, NumActions: 101, NumWords: 134, NumRooms: 103, MaxCarry: 104,
			PlayerRoom: 1, WordLength: 106, LightTime: -1, NumMessages: 102}},
	}
	for _, test := range tests {
		got, err := test.style.ParseHeader(h)
		if err != nil {
			t.Fatalf("%s: %v", test.style, err)
		}
		if got != test.want {
			t.Errorf("%s:\n got %+v\nwant %+v", test.style, got, test.want)
		}
	}

	if _, err := NoHeader.ParseHeader(h); err == nil {
		t.Error("NoHeader parsed")
	}
	if _, err := Early.ParseHeader(h[:10]); err == nil {
		t.Error("short header parsed")
	}
}
