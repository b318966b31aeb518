package models

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/scottfree/internal/gameerr"
)

// SaveDir is the default directory of the save slots.
const SaveDir = ".saves"

const (
	sessionFile = "session.yaml.zst"
	markerFile  = "game.yaml"
)

// Serialize encodes the session state and item locations of w.
func Serialize(w *World) ([]byte, error) {
	data, err := yaml.Marshal(w.Snapshot())
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Deserialize applies data produced by Serialize to w. On any error w is
// left unchanged.
func Deserialize(w *World, data []byte) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return errors.Wrapf(gameerr.ErrBadSave, "decompress: %v", err)
	}
	var s Snapshot
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return errors.Wrapf(gameerr.ErrBadSave, "decode: %v", err)
	}
	return w.Restore(s)
}

// saveMarker identifies the game a save slot belongs to.
type saveMarker struct {
	Title   string `yaml:"title"`
	Dialect string `yaml:"dialect"`
	Items   int    `yaml:"items"`
	Rooms   int    `yaml:"rooms"`
}

func markerFor(w *World) saveMarker {
	return saveMarker{Title: w.Title, Dialect: w.Dialect, Items: len(w.Items), Rooms: len(w.Rooms)}
}

// Save writes the session to the named slot under dir.
func (w *World) Save(dir, name string) error {
	slot := filepath.Join(dir, name)
	if err := os.MkdirAll(slot, 0755); err != nil {
		return err
	}

	markerData, err := yaml.Marshal(markerFor(w))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(slot, markerFile), markerData, 0644); err != nil {
		return err
	}

	data, err := Serialize(w)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(slot, sessionFile), data, 0644)
}

// LoadSession restores the named slot under dir into w.
func (w *World) LoadSession(dir, name string) error {
	data, err := w.ReadSession(dir, name)
	if err != nil {
		return err
	}
	return Deserialize(w, data)
}

// ReadSession returns the serialized session in the named slot under dir
// after checking that the slot was saved from this game.
func (w *World) ReadSession(dir, name string) ([]byte, error) {
	slot := filepath.Join(dir, name)

	markerData, err := os.ReadFile(filepath.Join(slot, markerFile))
	if err != nil {
		return nil, err
	}
	var m saveMarker
	if err := yaml.Unmarshal(markerData, &m); err != nil {
		return nil, errors.Wrapf(gameerr.ErrBadSave, "slot %s: %v", name, err)
	}
	if m != markerFor(w) {
		return nil, errors.Wrapf(gameerr.ErrBadSave, "slot %s belongs to %q", name, m.Title)
	}
	return os.ReadFile(filepath.Join(slot, sessionFile))
}

// ListSessions returns the save slots under dir.
func ListSessions(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() {
			// game.yaml marks a valid slot
			markerPath := filepath.Join(dir, entry.Name(), markerFile)
			if _, err := os.Stat(markerPath); err == nil {
				sessions = append(sessions, entry.Name())
			}
		}
	}
	return sessions, nil
}
