package models

import (
	"sort"
)

// FrameDetail is the full body of one frame as exchanged with the backend.
// It is the shape persisted by get_frame / modify_frame.
type FrameDetail struct {
	Background      string              `json:"background"`
	BackgroundAttr  Position            `json:"background_attr"`
	Character       map[string]Position `json:"character"` // character name -> placement
	Music           string              `json:"music"`
	MusicSignal     MusicSignal         `json:"music_signal"`
	Dialog          string              `json:"dialog"`
	DialogCharacter string              `json:"dialog_character"`
	Name            string              `json:"name"`
}

// NewFrameDetail returns the blank body used when nothing could be fetched
func NewFrameDetail() FrameDetail {
	return FrameDetail{
		Character:   map[string]Position{},
		MusicSignal: MusicKeep,
	}
}

// CharacterNames returns the placed characters in name order
func (d FrameDetail) CharacterNames() []string {
	names := make([]string, 0, len(d.Character))
	for name := range d.Character {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy that shares no map with d
func (d FrameDetail) Clone() FrameDetail {
	out := d
	out.Character = make(map[string]Position, len(d.Character))
	for k, v := range d.Character {
		out.Character[k] = v
	}
	return out
}

// Equal compares every field; a nil and an empty character map are equal
func (d FrameDetail) Equal(o FrameDetail) bool {
	if d.Background != o.Background ||
		d.BackgroundAttr != o.BackgroundAttr ||
		d.Music != o.Music ||
		d.MusicSignal != o.MusicSignal ||
		d.Dialog != o.Dialog ||
		d.DialogCharacter != o.DialogCharacter ||
		d.Name != o.Name {
		return false
	}
	if len(d.Character) != len(o.Character) {
		return false
	}
	for k, v := range d.Character {
		if ov, ok := o.Character[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
