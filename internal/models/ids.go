package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ProjectID is the backend-assigned project identifier (task id).
// The empty value means "no project selected".
type ProjectID string

// IsZero reports whether the id is absent
func (id ProjectID) IsZero() bool {
	return id == ""
}

func (id ProjectID) String() string {
	return string(id)
}

// FrameID is the small integer the backend assigns to a frame
type FrameID int

// NoFrame marks an absent frame id
const NoFrame FrameID = -1

// Valid reports whether the id refers to a frame
func (id FrameID) Valid() bool {
	return id >= 0
}

func (id FrameID) String() string {
	return strconv.Itoa(int(id))
}

// ParseFrameID parses a decimal frame id
func ParseFrameID(s string) (FrameID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return NoFrame, fmt.Errorf("invalid frame id %q: %w", s, err)
	}
	if n < 0 {
		return NoFrame, fmt.Errorf("invalid frame id %q: must be non-negative", s)
	}
	return FrameID(n), nil
}

// ResourceType is the category of an uploaded asset
type ResourceType string

const (
	ResourceBackground ResourceType = "background"
	ResourceMusic      ResourceType = "music"
	ResourceCharacter  ResourceType = "character"
)

// ResourceTypes lists every known resource kind
var ResourceTypes = []ResourceType{ResourceBackground, ResourceMusic, ResourceCharacter}

func (t ResourceType) String() string {
	return string(t)
}

// Valid reports whether the kind is one the backend knows
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceBackground, ResourceMusic, ResourceCharacter:
		return true
	}
	return false
}

// ParseResourceType parses a resource kind name (case-insensitive)
func ParseResourceType(s string) (ResourceType, error) {
	t := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown resource type %q", s)
	}
	return t, nil
}

// MusicSignal tells the player what to do with the music track on a frame
type MusicSignal int

const (
	MusicKeep  MusicSignal = 1
	MusicPause MusicSignal = 2
	MusicNext  MusicSignal = 3
	MusicPlay  MusicSignal = 4 // requires a music reference
)

func (s MusicSignal) String() string {
	switch s {
	case MusicKeep:
		return "keep"
	case MusicPause:
		return "pause"
	case MusicNext:
		return "next"
	case MusicPlay:
		return "play"
	default:
		return fmt.Sprintf("MusicSignal(%d)", int(s))
	}
}
