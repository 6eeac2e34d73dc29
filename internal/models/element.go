package models

import (
	"encoding/json"
	"fmt"
)

// Editor seed values for freshly placed elements
const (
	DefaultCharacterImage = "https://freepngimg.com/thumb/anime/1-2-anime-picture.png"
	DefaultDialogText     = "This is a dialog"
	DefaultElementX       = 10
	DefaultElementY       = 10
)

// Position places (and optionally sizes) a visual element.
// Coordinates are either pixels or normalized to [0,1].
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether every coordinate is non-negative
func (p Position) Valid() bool {
	return p.X >= 0 && p.Y >= 0 && p.Width >= 0 && p.Height >= 0
}

// Normalized reports whether the position lies in the unit square
func (p Position) Normalized() bool {
	for _, v := range []float64{p.X, p.Y, p.Width, p.Height} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// ElementType discriminates the visual element variants
type ElementType int

const (
	ElementImage ElementType = iota // character sprite
	ElementText                     // dialog box
)

func (t ElementType) String() string {
	switch t {
	case ElementImage:
		return "Image"
	case ElementText:
		return "Text"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

// MarshalJSON encodes the tag by name
func (t ElementType) MarshalJSON() ([]byte, error) {
	switch t {
	case ElementImage, ElementText:
		return json.Marshal(t.String())
	}
	return nil, fmt.Errorf("unknown element type %d", int(t))
}

// UnmarshalJSON accepts the tag name
func (t *ElementType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("element type: %w", err)
	}
	switch s {
	case "Image":
		*t = ElementImage
	case "Text":
		*t = ElementText
	default:
		return fmt.Errorf("unknown element type %q", s)
	}
	return nil
}

// Element is a visual element placed on a frame.
// Type decides how Content is read: an image reference for ElementImage,
// the text payload for ElementText.
type Element struct {
	Type     ElementType `json:"type"`
	Content  string      `json:"content"`
	Position Position    `json:"position"`
}

// NewCharacter returns a character sprite with editor defaults
func NewCharacter() Element {
	return Element{
		Type:     ElementImage,
		Content:  DefaultCharacterImage,
		Position: Position{X: DefaultElementX, Y: DefaultElementY},
	}
}

// NewDialog returns a dialog box with editor defaults
func NewDialog() Element {
	return Element{
		Type:     ElementText,
		Content:  DefaultDialogText,
		Position: Position{X: DefaultElementX, Y: DefaultElementY},
	}
}

func (e Element) IsCharacter() bool { return e.Type == ElementImage }

func (e Element) IsDialog() bool { return e.Type == ElementText }
