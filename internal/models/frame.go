package models

import (
	"errors"
	"fmt"
)

var (
	ErrFrameCycle  = errors.New("frame branch would create a cycle")
	ErrFrameShared = errors.New("frame already belongs to the tree")
)

// Frame is a node of the branching story graph as held by the editor.
// A frame without Branch is linear; a frame with children is a choice point.
// Each frame has at most one parent, so the graph stays a tree.
type Frame struct {
	Name           string    `json:"name"`
	ID             FrameID   `json:"id"`
	BackgroundName string    `json:"backgroundName"`
	Elements       []Element `json:"elements"` // authoring order is z-order
	Branch         []*Frame  `json:"branch,omitempty"`

	parent *Frame
}

// NewFrame returns an empty frame that has not been stored yet
func NewFrame(name string) *Frame {
	return &Frame{
		Name:     name,
		ID:       NoFrame,
		Elements: []Element{},
	}
}

func (f *Frame) IsTerminal() bool {
	return len(f.Branch) == 0
}

func (f *Frame) IsBranchPoint() bool {
	return len(f.Branch) > 0
}

// AddElement appends an element on top of the existing ones
func (f *Frame) AddElement(e Element) {
	f.Elements = append(f.Elements, e)
}

// AddBranch attaches child as an alternative continuation of f. A child
// already attached anywhere else is rejected.
func (f *Frame) AddBranch(child *Frame) error {
	if child == nil {
		return fmt.Errorf("nil branch frame")
	}
	if child == f || child.contains(f) {
		return fmt.Errorf("%w: %q under %q", ErrFrameCycle, child.Name, f.Name)
	}
	if child.parent != nil || f.contains(child) {
		return fmt.Errorf("%w: %q", ErrFrameShared, child.Name)
	}
	f.Branch = append(f.Branch, child)
	child.parent = f
	return nil
}

// contains reports whether target is reachable from f (f included)
func (f *Frame) contains(target *Frame) bool {
	found := false
	_ = f.walk(func(n *Frame) bool {
		if n == target {
			found = true
			return false
		}
		return true
	}, make(map[*Frame]bool))
	return found
}

// Walk visits the tree depth-first, parents before children.
// Returning false from fn stops the walk.
func (f *Frame) Walk(fn func(*Frame) bool) {
	_ = f.walk(fn, make(map[*Frame]bool))
}

func (f *Frame) walk(fn func(*Frame) bool, seen map[*Frame]bool) bool {
	if f == nil || seen[f] {
		return true
	}
	seen[f] = true
	if !fn(f) {
		return false
	}
	for _, child := range f.Branch {
		if !child.walk(fn, seen) {
			return false
		}
	}
	return true
}

// Count returns the number of frames in the tree rooted at f
func (f *Frame) Count() int {
	n := 0
	f.Walk(func(*Frame) bool {
		n++
		return true
	})
	return n
}

// Validate checks that no frame is reachable twice, which would mean a
// shared child or a cycle assembled by hand.
func (f *Frame) Validate() error {
	return f.validate(make(map[*Frame]bool))
}

func (f *Frame) validate(seen map[*Frame]bool) error {
	if seen[f] {
		return fmt.Errorf("%w: %q", ErrFrameShared, f.Name)
	}
	seen[f] = true
	for _, child := range f.Branch {
		if child == nil {
			return fmt.Errorf("frame %q has a nil branch", f.Name)
		}
		if err := child.validate(seen); err != nil {
			return err
		}
	}
	return nil
}
