package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MinProjectNameLength is the shortest project name the backend accepts
const MinProjectNameLength = 4

// Project is the top-level authoring unit
type Project struct {
	ID       ProjectID `json:"id"`
	Name     string    `json:"name"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is a named, ordered collection of frames within a project
type Chapter struct {
	Name   string           `json:"name"`
	Frames []FrameListEntry `json:"frames"`
}

// Chapter returns the named chapter, or nil
func (p Project) Chapter(name string) *Chapter {
	for i := range p.Chapters {
		if p.Chapters[i].Name == name {
			return &p.Chapters[i]
		}
	}
	return nil
}

// EngineMeta identifies the backend engine serving a project
type EngineMeta struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// FrameListEntry is the table-of-contents view of a frame; it never
// carries element content.
type FrameListEntry struct {
	FrameName   string    `json:"frame_name"`
	ChapterName string    `json:"chapter_name"`
	ProjectID   ProjectID `json:"project_id"`
	ID          FrameID   `json:"id"`
}

// ValidateProjectName checks the local precondition for project creation
func ValidateProjectName(name string) error {
	if n := utf8.RuneCountInString(name); n < MinProjectNameLength {
		return fmt.Errorf("project name must have at least %d characters, got %d", MinProjectNameLength, n)
	}
	return nil
}

// ProjectRecord is the database row for a project
type ProjectRecord struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255" json:"name"`
	NextFrame int       `json:"next_frame"` // next frame id to hand out
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterRecord is the database row for a chapter
type ChapterRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"uniqueIndex:idx_chapter_name;size:64" json:"project_id"`
	Name      string    `gorm:"uniqueIndex:idx_chapter_name;size:255" json:"name"`
	Position  int       `json:"position"` // authoring order
	CreatedAt time.Time `json:"created_at"`
}

// FrameRecord is the database row for a frame
type FrameRecord struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ProjectID   string    `gorm:"uniqueIndex:idx_frame_id;size:64" json:"project_id"`
	FrameID     int       `gorm:"uniqueIndex:idx_frame_id" json:"fid"`
	ChapterName string    `gorm:"index;size:255" json:"chapter_name"`
	Name        string    `gorm:"size:255" json:"name"`
	Position    int       `json:"position"`
	Detail      string    `gorm:"type:text" json:"-"` // serialized FrameDetail
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResourceRecord is the database row for an uploaded resource name
type ResourceRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProjectID string    `gorm:"uniqueIndex:idx_resource_name;size:64" json:"project_id"`
	Type      string    `gorm:"uniqueIndex:idx_resource_name;size:32" json:"type"`
	Name      string    `gorm:"uniqueIndex:idx_resource_name;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
