package interfaces

import (
	"context"

	"Yui-Editor/studio/internal/models"
)

// ProjectStore keeps projects and their resources
type ProjectStore interface {
	// InitProject returns the id of the project with this name, creating it if needed
	InitProject(ctx context.Context, name string) (models.ProjectID, error)

	// ListProjects returns project names in creation order
	ListProjects(ctx context.Context) ([]string, error)

	// ProjectName returns the stored (lower-cased) name of a project
	ProjectName(ctx context.Context, id models.ProjectID) (string, error)

	// RemoveProject deletes a project and everything it owns and returns
	// the id it had
	RemoveProject(ctx context.Context, name string) (models.ProjectID, error)

	// ListResources returns resource names of one kind in upload order
	ListResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType) ([]string, error)

	// AddResource records an uploaded resource name
	AddResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error

	// RemoveResource forgets a resource
	RemoveResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) error

	// RenameResource renames a resource in place
	RenameResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, oldName, newName string) error
}

// ChapterStore keeps chapters and the frames inside them
type ChapterStore interface {
	ListChapters(ctx context.Context, id models.ProjectID) ([]string, error)
	AddChapter(ctx context.Context, id models.ProjectID, chapter string) error
	RemoveChapter(ctx context.Context, id models.ProjectID, chapter string) error

	// AppendFrame creates a frame at the end of the chapter and returns its id
	AppendFrame(ctx context.Context, id models.ProjectID, chapter, frameName string) (models.FrameID, error)

	// ListFrames returns the frames of a chapter in authoring order
	ListFrames(ctx context.Context, id models.ProjectID, chapter string) ([]models.FrameListEntry, error)

	GetFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) (models.FrameDetail, error)
	ModifyFrame(ctx context.Context, id models.ProjectID, fid models.FrameID, detail models.FrameDetail) error
	RemoveFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) error
}

// StoryStore is the persistence behind the stub backend
type StoryStore interface {
	ProjectStore
	ChapterStore

	// Close releases the underlying connection
	Close() error
}
