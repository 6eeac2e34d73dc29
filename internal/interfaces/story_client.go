package interfaces

import (
	"context"
	"io"

	"Yui-Editor/studio/internal/models"
)

// Upload is one file sent to the resource upload endpoints
type Upload struct {
	Filename string
	Body     io.Reader
}

// StoryClient is the editor-facing API of the authoring backend.
// Every method is a single round trip; on failure the returned value is
// the documented default and the error says why.
type StoryClient interface {
	// CreateProject initializes a project and returns its id
	CreateProject(ctx context.Context, name string) (models.ProjectID, error)

	// ListProjects returns the names of all projects
	ListProjects(ctx context.Context) ([]string, error)

	// RemoveProject deletes a project by name
	RemoveProject(ctx context.Context, name string) (bool, error)

	// RemoveProjectByID deletes a project by id
	RemoveProjectByID(ctx context.Context, id models.ProjectID) (bool, error)

	// ListResources returns resource names of one kind
	ListResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType) ([]string, error)

	// FilterResources returns resource names of one kind that contain filter
	FilterResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType, filter string) ([]string, error)

	// UploadResource uploads a single file
	UploadResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, filename string, body io.Reader) (bool, error)

	// UploadResources uploads several files in one request
	UploadResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType, files []Upload) (bool, error)

	// RemoveResource deletes a resource by name
	RemoveResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) (bool, error)

	// RenameResource renames a resource
	RenameResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, oldName, newName string) (bool, error)

	// ListChapters returns chapter names in authoring order
	ListChapters(ctx context.Context, id models.ProjectID) ([]string, error)

	// AddChapter creates a chapter and echoes its name
	AddChapter(ctx context.Context, id models.ProjectID, chapter string) (string, error)

	// RemoveChapter deletes a chapter
	RemoveChapter(ctx context.Context, id models.ProjectID, chapter string) (bool, error)

	// ListFramesInChapter returns the table of contents of a chapter
	ListFramesInChapter(ctx context.Context, id models.ProjectID, chapter string) ([]models.FrameListEntry, error)

	// FetchFrame returns the full body of a frame
	FetchFrame(ctx context.Context, fid models.FrameID, id models.ProjectID) (models.FrameDetail, error)

	// ModifyFrame replaces the body of a frame
	ModifyFrame(ctx context.Context, fid models.FrameID, id models.ProjectID, detail models.FrameDetail) (bool, error)

	// AppendFrame adds a frame at the end of a chapter and echoes the chapter name
	AppendFrame(ctx context.Context, id models.ProjectID, chapter, frameName string) (string, error)

	// RemoveFrame deletes a frame
	RemoveFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) (bool, error)

	// Commit flushes buffered changes on the backend
	Commit(ctx context.Context, id models.ProjectID) (bool, error)

	// EngineMeta names the engine serving the project
	EngineMeta(ctx context.Context, id models.ProjectID) (models.EngineMeta, error)

	// GetStruct returns the chapter and frame outline of a project
	GetStruct(ctx context.Context, id models.ProjectID, chapter string) (models.Project, error)
}
