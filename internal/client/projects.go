package client

import (
	"context"

	"Yui-Editor/studio/internal/models"
)

// CreateProject initializes the project name on the backend and returns
// the id it assigned. Names shorter than four characters are rejected
// before any request is made.
func (c *Client) CreateProject(ctx context.Context, name string) (models.ProjectID, error) {
	const op = "create project"
	if err := models.ValidateProjectName(name); err != nil {
		return "", &ValidationError{Field: "project name", Message: err.Error()}
	}

	var content struct {
		TaskID string `json:"task_id"`
	}
	err := c.content(ctx, request{
		op:       op,
		endpoint: endpointInitProject,
		params:   NewParams().Add("base_dir", name),
	}, &content)
	if err != nil {
		return "", c.fail(op, err)
	}
	if content.TaskID == "" {
		return "", c.fail(op, &ServerError{Op: op, Status: StatusOK, Msg: "response carried no task_id"})
	}

	return models.ProjectID(content.TaskID), nil
}

// ListProjects returns the names of every project on the backend
func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	const op = "list projects"

	names := []string{}
	err := c.content(ctx, request{op: op, endpoint: endpointListProjects}, &names)
	if err != nil {
		return []string{}, c.fail(op, err)
	}
	return nonNil(names), nil
}

// RemoveProject deletes the project with the given name
func (c *Client) RemoveProject(ctx context.Context, name string) (bool, error) {
	const op = "remove project"
	if name == "" {
		return false, nil
	}

	ok, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointRemoveProject,
		params:   NewParams().Add("project_name", name),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

// RemoveProjectByID deletes the project with the given id
func (c *Client) RemoveProjectByID(ctx context.Context, id models.ProjectID) (bool, error) {
	const op = "remove project by id"
	if id.IsZero() {
		return false, nil
	}

	ok, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointRemoveByID,
		params:   NewParams().Add("task_id", id),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

// EngineMeta returns the name and version of the engine behind a project
func (c *Client) EngineMeta(ctx context.Context, id models.ProjectID) (models.EngineMeta, error) {
	const op = "engine meta"
	if id.IsZero() {
		return models.EngineMeta{}, nil
	}

	var meta models.EngineMeta
	err := c.content(ctx, request{
		op:       op,
		endpoint: endpointMeta,
		params:   NewParams().Add("task_id", id),
	}, &meta)
	if err != nil {
		return models.EngineMeta{}, c.fail(op, err)
	}
	return meta, nil
}

// GetStruct returns the project outline: every chapter with its frame
// list, or only the named chapter when chapter is not empty.
func (c *Client) GetStruct(ctx context.Context, id models.ProjectID, chapter string) (models.Project, error) {
	const op = "get struct"
	if id.IsZero() {
		return models.Project{}, nil
	}

	params := NewParams().Add("task_id", id)
	if chapter != "" {
		params = params.Add("chapter", chapter)
	}

	var project models.Project
	err := c.content(ctx, request{op: op, endpoint: endpointGetStruct, params: params}, &project)
	if err != nil {
		return models.Project{}, c.fail(op, err)
	}
	if project.Chapters == nil {
		project.Chapters = []models.Chapter{}
	}
	for i := range project.Chapters {
		if project.Chapters[i].Frames == nil {
			project.Chapters[i].Frames = []models.FrameListEntry{}
		}
	}
	return project, nil
}

// Commit asks the backend to flush buffered engine changes for a project
func (c *Client) Commit(ctx context.Context, id models.ProjectID) (bool, error) {
	const op = "commit"
	if id.IsZero() {
		return false, nil
	}

	ok, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointCommit,
		params:   NewParams().Add("task_id", id),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
