package client

import (
	"context"
	"net/http"

	"Yui-Editor/studio/internal/models"
)

// ListChapters returns the chapter names of a project in authoring order.
// An absent project id yields an empty list without a request.
func (c *Client) ListChapters(ctx context.Context, id models.ProjectID) ([]string, error) {
	const op = "list chapters"
	if id.IsZero() {
		return []string{}, nil
	}

	names := []string{}
	err := c.content(ctx, request{
		op:       op,
		endpoint: endpointGetChapters,
		params:   NewParams().Add("task_id", id),
	}, &names)
	if err != nil {
		return []string{}, c.fail(op, err)
	}
	return nonNil(names), nil
}

// AddChapter creates a chapter and echoes its name; "" on failure
func (c *Client) AddChapter(ctx context.Context, id models.ProjectID, chapter string) (string, error) {
	const op = "add chapter"
	if id.IsZero() || chapter == "" {
		return "", nil
	}

	if _, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointAddChapter,
		params:   NewParams().Add("task_id", id).Add("chapter_name", chapter),
	}); err != nil {
		return "", c.fail(op, err)
	}
	return chapter, nil
}

// RemoveChapter deletes a chapter and its frames
func (c *Client) RemoveChapter(ctx context.Context, id models.ProjectID, chapter string) (bool, error) {
	const op = "remove chapter"
	if id.IsZero() || chapter == "" {
		return false, nil
	}

	ok, err := c.status(ctx, request{
		op:       op,
		method:   http.MethodDelete,
		endpoint: endpointRemoveChapter,
		params:   NewParams().Add("task_id", id).Add("chapter_name", chapter),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}
