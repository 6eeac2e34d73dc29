package client

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"Yui-Editor/studio/internal/models"
)

// ListFramesInChapter returns the table of contents of a chapter.
//
// The backend serves frame ids and frame names from two endpoints; both are
// fetched concurrently and paired by index. If the two lists differ in length
// the pairing cannot be trusted and the call fails with ErrFrameListMismatch.
func (c *Client) ListFramesInChapter(ctx context.Context, id models.ProjectID, chapter string) ([]models.FrameListEntry, error) {
	const op = "list frames"
	if id.IsZero() || chapter == "" {
		return []models.FrameListEntry{}, nil
	}

	params := NewParams().Add("task_id", id).Add("chapter_name", chapter)
	var (
		ids   []models.FrameID
		names []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.content(gctx, request{op: op, endpoint: endpointGetFrameIDs, params: params}, &ids)
	})
	g.Go(func() error {
		return c.content(gctx, request{op: op, endpoint: endpointGetFrameNames, params: params}, &names)
	})
	if err := g.Wait(); err != nil {
		return []models.FrameListEntry{}, c.fail(op, err)
	}

	if len(ids) != len(names) {
		return []models.FrameListEntry{}, c.fail(op, &ServerError{Op: op, Status: StatusOK, Err: ErrFrameListMismatch})
	}

	entries := make([]models.FrameListEntry, 0, len(ids))
	for i, fid := range ids {
		entries = append(entries, models.FrameListEntry{
			FrameName:   names[i],
			ChapterName: chapter,
			ProjectID:   id,
			ID:          fid,
		})
	}
	return entries, nil
}

// FetchFrame returns the body of a frame. Failures and absent ids yield a
// blank FrameDetail.
func (c *Client) FetchFrame(ctx context.Context, fid models.FrameID, id models.ProjectID) (models.FrameDetail, error) {
	const op = "fetch frame"
	if !fid.Valid() || id.IsZero() {
		return models.NewFrameDetail(), nil
	}

	detail := models.NewFrameDetail()
	err := c.content(ctx, request{
		op:       op,
		endpoint: endpointGetFrame,
		params:   NewParams().Add("task_id", id).Add("fid", fid),
	}, &detail)
	if err != nil {
		return models.NewFrameDetail(), c.fail(op, err)
	}
	if detail.Character == nil {
		detail.Character = map[string]models.Position{}
	}
	return detail, nil
}

// ModifyFrame replaces the body of a frame; true iff the backend reports success
func (c *Client) ModifyFrame(ctx context.Context, fid models.FrameID, id models.ProjectID, detail models.FrameDetail) (bool, error) {
	const op = "modify frame"
	if !fid.Valid() || id.IsZero() {
		return false, nil
	}

	body, err := jsonBody(detail)
	if err != nil {
		return false, err
	}

	ok, err := c.status(ctx, request{
		op:          op,
		endpoint:    endpointModifyFrame,
		params:      NewParams().Add("task_id", id).Add("fid", fid),
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

// AppendFrame adds a frame at the end of a chapter and echoes the chapter
// name; "" on failure.
func (c *Client) AppendFrame(ctx context.Context, id models.ProjectID, chapter, frameName string) (string, error) {
	const op = "append frame"
	if id.IsZero() || chapter == "" {
		return "", nil
	}
	if frameName == "" {
		return "", &ValidationError{Field: "frame name", Message: "must not be empty"}
	}

	if _, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointAppendFrame,
		params: NewParams().
			Add("task_id", id).
			Add("to_chapter", chapter).
			Add("frame_name", frameName),
	}); err != nil {
		return "", c.fail(op, err)
	}
	return chapter, nil
}

// RemoveFrame deletes a frame
func (c *Client) RemoveFrame(ctx context.Context, id models.ProjectID, fid models.FrameID) (bool, error) {
	const op = "remove frame"
	if id.IsZero() || !fid.Valid() {
		return false, nil
	}

	ok, err := c.status(ctx, request{
		op:       op,
		method:   http.MethodDelete,
		endpoint: endpointRemoveFrame,
		params:   NewParams().Add("task_id", id).Add("fid", fid),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}
