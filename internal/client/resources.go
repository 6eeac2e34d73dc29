package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/models"
)

// ListResources returns the names of the project's resources of one kind.
// An absent project id yields an empty list without a request.
func (c *Client) ListResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType) ([]string, error) {
	return c.FilterResources(ctx, id, rtype, "")
}

// FilterResources is ListResources restricted to names containing filter.
// An empty filter matches everything.
func (c *Client) FilterResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType, filter string) ([]string, error) {
	const op = "list resources"
	if id.IsZero() {
		return []string{}, nil
	}
	if err := checkResourceType(rtype); err != nil {
		return []string{}, err
	}

	params := NewParams().Add("task_id", id).Add("rtype", rtype)
	if filter != "" {
		params = params.Add("filter_by", filter)
	}

	names := []string{}
	err := c.content(ctx, request{
		op:       op,
		endpoint: endpointGetResources,
		params:   params,
	}, &names)
	if err != nil {
		return []string{}, c.fail(op, err)
	}
	return nonNil(names), nil
}

// UploadResource sends one file as multipart field "file"
func (c *Client) UploadResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, filename string, body io.Reader) (bool, error) {
	return c.upload(ctx, "upload resource", endpointUpload, "file", id, rtype, []interfaces.Upload{{Filename: filename, Body: body}})
}

// UploadResources sends several files as repeated multipart field "files"
func (c *Client) UploadResources(ctx context.Context, id models.ProjectID, rtype models.ResourceType, files []interfaces.Upload) (bool, error) {
	return c.upload(ctx, "upload resources", endpointUploadFiles, "files", id, rtype, files)
}

func (c *Client) upload(ctx context.Context, op, endpoint, field string, id models.ProjectID, rtype models.ResourceType, files []interfaces.Upload) (bool, error) {
	if id.IsZero() {
		return false, nil
	}
	if err := checkResourceType(rtype); err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, &ValidationError{Field: "files", Message: "nothing to upload"}
	}

	body, contentType, err := multipartBody(field, files)
	if err != nil {
		return false, err
	}

	ok, err := c.status(ctx, request{
		op:          op,
		endpoint:    endpoint,
		params:      NewParams().Add("task_id", id).Add("rtype", rtype),
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

// RemoveResource deletes a resource by name
func (c *Client) RemoveResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, name string) (bool, error) {
	const op = "remove resource"
	if id.IsZero() || name == "" {
		return false, nil
	}
	if err := checkResourceType(rtype); err != nil {
		return false, err
	}

	ok, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointRemoveRes,
		params:   NewParams().Add("task_id", id).Add("rtype", rtype).Add("item_name", name),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

// RenameResource renames a resource
func (c *Client) RenameResource(ctx context.Context, id models.ProjectID, rtype models.ResourceType, oldName, newName string) (bool, error) {
	const op = "rename resource"
	if id.IsZero() || oldName == "" {
		return false, nil
	}
	if err := checkResourceType(rtype); err != nil {
		return false, err
	}
	if newName == "" {
		return false, &ValidationError{Field: "new name", Message: "must not be empty"}
	}

	ok, err := c.status(ctx, request{
		op:       op,
		endpoint: endpointRenameRes,
		params: NewParams().
			Add("task_id", id).
			Add("rtype", rtype).
			Add("item_name", oldName).
			Add("new_name", newName),
	})
	if err != nil {
		return false, c.fail(op, err)
	}
	return ok, nil
}

func checkResourceType(rtype models.ResourceType) error {
	if !rtype.Valid() {
		return &ValidationError{Field: "resource type", Message: fmt.Sprintf("unknown type %q", rtype)}
	}
	return nil
}

// multipartBody encodes files under one form field
func multipartBody(field string, files []interfaces.Upload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		if f.Filename == "" || f.Body == nil {
			return nil, "", &ValidationError{Field: "file", Message: "filename and body are required"}
		}
		part, err := w.CreateFormFile(field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
