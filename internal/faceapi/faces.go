package faceapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ListFacesRaw fetches the face list for uid and returns the upstream response verbatim,
// whatever its status.
func (c *Client) ListFacesRaw(ctx context.Context, uid string) (*Response, error) {
	return c.doBuffered(ctx, "list", http.MethodGet, c.resolveURL("faces", "list"), uid, nil, "", c.timeouts.upstream)
}

// ListFaces retrieves all face entries visible to uid.
func (c *Client) ListFaces(ctx context.Context, uid string) ([]FaceEntry, error) {
	result, err := doJSON[listResponse](ctx, c, "list", http.MethodGet, c.resolveURL("faces", "list"), uid, c.timeouts.upstream)
	if err != nil {
		return nil, err
	}
	return result.entries(), nil
}

// DeleteFace deletes a single face entry by id.
func (c *Client) DeleteFace(ctx context.Context, uid string, id FaceID) error {
	if !id.Valid() {
		return errors.New("face id is required")
	}

	endpoint := c.resolveURL("faces", "delete", url.PathEscape(id.String()))
	resp, err := c.doBuffered(ctx, "delete", http.MethodDelete, endpoint, uid, nil, "", c.timeouts.delete)
	if err != nil {
		return fmt.Errorf("delete face %s: %w", id, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}
	}
	return nil
}
