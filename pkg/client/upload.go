package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadResult is the response from the profile-photo upload endpoint.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadProfilePhoto uploads a profile photo as multipart form data. Unlike
// the JSON calls, uploads enforce their own timeout (60 s by default,
// overridable with WithUploadTimeout) because photo uploads routinely outlive
// the transport default.
func (c *Client) UploadProfilePhoto(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if filename == "" || r == nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: %w", ErrInvalidArgument)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: close writer: %w", err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPost, c.baseURL+"/api/uploads/profile-photo", &buf)
	if err != nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("client.UploadProfilePhoto: %w", readHTTPError(resp))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("client.UploadProfilePhoto: %w", ErrInvalidResponse)
	}
	return &result, nil
}
