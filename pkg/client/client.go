// Package client is the StudyHall API client. It attaches the bearer
// credential and a per-launch session id to every request, surfaces non-2xx
// responses as *HTTPError, and routes collection payloads through the
// normalizer so callers only ever see canonical records.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DanePascual/studyhall/pkg/domain"
	"github.com/DanePascual/studyhall/pkg/normalize"
)

const defaultUploadTimeout = 60 * time.Second

// Client is the StudyHall API client.
type Client struct {
	baseURL       string
	token         string
	session       string
	httpClient    *http.Client
	uploadTimeout time.Duration
	log           zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUploadTimeout overrides the multipart upload timeout.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.uploadTimeout = d
		}
	}
}

// WithLogger sets the diagnostic logger used for normalization skips.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a new API client.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		session: uuid.NewString(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		uploadTimeout: defaultUploadTimeout,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Rooms ---

// ListRooms fetches all visible study rooms.
func (c *Client) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := c.get(ctx, "/rooms", &rooms); err != nil {
		return nil, fmt.Errorf("client.ListRooms: %w", err)
	}
	return rooms, nil
}

// GetRoom fetches a single room by id.
func (c *Client) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	if err := c.get(ctx, "/rooms/"+url.PathEscape(id), &room); err != nil {
		return nil, fmt.Errorf("client.GetRoom: %w", err)
	}
	return &room, nil
}

// CreateRoomRequest is the payload for creating a room.
type CreateRoomRequest struct {
	Name            string `json:"name"`
	Subject         string `json:"subject,omitempty"`
	Description     string `json:"description,omitempty"`
	MaxParticipants int    `json:"max_participants,omitempty"`
	Private         bool   `json:"private,omitempty"`
}

// CreateRoom creates a new study room.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	var created domain.Room
	if err := c.post(ctx, "/rooms", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateRoom: %w", err)
	}
	return &created, nil
}

// JoinRoom adds the current user to a room's membership list. The server
// treats "already a member" as success.
func (c *Client) JoinRoom(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodPost, "/rooms/"+url.PathEscape(id)+"/join", nil, nil); err != nil {
		return fmt.Errorf("client.JoinRoom: %w", err)
	}
	return nil
}

// UpdateRoom updates room settings.
func (c *Client) UpdateRoom(ctx context.Context, id string, req domain.UpdateRoomRequest) error {
	if err := c.doRequest(ctx, http.MethodPut, "/rooms/"+url.PathEscape(id), req, nil); err != nil {
		return fmt.Errorf("client.UpdateRoom: %w", err)
	}
	return nil
}

// DeleteRoom deletes a room.
func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteRoom: %w", err)
	}
	return nil
}

// KickParticipant removes uid from a room.
func (c *Client) KickParticipant(ctx context.Context, roomID, uid string) error {
	path := "/rooms/" + url.PathEscape(roomID) + "/participants/" + url.PathEscape(uid)
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.KickParticipant: %w", err)
	}
	return nil
}

// --- Users ---

// GetProfile returns the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, "/api/users/profile", &p); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &p, nil
}

// UpdateProfile updates the authenticated user's profile and returns the
// merged record.
func (c *Client) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.doRequest(ctx, http.MethodPut, "/api/users/profile", req, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &p, nil
}

// LookupUsers resolves display records for a batch of user ids.
func (c *Client) LookupUsers(ctx context.Context, ids []string) ([]domain.DirectoryUser, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var raw json.RawMessage
	path := "/api/users/lookup?ids=" + url.QueryEscape(strings.Join(ids, ","))
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("client.LookupUsers: %w", err)
	}
	return normalize.Users(c.log, raw), nil
}

// --- Topics & posts ---

// ListTopics fetches all discussion topics.
func (c *Client) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/topics", &raw); err != nil {
		return nil, fmt.Errorf("client.ListTopics: %w", err)
	}
	return normalize.Topics(c.log, raw), nil
}

// GetTopic fetches a single topic by id.
func (c *Client) GetTopic(ctx context.Context, id string) (*domain.Topic, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/topics/"+url.PathEscape(id), &raw); err != nil {
		return nil, fmt.Errorf("client.GetTopic: %w", err)
	}
	topics := normalize.Topics(c.log, raw)
	if len(topics) == 0 {
		return nil, fmt.Errorf("client.GetTopic: %w", ErrInvalidResponse)
	}
	return &topics[0], nil
}

// GetTopicPosts fetches a topic's posts.
func (c *Client) GetTopicPosts(ctx context.Context, topicID string) ([]domain.Post, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/topics/"+url.PathEscape(topicID)+"/posts", &raw); err != nil {
		return nil, fmt.Errorf("client.GetTopicPosts: %w", err)
	}
	return normalize.Posts(c.log, raw), nil
}

// CreateTopic creates a new discussion topic.
func (c *Client) CreateTopic(ctx context.Context, req domain.CreateTopicRequest) (*domain.Topic, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/api/topics", req, &raw); err != nil {
		return nil, fmt.Errorf("client.CreateTopic: %w", err)
	}
	topics := normalize.Topics(c.log, raw)
	if len(topics) == 0 {
		return nil, fmt.Errorf("client.CreateTopic: %w", ErrInvalidResponse)
	}
	return &topics[0], nil
}

// CreatePost posts under a topic.
func (c *Client) CreatePost(ctx context.Context, topicID string, req domain.CreatePostRequest) (*domain.Post, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/api/topics/"+url.PathEscape(topicID)+"/posts", req, &raw); err != nil {
		return nil, fmt.Errorf("client.CreatePost: %w", err)
	}
	posts := normalize.Posts(c.log, raw)
	if len(posts) == 0 {
		return nil, fmt.Errorf("client.CreatePost: %w", ErrInvalidResponse)
	}
	return &posts[0], nil
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	PostID string
	Liked  bool
	Likes  int
}

// ToggleLike toggles the current user's like on a post. The server owns the
// toggle semantics, so the call is never auto-retried: a retry after an
// ambiguous failure could flip the like twice.
func (c *Client) ToggleLike(ctx context.Context, postID string) (*LikeResult, error) {
	if postID == "" {
		return nil, fmt.Errorf("client.ToggleLike: %w", ErrInvalidArgument)
	}
	var raw json.RawMessage
	if err := c.post(ctx, "/api/posts/"+url.PathEscape(postID)+"/like", nil, &raw); err != nil {
		return nil, fmt.Errorf("client.ToggleLike: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("client.ToggleLike: %w", ErrInvalidResponse)
	}
	return &LikeResult{
		PostID: normalize.String(fields, postID, "post_id"),
		Liked:  normalize.Bool(fields, false, "liked"),
		Likes:  normalize.Int(fields, 0, "likes"),
	}, nil
}

// --- Admin ---

// GetAdminUsers lists all users for the admin dashboard.
func (c *Client) GetAdminUsers(ctx context.Context) ([]domain.AdminUser, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/admin/users", &raw); err != nil {
		return nil, fmt.Errorf("client.GetAdminUsers: %w", err)
	}
	return normalize.AdminUsers(c.log, raw), nil
}

// DeleteAdminUser deletes a user account.
func (c *Client) DeleteAdminUser(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteAdminUser: %w", err)
	}
	return nil
}

// --- plumbing ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Client-Session", c.session)
}

// readHTTPError builds an *HTTPError from a non-2xx response, preferring a
// structured {"error": "..."} message over the raw body.
func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		if apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
}
