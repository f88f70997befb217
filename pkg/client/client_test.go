package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DanePascual/studyhall/pkg/domain"
)

func TestGetRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/r1" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		if r.Header.Get("X-Client-Session") == "" {
			t.Error("missing X-Client-Session header")
		}
		json.NewEncoder(w).Encode(domain.Room{ //nolint:errcheck
			ID:           "r1",
			Name:         "Linear Algebra",
			CreatorID:    "u1",
			Participants: []string{"u1", "u2"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token")
	room, err := c.GetRoom(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetRoom() error: %v", err)
	}
	if room.Name != "Linear Algebra" {
		t.Errorf("Name = %q, want %q", room.Name, "Linear Algebra")
	}
	if len(room.Participants) != 2 {
		t.Errorf("got %d participants, want 2", len(room.Participants))
	}
}

func TestGetRoom_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "bad-token")
	_, err := c.GetRoom(context.Background(), "r1")
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !IsStatus(err, 401) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "not authenticated") {
		t.Errorf("error = %q, want the structured server message", got)
	}
}

func TestErrorPrefersStructuredMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "room is private"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.JoinRoom(context.Background(), "r1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "room is private") {
		t.Errorf("error = %q, want message field surfaced", err.Error())
	}
}

func TestKickParticipantPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	if err := c.KickParticipant(context.Background(), "r1", "u2"); err != nil {
		t.Fatalf("KickParticipant() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/rooms/r1/participants/u2" {
		t.Errorf("request = %s %s, want DELETE /rooms/r1/participants/u2", gotMethod, gotPath)
	}
}

func TestGetTopicPostsNormalizesShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"p1"},{"id":"p2"}]`, 2},
		{"wrapped", `{"posts":[{"id":"p1"}]}`, 1},
		{"malformed elements dropped", `{"posts":[{"id":"p1"},"bad",42]}`, 1},
		{"empty object", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL, "tok")
			posts, err := c.GetTopicPosts(context.Background(), "t1")
			if err != nil {
				t.Fatalf("GetTopicPosts() error: %v", err)
			}
			if len(posts) != tt.want {
				t.Errorf("got %d posts, want %d", len(posts), tt.want)
			}
		})
	}
}

func TestToggleLike(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/posts/p1/like" {
			t.Errorf("request = %s %s, want POST /api/posts/p1/like", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"liked": true, "likes": 4, "post_id": "p1"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	res, err := c.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	if !res.Liked || res.Likes != 4 || res.PostID != "p1" {
		t.Errorf("result = %+v, want liked=true likes=4 post_id=p1", res)
	}
}

func TestToggleLike_MissingIDNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.ToggleLike(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty post id")
	}
	if !strings.Contains(err.Error(), ErrInvalidArgument.Error()) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server saw %d calls, want 0", calls.Load())
	}
}

func TestToggleLike_NonObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[1,2,3]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.ToggleLike(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected error for non-object response")
	}
	if !strings.Contains(err.Error(), ErrInvalidResponse.Error()) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestToggleLike_CoercesLooseFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"liked":"yes","likes":"7"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	res, err := c.ToggleLike(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	if res.Liked {
		t.Error("Liked = true for non-bool value, want strict false")
	}
	if res.Likes != 7 {
		t.Errorf("Likes = %d, want numeric string coerced to 7", res.Likes)
	}
}

func TestLookupUsersEmptySkipsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	users, err := c.LookupUsers(context.Background(), nil)
	if err != nil || users != nil {
		t.Errorf("LookupUsers(nil) = (%v, %v), want (nil, nil)", users, err)
	}
	if calls.Load() != 0 {
		t.Errorf("server saw %d calls, want 0", calls.Load())
	}
}
