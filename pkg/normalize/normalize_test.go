package normalize

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestElementsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `[{"id":"a"},{"id":"b"}]`, 2},
		{"wrapped array", `{"posts":[{"id":"a"}]}`, 1},
		{"wrapped single object", `{"posts":{"id":"a"}}`, 1},
		{"single object no wrapper", `{"id":"a","title":"t"}`, 1},
		{"empty array", `[]`, 0},
		{"empty object", `{}`, 0},
		{"scalar", `42`, 0},
		{"string", `"nope"`, 0},
		{"null", `null`, 0},
		{"invalid json", `{broken`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Elements([]byte(tt.raw), "posts")
			if len(got) != tt.want {
				t.Errorf("Elements(%s) returned %d elements, want %d", tt.raw, len(got), tt.want)
			}
		})
	}
}

func TestPostsDropsMalformedElements(t *testing.T) {
	raw := `{"posts":[{"id":"p1"},"bad",{"id":"p2","likes":"3"}]}`
	posts := Posts(zerolog.Nop(), []byte(raw))

	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != "p1" || posts[0].Likes != 0 {
		t.Errorf("posts[0] = %+v, want id p1 with 0 likes", posts[0])
	}
	// Numeric-looking strings coerce, matching the policy used for every
	// other numeric field.
	if posts[1].ID != "p2" || posts[1].Likes != 3 {
		t.Errorf("posts[1] = %+v, want id p2 with 3 likes", posts[1])
	}
}

func TestPostsDefaults(t *testing.T) {
	before := time.Now().UTC()
	posts := Posts(zerolog.Nop(), []byte(`[{"id":"p1"}]`))
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	p := posts[0]
	if p.Title != "" || p.Content != "" {
		t.Errorf("title/content = %q/%q, want empty defaults", p.Title, p.Content)
	}
	if p.Author != "Anonymous" {
		t.Errorf("Author = %q, want Anonymous", p.Author)
	}
	if p.Likes != 0 || p.Liked {
		t.Errorf("likes/liked = %d/%v, want 0/false", p.Likes, p.Liked)
	}
	if p.CreatedAt.Before(before.Add(-time.Minute)) {
		t.Errorf("CreatedAt = %v, want normalization time", p.CreatedAt)
	}
}

func TestPostsWrongTypesFallBack(t *testing.T) {
	raw := `[{"id":"p1","title":42,"likes":true,"liked":"yes","created_at":"not-a-date"}]`
	posts := Posts(zerolog.Nop(), []byte(raw))
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	p := posts[0]
	if p.Title != "" {
		t.Errorf("Title = %q, want default for non-string", p.Title)
	}
	if p.Likes != 0 {
		t.Errorf("Likes = %d, want 0 for bool value", p.Likes)
	}
	if p.Liked {
		t.Error("Liked = true, want false for string value")
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want normalization-time default")
	}
}

func TestPostsMissingIDDropped(t *testing.T) {
	posts := Posts(zerolog.Nop(), []byte(`[{"title":"no id"},{"id":"ok"}]`))
	if len(posts) != 1 || posts[0].ID != "ok" {
		t.Errorf("got %+v, want single post with id ok", posts)
	}
}

func TestPostsNeverPanics(t *testing.T) {
	inputs := []string{
		``, `garbage`, `[null,1,[],"x"]`, `{"posts":"nope"}`, `{"posts":null}`,
	}
	for _, raw := range inputs {
		posts := Posts(zerolog.Nop(), []byte(raw))
		if len(posts) != 0 {
			t.Errorf("Posts(%q) = %d records, want 0", raw, len(posts))
		}
	}
}

func TestTopicsWrappedSingle(t *testing.T) {
	topics := Topics(zerolog.Nop(), []byte(`{"topic":{"id":"t1","title":"Calculus"}}`))
	if len(topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(topics))
	}
	if topics[0].Title != "Calculus" || topics[0].Creator != "Anonymous" {
		t.Errorf("topic = %+v, want Calculus by Anonymous", topics[0])
	}
}

func TestTopicsEpochTimestamps(t *testing.T) {
	topics := Topics(zerolog.Nop(), []byte(`[{"id":"t1","created_at":1700000000}]`))
	if len(topics) != 1 {
		t.Fatalf("got %d topics, want 1", len(topics))
	}
	if got := topics[0].CreatedAt.Year(); got != 2023 {
		t.Errorf("CreatedAt year = %d, want 2023", got)
	}
}

func TestUsersAliases(t *testing.T) {
	users := Users(zerolog.Nop(), []byte(`{"users":[{"uid":"u1","display_name":"Dane","photoURL":"http://x/p.png"}]}`))
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	u := users[0]
	if u.ID != "u1" || u.Name != "Dane" || u.PhotoURL != "http://x/p.png" {
		t.Errorf("user = %+v, want aliased fields resolved", u)
	}
}

func TestAdminUsersRoleDefault(t *testing.T) {
	users := AdminUsers(zerolog.Nop(), []byte(`[{"id":"u1"}]`))
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if users[0].Role != "member" {
		t.Errorf("Role = %q, want member default", users[0].Role)
	}
}
