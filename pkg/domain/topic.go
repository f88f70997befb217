package domain

import "time"

// Topic is a discussion topic. Fields are canonical: every topic that
// reaches the rest of the client has been through the normalizer and
// carries safe defaults.
type Topic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Creator     string    `json:"creator"`
	CreatorID   string    `json:"creator_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	PostCount   int       `json:"post_count"`
}

// Post is a single post under a topic.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"author_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
}

// AnonymousAuthor is the display name for posts with no author field.
const AnonymousAuthor = "Anonymous"

// CreateTopicRequest is the payload for creating a topic.
type CreateTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// CreatePostRequest is the payload for posting under a topic.
type CreatePostRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}
