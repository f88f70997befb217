// Package normalize turns loosely shaped server payloads into canonical
// domain records. The backend's response shapes are inconsistent across
// endpoints (bare arrays, wrapped objects, single objects), so every
// collection consumer goes through this one policy instead of duck-typing
// at the call site. Normalization never fails: malformed elements are
// skipped with a diagnostic log line, and the worst case is an empty slice.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/DanePascual/studyhall/pkg/domain"
)

// Elements extracts the candidate record sequence from raw.
//
// A bare JSON array is the sequence itself. An object is probed for the
// given wrapper keys in order; a matching key holding an array yields that
// array, a matching key holding an object yields a one-element sequence.
// An object with no wrapper key is treated as a single record. Anything
// else (scalar, invalid JSON) yields nil.
func Elements(raw []byte, wrapperKeys ...string) []json.RawMessage {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	for _, key := range wrapperKeys {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &arr); err == nil {
			return arr
		}
		var single map[string]json.RawMessage
		if err := json.Unmarshal(inner, &single); err == nil {
			return []json.RawMessage{inner}
		}
	}
	if len(obj) == 0 {
		return nil
	}
	return []json.RawMessage{raw}
}

// Posts normalizes a posts payload. Elements that are not objects or lack
// an id are dropped, never raised.
func Posts(log zerolog.Logger, raw []byte) []domain.Post {
	now := time.Now().UTC()
	elems := Elements(raw, "posts", "post", "items", "data")
	out := make([]domain.Post, 0, len(elems))
	for i, el := range elems {
		post, reason := decodePost(el, now)
		if reason != "" {
			log.Debug().Int("index", i).Str("reason", reason).Msg("normalize: dropped post")
			continue
		}
		out = append(out, post)
	}
	return out
}

// Topics normalizes a topics payload.
func Topics(log zerolog.Logger, raw []byte) []domain.Topic {
	now := time.Now().UTC()
	elems := Elements(raw, "topics", "topic", "items", "data")
	out := make([]domain.Topic, 0, len(elems))
	for i, el := range elems {
		topic, reason := decodeTopic(el, now)
		if reason != "" {
			log.Debug().Int("index", i).Str("reason", reason).Msg("normalize: dropped topic")
			continue
		}
		out = append(out, topic)
	}
	return out
}

// Users normalizes a user-directory payload from the batch lookup endpoint.
func Users(log zerolog.Logger, raw []byte) []domain.DirectoryUser {
	elems := Elements(raw, "users", "data")
	out := make([]domain.DirectoryUser, 0, len(elems))
	for i, el := range elems {
		user, reason := decodeUser(el)
		if reason != "" {
			log.Debug().Int("index", i).Str("reason", reason).Msg("normalize: dropped user")
			continue
		}
		out = append(out, user)
	}
	return out
}

// AdminUsers normalizes the admin dashboard's user listing.
func AdminUsers(log zerolog.Logger, raw []byte) []domain.AdminUser {
	now := time.Now().UTC()
	elems := Elements(raw, "users", "data")
	out := make([]domain.AdminUser, 0, len(elems))
	for i, el := range elems {
		user, reason := decodeAdminUser(el, now)
		if reason != "" {
			log.Debug().Int("index", i).Str("reason", reason).Msg("normalize: dropped admin user")
			continue
		}
		out = append(out, user)
	}
	return out
}

func decodePost(el json.RawMessage, now time.Time) (domain.Post, string) {
	fields, reason := objectFields(el)
	if reason != "" {
		return domain.Post{}, reason
	}
	id := String(fields, "", "id", "_id", "post_id")
	if id == "" {
		return domain.Post{}, "missing id"
	}
	return domain.Post{
		ID:        id,
		Title:     String(fields, "", "title"),
		Content:   String(fields, "", "content", "body", "text"),
		Author:    String(fields, domain.AnonymousAuthor, "author", "author_name"),
		AuthorID:  String(fields, "", "author_id", "user_id"),
		CreatedAt: Time(fields, now, "created_at", "createdAt"),
		Likes:     Int(fields, 0, "likes", "like_count"),
		Liked:     Bool(fields, false, "liked", "liked_by_me"),
	}, ""
}

func decodeTopic(el json.RawMessage, now time.Time) (domain.Topic, string) {
	fields, reason := objectFields(el)
	if reason != "" {
		return domain.Topic{}, reason
	}
	id := String(fields, "", "id", "_id", "topic_id")
	if id == "" {
		return domain.Topic{}, "missing id"
	}
	return domain.Topic{
		ID:          id,
		Title:       String(fields, "", "title", "name"),
		Description: String(fields, "", "description"),
		Creator:     String(fields, domain.AnonymousAuthor, "creator", "author"),
		CreatorID:   String(fields, "", "creator_id", "author_id"),
		CreatedAt:   Time(fields, now, "created_at", "createdAt"),
		PostCount:   Int(fields, 0, "post_count", "posts"),
	}, ""
}

func decodeUser(el json.RawMessage) (domain.DirectoryUser, string) {
	fields, reason := objectFields(el)
	if reason != "" {
		return domain.DirectoryUser{}, reason
	}
	id := String(fields, "", "id", "uid", "user_id")
	if id == "" {
		return domain.DirectoryUser{}, "missing id"
	}
	return domain.DirectoryUser{
		ID:       id,
		Name:     String(fields, "", "name", "display_name", "username"),
		PhotoURL: String(fields, "", "photo_url", "photoURL", "avatar"),
	}, ""
}

func decodeAdminUser(el json.RawMessage, now time.Time) (domain.AdminUser, string) {
	fields, reason := objectFields(el)
	if reason != "" {
		return domain.AdminUser{}, reason
	}
	id := String(fields, "", "id", "uid", "user_id")
	if id == "" {
		return domain.AdminUser{}, "missing id"
	}
	return domain.AdminUser{
		ID:        id,
		Name:      String(fields, "", "name", "display_name"),
		Email:     String(fields, "", "email"),
		Role:      String(fields, "member", "role"),
		Suspended: Bool(fields, false, "suspended", "disabled"),
		CreatedAt: Time(fields, now, "created_at", "createdAt"),
	}, ""
}
