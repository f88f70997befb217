package domain

import "time"

// Room is a study room as served by the backend.
type Room struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Subject         string    `json:"subject,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatorID       string    `json:"creator_id"`
	Participants    []string  `json:"participants"`
	MaxParticipants int       `json:"max_participants,omitempty"` // 0 = unlimited
	Private         bool      `json:"private,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasParticipant reports whether uid is already in the room's membership list.
func (r *Room) HasParticipant(uid string) bool {
	for _, id := range r.Participants {
		if id == uid {
			return true
		}
	}
	return false
}

// UpdateRoomRequest is the payload for updating room settings.
// Only non-nil fields are sent, so partial updates merge server-side.
type UpdateRoomRequest struct {
	Name            *string `json:"name,omitempty"`
	Subject         *string `json:"subject,omitempty"`
	Description     *string `json:"description,omitempty"`
	MaxParticipants *int    `json:"max_participants,omitempty"`
	Private         *bool   `json:"private,omitempty"`
}
