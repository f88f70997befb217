package domain

import "time"

// Profile is the authenticated user's profile record.
type Profile struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Course   string `json:"course,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
	Role     string `json:"role,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}

// UpdateProfileRequest is the payload for profile updates. Optional string
// fields default to empty on the server; only what the form touched is sent.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Course   *string `json:"course,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// AdminUser is a row in the admin dashboard's user table.
type AdminUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Suspended bool      `json:"suspended"`
	CreatedAt time.Time `json:"created_at"`
}
