package domain

// Participant is a room member enriched with display info from the user
// directory. The set is always deduplicated by ID.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AvatarGlyph string `json:"avatar_glyph"`
	PhotoURL    string `json:"photo_url,omitempty"`
	IsHost      bool   `json:"is_host"`
	// InCall is local-only state. It is flipped by explicit call-status
	// events and never by a server fetch.
	InCall bool `json:"-"`
}

// fallbackNameLen is how many leading characters of the user id stand in
// for a display name when the directory lookup fails.
const fallbackNameLen = 8

// FallbackParticipant builds the minimal record used when a directory
// lookup for uid fails. Enrichment of other participants continues.
func FallbackParticipant(uid string) Participant {
	name := uid
	if len(name) > fallbackNameLen {
		name = name[:fallbackNameLen]
	}
	return Participant{ID: uid, Name: name, AvatarGlyph: "U"}
}

// DirectoryUser is a user-directory record from the batch lookup endpoint.
type DirectoryUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Glyph returns the single-character avatar for a directory user.
func (u DirectoryUser) Glyph() string {
	for _, r := range u.Name {
		return string(r)
	}
	return "U"
}
