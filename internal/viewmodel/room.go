package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

// lookupBatchSize is how many user ids go into one directory lookup call.
// Batches are fetched concurrently; a failed batch falls back to minimal
// records without aborting the others.
const lookupBatchSize = 20

// Room is the view-model for a single study room page.
type Room struct {
	client *client.Client
	deps   Deps
	userID string

	mu           sync.Mutex
	room         *domain.Room
	isOwner      bool
	participants []domain.Participant
	loading      bool
	inflight     map[string]bool
}

// NewRoom creates a room view-model for the given current user.
func NewRoom(c *client.Client, userID string, deps Deps) *Room {
	return &Room{
		client:   c,
		deps:     deps.withDefaults(),
		userID:   userID,
		inflight: make(map[string]bool),
	}
}

// Load fetches the room, auto-joins the current user if needed, and enriches
// the participant list. On unrecoverable failure it notifies the user,
// schedules a redirect to the rooms listing, and returns the error.
func (vm *Room) Load(ctx context.Context, roomID string) (*domain.Room, error) {
	vm.setLoading(true)

	room, err := vm.fetch(ctx, roomID)
	if err != nil {
		vm.setLoading(false)
		vm.deps.Notify.Notify("Could not load room: " + userMessage(err))
		vm.deps.Nav.RedirectAfter(vm.deps.RedirectDelay, DestRooms)
		return nil, err
	}

	isOwner := room.CreatorID == vm.userID

	// Auto-join is idempotent in intent: a failure usually means the
	// membership already exists server-side, so it never aborts the load.
	if !room.HasParticipant(vm.userID) {
		if err := vm.client.JoinRoom(ctx, room.ID); err != nil {
			vm.deps.Log.Warn().Err(err).Str("room", room.ID).Msg("auto-join failed, continuing with fetched membership")
		} else {
			room.Participants = append(room.Participants, vm.userID)
		}
	}

	participants := vm.enrich(ctx, room.Participants, room.CreatorID)

	vm.mu.Lock()
	vm.room = room
	vm.isOwner = isOwner
	vm.participants = participants
	vm.loading = false
	vm.mu.Unlock()

	return room, nil
}

func (vm *Room) fetch(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, ErrMissingIdentifier
	}
	room, err := vm.client.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fetchError(err)
	}
	return room, nil
}

// enrich resolves display records for the membership list. Ids are
// deduplicated first; lookups fan out per batch and every id the directory
// could not resolve gets a fallback record.
func (vm *Room) enrich(ctx context.Context, ids []string, creatorID string) []domain.Participant {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return nil
	}

	resolved := make(map[string]domain.DirectoryUser, len(uniq))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for start := 0; start < len(uniq); start += lookupBatchSize {
		end := min(start+lookupBatchSize, len(uniq))
		batch := uniq[start:end]
		wg.Add(1)
		go func() {
			defer wg.Done()
			users, err := vm.client.LookupUsers(ctx, batch)
			if err != nil {
				vm.deps.Log.Warn().Err(err).Int("batch_size", len(batch)).Msg("directory lookup failed, using fallback records")
				return
			}
			mu.Lock()
			for _, u := range users {
				resolved[u.ID] = u
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	participants := make([]domain.Participant, 0, len(uniq))
	for _, id := range uniq {
		p := domain.FallbackParticipant(id)
		if u, ok := resolved[id]; ok {
			if u.Name != "" {
				p.Name = u.Name
				p.AvatarGlyph = u.Glyph()
			}
			p.PhotoURL = u.PhotoURL
		}
		p.IsHost = id == creatorID
		participants = append(participants, p)
	}
	return participants
}

// UpdateSettings applies a partial settings update. Owner only.
func (vm *Room) UpdateSettings(ctx context.Context, req domain.UpdateRoomRequest) error {
	room, err := vm.authorize()
	if err != nil {
		return err
	}
	if !vm.begin("settings") {
		return ErrMutationInFlight
	}
	defer vm.end("settings")

	if err := vm.client.UpdateRoom(ctx, room.ID, req); err != nil {
		vm.deps.Notify.Notify("Update failed: " + userMessage(err))
		return err
	}

	vm.mu.Lock()
	mergeRoomSettings(vm.room, req)
	vm.mu.Unlock()
	return nil
}

// Delete deletes the room. Owner only, confirmed.
func (vm *Room) Delete(ctx context.Context) error {
	room, err := vm.authorize()
	if err != nil {
		return err
	}
	if !vm.begin("delete") {
		return ErrMutationInFlight
	}
	defer vm.end("delete")

	if !vm.deps.Confirm.Confirm(ctx, fmt.Sprintf("Delete room %q? This cannot be undone.", room.Name)) {
		return ErrConfirmationDeclined
	}
	if err := vm.client.DeleteRoom(ctx, room.ID); err != nil {
		vm.deps.Notify.Notify("Delete failed: " + userMessage(err))
		return err
	}

	vm.mu.Lock()
	vm.room = nil
	vm.participants = nil
	vm.mu.Unlock()
	return nil
}

// Kick removes a participant. Owner only, confirmed.
func (vm *Room) Kick(ctx context.Context, uid string) error {
	room, err := vm.authorize()
	if err != nil {
		return err
	}
	if uid == "" {
		return ErrMissingIdentifier
	}
	if !vm.begin("kick:" + uid) {
		return ErrMutationInFlight
	}
	defer vm.end("kick:" + uid)

	if !vm.deps.Confirm.Confirm(ctx, fmt.Sprintf("Kick %s from the room?", vm.displayName(uid))) {
		return ErrConfirmationDeclined
	}
	if err := vm.client.KickParticipant(ctx, room.ID, uid); err != nil {
		vm.deps.Notify.Notify("Kick failed: " + userMessage(err))
		return err
	}

	vm.mu.Lock()
	vm.removeParticipantLocked(uid)
	vm.mu.Unlock()
	return nil
}

// SetCallStatus flips a participant's in-call flag. This is the only path
// that touches InCall; fetches never do.
func (vm *Room) SetCallStatus(uid string, inCall bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i := range vm.participants {
		if vm.participants[i].ID == uid {
			vm.participants[i].InCall = inCall
			return
		}
	}
}

// Room returns the loaded room, nil before Load completes.
func (vm *Room) Room() *domain.Room {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.room
}

// IsOwner reports whether the current user created the room.
func (vm *Room) IsOwner() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.isOwner
}

// Participants returns a copy of the enriched participant list.
func (vm *Room) Participants() []domain.Participant {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]domain.Participant, len(vm.participants))
	copy(out, vm.participants)
	return out
}

// Loading reports whether a Load is in progress.
func (vm *Room) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

// authorize returns the loaded room if the current user owns it.
func (vm *Room) authorize() (*domain.Room, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.room == nil {
		return nil, ErrMissingIdentifier
	}
	if !vm.isOwner {
		return nil, ErrPermissionDenied
	}
	return vm.room, nil
}

func (vm *Room) displayName(uid string) string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, p := range vm.participants {
		if p.ID == uid {
			return p.Name
		}
	}
	return uid
}

func (vm *Room) setLoading(v bool) {
	vm.mu.Lock()
	vm.loading = v
	vm.mu.Unlock()
}

// begin marks a mutation kind as in flight, rejecting rapid double
// submission of the same mutation.
func (vm *Room) begin(kind string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.inflight[kind] {
		return false
	}
	vm.inflight[kind] = true
	return true
}

func (vm *Room) end(kind string) {
	vm.mu.Lock()
	delete(vm.inflight, kind)
	vm.mu.Unlock()
}

func (vm *Room) removeParticipantLocked(uid string) {
	for i, p := range vm.participants {
		if p.ID == uid {
			vm.participants = append(vm.participants[:i], vm.participants[i+1:]...)
			break
		}
	}
	if vm.room == nil {
		return
	}
	for i, id := range vm.room.Participants {
		if id == uid {
			vm.room.Participants = append(vm.room.Participants[:i], vm.room.Participants[i+1:]...)
			break
		}
	}
}

func mergeRoomSettings(room *domain.Room, req domain.UpdateRoomRequest) {
	if room == nil {
		return
	}
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Subject != nil {
		room.Subject = *req.Subject
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.MaxParticipants != nil {
		room.MaxParticipants = *req.MaxParticipants
	}
	if req.Private != nil {
		room.Private = *req.Private
	}
}
