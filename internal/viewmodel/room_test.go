package viewmodel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

// roomServer is a minimal fake backend for room view-model tests.
type roomServer struct {
	room        domain.Room
	joinCalls   atomic.Int32
	kickCalls   atomic.Int32
	deleteCalls atomic.Int32
	updateCalls atomic.Int32
	failJoin    bool
	failLookup  bool
}

func (s *roomServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(s.room) //nolint:errcheck
	})
	mux.HandleFunc("POST /rooms/{id}/join", func(w http.ResponseWriter, _ *http.Request) {
		s.joinCalls.Add(1)
		if s.failJoin {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "already a member"}) //nolint:errcheck
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("PUT /rooms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		s.updateCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /rooms/{id}/participants/{uid}", func(w http.ResponseWriter, _ *http.Request) {
		s.kickCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /rooms/{id}", func(w http.ResponseWriter, _ *http.Request) {
		s.deleteCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/users/lookup", func(w http.ResponseWriter, r *http.Request) {
		if s.failLookup {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var users []domain.DirectoryUser
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			users = append(users, domain.DirectoryUser{ID: id, Name: "Name-" + id})
		}
		json.NewEncoder(w).Encode(users) //nolint:errcheck
	})
	return mux
}

func newRoomVM(t *testing.T, s *roomServer, userID string, deps Deps) *Room {
	t.Helper()
	srv := httptest.NewServer(s.handler())
	t.Cleanup(srv.Close)
	return NewRoom(client.New(srv.URL, "tok"), userID, deps)
}

func TestLoadOwnerAndHosts(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", Name: "Calc", CreatorID: "u1", Participants: []string{"u1", "u2"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(nil, nil, nil))

	room, err := vm.Load(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if room.ID != "r1" {
		t.Errorf("room.ID = %q, want r1", room.ID)
	}
	if !vm.IsOwner() {
		t.Error("IsOwner() = false, want true for creator")
	}

	parts := vm.Participants()
	if len(parts) != 2 {
		t.Fatalf("got %d participants, want 2", len(parts))
	}
	if parts[0].ID != "u1" || !parts[0].IsHost {
		t.Errorf("u1 = %+v, want host", parts[0])
	}
	if parts[1].ID != "u2" || parts[1].IsHost {
		t.Errorf("u2 = %+v, want non-host", parts[1])
	}
	if parts[0].InCall || parts[1].InCall {
		t.Error("InCall set by fetch, want false until a call-status event")
	}
}

func TestLoadSkipsJoinWhenAlreadyMember(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1", "u2"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := s.joinCalls.Load(); got != 0 {
		t.Errorf("join calls = %d, want 0 for existing member", got)
	}
}

func TestLoadAutoJoinsWhenAbsent(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1"},
	}}
	vm := newRoomVM(t, s, "u9", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := s.joinCalls.Load(); got != 1 {
		t.Errorf("join calls = %d, want exactly 1", got)
	}
	parts := vm.Participants()
	if len(parts) != 2 || parts[1].ID != "u9" {
		t.Errorf("participants = %+v, want u1 and joined u9", parts)
	}
}

func TestLoadSwallowsJoinFailure(t *testing.T) {
	s := &roomServer{
		room:     domain.Room{ID: "r1", CreatorID: "u1", Participants: []string{"u1"}},
		failJoin: true,
	}
	vm := newRoomVM(t, s, "u9", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v, want join failure swallowed", err)
	}
	// Enrichment proceeds with the pre-join membership list.
	parts := vm.Participants()
	if len(parts) != 1 || parts[0].ID != "u1" {
		t.Errorf("participants = %+v, want pre-join list", parts)
	}
}

func TestLoadMissingIdentifier(t *testing.T) {
	notify := &recordingNotifier{}
	nav := &recordingNav{}
	vm := NewRoom(client.New("http://unused", "tok"), "u1", testDeps(nil, notify, nav))

	_, err := vm.Load(context.Background(), "")
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("err = %v, want ErrMissingIdentifier", err)
	}
	if vm.Loading() {
		t.Error("Loading() = true after failed load, want false")
	}
	if notify.count() != 1 {
		t.Errorf("notifications = %d, want 1", notify.count())
	}
	if nav.last() != DestRooms {
		t.Errorf("redirect destination = %q, want rooms listing", nav.last())
	}
}

func TestLoadFetchFailureCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no such room"}) //nolint:errcheck
	}))
	defer srv.Close()

	nav := &recordingNav{}
	vm := NewRoom(client.New(srv.URL, "tok"), "u1", testDeps(nil, nil, nav))

	_, err := vm.Load(context.Background(), "gone")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fe.Status != 404 {
		t.Errorf("Status = %d, want 404", fe.Status)
	}
	if nav.last() != DestRooms {
		t.Errorf("redirect destination = %q, want rooms listing", nav.last())
	}
}

func TestLoadDeduplicatesParticipants(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1", "u2", "u1", "u2"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if parts := vm.Participants(); len(parts) != 2 {
		t.Errorf("got %d participants, want 2 after dedup", len(parts))
	}
}

func TestLoadEnrichmentFailureFallsBack(t *testing.T) {
	s := &roomServer{
		room:       domain.Room{ID: "r1", CreatorID: "u1", Participants: []string{"u1", "firebase-uid-22"}},
		failLookup: true,
	}
	vm := newRoomVM(t, s, "u1", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v, lookup failure must not abort load", err)
	}
	parts := vm.Participants()
	if len(parts) != 2 {
		t.Fatalf("got %d participants, want 2", len(parts))
	}
	if parts[1].Name != "firebase" || parts[1].AvatarGlyph != "U" {
		t.Errorf("fallback record = %+v, want id-prefix name and U glyph", parts[1])
	}
}

func TestKickRequiresOwnership(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1", "u2"},
	}}
	confirm := &confirmAnswer{answer: true}
	vm := newRoomVM(t, s, "u2", testDeps(confirm, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	err := vm.Kick(context.Background(), "u1")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if s.kickCalls.Load() != 0 {
		t.Errorf("kick calls = %d, want 0 for non-owner", s.kickCalls.Load())
	}
	if confirm.calls != 0 {
		t.Errorf("confirm prompts = %d, want 0 before permission check passes", confirm.calls)
	}
}

func TestKickDeclinedConfirmation(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1", "u2"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(&confirmAnswer{answer: false}, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	err := vm.Kick(context.Background(), "u2")
	if !errors.Is(err, ErrConfirmationDeclined) {
		t.Fatalf("err = %v, want ErrConfirmationDeclined", err)
	}
	if s.kickCalls.Load() != 0 {
		t.Errorf("kick calls = %d, want 0 after declined confirmation", s.kickCalls.Load())
	}
}

func TestKickRemovesParticipantLocally(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1", "u2"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(&confirmAnswer{answer: true}, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := vm.Kick(context.Background(), "u2"); err != nil {
		t.Fatalf("Kick() error: %v", err)
	}
	if s.kickCalls.Load() != 1 {
		t.Errorf("kick calls = %d, want 1", s.kickCalls.Load())
	}
	parts := vm.Participants()
	if len(parts) != 1 || parts[0].ID != "u1" {
		t.Errorf("participants = %+v, want u2 removed without re-fetch", parts)
	}
	if vm.Room().HasParticipant("u2") {
		t.Error("room membership still lists u2 after kick")
	}
}

func TestUpdateSettingsMergesLocally(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", Name: "Old", CreatorID: "u1", Participants: []string{"u1"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	name := "New name"
	private := true
	if err := vm.UpdateSettings(context.Background(), domain.UpdateRoomRequest{Name: &name, Private: &private}); err != nil {
		t.Fatalf("UpdateSettings() error: %v", err)
	}
	if s.updateCalls.Load() != 1 {
		t.Errorf("update calls = %d, want 1", s.updateCalls.Load())
	}
	room := vm.Room()
	if room.Name != "New name" || !room.Private {
		t.Errorf("room = %+v, want merged settings without a re-fetch", room)
	}
}

func TestSetCallStatus(t *testing.T) {
	s := &roomServer{room: domain.Room{
		ID: "r1", CreatorID: "u1", Participants: []string{"u1", "u2"},
	}}
	vm := newRoomVM(t, s, "u1", testDeps(nil, nil, nil))

	if _, err := vm.Load(context.Background(), "r1"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	vm.SetCallStatus("u2", true)
	parts := vm.Participants()
	if !parts[1].InCall {
		t.Error("u2.InCall = false after call-status event, want true")
	}
	if parts[0].InCall {
		t.Error("u1.InCall = true, want untouched")
	}
}
