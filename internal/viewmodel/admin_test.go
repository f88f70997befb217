package viewmodel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/DanePascual/studyhall/pkg/client"
)

func adminHandler(calls *atomic.Int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"users":[{"id":"u1","role":"admin"},{"id":"u2","suspended":true}]}`)) //nolint:errcheck
	})
	mux.HandleFunc("DELETE /api/admin/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestAdminLoadRequiresRole(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(adminHandler(&calls))
	defer srv.Close()

	vm := NewAdmin(client.New(srv.URL, "tok"), false, testDeps(nil, nil, nil))
	_, err := vm.Load(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server calls = %d, want 0 for non-admin", calls.Load())
	}
}

func TestAdminLoadAndDelete(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(adminHandler(&calls))
	defer srv.Close()

	vm := NewAdmin(client.New(srv.URL, "tok"), true, testDeps(&confirmAnswer{answer: true}, nil, nil))
	users, err := vm.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if !users[1].Suspended {
		t.Error("u2.Suspended = false, want true")
	}

	if err := vm.DeleteUser(context.Background(), "u2"); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if remaining := vm.Users(); len(remaining) != 1 || remaining[0].ID != "u1" {
		t.Errorf("users = %+v, want u2 removed locally", remaining)
	}
}

func TestAdminDeleteDeclined(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(adminHandler(&calls))
	defer srv.Close()

	vm := NewAdmin(client.New(srv.URL, "tok"), true, testDeps(&confirmAnswer{answer: false}, nil, nil))
	if _, err := vm.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	before := calls.Load()

	if err := vm.DeleteUser(context.Background(), "u2"); !errors.Is(err, ErrConfirmationDeclined) {
		t.Fatalf("err = %v, want ErrConfirmationDeclined", err)
	}
	if calls.Load() != before {
		t.Error("delete reached the server despite declined confirmation")
	}
}
