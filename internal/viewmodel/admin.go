package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

// Admin is the view-model for the admin dashboard. Every operation is
// role-gated locally: a non-admin caller is rejected before any network
// call is made.
type Admin struct {
	client  *client.Client
	deps    Deps
	isAdmin bool

	mu       sync.Mutex
	users    []domain.AdminUser
	loading  bool
	inflight map[string]bool
}

// NewAdmin creates an admin view-model for a caller whose role is already
// known from the profile.
func NewAdmin(c *client.Client, isAdmin bool, deps Deps) *Admin {
	return &Admin{
		client:   c,
		deps:     deps.withDefaults(),
		isAdmin:  isAdmin,
		inflight: make(map[string]bool),
	}
}

// Load fetches the user table.
func (vm *Admin) Load(ctx context.Context) ([]domain.AdminUser, error) {
	if !vm.isAdmin {
		return nil, ErrPermissionDenied
	}
	vm.setLoading(true)
	users, err := vm.client.GetAdminUsers(ctx)
	vm.setLoading(false)
	if err != nil {
		vm.deps.Notify.Notify("Could not load users: " + userMessage(err))
		return nil, fetchError(err)
	}

	vm.mu.Lock()
	vm.users = users
	vm.mu.Unlock()
	return users, nil
}

// DeleteUser deletes an account. Confirmed, destructive.
func (vm *Admin) DeleteUser(ctx context.Context, id string) error {
	if !vm.isAdmin {
		return ErrPermissionDenied
	}
	if id == "" {
		return ErrMissingIdentifier
	}
	if !vm.begin("delete:" + id) {
		return ErrMutationInFlight
	}
	defer vm.end("delete:" + id)

	if !vm.deps.Confirm.Confirm(ctx, fmt.Sprintf("Delete user %s? This cannot be undone.", id)) {
		return ErrConfirmationDeclined
	}
	if err := vm.client.DeleteAdminUser(ctx, id); err != nil {
		vm.deps.Notify.Notify("Delete failed: " + userMessage(err))
		return err
	}

	vm.mu.Lock()
	for i, u := range vm.users {
		if u.ID == id {
			vm.users = append(vm.users[:i], vm.users[i+1:]...)
			break
		}
	}
	vm.mu.Unlock()
	return nil
}

// Users returns a copy of the user table.
func (vm *Admin) Users() []domain.AdminUser {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]domain.AdminUser, len(vm.users))
	copy(out, vm.users)
	return out
}

// Loading reports whether a load is in progress.
func (vm *Admin) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

func (vm *Admin) setLoading(v bool) {
	vm.mu.Lock()
	vm.loading = v
	vm.mu.Unlock()
}

func (vm *Admin) begin(kind string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.inflight[kind] {
		return false
	}
	vm.inflight[kind] = true
	return true
}

func (vm *Admin) end(kind string) {
	vm.mu.Lock()
	delete(vm.inflight, kind)
	vm.mu.Unlock()
}
