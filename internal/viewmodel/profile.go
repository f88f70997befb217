package viewmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

// Profile is the view-model for the current user's profile page. Besides the
// remote record it keeps a best-effort mirror file on disk so a fresh launch
// can show the profile before the first fetch lands. Mirror I/O never
// surfaces an error; it is logged and forgotten.
type Profile struct {
	client     *client.Client
	deps       Deps
	mirrorPath string

	mu       sync.Mutex
	profile  *domain.Profile
	loading  bool
	inflight map[string]bool
}

// NewProfile creates a profile view-model. mirrorPath may be empty to
// disable the on-disk mirror.
func NewProfile(c *client.Client, mirrorPath string, deps Deps) *Profile {
	return &Profile{
		client:     c,
		deps:       deps.withDefaults(),
		mirrorPath: mirrorPath,
		inflight:   make(map[string]bool),
	}
}

// Load fetches the profile. On failure it notifies and schedules a redirect
// to the rooms listing.
func (vm *Profile) Load(ctx context.Context) (*domain.Profile, error) {
	vm.setLoading(true)
	p, err := vm.client.GetProfile(ctx)
	vm.setLoading(false)
	if err != nil {
		wrapped := fetchError(err)
		vm.deps.Notify.Notify("Could not load profile: " + userMessage(err))
		vm.deps.Nav.RedirectAfter(vm.deps.RedirectDelay, DestRooms)
		return nil, wrapped
	}

	vm.mu.Lock()
	vm.profile = p
	vm.mu.Unlock()
	vm.writeMirror(p)
	return p, nil
}

// Update pushes a partial profile update and merges the server's response
// into local state.
func (vm *Profile) Update(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	if !vm.begin("update") {
		return nil, ErrMutationInFlight
	}
	defer vm.end("update")

	p, err := vm.client.UpdateProfile(ctx, req)
	if err != nil {
		vm.deps.Notify.Notify("Profile update failed: " + userMessage(err))
		return nil, err
	}

	vm.mu.Lock()
	vm.profile = p
	vm.mu.Unlock()
	vm.writeMirror(p)
	return p, nil
}

// UploadPhoto uploads the file at path and points the profile at the
// returned URL.
func (vm *Profile) UploadPhoto(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", client.ErrInvalidArgument
	}
	if !vm.begin("upload") {
		return "", ErrMutationInFlight
	}
	defer vm.end("upload")

	f, err := os.Open(path)
	if err != nil {
		vm.deps.Notify.Notify("Could not read photo: " + err.Error())
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	res, err := vm.client.UploadProfilePhoto(ctx, filepath.Base(path), f)
	if err != nil {
		vm.deps.Notify.Notify("Upload failed: " + userMessage(err))
		return "", err
	}

	p, err := vm.client.UpdateProfile(ctx, domain.UpdateProfileRequest{PhotoURL: &res.URL})
	if err != nil {
		vm.deps.Notify.Notify("Photo uploaded but profile update failed: " + userMessage(err))
		return res.URL, err
	}

	vm.mu.Lock()
	vm.profile = p
	vm.mu.Unlock()
	vm.writeMirror(p)
	return res.URL, nil
}

// Profile returns the loaded (or mirrored) profile, nil when unknown.
func (vm *Profile) Profile() *domain.Profile {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.profile
}

// Loading reports whether a load is in progress.
func (vm *Profile) Loading() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loading
}

// LoadMirror seeds local state from the on-disk mirror if one exists. It is
// purely cosmetic pre-fetch state and is overwritten by the first Load.
func (vm *Profile) LoadMirror() *domain.Profile {
	if vm.mirrorPath == "" {
		return nil
	}
	data, err := os.ReadFile(vm.mirrorPath)
	if err != nil {
		return nil
	}
	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		vm.deps.Log.Debug().Err(err).Msg("profile mirror unreadable, ignoring")
		return nil
	}

	vm.mu.Lock()
	if vm.profile == nil {
		vm.profile = &p
	}
	vm.mu.Unlock()
	return &p
}

func (vm *Profile) writeMirror(p *domain.Profile) {
	if vm.mirrorPath == "" || p == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(vm.mirrorPath), 0o755); err != nil {
		vm.deps.Log.Debug().Err(err).Msg("profile mirror dir create failed")
		return
	}
	if err := os.WriteFile(vm.mirrorPath, data, 0o600); err != nil {
		vm.deps.Log.Debug().Err(err).Msg("profile mirror write failed")
	}
}

func (vm *Profile) setLoading(v bool) {
	vm.mu.Lock()
	vm.loading = v
	vm.mu.Unlock()
}

func (vm *Profile) begin(kind string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.inflight[kind] {
		return false
	}
	vm.inflight[kind] = true
	return true
}

func (vm *Profile) end(kind string) {
	vm.mu.Lock()
	delete(vm.inflight, kind)
	vm.mu.Unlock()
}
