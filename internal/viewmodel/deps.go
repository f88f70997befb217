// Package viewmodel holds the page-scoped state for each primary resource
// and the operations that keep it consistent with the backend. State lives
// in a controller object constructed once per page, never in package-level
// variables, and every UI-facing side effect (confirm prompts, transient
// notices, fallback redirects) goes through an injected collaborator.
package viewmodel

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Navigation destinations for fallback redirects.
const (
	DestRooms  = "rooms"
	DestTopics = "topics"
)

// Confirmer is the blocking yes/no prompt shown before destructive
// mutations.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Notifier surfaces a transient user-facing notice.
type Notifier interface {
	Notify(text string)
}

// Navigator schedules a navigation to a fallback destination after a delay.
// Implementations must tolerate the delivery arriving after the user has
// already navigated elsewhere.
type Navigator interface {
	RedirectAfter(d time.Duration, destination string)
}

// Deps bundles the collaborators shared by all view-models.
type Deps struct {
	Confirm       Confirmer
	Notify        Notifier
	Nav           Navigator
	Log           zerolog.Logger
	RedirectDelay time.Duration
}

const defaultRedirectDelay = 3 * time.Second

// withDefaults fills nil collaborators with no-ops so view-models never
// nil-check them.
func (d Deps) withDefaults() Deps {
	if d.Confirm == nil {
		d.Confirm = declineAll{}
	}
	if d.Notify == nil {
		d.Notify = silentNotifier{}
	}
	if d.Nav == nil {
		d.Nav = noNavigator{}
	}
	if d.RedirectDelay <= 0 {
		d.RedirectDelay = defaultRedirectDelay
	}
	return d
}

// declineAll refuses every confirmation, so an unwired prompt blocks the
// mutation rather than approving it.
type declineAll struct{}

func (declineAll) Confirm(context.Context, string) bool { return false }

type silentNotifier struct{}

func (silentNotifier) Notify(string) {}

type noNavigator struct{}

func (noNavigator) RedirectAfter(time.Duration, string) {}
