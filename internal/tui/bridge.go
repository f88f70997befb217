package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Bridge routes view-model collaborator calls back into the Bubbletea
// program. View-model operations run in command goroutines, so a confirm
// prompt cannot touch the model directly: it sends a message and blocks on
// the reply channel until the user answers the modal.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge creates an unbound bridge. Until Bind is called, every message
// is dropped; that only matters during the few milliseconds between program
// construction and startup.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Bind attaches the program's Send function.
func (b *Bridge) Bind(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) dispatch(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// confirmRequestMsg opens the yes/no modal.
type confirmRequestMsg struct {
	prompt string
	reply  chan bool
}

// noticeMsg shows a transient status-line notice.
type noticeMsg struct {
	text string
}

// navigateMsg is a delayed fallback navigation. origin is the view that
// scheduled it; the app ignores the message if the user already moved on.
type navigateMsg struct {
	origin      view
	destination string
}

type bridgeConfirmer struct{ b *Bridge }

func (c bridgeConfirmer) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	if !c.b.dispatch(confirmRequestMsg{prompt: prompt, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

type bridgeNotifier struct{ b *Bridge }

func (n bridgeNotifier) Notify(text string) {
	n.b.dispatch(noticeMsg{text: text})
}

type bridgeNavigator struct {
	b      *Bridge
	origin view
}

func (n bridgeNavigator) RedirectAfter(d time.Duration, destination string) {
	time.AfterFunc(d, func() {
		n.b.dispatch(navigateMsg{origin: n.origin, destination: destination})
	})
}
