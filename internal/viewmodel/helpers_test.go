package viewmodel

import (
	"context"
	"sync"
	"time"
)

// fakes for the UI collaborators

type confirmAnswer struct {
	answer bool
	calls  int
}

func (c *confirmAnswer) Confirm(_ context.Context, _ string) bool {
	c.calls++
	return c.answer
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []string
}

func (n *recordingNotifier) Notify(text string) {
	n.mu.Lock()
	n.notes = append(n.notes, text)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notes)
}

type recordingNav struct {
	mu    sync.Mutex
	dests []string
}

func (n *recordingNav) RedirectAfter(_ time.Duration, destination string) {
	n.mu.Lock()
	n.dests = append(n.dests, destination)
	n.mu.Unlock()
}

func (n *recordingNav) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.dests) == 0 {
		return ""
	}
	return n.dests[len(n.dests)-1]
}

func testDeps(confirm *confirmAnswer, notify *recordingNotifier, nav *recordingNav) Deps {
	d := Deps{RedirectDelay: time.Millisecond}
	if confirm != nil {
		d.Confirm = confirm
	}
	if notify != nil {
		d.Notify = notify
	}
	if nav != nil {
		d.Nav = nav
	}
	return d
}
