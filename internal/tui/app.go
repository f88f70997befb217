package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/DanePascual/studyhall/internal/viewmodel"
	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

type view int

const (
	viewRooms view = iota
	viewTopics
	viewProfile
	viewAdmin
)

// noticeDuration is how long a transient notice stays on screen.
const noticeDuration = 4 * time.Second

type noticeExpiredMsg struct{ seq int }

// AppConfig carries everything the root model needs at startup.
type AppConfig struct {
	Client        *client.Client
	Me            *domain.Profile
	MirrorPath    string
	InviteBase    string
	Bridge        *Bridge
	Log           zerolog.Logger
	RedirectDelay time.Duration
}

// App is the root Bubbletea model.
type App struct {
	rooms   roomsModel
	topics  topicsModel
	profile profileModel
	admin   adminModel

	view    view
	isAdmin bool

	confirmOpen   bool
	confirmPrompt string
	confirmReply  chan bool

	notice    string
	noticeSeq int

	width  int
	height int
}

// NewApp wires the view-models to the UI through the bridge and builds the
// root model.
func NewApp(cfg AppConfig) App {
	depsFor := func(origin view) viewmodel.Deps {
		return viewmodel.Deps{
			Confirm:       bridgeConfirmer{b: cfg.Bridge},
			Notify:        bridgeNotifier{b: cfg.Bridge},
			Nav:           bridgeNavigator{b: cfg.Bridge, origin: origin},
			Log:           cfg.Log,
			RedirectDelay: cfg.RedirectDelay,
		}
	}

	var userID string
	isAdmin := false
	if cfg.Me != nil {
		userID = cfg.Me.UserID
		isAdmin = cfg.Me.IsAdmin()
	}
	inviteBase := cfg.InviteBase
	if inviteBase == "" {
		inviteBase = "https://studyhall.app"
	}

	return App{
		rooms:   newRoomsModel(cfg.Client, userID, inviteBase, depsFor(viewRooms)),
		topics:  newTopicsModel(cfg.Client, depsFor(viewTopics)),
		profile: newProfileModel(cfg.Client, cfg.MirrorPath, depsFor(viewProfile)),
		admin:   newAdminModel(cfg.Client, isAdmin, depsFor(viewAdmin)),
		isAdmin: isAdmin,
	}
}

func (a App) Init() tea.Cmd {
	return a.rooms.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: tabs(1) + notice(1) + help(1) = 3 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 3}
		a.rooms, _ = a.rooms.Update(bodyMsg)
		a.topics, _ = a.topics.Update(bodyMsg)
		a.profile, _ = a.profile.Update(bodyMsg)
		a.admin, _ = a.admin.Update(bodyMsg)
		return a, nil

	case confirmRequestMsg:
		a.confirmOpen = true
		a.confirmPrompt = msg.prompt
		a.confirmReply = msg.reply
		return a, nil

	case noticeMsg:
		a.notice = msg.text
		a.noticeSeq++
		seq := a.noticeSeq
		return a, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
			return noticeExpiredMsg{seq: seq}
		})

	case noticeExpiredMsg:
		if msg.seq == a.noticeSeq {
			a.notice = ""
		}
		return a, nil

	case navigateMsg:
		// Stale redirect: the user already left the page that scheduled it.
		if msg.origin != a.view {
			return a, nil
		}
		switch msg.destination {
		case viewmodel.DestRooms:
			a.view = viewRooms
			a.rooms = a.rooms.resetToList()
			return a, a.rooms.loadList()
		case viewmodel.DestTopics:
			a.view = viewTopics
			a.topics = a.topics.resetToList()
			return a, a.topics.loadList()
		}
		return a, nil

	case tea.KeyMsg:
		if a.confirmOpen {
			switch msg.String() {
			case "y", "enter":
				a.answerConfirm(true)
			case "n", "esc":
				a.answerConfirm(false)
			}
			return a, nil
		}

		if !a.isEditing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				if a.view != viewRooms {
					a.view = viewRooms
					return a, a.rooms.Init()
				}
				return a, nil
			case "2":
				if a.view != viewTopics {
					a.view = viewTopics
					return a, a.topics.Init()
				}
				return a, nil
			case "3":
				if a.view != viewProfile {
					a.view = viewProfile
					return a, a.profile.Init()
				}
				return a, nil
			case "4":
				if a.isAdmin && a.view != viewAdmin {
					a.view = viewAdmin
					return a, a.admin.Init()
				}
				return a, nil
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewRooms:
		a.rooms, cmd = a.rooms.Update(msg)
	case viewTopics:
		a.topics, cmd = a.topics.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	case viewAdmin:
		a.admin, cmd = a.admin.Update(msg)
	}
	return a, cmd
}

func (a *App) answerConfirm(answer bool) {
	if a.confirmReply != nil {
		a.confirmReply <- answer
	}
	a.confirmOpen = false
	a.confirmPrompt = ""
	a.confirmReply = nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewRooms:
		return a.rooms.mode == roomsModeCreate || a.rooms.mode == roomsModeEdit
	case viewTopics:
		return a.topics.editing()
	case viewProfile:
		return a.profile.editing()
	}
	return false
}

func (a App) View() string {
	// Tab bar
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Rooms", viewRooms},
		{"2", "Board", viewTopics},
		{"3", "Profile", viewProfile},
	}
	if a.isAdmin {
		tabs = append(tabs, tabEntry{"4", "Admin", viewAdmin})
	}
	var tabBar strings.Builder
	tabBar.WriteString(" ")
	for i, t := range tabs {
		if i > 0 {
			tabBar.WriteString("   ")
		}
		if t.v == a.view {
			tabBar.WriteString(accentStyle.Render(t.key) + " " + tabActiveSty.Underline(true).Render(t.name))
		} else {
			tabBar.WriteString(tabStyle.Render(t.key + " " + t.name))
		}
	}

	// Notice line
	noticeLine := ""
	if a.notice != "" {
		noticeLine = " " + noticeStyle.Render(a.notice)
	}

	// Body
	var body string
	switch a.view {
	case viewRooms:
		body = a.rooms.View()
	case viewTopics:
		body = a.topics.View()
	case viewProfile:
		body = a.profile.View()
	case viewAdmin:
		body = a.admin.View()
	}

	// Confirm modal replaces the body while open.
	if a.confirmOpen {
		modal := modalStyle.Render(a.confirmPrompt + "\n\n" + helpStyle.Render("y confirm   n cancel"))
		body = lipgloss.Place(max(a.width, lipgloss.Width(modal)), lipgloss.Height(modal)+2,
			lipgloss.Center, lipgloss.Center, modal)
	}

	help := " " + helpStyle.Render("1-"+fmt.Sprintf("%d", len(tabs))+" tabs  j/k nav  q quit")
	if a.confirmOpen {
		help = " " + helpStyle.Render("y confirm  n cancel")
	}

	chrome := 3
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", tabBar.String(), noticeLine, body, help)
}
