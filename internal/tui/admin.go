package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanePascual/studyhall/internal/viewmodel"
	"github.com/DanePascual/studyhall/pkg/client"
)

type adminModel struct {
	vm *viewmodel.Admin

	cursor    int
	err       error
	loading   bool
	statusMsg string
	width     int
	height    int
}

type adminLoadedMsg struct{ err error }
type adminDeletedMsg struct{ err error }

func newAdminModel(c *client.Client, isAdmin bool, deps viewmodel.Deps) adminModel {
	return adminModel{
		vm:      viewmodel.NewAdmin(c, isAdmin, deps),
		loading: true,
	}
}

func (m adminModel) load() tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		_, err := vm.Load(context.Background())
		return adminLoadedMsg{err: err}
	}
}

func (m adminModel) Init() tea.Cmd {
	return m.load()
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case adminLoadedMsg:
		m.loading = false
		m.err = msg.err
		if n := len(m.vm.Users()); m.cursor >= n {
			m.cursor = 0
		}
		return m, nil

	case adminDeletedMsg:
		if msg.err == nil {
			m.statusMsg = "user deleted"
			if n := len(m.vm.Users()); m.cursor >= n && n > 0 {
				m.cursor = n - 1
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		users := m.vm.Users()
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(users)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "x":
			if m.cursor < len(users) {
				id := users[m.cursor].ID
				vm := m.vm
				return m, func() tea.Msg {
					return adminDeletedMsg{err: vm.DeleteUser(context.Background(), id)}
				}
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m adminModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("ADMIN · USERS") + "\n\n")

	if m.statusMsg != "" {
		b.WriteString(" " + noticeStyle.Render(m.statusMsg) + "\n")
	}
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	users := m.vm.Users()
	if len(users) == 0 {
		b.WriteString(" " + dimStyle.Render("no users"))
		return b.String()
	}

	nameWidth := m.width - 46
	if nameWidth < 16 {
		nameWidth = 16
	}
	for i, u := range users {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = selectedStyle
		}
		name := u.Name
		if name == "" {
			name = u.ID
		}
		line := cursor + rowStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(name, nameWidth))) +
			" " + dimStyle.Render(fmt.Sprintf("%-24s", truncStr(u.Email, 24)))
		if u.Role == "admin" {
			line += " " + hostBadgeSty.Render("admin")
		}
		if u.Suspended {
			line += " " + errorStyle.Render("suspended")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n " + helpStyle.Render("x delete  r refresh") + "\n")
	return truncateToHeight(b.String(), m.height)
}
