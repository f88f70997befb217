package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanePascual/studyhall/internal/viewmodel"
	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

type profileMode int

const (
	profileModeView profileMode = iota
	profileModeEdit
	profileModePhoto
)

type profileModel struct {
	vm *viewmodel.Profile

	mode      profileMode
	form      profileForm
	photoPath textinput.Model
	err       error
	loading   bool
	statusMsg string
	width     int
	height    int
}

type profileLoadedMsg struct {
	profile *domain.Profile
	err     error
}

type profileSavedMsg struct{ err error }
type photoUploadedMsg struct {
	url string
	err error
}

func newProfileModel(c *client.Client, mirrorPath string, deps viewmodel.Deps) profileModel {
	vm := viewmodel.NewProfile(c, mirrorPath, deps)
	// Seed from the disk mirror so the page is not blank before the fetch.
	vm.LoadMirror()
	return profileModel{vm: vm, loading: true}
}

func (m profileModel) load() tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		p, err := vm.Load(context.Background())
		return profileLoadedMsg{profile: p, err: err}
	}
}

func (m profileModel) Init() tea.Cmd {
	return m.load()
}

func (m profileModel) editing() bool {
	return m.mode != profileModeView
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case profileSavedMsg:
		m.loading = false
		if msg.err == nil {
			m.mode = profileModeView
			m.statusMsg = "profile saved"
		}
		return m, nil

	case photoUploadedMsg:
		m.loading = false
		if msg.err == nil {
			m.mode = profileModeView
			m.statusMsg = "photo updated"
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "photo URL copied"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.mode {
		case profileModeView:
			return m.updateView(msg)
		case profileModeEdit:
			return m.updateEdit(msg)
		case profileModePhoto:
			return m.updatePhoto(msg)
		}
	}
	return m, nil
}

func (m profileModel) updateView(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	switch msg.String() {
	case "e":
		if p := m.vm.Profile(); p != nil {
			m.mode = profileModeEdit
			m.form = newProfileForm(p)
		}
	case "p":
		m.mode = profileModePhoto
		m.photoPath = newFormInput("path to image file", 200)
		m.photoPath.Focus()
	case "c":
		if p := m.vm.Profile(); p != nil && p.PhotoURL != "" {
			url := p.PhotoURL
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(url)}
			}
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m profileModel) updateEdit(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = profileModeView
		return m, nil
	case "tab", "shift+tab", "enter":
		m.form = m.form.cycleFocus(msg.String() == "shift+tab")
		return m, nil
	case "ctrl+s":
		name := strings.TrimSpace(m.form.name.Value())
		bio := strings.TrimSpace(m.form.bio.Value())
		course := strings.TrimSpace(m.form.course.Value())
		m.loading = true
		vm := m.vm
		req := domain.UpdateProfileRequest{Name: &name, Bio: &bio, Course: &course}
		return m, func() tea.Msg {
			_, err := vm.Update(context.Background(), req)
			return profileSavedMsg{err: err}
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m profileModel) updatePhoto(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = profileModeView
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.photoPath.Value())
		if path == "" {
			return m, nil
		}
		m.loading = true
		vm := m.vm
		return m, func() tea.Msg {
			url, err := vm.UploadPhoto(context.Background(), path)
			return photoUploadedMsg{url: url, err: err}
		}
	}
	var cmd tea.Cmd
	m.photoPath, cmd = m.photoPath.Update(msg)
	return m, cmd
}

func (m profileModel) View() string {
	switch m.mode {
	case profileModeEdit:
		return m.form.view()
	case profileModePhoto:
		var b strings.Builder
		b.WriteString(" " + titleStyle.Render("UPLOAD PHOTO") + "\n\n")
		b.WriteString(" " + m.photoPath.View() + "\n")
		if m.loading {
			b.WriteString(" " + dimStyle.Render("uploading...") + "\n")
		}
		b.WriteString("\n " + helpStyle.Render("enter upload  esc cancel") + "\n")
		return b.String()
	}

	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("YOUR PROFILE") + "\n\n")

	if m.statusMsg != "" {
		b.WriteString(" " + noticeStyle.Render(m.statusMsg) + "\n")
	}
	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
		b.WriteString(" " + dimStyle.Render("returning to rooms..."))
		return b.String()
	}
	p := m.vm.Profile()
	if p == nil {
		b.WriteString(" " + dimStyle.Render("no profile loaded"))
		return b.String()
	}

	rows := []struct{ label, value string }{
		{"name", p.Name},
		{"email", p.Email},
		{"course", p.Course},
		{"bio", p.Bio},
		{"photo", p.PhotoURL},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("%-10s", row.label)) +
			selectedStyle.Render(truncStr(row.value, m.width-14)) + "\n")
	}
	if p.IsAdmin() {
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("%-10s", "role")) + hostBadgeSty.Render(p.Role) + "\n")
	}

	b.WriteString("\n " + helpStyle.Render("e edit  p photo  c copy photo URL  r refresh") + "\n")
	return truncateToHeight(b.String(), m.height)
}

type profileForm struct {
	name   textinput.Model
	bio    textinput.Model
	course textinput.Model
	focus  int
}

func newProfileForm(p *domain.Profile) profileForm {
	f := profileForm{
		name:   newFormInput("display name", 60),
		bio:    newFormInput("a line about you", 200),
		course: newFormInput("course of study", 80),
	}
	f.name.SetValue(p.Name)
	f.bio.SetValue(p.Bio)
	f.course.SetValue(p.Course)
	f.name.Focus()
	return f
}

func (f profileForm) cycleFocus(backward bool) profileForm {
	inputs := []*textinput.Model{&f.name, &f.bio, &f.course}
	inputs[f.focus].Blur()
	if backward {
		f.focus = (f.focus + len(inputs) - 1) % len(inputs)
	} else {
		f.focus = (f.focus + 1) % len(inputs)
	}
	inputs[f.focus].Focus()
	return f
}

func (f profileForm) update(msg tea.Msg) (profileForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.name, cmd = f.name.Update(msg)
	case 1:
		f.bio, cmd = f.bio.Update(msg)
	case 2:
		f.course, cmd = f.course.Update(msg)
	}
	return f, cmd
}

func (f profileForm) view() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("EDIT PROFILE") + "\n\n")
	labels := []string{"name", "bio", "course"}
	for i, ti := range []textinput.Model{f.name, f.bio, f.course} {
		label := dimStyle.Render(fmt.Sprintf("%-10s", labels[i]))
		if i == f.focus {
			label = accentStyle.Render(fmt.Sprintf("%-10s", labels[i]))
		}
		b.WriteString(" " + label + ti.View() + "\n")
	}
	b.WriteString("\n " + helpStyle.Render("tab next  ctrl+s save  esc cancel") + "\n")
	return b.String()
}
