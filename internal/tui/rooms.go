package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanePascual/studyhall/internal/viewmodel"
	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

type roomsMode int

const (
	roomsModeList roomsMode = iota
	roomsModeDetail
	roomsModeCreate
	roomsModeEdit
)

type roomsModel struct {
	client     *client.Client
	deps       viewmodel.Deps
	userID     string
	inviteBase string

	mode      roomsMode
	rooms     []domain.Room
	cursor    int
	pCursor   int // participant cursor in detail mode
	vm        *viewmodel.Room
	form      roomForm
	sp        spinner.Model
	inCall    bool
	err       error
	loading   bool
	statusMsg string
	width     int
	height    int
}

type roomListMsg struct {
	rooms []domain.Room
	err   error
}

type roomOpenedMsg struct{ err error }
type roomCreatedMsg struct {
	room *domain.Room
	err  error
}
type roomSavedMsg struct{ err error }
type roomDeletedMsg struct{ err error }
type roomKickedMsg struct{ err error }
type copyResultMsg struct{ err error }

func newRoomsModel(c *client.Client, userID, inviteBase string, deps viewmodel.Deps) roomsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return roomsModel{
		client:     c,
		deps:       deps,
		userID:     userID,
		inviteBase: inviteBase,
		sp:         sp,
		loading:    true,
	}
}

func (m roomsModel) loadList() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		rooms, err := c.ListRooms(context.Background())
		return roomListMsg{rooms: rooms, err: err}
	}
}

func (m roomsModel) Init() tea.Cmd {
	return tea.Batch(m.loadList(), m.sp.Tick)
}

// resetToList drops any open room and returns to the listing. Used by the
// fallback navigation after a failed detail load.
func (m roomsModel) resetToList() roomsModel {
	m.mode = roomsModeList
	m.vm = nil
	m.err = nil
	m.loading = true
	return m
}

func (m roomsModel) Update(msg tea.Msg) (roomsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case roomListMsg:
		m.loading = false
		m.rooms = msg.rooms
		m.err = msg.err
		if m.cursor >= len(m.rooms) {
			m.cursor = 0
		}
		return m, nil

	case roomOpenedMsg:
		m.loading = false
		m.err = msg.err
		m.pCursor = 0
		return m, nil

	case roomCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = roomsModeList
		m.statusMsg = "room created"
		if msg.room != nil {
			m.rooms = append([]domain.Room{*msg.room}, m.rooms...)
			m.cursor = 0
		}
		return m, nil

	case roomSavedMsg:
		m.loading = false
		if msg.err == nil {
			m.mode = roomsModeDetail
			m.statusMsg = "settings saved"
		}
		return m, nil

	case roomDeletedMsg:
		m.loading = false
		if msg.err == nil {
			m.mode = roomsModeList
			m.vm = nil
			m.statusMsg = "room deleted"
			m.loading = true
			return m, m.loadList()
		}
		return m, nil

	case roomKickedMsg:
		if msg.err == nil {
			m.statusMsg = "participant removed"
			if n := len(m.participants()); m.pCursor >= n && n > 0 {
				m.pCursor = n - 1
			}
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "invite link copied"
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.mode {
		case roomsModeList:
			return m.updateList(msg)
		case roomsModeDetail:
			return m.updateDetail(msg)
		case roomsModeCreate, roomsModeEdit:
			return m.updateForm(msg)
		}
	}
	return m, nil
}

func (m roomsModel) updateList(msg tea.KeyMsg) (roomsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.rooms)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.rooms) {
			id := m.rooms[m.cursor].ID
			m.vm = viewmodel.NewRoom(m.client, m.userID, m.deps)
			m.mode = roomsModeDetail
			m.loading = true
			m.inCall = false
			vm := m.vm
			return m, func() tea.Msg {
				_, err := vm.Load(context.Background(), id)
				return roomOpenedMsg{err: err}
			}
		}
	case "n":
		m.mode = roomsModeCreate
		m.form = newRoomForm(nil)
	case "r":
		m.loading = true
		return m, m.loadList()
	}
	return m, nil
}

func (m roomsModel) updateDetail(msg tea.KeyMsg) (roomsModel, tea.Cmd) {
	vm := m.vm
	if vm == nil {
		if msg.String() == "esc" {
			m.mode = roomsModeList
		}
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = roomsModeList
		m.vm = nil
		m.err = nil
		m.loading = true
		return m, m.loadList()
	case "j", "down":
		if m.pCursor < len(m.participants())-1 {
			m.pCursor++
		}
	case "k", "up":
		if m.pCursor > 0 {
			m.pCursor--
		}
	case "v":
		m.inCall = !m.inCall
		vm.SetCallStatus(m.userID, m.inCall)
	case "c":
		if room := vm.Room(); room != nil {
			link := m.inviteBase + "/rooms/" + room.ID
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(link)}
			}
		}
	case "e":
		if room := vm.Room(); room != nil && vm.IsOwner() {
			m.mode = roomsModeEdit
			m.form = newRoomForm(room)
		}
	case "d":
		if vm.IsOwner() {
			return m, func() tea.Msg {
				return roomDeletedMsg{err: vm.Delete(context.Background())}
			}
		}
	case "x":
		parts := m.participants()
		if vm.IsOwner() && m.pCursor < len(parts) {
			uid := parts[m.pCursor].ID
			return m, func() tea.Msg {
				return roomKickedMsg{err: vm.Kick(context.Background(), uid)}
			}
		}
	case "r":
		if room := vm.Room(); room != nil {
			id := room.ID
			m.loading = true
			return m, func() tea.Msg {
				_, err := vm.Load(context.Background(), id)
				return roomOpenedMsg{err: err}
			}
		}
	}
	return m, nil
}

func (m roomsModel) updateForm(msg tea.KeyMsg) (roomsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == roomsModeEdit {
			m.mode = roomsModeDetail
		} else {
			m.mode = roomsModeList
		}
		return m, nil
	case "tab", "shift+tab", "enter":
		m.form = m.form.cycleFocus(msg.String() == "shift+tab")
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m roomsModel) submitForm() (roomsModel, tea.Cmd) {
	name := strings.TrimSpace(m.form.name.Value())
	if name == "" {
		m.statusMsg = "name is required"
		return m, nil
	}
	subject := strings.TrimSpace(m.form.subject.Value())
	desc := strings.TrimSpace(m.form.description.Value())
	maxP, _ := strconv.Atoi(strings.TrimSpace(m.form.maxParticipants.Value()))

	m.loading = true
	if m.mode == roomsModeCreate {
		c := m.client
		req := client.CreateRoomRequest{
			Name:            name,
			Subject:         subject,
			Description:     desc,
			MaxParticipants: maxP,
		}
		return m, func() tea.Msg {
			room, err := c.CreateRoom(context.Background(), req)
			return roomCreatedMsg{room: room, err: err}
		}
	}

	vm := m.vm
	req := domain.UpdateRoomRequest{
		Name:            &name,
		Subject:         &subject,
		Description:     &desc,
		MaxParticipants: &maxP,
	}
	return m, func() tea.Msg {
		return roomSavedMsg{err: vm.UpdateSettings(context.Background(), req)}
	}
}

func (m roomsModel) participants() []domain.Participant {
	if m.vm == nil {
		return nil
	}
	return m.vm.Participants()
}

func (m roomsModel) View() string {
	switch m.mode {
	case roomsModeDetail:
		return m.viewDetail()
	case roomsModeCreate:
		return m.form.view("NEW ROOM")
	case roomsModeEdit:
		return m.form.view("ROOM SETTINGS")
	}
	return m.viewList()
}

func (m roomsModel) viewList() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("STUDY ROOMS") + "\n\n")

	if m.statusMsg != "" {
		b.WriteString(" " + noticeStyle.Render(m.statusMsg) + "\n")
	}
	if m.loading {
		b.WriteString(" " + m.sp.View() + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.rooms) == 0 {
		b.WriteString(" " + dimStyle.Render("no rooms yet. press n to create one."))
		return b.String()
	}

	nameWidth := m.width - 30
	if nameWidth < 20 {
		nameWidth = 20
	}
	for i, room := range m.rooms {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = selectedStyle
		}
		name := truncStr(room.Name, nameWidth)
		count := fmt.Sprintf("%d", len(room.Participants))
		if room.MaxParticipants > 0 {
			count = fmt.Sprintf("%d/%d", len(room.Participants), room.MaxParticipants)
		}
		line := cursor + rowStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)) +
			" " + dimStyle.Render(fmt.Sprintf("%8s", count))
		if room.Subject != "" {
			line += "  " + accentStyle.Render(truncStr(room.Subject, 16))
		}
		if room.Private {
			line += "  " + dimStyle.Render("private")
		}
		b.WriteString(line + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m roomsModel) viewDetail() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")

	if m.loading {
		b.WriteString(" " + m.sp.View() + dimStyle.Render("loading room..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
		b.WriteString(" " + dimStyle.Render("returning to the room list..."))
		return b.String()
	}
	room := m.vm.Room()
	if room == nil {
		return b.String()
	}

	b.WriteString(" " + titleStyle.Render(room.Name) + "\n")
	meta := ""
	if room.Subject != "" {
		meta = accentStyle.Render(room.Subject)
	}
	if !room.CreatedAt.IsZero() {
		if meta != "" {
			meta += dimStyle.Render("  ·  ")
		}
		meta += dimStyle.Render("created " + formatTime(room.CreatedAt))
	}
	if meta != "" {
		b.WriteString(" " + meta + "\n")
	}
	if room.Description != "" {
		b.WriteString(" " + dimStyle.Render(truncStr(room.Description, m.width-4)) + "\n")
	}
	b.WriteString("\n")

	parts := m.participants()
	header := fmt.Sprintf("PARTICIPANTS (%d", len(parts))
	if room.MaxParticipants > 0 {
		header += fmt.Sprintf("/%d", room.MaxParticipants)
	}
	header += ")"
	b.WriteString(" " + selectedStyle.Render(header) + "\n")

	for i, p := range parts {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.pCursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		line := cursor + accentStyle.Render(p.AvatarGlyph) + " " + nameStyle.Render(p.Name)
		if p.IsHost {
			line += " " + hostBadgeSty.Render("host")
		}
		if p.InCall {
			line += " " + callBadgeSty.Render("● in call")
		}
		if p.ID == m.userID {
			line += " " + dimStyle.Render("(you)")
		}
		b.WriteString(line + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + noticeStyle.Render(m.statusMsg) + "\n")
	}

	keys := "v call  c copy link"
	if m.vm.IsOwner() {
		keys = "e edit  x kick  d delete  " + keys
	}
	b.WriteString("\n " + helpStyle.Render(keys) + "\n")

	return truncateToHeight(b.String(), m.height)
}

// roomForm is the shared create/edit settings form.
type roomForm struct {
	name            textinput.Model
	subject         textinput.Model
	description     textinput.Model
	maxParticipants textinput.Model
	focus           int
}

func newRoomForm(room *domain.Room) roomForm {
	f := roomForm{
		name:            newFormInput("room name", 60),
		subject:         newFormInput("subject", 40),
		description:     newFormInput("description", 200),
		maxParticipants: newFormInput("max participants (0 = unlimited)", 4),
	}
	if room != nil {
		f.name.SetValue(room.Name)
		f.subject.SetValue(room.Subject)
		f.description.SetValue(room.Description)
		if room.MaxParticipants > 0 {
			f.maxParticipants.SetValue(strconv.Itoa(room.MaxParticipants))
		}
	}
	f.name.Focus()
	return f
}

func newFormInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "> "
	return ti
}

func (f roomForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.name, &f.subject, &f.description, &f.maxParticipants}
}

func (f roomForm) cycleFocus(backward bool) roomForm {
	inputs := f.inputs()
	inputs[f.focus].Blur()
	if backward {
		f.focus = (f.focus + len(inputs) - 1) % len(inputs)
	} else {
		f.focus = (f.focus + 1) % len(inputs)
	}
	inputs[f.focus].Focus()
	return f
}

func (f roomForm) update(msg tea.Msg) (roomForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.name, cmd = f.name.Update(msg)
	case 1:
		f.subject, cmd = f.subject.Update(msg)
	case 2:
		f.description, cmd = f.description.Update(msg)
	case 3:
		f.maxParticipants, cmd = f.maxParticipants.Update(msg)
	}
	return f, cmd
}

func (f roomForm) view(title string) string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(title) + "\n\n")
	labels := []string{"name", "subject", "description", "max participants"}
	for i, ti := range []textinput.Model{f.name, f.subject, f.description, f.maxParticipants} {
		label := dimStyle.Render(fmt.Sprintf("%-18s", labels[i]))
		if i == f.focus {
			label = accentStyle.Render(fmt.Sprintf("%-18s", labels[i]))
		}
		b.WriteString(" " + label + ti.View() + "\n")
	}
	b.WriteString("\n " + helpStyle.Render("tab next  ctrl+s save  esc cancel") + "\n")
	return b.String()
}
