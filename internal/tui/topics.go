package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DanePascual/studyhall/internal/viewmodel"
	"github.com/DanePascual/studyhall/pkg/client"
	"github.com/DanePascual/studyhall/pkg/domain"
)

type topicsMode int

const (
	topicsModeList topicsMode = iota
	topicsModePosts
	topicsModeNewTopic
)

type topicsModel struct {
	vm *viewmodel.Topics

	mode      topicsMode
	cursor    int
	postCur   int
	composing bool // typing a reply under the open topic
	compose   string
	form      topicForm
	err       error
	loading   bool
	statusMsg string
	width     int
	height    int
}

type topicsLoadedMsg struct{ err error }
type topicOpenedMsg struct{ err error }
type topicCreatedMsg struct{ err error }
type postCreatedMsg struct{ err error }
type likeToggledMsg struct{ err error }

func newTopicsModel(c *client.Client, deps viewmodel.Deps) topicsModel {
	return topicsModel{
		vm:      viewmodel.NewTopics(c, deps),
		loading: true,
	}
}

func (m topicsModel) loadList() tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		_, err := vm.LoadList(context.Background())
		return topicsLoadedMsg{err: err}
	}
}

func (m topicsModel) Init() tea.Cmd {
	return m.loadList()
}

// resetToList returns to the topic listing, dropping the open topic view.
func (m topicsModel) resetToList() topicsModel {
	m.mode = topicsModeList
	m.composing = false
	m.compose = ""
	m.err = nil
	m.loading = true
	return m
}

func (m topicsModel) editing() bool {
	return m.composing || m.mode == topicsModeNewTopic
}

func (m topicsModel) Update(msg tea.Msg) (topicsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if n := len(m.vm.TopicList()); m.cursor >= n {
			m.cursor = 0
		}
		return m, nil

	case topicOpenedMsg:
		m.loading = false
		m.err = msg.err
		m.postCur = 0
		return m, nil

	case topicCreatedMsg:
		m.loading = false
		if msg.err == nil {
			m.mode = topicsModeList
			m.statusMsg = "topic created"
			m.cursor = 0
		}
		return m, nil

	case postCreatedMsg:
		if msg.err == nil {
			m.compose = ""
			m.composing = false
			m.statusMsg = "posted"
		}
		return m, nil

	case likeToggledMsg:
		// In-flight repeats are dropped silently; the first toggle wins.
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch m.mode {
		case topicsModeList:
			return m.updateList(msg)
		case topicsModePosts:
			return m.updatePosts(msg)
		case topicsModeNewTopic:
			return m.updateNewTopic(msg)
		}
	}
	return m, nil
}

func (m topicsModel) updateList(msg tea.KeyMsg) (topicsModel, tea.Cmd) {
	topics := m.vm.TopicList()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(topics)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(topics) {
			id := topics[m.cursor].ID
			m.mode = topicsModePosts
			m.loading = true
			vm := m.vm
			return m, func() tea.Msg {
				_, err := vm.Load(context.Background(), id)
				return topicOpenedMsg{err: err}
			}
		}
	case "n":
		m.mode = topicsModeNewTopic
		m.form = newTopicForm()
	case "r":
		m.loading = true
		return m, m.loadList()
	}
	return m, nil
}

func (m topicsModel) updatePosts(msg tea.KeyMsg) (topicsModel, tea.Cmd) {
	if m.composing {
		switch msg.String() {
		case "enter":
			content := strings.TrimSpace(m.compose)
			if content == "" {
				m.composing = false
				return m, nil
			}
			vm := m.vm
			return m, func() tea.Msg {
				_, err := vm.CreatePost(context.Background(), domain.CreatePostRequest{Content: content})
				return postCreatedMsg{err: err}
			}
		case "esc":
			m.composing = false
			m.compose = ""
		default:
			m.compose = editRune(m.compose, msg.String())
		}
		return m, nil
	}

	posts := m.vm.Posts()
	switch msg.String() {
	case "esc":
		m.mode = topicsModeList
		m.err = nil
	case "j", "down":
		if m.postCur < len(posts)-1 {
			m.postCur++
		}
	case "k", "up":
		if m.postCur > 0 {
			m.postCur--
		}
	case "l":
		if m.postCur < len(posts) {
			id := posts[m.postCur].ID
			vm := m.vm
			return m, func() tea.Msg {
				_, err := vm.ToggleLike(context.Background(), id)
				return likeToggledMsg{err: err}
			}
		}
	case "enter":
		m.composing = true
		m.compose = ""
	case "r":
		if topic := m.vm.Topic(); topic != nil {
			id := topic.ID
			m.loading = true
			vm := m.vm
			return m, func() tea.Msg {
				_, err := vm.Load(context.Background(), id)
				return topicOpenedMsg{err: err}
			}
		}
	}
	return m, nil
}

func (m topicsModel) updateNewTopic(msg tea.KeyMsg) (topicsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = topicsModeList
		return m, nil
	case "tab", "shift+tab", "enter":
		m.form = m.form.cycleFocus()
		return m, nil
	case "ctrl+s":
		title := strings.TrimSpace(m.form.title.Value())
		if title == "" {
			m.statusMsg = "title is required"
			return m, nil
		}
		desc := strings.TrimSpace(m.form.description.Value())
		m.loading = true
		vm := m.vm
		return m, func() tea.Msg {
			_, err := vm.CreateTopic(context.Background(), domain.CreateTopicRequest{Title: title, Description: desc})
			return topicCreatedMsg{err: err}
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m topicsModel) View() string {
	switch m.mode {
	case topicsModePosts:
		return m.viewPosts()
	case topicsModeNewTopic:
		return m.form.view()
	}
	return m.viewList()
}

func (m topicsModel) viewList() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("DISCUSSION BOARD") + "\n\n")

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
	topics := m.vm.TopicList()
	if len(topics) == 0 {
		b.WriteString(" " + dimStyle.Render("no topics yet. press n to start one."))
		return b.String()
	}

	titleWidth := m.width - 28
	if titleWidth < 20 {
		titleWidth = 20
	}
	for i, t := range topics {
		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = selectedStyle
		}
		line := cursor + rowStyle.Render(fmt.Sprintf("%-*s", titleWidth, truncStr(t.Title, titleWidth))) +
			" " + dimStyle.Render(fmt.Sprintf("%12s", plural(t.PostCount, "post"))) +
			"  " + dimStyle.Render(formatTime(t.CreatedAt))
		b.WriteString(line + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m topicsModel) viewPosts() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading topic..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
		b.WriteString(" " + dimStyle.Render("returning to the board..."))
		return b.String()
	}
	topic := m.vm.Topic()
	if topic == nil {
		return b.String()
	}

	b.WriteString(" " + titleStyle.Render(topic.Title) + "\n")
	meta := dimStyle.Render("by " + topic.Creator)
	if !topic.CreatedAt.IsZero() {
		meta += dimStyle.Render("  ·  " + formatTime(topic.CreatedAt))
	}
	b.WriteString(" " + meta + "\n")
	if topic.Description != "" {
		b.WriteString(" " + dimStyle.Render(truncStr(topic.Description, m.width-4)) + "\n")
	}
	b.WriteString("\n")

	posts := m.vm.Posts()
	if len(posts) == 0 {
		b.WriteString(" " + dimStyle.Render("no posts yet. press enter to reply.") + "\n")
	}
	contentWidth := m.width - 6
	if contentWidth < 30 {
		contentWidth = 30
	}
	for i, p := range posts {
		cursor := "  "
		bodyStyle := dimStyle
		if i == m.postCur {
			cursor = accentStyle.Render("▸") + " "
			bodyStyle = selectedStyle
		}
		author := p.Author
		if author == "" {
			author = domain.AnonymousAuthor
		}
		head := cursor + accentStyle.Render(author) + "  " + dimStyle.Render(formatTime(p.CreatedAt))
		like := "♡"
		if p.Liked {
			like = hostBadgeSty.Render("♥")
		}
		head += fmt.Sprintf("  %s %d", like, p.Likes)
		b.WriteString(head + "\n")
		content := strings.ReplaceAll(p.Content, "\n", " ")
		b.WriteString("    " + bodyStyle.Render(truncStr(content, contentWidth)) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + noticeStyle.Render(m.statusMsg) + "\n")
	}

	if m.composing {
		b.WriteString("\n " + accentStyle.Render("> ") + m.compose + "█\n")
		b.WriteString(" " + helpStyle.Render("enter send  esc cancel") + "\n")
	} else {
		b.WriteString("\n " + helpStyle.Render("l like  enter reply  r refresh") + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

// topicForm is the two-field new-topic form.
type topicForm struct {
	title       textinput.Model
	description textinput.Model
	focus       int
}

func newTopicForm() topicForm {
	f := topicForm{
		title:       newFormInput("topic title", 80),
		description: newFormInput("what is this about?", 200),
	}
	f.title.Focus()
	return f
}

func (f topicForm) cycleFocus() topicForm {
	if f.focus == 0 {
		f.title.Blur()
		f.description.Focus()
		f.focus = 1
	} else {
		f.description.Blur()
		f.title.Focus()
		f.focus = 0
	}
	return f
}

func (f topicForm) update(msg tea.Msg) (topicForm, tea.Cmd) {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.title, cmd = f.title.Update(msg)
	} else {
		f.description, cmd = f.description.Update(msg)
	}
	return f, cmd
}

func (f topicForm) view() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("NEW TOPIC") + "\n\n")
	labels := []string{"title", "description"}
	for i, ti := range []textinput.Model{f.title, f.description} {
		label := dimStyle.Render(fmt.Sprintf("%-14s", labels[i]))
		if i == f.focus {
			label = accentStyle.Render(fmt.Sprintf("%-14s", labels[i]))
		}
		b.WriteString(" " + label + ti.View() + "\n")
	}
	b.WriteString("\n " + helpStyle.Render("tab next  ctrl+s create  esc cancel") + "\n")
	return b.String()
}
