package tui

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/i18n"
	"github.com/trusteehq/trustee/internal/session"
)

// TranscriptReader loads entries for the preview pane. *session.Store
// satisfies it.
type TranscriptReader interface {
	ReadSession(ctx context.Context, hash checkpoint.ProjectHash, id string) ([]session.Entry, int, error)
}

// PickerResult is what the picker returns: the chosen project, optionally a
// chosen session, or cancellation.
type PickerResult struct {
	Hash      checkpoint.ProjectHash
	SessionID string
	Cancelled bool
}

// page identifies which list the picker is showing.
type page int

const (
	pageProjects page = iota
	pageSessions
)

// Messages produced by the picker's commands.
type (
	projectsLoadedMsg struct {
		entries []checkpoint.ResumableProject
		diags   checkpoint.ResumeDiagnostics
		err     error
	}
	previewLoadedMsg struct {
		sessionID string
		entries   []session.Entry
		err       error
	}
)

// Model is the resume picker TUI model.
type Model struct {
	coordinator *checkpoint.Coordinator
	transcripts TranscriptReader

	page     page
	projects list.Model
	sessions list.Model
	styles   Styles
	keys     keyMap

	selected    *checkpoint.ResumableProject
	diags       checkpoint.ResumeDiagnostics
	loadErr     error
	result      PickerResult
	showPreview bool
	preview     string
	previewFor  string

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the resume picker.
func NewModel(coordinator *checkpoint.Coordinator, transcripts TranscriptReader) Model {
	delegate := list.NewDefaultDelegate()

	projects := list.New(nil, delegate, 0, 0)
	projects.Title = i18n.T("tui.picker.title", "Resume a project")
	projects.SetShowStatusBar(true)
	projects.SetShowHelp(true)
	projects.SetFilteringEnabled(true)

	sessions := list.New(nil, delegate, 0, 0)
	sessions.SetShowStatusBar(true)
	sessions.SetShowHelp(true)
	sessions.SetFilteringEnabled(true)

	return Model{
		coordinator: coordinator,
		transcripts: transcripts,
		projects:    projects,
		sessions:    sessions,
		styles:      DefaultStyles(),
		keys:        defaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// loadProjects fetches the resumable view. Runs off the UI goroutine.
func (m Model) loadProjects() tea.Cmd {
	coordinator := m.coordinator
	return func() tea.Msg {
		entries, diags, err := coordinator.ListResumable(context.Background())
		return projectsLoadedMsg{entries: entries, diags: diags, err: err}
	}
}

// loadPreview fetches the transcript of the currently selected session.
func (m Model) loadPreview(hash checkpoint.ProjectHash, id string) tea.Cmd {
	transcripts := m.transcripts
	return func() tea.Msg {
		if transcripts == nil {
			return previewLoadedMsg{sessionID: id, err: fmt.Errorf("no transcript store")}
		}
		entries, _, err := transcripts.ReadSession(context.Background(), hash, id)
		return previewLoadedMsg{sessionID: id, entries: entries, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		return m, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loadErr = nil
		m.diags = msg.diags
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = projectItem{project: e}
		}
		return m, m.projects.SetItems(items)

	case previewLoadedMsg:
		if msg.err != nil {
			m.preview = fmt.Sprintf("preview unavailable: %v", msg.err)
		} else {
			w, h := m.previewSize()
			m.preview = renderPreview(msg.entries, w, h)
		}
		m.previewFor = msg.sessionID
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveList(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	active := m.activeList()
	if active.FilterState() == list.Filtering {
		return m.updateActiveList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.result.Cancelled = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.page == pageSessions {
			m.page = pageProjects
			m.selected = nil
			m.showPreview = false
			m.preview = ""
			return m, nil
		}
		m.result.Cancelled = true
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		if m.page == pageProjects {
			return m, m.loadProjects()
		}
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		if m.page == pageSessions {
			m.showPreview = !m.showPreview
			m.resize()
			if m.showPreview {
				if cmd := m.previewSelected(); cmd != nil {
					return m, cmd
				}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.handleSelect()
	}

	model, cmd := m.updateActiveList(msg)
	// Selection moved: refresh the preview for the newly focused session.
	if picker, ok := model.(Model); ok && picker.showPreview && picker.page == pageSessions {
		if previewCmd := picker.previewSelected(); previewCmd != nil {
			return picker, tea.Batch(cmd, previewCmd)
		}
	}
	return model, cmd
}

func (m Model) handleSelect() (tea.Model, tea.Cmd) {
	switch m.page {
	case pageProjects:
		item, ok := m.projects.SelectedItem().(projectItem)
		if !ok {
			return m, nil
		}
		selected := item.project
		m.selected = &selected
		m.result.Hash = selected.Hash

		items := make([]list.Item, len(selected.Sessions))
		for i, r := range selected.Sessions {
			items[i] = sessionItem{record: r}
		}
		m.sessions.Title = i18n.Tf("tui.sessions.title", "Sessions: %s", selected.Name)
		m.page = pageSessions
		return m, m.sessions.SetItems(items)

	case pageSessions:
		if item, ok := m.sessions.SelectedItem().(sessionItem); ok {
			m.result.SessionID = item.record.SessionID
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// previewSelected returns a command loading the preview for the focused
// session, or nil when it is already loaded.
func (m Model) previewSelected() tea.Cmd {
	item, ok := m.sessions.SelectedItem().(sessionItem)
	if !ok || m.selected == nil {
		return nil
	}
	if item.record.SessionID == m.previewFor {
		return nil
	}
	return m.loadPreview(m.selected.Hash, item.record.SessionID)
}

func (m *Model) activeList() *list.Model {
	if m.page == pageSessions {
		return &m.sessions
	}
	return &m.projects
}

func (m Model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.page == pageSessions {
		m.sessions, cmd = m.sessions.Update(msg)
	} else {
		m.projects, cmd = m.projects.Update(msg)
	}
	return m, cmd
}

// previewSize returns the inner dimensions of the preview pane.
func (m Model) previewSize() (int, int) {
	w := m.width/2 - 6
	h := m.height - 6
	if w < 10 {
		w = 10
	}
	if h < 3 {
		h = 3
	}
	return w, h
}

func (m *Model) resize() {
	listWidth := m.width
	if m.showPreview && m.page == pageSessions {
		listWidth = m.width / 2
	}
	m.projects.SetSize(m.width, m.height-3)
	m.sessions.SetSize(listWidth, m.height-3)
}

func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView(i18n.T("common.loading", "Loading..."))
		v.AltScreen = true
		return v
	}
	if m.quitting {
		return tea.NewView("")
	}
	if m.loadErr != nil {
		v := tea.NewView(m.styles.Frame.Render(fmt.Sprintf("error: %v", m.loadErr)))
		v.AltScreen = true
		return v
	}

	var content string
	switch {
	case m.page == pageSessions && m.showPreview:
		pane := m.styles.PreviewBorder.Render(m.preview)
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.sessions.View(), pane)
	case m.page == pageSessions:
		content = m.sessions.View()
	default:
		content = m.projects.View()
	}

	if m.page == pageProjects {
		if n := m.diags.Skipped.Skipped(); n > 0 {
			footer := m.styles.StatusBar.Render(
				i18n.Tf("tui.picker.skipped", "%d unreadable entries skipped", n))
			content += "\n" + footer
		}
	}

	v := tea.NewView(m.styles.Frame.Render(content))
	v.AltScreen = true
	return v
}

// Result returns the picker result after the program exits.
func (m Model) Result() PickerResult {
	return m.result
}

// Pick runs the resume picker and returns the selection. A nil error with
// Cancelled set means the user backed out.
func Pick(coordinator *checkpoint.Coordinator, transcripts TranscriptReader, opts ...tea.ProgramOption) (PickerResult, error) {
	model := NewModel(coordinator, transcripts)
	p := tea.NewProgram(model, opts...)
	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}
	return finalModel.(Model).Result(), nil
}
