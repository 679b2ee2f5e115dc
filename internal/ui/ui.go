package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamm-labs/jamm/internal/models"
	"github.com/jamm-labs/jamm/internal/shared"
	"github.com/jamm-labs/jamm/internal/smart"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GeneratingView ViewState = iota
	PreviewListView
	ConfirmView
	CreatingView
	ResultView
)

type previewDoneMsg struct {
	tracks []models.Track
	err    error
}

type createDoneMsg struct {
	result *smart.GenerateResult
	err    error
}

type progressMsg smart.ProgressUpdate

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	generator *smart.Generator
	request   smart.Request

	width  int
	height int

	trackList    list.Model
	tracks       []models.Track
	progressChan chan smart.ProgressUpdate
	progress     smart.ProgressUpdate
	result       *smart.GenerateResult
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a TUI model evaluating the given request.
func NewModel(ctx context.Context, generator *smart.Generator, request smart.Request) *Model {
	return &Model{
		ctx:       ctx,
		view:      GeneratingView,
		generator: generator,
		request:   request,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the preview evaluation.
func (m *Model) Init() tea.Cmd {
	return m.startPreview()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PreviewListView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}

	case progressMsg:
		m.progress = smart.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case previewDoneMsg:
		m.drainProgress()
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.tracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Preview: %d tracks", len(msg.tracks))
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = PreviewListView
		return m, nil

	case createDoneMsg:
		m.drainProgress()
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	if m.view == PreviewListView {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case GeneratingView:
		return m.renderProgress("Evaluating rules")
	case PreviewListView:
		return m.renderPreviewList()
	case ConfirmView:
		return m.renderConfirm()
	case CreatingView:
		return m.renderProgress("Creating playlist")
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.request.Name != "" && len(m.tracks) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PreviewListView
		return m, nil
	case "y":
		m.view = CreatingView
		return m, m.startCreate()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startPreview() tea.Cmd {
	m.progressChan = make(chan smart.ProgressUpdate, 50)

	done := make(chan previewDoneMsg, 1)
	go func() {
		tracks, err := m.generator.Preview(m.ctx, m.request, m.progressChan)
		done <- previewDoneMsg{tracks: tracks, err: err}
	}()

	return tea.Batch(m.waitForProgress(), func() tea.Msg { return <-done })
}

func (m *Model) startCreate() tea.Cmd {
	m.progressChan = make(chan smart.ProgressUpdate, 50)

	done := make(chan createDoneMsg, 1)
	go func() {
		result, err := m.generator.Generate(m.ctx, m.request, m.progressChan)
		done <- createDoneMsg{result: result, err: err}
	}()

	return tea.Batch(m.waitForProgress(), func() tea.Msg { return <-done })
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressMsg(update)
	}
}

func (m *Model) drainProgress() {
	if m.progressChan != nil {
		close(m.progressChan)
		m.progressChan = nil
	}
}

func (m *Model) renderProgress(title string) string {
	var phase string
	switch m.progress.Phase {
	case smart.PhaseRetrieve, smart.PhaseFilter:
		phase = fmt.Sprintf("Scanning library (%d matched)", m.progress.Step)
	case smart.PhaseOrder, smart.PhaseLimit:
		phase = "Ordering and limiting..."
	case smart.PhaseEnrich:
		phase = fmt.Sprintf("Resolving album art (%d images)", m.progress.Total)
	case smart.PhaseCreate:
		phase = "Creating playlist..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", styles.title.Render(title), phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderPreviewList() string {
	helpKeys := []key.Binding{m.keys.quit}
	if m.request.Name != "" && len(m.tracks) > 0 {
		helpKeys = append([]key.Binding{m.keys.create}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Create playlist '%s'?", m.request.Name))
	info := fmt.Sprintf("\nTracks: %d\n", len(m.tracks))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Generation failed: %v\n\nPress q to quit", m.err))
	}

	if m.result == nil || m.result.Playlist == nil {
		return styles.warn.Render("No playlist was created\n\nPress q to quit")
	}

	title := styles.ok.Render("✓ Playlist Created")
	info := fmt.Sprintf(
		"\nName: %s\nTracks: %d (of %d matched)\nTotal duration: %s",
		m.result.Playlist.Name,
		len(m.result.Tracks),
		m.result.MatchedCount,
		shared.FormatDuration(m.result.TotalDurationMS),
	)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
