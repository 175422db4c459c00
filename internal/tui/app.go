package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TzIsf62C/timeline-visualizer/internal/config"
	"github.com/TzIsf62C/timeline-visualizer/internal/export"
	"github.com/TzIsf62C/timeline-visualizer/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store      *store.Store
	cfg        *config.Config
	configPath string
	width      int
	height     int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	importPicking bool
	importCursor  int

	timelineID   int64
	timelineName string

	timeline  timelineView
	events    eventsView
	timelines timelinesView
	stats     statsView
	settings  settingsView

	help   help.Model
	status string
}

func NewApp(s *store.Store, cfg *config.Config, configPath string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		cfg:        cfg,
		configPath: configPath,
		activeView: viewTimeline,
		timeline:   newTimelineView(s, cfg),
		events:     newEventsView(s),
		timelines:  newTimelinesView(s),
		stats:      newStatsView(s, cfg),
		settings:   newSettingsView(s, configPath),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.timelines.refresh(),
		a.openLastTimeline(),
	)
}

func (a App) openLastTimeline() tea.Cmd {
	return func() tea.Msg {
		id := a.store.LastTimeline()
		if id == 0 {
			return nil
		}
		tl, err := a.store.GetTimeline(id)
		if err != nil {
			return nil
		}
		return timelineOpenedMsg{id: tl.ID, name: tl.Name}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timeline.setSize(a.width, contentHeight)
		a.events.setSize(a.width, contentHeight)
		a.timelines.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		if a.importPicking {
			return a.updateImportPicker(msg)
		}

		// If a child view is capturing input (form, picker), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.timelineID != 0 {
				a.exportPicking = true
				a.exportCursor = 0
			}
			return a, nil
		case key.Matches(msg, keys.Import):
			if a.timelineID != 0 && a.activeView != viewTimelines {
				a.importPicking = true
				a.importCursor = 0
				return a, nil
			}
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimeline
			return a, a.timeline.loadEvents()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewEvents
			return a, a.events.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewTimelines
			return a, a.timelines.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewStats
			return a, a.events.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 5
			return a, a.refreshCurrentView()
		}

	case timelineOpenedMsg:
		a.timelineID = msg.id
		a.timelineName = msg.name
		a.status = "Opened " + msg.name
		a.activeView = viewTimeline
		var cmds []tea.Cmd
		a.timeline, _ = a.timeline.update(msg)
		a.events, _ = a.events.update(msg)
		a.stats, _ = a.stats.update(msg)
		cmds = append(cmds, a.timeline.loadEvents())
		return a, tea.Batch(cmds...)

	case eventsDataMsg:
		// Events feed three views: the canvas, the list, the chart.
		a.timeline, _ = a.timeline.update(msg)
		a.events, _ = a.events.update(msg)
		a.stats, _ = a.stats.update(msg)
		return a, nil

	case timelinesDataMsg:
		a.timelines, _ = a.timelines.update(msg)
		return a, nil

	case eventSavedMsg:
		a.status = fmt.Sprintf("Saved %q", msg.event.Title)
		return a, a.timeline.loadEvents()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case importDoneMsg:
		a.status = fmt.Sprintf("Imported %d events from %s", msg.count, msg.path)
		a.importPicking = false
		return a, a.timeline.loadEvents()

	case configFileChangedMsg:
		if cfg, err := config.Load(a.configPath); err == nil {
			*a.cfg = *cfg
			a.status = "Config reloaded"
			a.timeline, _ = a.timeline.update(configReloadedMsg{})
			a.stats, _ = a.stats.update(configReloadedMsg{})
			return a, nil
		}
		a.status = "Config reload failed"
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimeline:
		a.timeline, cmd = a.timeline.update(msg)
	case viewEvents:
		a.events, cmd = a.events.update(msg)
	case viewTimelines:
		a.timelines, cmd = a.timelines.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimeline:
		return a.timeline.filterPicking
	case viewEvents:
		return a.events.formActive
	case viewTimelines:
		return a.timelines.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimeline:
		return a.timeline.loadEvents()
	case viewEvents:
		return a.events.refresh()
	case viewTimelines:
		return a.timelines.refresh()
	case viewStats:
		return a.events.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimeline:
		content = a.timeline.view()
	case viewEvents:
		content = a.events.view()
	case viewTimelines:
		content = a.timelines.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderPicker("Export Format", []string{"CSV", "JSON"}, a.exportCursor)
	}
	if a.importPicking {
		content = a.renderPicker("Import From", a.importOptions(), a.importCursor)
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tidelines")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	tlInfo := ""
	if a.timelineName != "" {
		tlInfo = successStyle.Render(" ◆ " + a.timelineName)
	}

	left := footerStyle.Render(helpView)
	right := tlInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderPicker(title string, options []string, cursor int) string {
	var rows []string
	rows = append(rows, titleStyle.Render(title))
	rows = append(rows, "")
	for i, opt := range options {
		c := "  "
		style := normalItemStyle
		if i == cursor {
			c = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(c+opt))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: confirm  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) importOptions() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"JSON  " + filepath.Join(home, "tidelines-import.json"),
		"ICS   " + filepath.Join(home, "tidelines-import.ics"),
	}
}

func (a App) updateImportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.importCursor > 0 {
			a.importCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.importCursor < 1 {
			a.importCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.importPicking = false
		return a, a.doImport(a.importCursor)
	case key.Matches(msg, keys.Back):
		a.importPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	id := a.timelineID
	name := a.timelineName
	return func() tea.Msg {
		events, err := a.store.ListEvents(store.EventFilter{TimelineID: &id})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("tidelines-export-%s.csv", dateStr))
			if err := export.ToCSV(events, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("tidelines-export-%s.json", dateStr))
			if err := export.ToJSON(events, name, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}

func (a App) doImport(format int) tea.Cmd {
	id := a.timelineID
	return func() tea.Msg {
		home, _ := os.UserHomeDir()

		var path string
		if format == 0 {
			path = filepath.Join(home, "tidelines-import.json")
		} else {
			path = filepath.Join(home, "tidelines-import.ics")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}

		var count int
		if format == 0 {
			count, err = export.ImportJSON(a.store, id, data)
		} else {
			count, err = export.ImportICS(a.store, id, data)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import rejected: %v", err), isError: true}
		}

		return importDoneMsg{count: count, path: path}
	}
}
