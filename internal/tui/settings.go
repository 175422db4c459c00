package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/TzIsf62C/timeline-visualizer/internal/store"
)

var modeNames = []string{"unified", "by-entity", "by-goal"}

type settingsView struct {
	store  *store.Store
	width  int
	height int

	configPath string
	settings   []store.Setting

	formActive bool
	form       *huh.Form

	formMode *string
}

func newSettingsView(s *store.Store, configPath string) settingsView {
	mode := ""
	return settingsView{store: s, configPath: configPath, formMode: &mode}
}

func (v *settingsView) setSize(w, h int) {
	v.width = w
	v.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (v settingsView) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := v.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (v settingsView) update(msg tea.Msg) (settingsView, tea.Cmd) {
	if v.formActive && v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		v.settings = msg.settings
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Edit) || key.Matches(msg, keys.Enter) {
			return v.showForm()
		}
	}
	return v, nil
}

func (v settingsView) showForm() (settingsView, tea.Cmd) {
	*v.formMode = v.store.DefaultMode()

	options := make([]huh.Option[string], len(modeNames))
	for i, m := range modeNames {
		options[i] = huh.NewOption(m, m)
	}

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default View Mode").Options(options...).Value(v.formMode),
		),
	).WithShowHelp(true).WithShowErrors(true)

	v.formActive = true
	return v, v.form.Init()
}

func (v settingsView) updateForm(msg tea.Msg) (settingsView, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			v.formActive = false
			v.form = nil
			return v, nil
		}
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State == huh.StateCompleted {
		v.formActive = false
		v.store.SetDefaultMode(*v.formMode)
		return v, v.refresh()
	}

	return v, cmd
}

func (v settingsView) view() string {
	w := v.width - 4

	if v.formActive && v.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Settings"), "", v.form.View())
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"))
	rows = append(rows, "")
	for _, s := range v.settings {
		rows = append(rows, fmt.Sprintf("  %-20s %s", s.Key, highlightStyle.Render(s.Value)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  config file: "+v.configPath))
	rows = append(rows, mutedStyle.Render("  (edits to the config file apply live)"))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  e: edit default mode"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
