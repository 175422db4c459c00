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

type timelinesView struct {
	store  *store.Store
	width  int
	height int

	timelines []store.Timeline
	cursor    int

	formActive bool
	form       *huh.Form
	formType   string // "new", "rename", "duplicate"
	editingID  int64

	formName *string
}

func newTimelinesView(s *store.Store) timelinesView {
	name := ""
	return timelinesView{store: s, formName: &name}
}

func (v *timelinesView) setSize(w, h int) {
	v.width = w
	v.height = h
}

func (v timelinesView) refresh() tea.Cmd {
	return func() tea.Msg {
		timelines, _ := v.store.ListTimelines()
		return timelinesDataMsg{timelines: timelines}
	}
}

func (v timelinesView) update(msg tea.Msg) (timelinesView, tea.Cmd) {
	if v.formActive && v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case timelinesDataMsg:
		v.timelines = msg.timelines
		v.cursor = clampCursor(v.cursor, len(v.timelines))
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, keys.Down):
			if v.cursor < len(v.timelines)-1 {
				v.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(v.timelines) > 0 {
				tl := v.timelines[v.cursor]
				v.store.SetLastTimeline(tl.ID)
				return v, func() tea.Msg {
					return timelineOpenedMsg{id: tl.ID, name: tl.Name}
				}
			}
		case key.Matches(msg, keys.New):
			return v.showForm("new")
		case key.Matches(msg, keys.Edit):
			if len(v.timelines) > 0 {
				return v.showForm("rename")
			}
		case key.Matches(msg, keys.Import):
			if len(v.timelines) > 0 {
				return v.showForm("duplicate")
			}
		case key.Matches(msg, keys.Delete):
			if len(v.timelines) > 0 {
				v.store.DeleteTimeline(v.timelines[v.cursor].ID)
				return v, v.refresh()
			}
		}
	}
	return v, nil
}

func (v timelinesView) showForm(formType string) (timelinesView, tea.Cmd) {
	switch formType {
	case "rename":
		*v.formName = v.timelines[v.cursor].Name
		v.editingID = v.timelines[v.cursor].ID
	case "duplicate":
		*v.formName = v.timelines[v.cursor].Name + " copy"
		v.editingID = v.timelines[v.cursor].ID
	default:
		*v.formName = ""
	}
	v.formType = formType

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Timeline Name").Value(v.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	v.formActive = true
	return v, v.form.Init()
}

func (v timelinesView) updateForm(msg tea.Msg) (timelinesView, tea.Cmd) {
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
		name := strings.TrimSpace(*v.formName)

		var err error
		switch v.formType {
		case "rename":
			err = v.store.RenameTimeline(v.editingID, name)
		case "duplicate":
			_, err = v.store.DuplicateTimeline(v.editingID, name)
		default:
			_, err = v.store.CreateTimeline(name)
		}
		if err != nil {
			return v, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Timeline error: %v", err), isError: true}
			}
		}
		return v, v.refresh()
	}

	return v, cmd
}

func (v timelinesView) view() string {
	w := v.width - 4

	if v.formActive && v.form != nil {
		title := titleStyle.Render("New Timeline")
		switch v.formType {
		case "rename":
			title = titleStyle.Render("Rename Timeline")
		case "duplicate":
			title = titleStyle.Render("Duplicate Timeline")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", v.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Timelines")
	if len(v.timelines) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No timelines yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, tl := range v.timelines {
		cursor := "  "
		style := normalItemStyle
		if i == v.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-32s %s",
			cursor, truncate(tl.Name, 32), mutedStyle.Render(tl.UpdatedAt.Format("2006-01-02")),
		)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: open  n: new  e: rename  i: duplicate  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
