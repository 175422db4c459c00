package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/TzIsf62C/timeline-visualizer/internal/dateparse"
	"github.com/TzIsf62C/timeline-visualizer/internal/store"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

type eventsView struct {
	store  *store.Store
	width  int
	height int

	timelineID int64
	events     []*timeline.Event
	cursor     int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"
	editingID  int64

	// Form field pointers (survive value copies)
	formTitle     *string
	formDeadline  *string
	formPrimary   *string
	formSecondary *string
	formGoal      *string
	formNotes     *string
}

func newEventsView(s *store.Store) eventsView {
	title, deadline, primary, secondary, goal, notes := "", "", "", "", "", ""
	return eventsView{
		store:         s,
		formTitle:     &title,
		formDeadline:  &deadline,
		formPrimary:   &primary,
		formSecondary: &secondary,
		formGoal:      &goal,
		formNotes:     &notes,
	}
}

func (v *eventsView) setSize(w, h int) {
	v.width = w
	v.height = h
}

func (v eventsView) refresh() tea.Cmd {
	id := v.timelineID
	return func() tea.Msg {
		events, _ := v.store.ListEvents(store.EventFilter{TimelineID: &id})
		return eventsDataMsg{events: events}
	}
}

func (v eventsView) update(msg tea.Msg) (eventsView, tea.Cmd) {
	if v.formActive && v.form != nil {
		return v.updateForm(msg)
	}

	switch msg := msg.(type) {
	case eventsDataMsg:
		v.events = msg.events
		v.cursor = clampCursor(v.cursor, len(v.events))
		return v, nil

	case timelineOpenedMsg:
		v.timelineID = msg.id
		v.cursor = 0
		return v, v.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, keys.Down):
			if v.cursor < len(v.events)-1 {
				v.cursor++
			}
		case key.Matches(msg, keys.New):
			if v.timelineID != 0 {
				return v.showForm("new", nil)
			}
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if len(v.events) > 0 {
				return v.showForm("edit", v.events[v.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if len(v.events) > 0 {
				v.store.DeleteEvent(v.events[v.cursor].ID)
				return v, v.refresh()
			}
		}
	}
	return v, nil
}

func (v eventsView) showForm(formType string, e *timeline.Event) (eventsView, tea.Cmd) {
	if e != nil {
		*v.formTitle = e.Title
		*v.formDeadline = e.DeadlineText
		*v.formPrimary = strings.Join(e.PrimaryGroups, ", ")
		*v.formSecondary = strings.Join(e.SecondaryGroups, ", ")
		*v.formGoal = e.Goal
		*v.formNotes = e.Notes
		v.editingID = e.ID
	} else {
		*v.formTitle = ""
		*v.formDeadline = ""
		*v.formPrimary = ""
		*v.formSecondary = ""
		*v.formGoal = ""
		*v.formNotes = ""
	}
	v.formType = formType

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(v.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().Title("Deadline").
				Description(`e.g. "Q1 2026", "mid-2027", "April–June 2026", "ongoing"`).
				Value(v.formDeadline).
				Validate(func(s string) error {
					if dateparse.Parse(s) == nil {
						return fmt.Errorf("could not understand %q", s)
					}
					return nil
				}),
			huh.NewInput().Title("Responsible (comma-separated)").Value(v.formPrimary),
			huh.NewInput().Title("Supporting (comma-separated)").Value(v.formSecondary),
			huh.NewInput().Title("Goal").Value(v.formGoal),
			huh.NewInput().Title("Notes").Value(v.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	v.formActive = true
	return v, v.form.Init()
}

func (v eventsView) updateForm(msg tea.Msg) (eventsView, tea.Cmd) {
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
		in := store.EventInput{
			Title:           strings.TrimSpace(*v.formTitle),
			DeadlineText:    strings.TrimSpace(*v.formDeadline),
			PrimaryGroups:   strings.Split(*v.formPrimary, ","),
			SecondaryGroups: strings.Split(*v.formSecondary, ","),
			Goal:            *v.formGoal,
			Notes:           *v.formNotes,
		}

		var saved *timeline.Event
		var err error
		if v.formType == "edit" {
			saved, err = v.store.UpdateEvent(v.editingID, in)
		} else {
			saved, err = v.store.CreateEvent(v.timelineID, in)
		}
		if err != nil {
			return v, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
			}
		}
		return v, tea.Batch(v.refresh(), func() tea.Msg { return eventSavedMsg{event: saved} })
	}

	return v, cmd
}

func (v eventsView) view() string {
	w := v.width - 4

	if v.formActive && v.form != nil {
		title := titleStyle.Render("New Event")
		if v.formType == "edit" {
			title = titleStyle.Render("Edit Event")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", v.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Events")
	if v.timelineID == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No timeline open. Press 3 to pick one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	if len(v.events) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No events yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-28s %-28s %-16s", "Title", "Resolved", "Responsible"))
	rows = append(rows, header)

	for i, e := range v.events {
		cursor := "  "
		style := normalItemStyle
		if i == v.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%-28s %-28s %-16s",
			cursor,
			truncate(e.Title, 28),
			truncate(dateparse.FormatRange(e.Temporal), 28),
			truncate(strings.Join(e.PrimaryGroups, ","), 16),
		))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
