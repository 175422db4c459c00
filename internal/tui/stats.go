package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TzIsf62C/timeline-visualizer/internal/config"
	"github.com/TzIsf62C/timeline-visualizer/internal/store"
	"github.com/TzIsf62C/timeline-visualizer/internal/timeline"
)

// statsView charts milestone counts per year, stacked by responsible
// entity.
type statsView struct {
	store  *store.Store
	cfg    *config.Config
	width  int
	height int

	timelineID int64
	events     []*timeline.Event

	chart barchart.Model
}

func newStatsView(s *store.Store, cfg *config.Config) statsView {
	return statsView{
		store: s,
		cfg:   cfg,
		chart: barchart.New(60, 12),
	}
}

func (v *statsView) setSize(w, h int) {
	v.width = w
	v.height = h
}

func (v statsView) update(msg tea.Msg) (statsView, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsDataMsg:
		v.events = msg.events
		v.buildChart()
		return v, nil
	case timelineOpenedMsg:
		v.timelineID = msg.id
		return v, nil
	case configReloadedMsg:
		v.buildChart()
		return v, nil
	}
	return v, nil
}

func (v *statsView) buildChart() {
	chartWidth := v.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if v.height > 30 {
		chartHeight = 16
	}

	v.chart = barchart.New(chartWidth, chartHeight)

	entities := timeline.Entities(v.events)

	// Count milestones per (year, leading entity).
	counts := make(map[int]map[string]int)
	for _, e := range v.events {
		if e.Temporal == nil {
			continue
		}
		y := e.Temporal.Start.Year()
		if counts[y] == nil {
			counts[y] = make(map[string]int)
		}
		counts[y][e.PrimaryGroups[0]]++
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	var bars []barchart.BarData
	for _, y := range years {
		var values []barchart.BarValue
		for _, ent := range entities {
			n := counts[y][ent]
			if n == 0 {
				continue
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(v.cfg.ColorFor(ent, entities)))
			values = append(values, barchart.BarValue{
				Name:  ent,
				Value: float64(n),
				Style: style,
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}
		bars = append(bars, barchart.BarData{
			Label:  fmt.Sprintf("%d", y),
			Values: values,
		})
	}

	v.chart.PushAll(bars)
	v.chart.Draw()
}

func (v statsView) view() string {
	w := v.width - 4
	title := titleStyle.Render("Milestones per Year")

	if len(v.events) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No data for this timeline"),
		)
		return panelStyle.Width(w).Render(content)
	}

	legend := v.renderLegend()

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", v.chart.View(), "", legend),
	)
}

func (v statsView) renderLegend() string {
	entities := timeline.Entities(v.events)
	var items []string
	for _, ent := range entities {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(v.cfg.ColorFor(ent, entities))).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, ent))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
