// Package tui renders today's training readiness as a terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/stian-overasen/connectlog/internal/readiness"
	"github.com/stian-overasen/connectlog/internal/service"
	"github.com/stian-overasen/connectlog/internal/store"
)

// Dashboard is the readiness dashboard model.
type Dashboard struct {
	summaries *service.SummaryService
	readiness *service.ReadinessService

	spinner spinner.Model
	loading bool
	err     error

	summary *store.DailySummary
	result  *readiness.Result
}

// NewDashboard creates the dashboard model.
func NewDashboard(summaries *service.SummaryService, rdns *service.ReadinessService) *Dashboard {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return &Dashboard{
		summaries: summaries,
		readiness: rdns,
		spinner:   sp,
		loading:   true,
	}
}

type dataMsg struct {
	summary *store.DailySummary
	result  *readiness.Result
	err     error
}

func (d *Dashboard) loadData() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := d.summaries.Today(ctx)
	if err != nil {
		return dataMsg{err: err}
	}
	result, err := d.readiness.Today(ctx, nil)
	if err != nil {
		return dataMsg{err: err}
	}
	return dataMsg{summary: summary, result: result}
}

// Init starts the spinner and the initial load.
func (d *Dashboard) Init() tea.Cmd {
	return tea.Batch(d.spinner.Tick, d.loadData)
}

// Update handles messages
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dataMsg:
		d.loading = false
		d.err = msg.err
		d.summary = msg.summary
		d.result = msg.result
		return d, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case "r":
			d.loading = true
			d.err = nil
			return d, tea.Batch(d.spinner.Tick, d.loadData)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}

	return d, nil
}

// View renders the dashboard
func (d *Dashboard) View() string {
	title := titleStyle.Render("Training Readiness — " + time.Now().Format("Mon Jan 2"))

	if d.loading {
		return fmt.Sprintf("\n %s\n\n %s Fetching today's telemetry...\n", title, d.spinner.View())
	}
	if d.err != nil {
		return fmt.Sprintf("\n %s\n\n %s\n\n %s\n", title,
			errorStyle.Render(fmt.Sprintf("Error: %v", d.err)),
			statusStyle.Render("Press 'r' to retry, 'q' to quit"))
	}

	sections := []string{
		title,
		d.renderVerdict(),
		d.renderMetrics(),
	}

	if chart := d.renderBodyBattery(); chart != "" {
		sections = append(sections, chart)
	}
	if d.summary != nil && d.summary.Steps != nil {
		sections = append(sections, mutedStyle.Render(
			fmt.Sprintf("Steps today: %s", humanize.Comma(int64(*d.summary.Steps)))))
	}

	sections = append(sections, statusStyle.Render("Press 'r' to refresh, 'q' to quit"))

	return "\n" + lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (d *Dashboard) renderVerdict() string {
	verdict := statusRender(d.result.OverallStatus).Render(strings.ToUpper(string(d.result.OverallStatus)))
	return cardStyle.Render(fmt.Sprintf("%s  %s", verdict, d.result.Recommendation))
}

func (d *Dashboard) renderMetrics() string {
	var rows []string
	for _, m := range d.result.Metrics {
		value := "—"
		if m.Value != nil {
			value = fmt.Sprintf("%v", m.Value)
		}
		rows = append(rows, fmt.Sprintf("%s %s  %s",
			metricLabelStyle.Render(metricTitle(m.Metric)),
			statusRender(m.Status).Render(string(m.Status)),
			value))
	}
	return cardStyle.Render(strings.Join(rows, "\n"))
}

func (d *Dashboard) renderBodyBattery() string {
	if d.summary == nil || len(d.summary.BodyBatteryValues) < 3 {
		return ""
	}

	data := make([]float64, len(d.summary.BodyBatteryValues))
	for i, v := range d.summary.BodyBatteryValues {
		data[i] = float64(v)
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Caption("Body battery"),
	)
	return cardStyle.Render(graph)
}

func metricTitle(name string) string {
	switch name {
	case "hrv":
		return "HRV (overnight)"
	case "body_battery_start":
		return "Body battery (start)"
	case "body_battery_current":
		return "Body battery (now)"
	case "sleep_score":
		return "Sleep score"
	case "resting_hr":
		return "Resting HR"
	case "subjective_energy":
		return "Energy (self-report)"
	}
	return name
}
