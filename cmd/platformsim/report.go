package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"github.com/milk9111/gustpath/ecs"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/sim"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

func outcome(st sim.Status) string {
	switch {
	case st.Complete:
		return okStyle.Render("complete")
	case st.Failed:
		return failStyle.Render("failed: " + st.FailReason)
	}
	return labelStyle.Render("running")
}

func renderSummary(sum sim.Summary, anomalies int) string {
	rows := [][2]string{
		{"level", sum.Status.Name},
		{"outcome", outcome(sum.Status)},
		{"ticks", fmt.Sprintf("%d", sum.Ticks)},
		{"time", fmt.Sprintf("%.2fs", sum.Status.Elapsed)},
		{"anomalies", fmt.Sprintf("%d", anomalies)},
	}
	if n := len(sum.Samples); n > 0 {
		p := sum.Samples[n-1].Player
		rows = append(rows,
			[2]string{"position", fmt.Sprintf("%.2f, %.2f", p.X, p.Y)},
			[2]string{"velocity", fmt.Sprintf("%.2f, %.2f", p.VX, p.VY)},
			[2]string{"grounded", fmt.Sprintf("%v", p.Grounded)},
			[2]string{"frozen", fmt.Sprintf("%v", p.Frozen)},
		)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("run summary"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", r[0])))
		b.WriteString(" ")
		b.WriteString(r[1])
	}
	return panelStyle.Render(b.String())
}

func renderEvents(events map[ecs.EventKind]int) string {
	kinds := make([]string, 0, len(events))
	for k := range events {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("event", "count")
	for _, k := range kinds {
		t.Row(k, fmt.Sprintf("%d", events[ecs.EventKind(k)]))
	}
	if len(kinds) == 0 {
		t.Row("(none)", "0")
	}
	return t.String()
}

func renderSamples(samples []sim.Sample, every int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("tick", "x", "y", "vx", "vy", "grounded", "frozen")
	for i, smp := range samples {
		if i%every != 0 && i != len(samples)-1 {
			continue
		}
		p := smp.Player
		t.Row(
			fmt.Sprintf("%d", smp.Tick),
			fmt.Sprintf("%.2f", p.X),
			fmt.Sprintf("%.2f", p.Y),
			fmt.Sprintf("%.2f", p.VX),
			fmt.Sprintf("%.2f", p.VY),
			fmt.Sprintf("%v", p.Grounded),
			fmt.Sprintf("%v", p.Frozen),
		)
	}
	return t.String()
}

func renderLevels(docs []*levels.Level) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("level", "entities", "bounds", "time limit")
	for _, lvl := range docs {
		limit := "-"
		if lvl.TimeLimit > 0 {
			limit = fmt.Sprintf("%.0fs", lvl.TimeLimit)
		}
		b := lvl.Bounds
		t.Row(
			lvl.Name,
			fmt.Sprintf("%d", len(lvl.Entities)),
			fmt.Sprintf("%.0fx%.0f", b.MaxX-b.MinX, b.MaxY-b.MinY),
			limit,
		)
	}
	return t.String()
}

const plotWidth = 80

func plotVelocity(samples []sim.Sample) string {
	if len(samples) < 2 {
		return labelStyle.Render("not enough samples to plot")
	}
	vx := make([]float64, len(samples))
	vy := make([]float64, len(samples))
	for i, smp := range samples {
		vx[i] = smp.Player.VX
		vy[i] = smp.Player.VY
	}
	width := plotWidth
	if len(samples) < width {
		width = len(samples)
	}
	return strings.Join([]string{
		asciigraph.Plot(vx, asciigraph.Height(8), asciigraph.Width(width), asciigraph.Caption("player vx (m/s)")),
		asciigraph.Plot(vy, asciigraph.Height(8), asciigraph.Width(width), asciigraph.Caption("player vy (m/s)")),
	}, "\n\n")
}
