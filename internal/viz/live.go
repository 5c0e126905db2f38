// Package viz previews the plexus field in the terminal. It is the
// same simulate -> link pipeline the wallpaper runs, drawn to a
// braille canvas instead of a window, with live governor readouts.
package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pilively/plexus/internal/field"
	"github.com/pilively/plexus/internal/governor"
	"github.com/pilively/plexus/internal/linker"
	"github.com/pilively/plexus/internal/quality"
	"github.com/pilively/plexus/internal/render"
)

const (
	canvasCols = 80
	canvasRows = 24
	historyLen = 120
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	stateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the bubbletea model for the live preview.
type Model struct {
	fld    *field.Field
	lnk    *linker.Linker
	gov    *governor.Governor
	cam    render.Camera
	canvas *Canvas

	bounds field.Bounds
	seed   int64
	speed  float64

	paused   bool
	lastTick time.Time
	links    int
	frameMs  []float64
}

func NewModel(p quality.Preset, b field.Bounds, seed int64, speed float64) Model {
	if speed <= 0 {
		speed = 1
	}
	canvas := NewCanvas(canvasCols, canvasRows)
	return Model{
		fld:     field.New(p.ParticleCount, b, seed),
		lnk:     linker.New(),
		gov:     governor.New(p),
		cam:     render.NewCamera(canvas.DotWidth(), canvas.DotHeight(), b),
		canvas:  canvas,
		bounds:  b,
		seed:    seed,
		speed:   speed,
		frameMs: make([]float64, 0, historyLen),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.gov.Preset().FrameBudget(), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			m.lastTick = time.Time{}
		case "r":
			p := m.gov.Preset()
			m.fld = field.New(p.ParticleCount, m.bounds, m.seed)
			m.gov = governor.New(p)
			m.frameMs = m.frameMs[:0]
		case "+", "=":
			p := m.gov.Preset()
			m.gov.Apply(p.WithParticleCount(p.ParticleCount + 25))
		case "-":
			p := m.gov.Preset()
			if n := p.ParticleCount - 25; n >= governor.MinParticles {
				m.gov.Apply(p.WithParticleCount(n))
			}
		}
		return m, nil

	case TickMsg:
		if !m.paused {
			m.step(time.Time(msg))
		}
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) step(now time.Time) {
	dt := m.gov.Preset().FrameBudget().Seconds()
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now

	p := m.gov.Preset()
	if m.fld.Count() != p.ParticleCount {
		m.fld.Resize(p.ParticleCount)
	}
	m.lnk.MaxPerParticle = p.MaxLinksPerParticle
	m.lnk.MaxTotal = 4 * p.ParticleCount

	start := time.Now()
	m.fld.Advance(dt * m.speed)
	links := m.lnk.Compute(m.fld.Particles, p.LinkRadius)
	m.draw(links)
	elapsed := time.Since(start)

	m.gov.Tick(elapsed)
	m.links = len(links)

	m.frameMs = append(m.frameMs, float64(elapsed.Microseconds())/1000)
	if len(m.frameMs) > historyLen {
		m.frameMs = m.frameMs[1:]
	}
}

func (m *Model) draw(links []linker.Link) {
	m.canvas.Clear()

	proj := make([]render.Projected, m.fld.Count())
	for i, p := range m.fld.Particles {
		proj[i] = m.cam.Project(p)
	}

	for _, ln := range links {
		pa, pb := proj[ln.A], proj[ln.B]
		if !pa.Visible || !pb.Visible {
			continue
		}
		m.canvas.Line(int(pa.X), int(pa.Y), int(pb.X), int(pb.Y),
			ln.Weight*(pa.Alpha+pb.Alpha)/2)
	}
	for _, pr := range proj {
		if pr.Visible {
			m.canvas.Dot(int(pr.X), int(pr.Y))
		}
	}
}

func (m Model) View() string {
	p := m.gov.Preset()

	header := headerStyle.Render("plexus preview")
	status := "running"
	if m.paused {
		status = "paused"
	}

	stats := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("preset")+valueStyle.Render(p.Name),
		labelStyle.Render("state")+stateStyle.Render(m.gov.State().String()),
		labelStyle.Render("particles")+valueStyle.Render(fmt.Sprintf("%d", m.fld.Count())),
		labelStyle.Render("links")+valueStyle.Render(fmt.Sprintf("%d", m.links)),
		labelStyle.Render("target")+valueStyle.Render(fmt.Sprintf("%d fps", p.TargetFPS)),
		labelStyle.Render("status")+valueStyle.Render(status),
	)

	var graph string
	if len(m.frameMs) > 2 {
		graph = graphStyle.Render(asciigraph.Plot(m.frameMs,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Caption("tick ms"),
		))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		lipgloss.NewStyle().Padding(1, 2).Render(stats),
	)

	help := helpStyle.Render("[space] pause  [r] reset  [+/-] particles  [q] quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, graph, help)
}
