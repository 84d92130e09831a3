package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pinnviz/internal/colormap"
	"github.com/san-kum/pinnviz/internal/field"
	"github.com/san-kum/pinnviz/internal/metrics"
	"github.com/san-kum/pinnviz/internal/viz"
)

const (
	defaultFPS = 10
	maxFPS     = 60
	jump       = 10
)

// tickMsg carries the playback generation that scheduled it. Ticks from an
// earlier generation are dropped so only one chain drives playback.
type tickMsg struct {
	gen int
}

func tick(fps, gen int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// Browser steps through the time frames of a reconstruction, showing
// ground truth and prediction side by side on the prediction color scale.
type Browser struct {
	truth, pred *field.Grid
	cm          *colormap.Jet
	frameErr    []float64

	frame   int
	playing bool
	fps     int
	gen     int

	width  int
	height int
}

func NewBrowser(truth *field.Grid, rec *field.Reconstruction) (*Browser, error) {
	frameErr, err := metrics.FrameRMSE(truth, rec.Pred)
	if err != nil {
		return nil, err
	}
	return &Browser{
		truth:    truth,
		pred:     rec.Pred,
		cm:       colormap.NewJet(rec.PredMin, rec.PredMax),
		frameErr: frameErr,
		fps:      defaultFPS,
		width:    100,
		height:   30,
	}, nil
}

func (m *Browser) Frame() int { return m.frame }
func (m *Browser) Playing() bool { return m.playing }
func (m *Browser) FPS() int { return m.fps }

func (m *Browser) Init() tea.Cmd { return nil }

func (m *Browser) lastFrame() int {
	return m.truth.Shape().NT - 1
}

func (m *Browser) seek(k int) {
	m.frame = min(max(k, 0), m.lastFrame())
}

func (m *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.playing || msg.gen != m.gen {
			return m, nil
		}
		if m.frame >= m.lastFrame() {
			m.playing = false
			return m, nil
		}
		m.frame++
		return m, tick(m.fps, m.gen)
	}
	return m, nil
}

func (m *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "right", "l":
		m.seek(m.frame + 1)
	case "left", "h":
		m.seek(m.frame - 1)
	case "]":
		m.seek(m.frame + jump)
	case "[":
		m.seek(m.frame - jump)
	case "home", "g":
		m.seek(0)
	case "end", "G":
		m.seek(m.lastFrame())
	case "+", "=":
		m.fps = min(m.fps*2, maxFPS)
	case "-":
		m.fps = max(m.fps/2, 1)
	case " ":
		m.gen++
		if m.playing {
			m.playing = false
			return m, nil
		}
		if m.frame >= m.lastFrame() {
			m.frame = 0
		}
		m.playing = true
		return m, tick(m.fps, m.gen)
	}
	return m, nil
}

func (m *Browser) View() string {
	var b strings.Builder

	shape := m.truth.Shape()
	status := viz.StatusPaused.Render("paused")
	if m.playing {
		status = viz.StatusPlaying.Render(fmt.Sprintf("playing %d fps", m.fps))
	}
	b.WriteString(viz.HeaderStyle.Render(fmt.Sprintf("Time %dms", m.frame)) + "  " + status + "\n\n")

	// each cell is two columns wide; leave room for the panel borders
	maxCols := max((m.width/2-6)/2, 4)
	maxRows := max(m.height-12, 4)

	truth, _ := m.truth.Frame(m.frame)
	pred, _ := m.pred.Frame(m.frame)
	left := viz.Panel.Render(viz.Title.Render("Ground Truth") + "\n" + viz.Heat(truth, m.cm, maxRows, maxCols))
	right := viz.Panel.Render(viz.Title.Render("Prediction") + "\n" + viz.Heat(pred, m.cm, maxRows, maxCols))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right) + "\n")

	b.WriteString(viz.ColorBar(m.cm, 32) + "\n\n")

	width := max(min(m.width-14, 80), 10)
	b.WriteString(fmt.Sprintf("%s %s\n", viz.MetricLabel.Render("rmse    "), viz.SparklineChart(m.frameErr, width)))
	b.WriteString(fmt.Sprintf("%s %s %s\n",
		viz.MetricLabel.Render("frame   "),
		viz.ProgressBar(float64(m.frame)/float64(max(shape.NT-1, 1)), width),
		viz.MetricValue.Render(fmt.Sprintf("%d/%d", m.frame, shape.NT-1)),
	))
	b.WriteString(fmt.Sprintf("%s %s\n", viz.MetricLabel.Render("error   "), viz.MetricValue.Render(fmt.Sprintf("%.4g", m.frameErr[m.frame]))))

	b.WriteString("\n" + viz.KeyHint.Render("←/→ step  [/] jump  g/G ends  space play  +/- speed  q quit") + "\n")
	return b.String()
}

// Browse runs the browser full screen until the user quits.
func Browse(truth *field.Grid, rec *field.Reconstruction) error {
	m, err := NewBrowser(truth, rec)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
