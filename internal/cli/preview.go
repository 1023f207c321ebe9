package cli

import (
	"fmt"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/heatmap/pkg/config"
	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/core/ramp"
)

const (
	previewDefaultSize = 32
	previewMinSize     = 4
	falloffStep        = 0.1
)

func (c *CLI) previewCommand() *cobra.Command {
	var (
		settings settingsFlags
		src      sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "preview <points>",
		Short: "Explore a points file in the terminal",
		Long: `Preview draws the density grid in the terminal, sized to the window.

Keys:
  + / -   raise or lower the falloff
  r       cycle color ramp presets
  q       quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd, &settings)
			if err != nil {
				return err
			}
			points, err := loadPoints(ctx, args[0], src)
			if err != nil {
				return err
			}

			m := newPreviewModel(args[0], points, cfg)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	settings.register(cmd)
	src.register(cmd)

	return cmd
}

// =============================================================================
// previewModel - Interactive density preview
// =============================================================================

type previewModel struct {
	name    string
	points  []density.Point
	maxSize int
	workers int

	size     int
	falloff  float64
	ramp     ramp.Ramp
	rampName string
	rampIdx  int // index into ramp.PresetNames, -1 for a configured ramp

	grid *density.Grid
	err  error
}

func newPreviewModel(name string, points []density.Point, cfg config.Config) previewModel {
	m := previewModel{
		name:     name,
		points:   points,
		maxSize:  cfg.GridSize(),
		workers:  cfg.Workers(),
		size:     min(previewDefaultSize, cfg.GridSize()),
		falloff:  cfg.Falloff(),
		ramp:     cfg.Ramp(),
		rampName: "custom",
		rampIdx:  -1,
	}
	m.rebuild()
	return m
}

func (m *previewModel) rebuild() {
	m.grid, m.err = density.Build(m.points, m.size, m.falloff, density.WithWorkers(m.workers))
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			m.falloff += falloffStep
			m.rebuild()
		case "-", "_":
			m.falloff = max(m.falloff-falloffStep, 0)
			m.rebuild()
		case "r":
			names := ramp.PresetNames()
			m.rampIdx = (m.rampIdx + 1) % len(names)
			m.rampName = names[m.rampIdx]
			m.ramp, _ = ramp.Preset(m.rampName)
		}
	case tea.WindowSizeMsg:
		// Two columns per cell keep cells roughly square; four rows go to
		// the header and footer.
		size := min(msg.Width/2, msg.Height-4, m.maxSize)
		size = max(size, previewMinSize)
		if size != m.size {
			m.size = size
			m.rebuild()
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Preview " + m.name))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
		b.WriteString("\n")
	} else {
		for y := range m.grid.Size() {
			for _, v := range m.grid.Row(y) {
				b.WriteString(lipgloss.NewStyle().Background(hexColor(m.ramp.At(v))).Render("  "))
			}
			b.WriteString("\n")
		}
	}

	status := fmt.Sprintf("%d points · %d×%d · falloff %.1f · radius %.1f · ramp %s",
		len(m.points), m.size, m.size, m.falloff, density.Radius(m.size, m.falloff), m.rampName)
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("+/- falloff  r ramp  q quit"))
	return b.String()
}

func hexColor(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
