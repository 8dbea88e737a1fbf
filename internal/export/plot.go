package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/invpend/internal/dynamo"
	"github.com/san-kum/invpend/internal/sim"
)

const (
	plotWidthIn  = 8.0
	plotHeightIn = 6.0
	plotDPI      = 150
)

// PlotPNG renders angle (degrees) over torque against time, stacked.
func PlotPNG(w io.Writer, result *sim.Result) error {
	if result == nil || len(result.Samples) == 0 {
		return fmt.Errorf("plot: no samples")
	}

	// a diverged run is drawn up to its last finite sample
	n, diverged := len(result.Samples), -1
	for i, s := range result.Samples {
		if !dynamo.IsFinite(s.Time, s.Theta, s.Tau) {
			n, diverged = i, s.Step
			break
		}
	}
	if n == 0 {
		return fmt.Errorf("plot: state not finite from step %d", diverged)
	}

	theta := make(plotter.XYs, n)
	tau := make(plotter.XYs, n)
	for i, s := range result.Samples[:n] {
		theta[i].X, theta[i].Y = s.Time, s.Theta*180/math.Pi
		tau[i].X, tau[i].Y = s.Time, s.Tau
	}

	title := "Pendulum angle"
	if diverged >= 0 {
		title = fmt.Sprintf("Pendulum angle (diverged at step %d)", diverged)
	}
	top, err := linePlot(title, "angle (deg)", theta)
	if err != nil {
		return err
	}
	bottom, err := linePlot("Applied torque", "tau (N*m)", tau)
	if err != nil {
		return err
	}
	bottom.X.Label.Text = "time (s)"

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(plotWidthIn)*vg.Inch, vg.Length(plotHeightIn)*vg.Inch),
		vgimg.UseDPI(plotDPI),
	)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: 2, Cols: 1,
		PadTop: vg.Points(4), PadBottom: vg.Points(4),
		PadLeft: vg.Points(4), PadRight: vg.Points(8),
		PadY: vg.Points(12),
	}
	canvases := plot.Align([][]*plot.Plot{{top}, {bottom}}, tiles, dc)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SavePNG writes PlotPNG output to path, creating parent directories.
func SavePNG(path string, result *sim.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	if err := PlotPNG(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func linePlot(title, ylabel string, pts plotter.XYs) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}
