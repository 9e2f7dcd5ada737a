// Package chart renders posterior marginals as line charts via gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// palette assigns one stable color per hidden state.
var palette = []color.RGBA{
	{64, 192, 64, 255},
	{128, 128, 255, 255},
	{192, 192, 64, 255},
	{192, 64, 64, 255},
	{64, 192, 192, 255},
	{192, 64, 192, 255},
}

// PosteriorLines charts P(h_t = i | evidence) against t, one line per
// hidden state. steps holds one distribution per timestep.
func PosteriorLines(title string, labels []string, steps [][]float64) (*plot.Plot, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("no posterior steps to chart")
	}
	for t, dist := range steps {
		if len(dist) != len(labels) {
			return nil, fmt.Errorf("step %d has %d states, want %d", t, len(dist), len(labels))
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "P(state | evidence)"
	p.Y.Min = 0
	p.Y.Max = 1
	p.Add(plotter.NewGrid())

	for i, label := range labels {
		xys := make(plotter.XYs, len(steps))
		for t := range steps {
			xys[t].X = float64(t)
			xys[t].Y = steps[t][i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build line for state %s: %w", label, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(label, line)
	}
	p.Legend.Top = true

	return p, nil
}

// WritePNG saves the plot to path. gonum/plot picks the encoder from the
// file extension, so a missing one defaults to .png.
func WritePNG(p *plot.Plot, path string, width, height vg.Length) error {
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	return p.Save(width, height, path)
}
