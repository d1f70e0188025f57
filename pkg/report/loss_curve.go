// Package report renders training diagnostics with gonum/plot.
package report

import (
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/gradkit/pkg/errors"
)

// Default canvas size of a loss curve.
const (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

// LossCurve builds a plot of losses against the update number, starting at 1.
// The y axis is logarithmic when every loss is positive.
func LossCurve(title string, losses []float64) (*plot.Plot, error) {
	if len(losses) == 0 {
		return nil, errors.NewModelError("report.LossCurve", "empty data",
			errors.Mark(errors.ErrEmptyData, errors.ErrInvalidArgument))
	}

	// gonum/plot cannot place NaN or Inf on an axis
	if err := errors.CheckNumericalStability("report.LossCurve", losses, len(losses)); err != nil {
		return nil, err
	}

	pts := make(plotter.XYs, len(losses))
	positive := true
	for i, l := range losses {
		pts[i].X = float64(i + 1)
		pts[i].Y = l
		positive = positive && l > 0
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "loss"
	if positive {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if err := plotutil.AddLines(p, "loss", pts); err != nil {
		return nil, errors.Wrap(err, "report.LossCurve")
	}
	return p, nil
}

// SaveLossCurve writes the loss curve to path. The image format follows the
// file extension (png, svg, pdf, ...).
func SaveLossCurve(path, title string, losses []float64) error {
	p, err := LossCurve(title, losses)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, path); err != nil {
		return errors.Wrapf(err, "save loss curve %s", path)
	}
	return nil
}

// WriteLossCurve renders the loss curve in format (for example "png") to w.
func WriteLossCurve(w io.Writer, format, title string, losses []float64) error {
	p, err := LossCurve(title, losses)
	if err != nil {
		return err
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return errors.Wrapf(err, "loss curve format %q", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write loss curve")
	}
	return nil
}
