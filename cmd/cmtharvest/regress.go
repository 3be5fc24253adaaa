package main

import (
	"fmt"
	"math"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/csv"
)

// Fit is the result of a least-squares line fit y = Intercept + Slope*x.
type Fit struct {
	N         int
	Intercept float64
	Slope     float64
	R2        float64
}

// Run executes the regress command.
func (c *RegressCmd) Run(deps *Dependencies) error {
	table, err := readTableFile(c.Table)
	if err != nil {
		return report(deps.Stderr, err)
	}

	for _, col := range []string{c.X, c.Y} {
		if table.Index(col) < 0 {
			return report(deps.Stderr, cmtharvest.Errorf(cmtharvest.EINVALID, "column %q not in table", col))
		}
	}

	xs, ys := pairs(table, c.X, c.Y)
	fit, err := FitLine(xs, ys)
	if err != nil {
		return report(deps.Stderr, err)
	}

	fmt.Fprintf(deps.Stdout, "%s = %.4f + %.4f * %s\n", c.Y, fit.Intercept, fit.Slope, c.X)
	fmt.Fprintf(deps.Stdout, "n = %d, R² = %.4f\n", fit.N, fit.R2)
	return nil
}

// pairs returns the rows where both columns hold a number.
func pairs(t *csv.Table, x, y string) (xs, ys []float64) {
	for i := range t.Rows {
		xv, err := cmtharvest.ParseNumber(t.Cell(i, x))
		if err != nil {
			continue
		}
		yv, err := cmtharvest.ParseNumber(t.Cell(i, y))
		if err != nil {
			continue
		}
		xs = append(xs, xv.Number)
		ys = append(ys, yv.Number)
	}
	return xs, ys
}

// FitLine fits ordinary least squares to the points (xs[i], ys[i]).
func FitLine(xs, ys []float64) (*Fit, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, cmtharvest.Errorf(cmtharvest.EINVALID, "mismatched samples: %d x, %d y", len(xs), len(ys))
	}
	if n < 2 {
		return nil, cmtharvest.Errorf(cmtharvest.EINVALID, "need at least 2 complete rows, have %d", n)
	}

	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, sxy, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return nil, cmtharvest.Errorf(cmtharvest.EINVALID, "predictor has no variance")
	}

	slope := sxy / sxx
	fit := &Fit{N: n, Slope: slope, Intercept: my - slope*mx, R2: 1}
	if syy > 0 {
		fit.R2 = math.Min(1, (sxy*sxy)/(sxx*syy))
	}
	return fit, nil
}
