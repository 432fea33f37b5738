// Package regress fits least-squares lines to (log10 flux, log10 kcat) points.
package regress

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// Result of a simple linear regression of y on x.
type Result struct {
	N         int     `json:"n"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	RSquare   float64 `json:"r_square"`
	// P is the two-sided p-value for a zero slope (Student t, n-2 dof).
	P float64 `json:"p"`
	// StdErr is the standard error of the slope.
	StdErr float64 `json:"std_err"`
}

// Linear fits y = Intercept + Slope*x.
func Linear(x, y []float64) (Result, error) {
	const op = "regress.linear"
	if len(x) != len(y) {
		return Result{}, invalid(op, fmt.Errorf("length mismatch: %d x values, %d y values", len(x), len(y)))
	}
	n := len(x)
	if n < 3 {
		return Result{}, invalid(op, fmt.Errorf("need at least 3 points, got %d", n))
	}

	mx, my := stat.Mean(x, nil), stat.Mean(y, nil)
	var ssx, ssy float64
	for i := range x {
		ssx += (x[i] - mx) * (x[i] - mx)
		ssy += (y[i] - my) * (y[i] - my)
	}
	if ssx == 0 || ssy == 0 {
		return Result{}, invalid(op, fmt.Errorf("zero variance"))
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r := stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))

	df := float64(n - 2)
	res := Result{
		N:         n,
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquare:   r * r,
		StdErr:    math.Sqrt((1 - r*r) * ssy / ssx / df),
	}

	if 1-math.Abs(r) < 1e-15 {
		res.P = 0
		return res, nil
	}
	t := r * math.Sqrt(df/((1-r)*(1+r)))
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	res.P = 2 * tdist.Survival(math.Abs(t))
	return res, nil
}

// Columns extracts two numeric columns, skipping rows where either value is
// missing or not finite.
func Columns(t domain.Table, xCol, yCol string) (x, y []float64, err error) {
	xi, ok := t.ColumnIndex(xCol)
	if !ok {
		return nil, nil, domain.MissingColumn(xCol)
	}
	yi, ok := t.ColumnIndex(yCol)
	if !ok {
		return nil, nil, domain.MissingColumn(yCol)
	}

	for r := range t.Rows {
		xv, errX := strconv.ParseFloat(strings.TrimSpace(t.Cell(r, xi)), 64)
		yv, errY := strconv.ParseFloat(strings.TrimSpace(t.Cell(r, yi)), 64)
		if errX != nil || errY != nil {
			continue
		}
		if !floats.HasNaN([]float64{xv, yv}) && !math.IsInf(xv, 0) && !math.IsInf(yv, 0) {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return x, y, nil
}

// Group is a regression over the rows sharing a value in a grouping column.
type Group struct {
	Key    string
	Result Result
	Err    error
}

// ByGroup fits one line per distinct value of groupCol, in first-seen order.
func ByGroup(t domain.Table, xCol, yCol, groupCol string) ([]Group, error) {
	gi, ok := t.ColumnIndex(groupCol)
	if !ok {
		return nil, domain.MissingColumn(groupCol)
	}

	var order []string
	parts := map[string]*domain.Table{}
	for r, row := range t.Rows {
		k := strings.TrimSpace(t.Cell(r, gi))
		p, seen := parts[k]
		if !seen {
			p = &domain.Table{Columns: t.Columns}
			parts[k] = p
			order = append(order, k)
		}
		p.Rows = append(p.Rows, row)
	}

	out := make([]Group, 0, len(order))
	for _, k := range order {
		x, y, err := Columns(*parts[k], xCol, yCol)
		if err != nil {
			return nil, err
		}
		res, err := Linear(x, y)
		out = append(out, Group{Key: k, Result: res, Err: err})
	}
	return out, nil
}

func invalid(op string, err error) error {
	return &domain.OpError{Op: op, Kind: domain.KindInvalidConfig, Err: err}
}
