package learn

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when the regularised kernel cannot be factorised.
var ErrSingular = errors.New("ridge system is not positive definite")

// leverageFloor guards the leave-one-out division for rows the fit
// reproduces exactly.
const leverageFloor = 1e-12

// Ridge is an L2-regularised linear regression with an unpenalised
// intercept. Exported fields are the persisted state.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Predict returns the regression score of x.
func (r *Ridge) Predict(x Sparse) float64 {
	return x.DotDense(r.Weights) + r.Intercept
}

// RidgeFit is a fitted model with its in-sample and leave-one-out
// predictions for the training rows.
type RidgeFit struct {
	Model       *Ridge
	Fitted      []float64
	LeaveOneOut []float64
}

// FitRidge fits y on rows of dimension dim.
//
// The intercept is handled by centring. The centred problem is solved in
// dual form, (Kc + alpha I) c = y - mean(y), with a Cholesky factorisation
// of the n by n kernel, which stays small when documents are few and the
// vocabulary is large. LeaveOneOut holds the exact prediction for each row
// from a fit that excludes it.
func FitRidge(rows []Sparse, y []float64, dim int, alpha float64) (*RidgeFit, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("fit ridge: no rows")
	}
	if len(y) != n {
		return nil, fmt.Errorf("fit ridge: %d rows but %d targets", n, len(y))
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("fit ridge: alpha must be positive, got %g", alpha)
	}

	mean := make([]float64, dim)
	for _, row := range rows {
		for k, j := range row.Index {
			mean[j] += row.Value[k] / float64(n)
		}
	}
	var yMean float64
	for _, v := range y {
		yMean += v / float64(n)
	}

	proj := make([]float64, n)
	for i, row := range rows {
		proj[i] = row.DotDense(mean)
	}
	var meanSq float64
	for _, m := range mean {
		meanSq += m * m
	}

	kc := mat.NewSymDense(n, nil)
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k := rows[i].Dot(rows[j]) - proj[i] - proj[j] + meanSq
			kc.SetSym(i, j, k)
			if i == j {
				k += alpha
			}
			a.SetSym(i, j, k)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, ErrSingular
	}

	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}
	var c mat.VecDense
	if err := chol.SolveVecTo(&c, yc); err != nil {
		return nil, fmt.Errorf("solve ridge: %w", err)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("invert ridge kernel: %w", err)
	}

	fit := &RidgeFit{
		Fitted:      make([]float64, n),
		LeaveOneOut: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		var pred, lev float64
		for j := 0; j < n; j++ {
			pred += kc.At(i, j) * c.AtVec(j)
			lev += kc.At(i, j) * inv.At(j, i)
		}
		fit.Fitted[i] = yMean + pred
		lev += 1 / float64(n)

		denom := 1 - lev
		if n < 2 || math.Abs(denom) < leverageFloor {
			fit.LeaveOneOut[i] = fit.Fitted[i]
			continue
		}
		fit.LeaveOneOut[i] = y[i] - (y[i]-fit.Fitted[i])/denom
	}

	weights := make([]float64, dim)
	var cSum float64
	for i, row := range rows {
		ci := c.AtVec(i)
		cSum += ci
		for k, j := range row.Index {
			weights[j] += ci * row.Value[k]
		}
	}
	var wm float64
	for j := range weights {
		weights[j] -= cSum * mean[j]
		wm += weights[j] * mean[j]
	}

	fit.Model = &Ridge{
		Alpha:     alpha,
		Weights:   weights,
		Intercept: yMean - wm,
	}
	return fit, nil
}
