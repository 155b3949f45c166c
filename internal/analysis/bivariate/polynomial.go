package bivariate

import (
	"fmt"
	"math"

	"statgrid/domain/analysis"
	"statgrid/domain/core"
)

// pivotTolerance is the smallest pivot magnitude accepted during elimination.
const pivotTolerance = 1e-12

// PolyFit fits a polynomial of the given degree by solving the normal
// equations (XᵀX)a = Xᵀy with Gaussian elimination and partial pivoting.
//
// Degree 0 fits the constant mean. It returns core.ErrInvalidDegree for a
// negative degree, core.ErrInsufficientData when there are not more points than the
// degree and core.ErrSingularSystem when a pivot falls below 1e-12, which
// happens when x has too few distinct values for the degree.
func PolyFit(x, y []float64, degree int) (*analysis.PolynomialFit, error) {
	if degree < 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidDegree, degree)
	}
	x, y = align(x, y)
	n := len(x)
	if n <= degree {
		return nil, core.NewInsufficientDataError(fmt.Sprintf("degree %d polynomial fit", degree), degree+1, n)
	}
	size := degree + 1

	// Augmented normal-equation matrix [XᵀX | Xᵀy].
	aug := make([][]float64, size)
	for j := range aug {
		aug[j] = make([]float64, size+1)
	}
	powers := make([]float64, 2*size-1)
	for i := 0; i < n; i++ {
		powers[0] = 1
		for k := 1; k < len(powers); k++ {
			powers[k] = powers[k-1] * x[i]
		}
		for j := 0; j < size; j++ {
			aug[j][size] += powers[j] * y[i]
			for k := 0; k < size; k++ {
				aug[j][k] += powers[j+k]
			}
		}
	}

	coeffs, err := solve(aug)
	if err != nil {
		return nil, err
	}
	fit := &analysis.PolynomialFit{Degree: degree, Coefficients: coeffs, N: n}
	fit.R2 = rSquared(x, y, fit.Predict)
	return fit, nil
}

// solve reduces an augmented size×(size+1) system in place and back
// substitutes.
func solve(aug [][]float64) ([]float64, error) {
	size := len(aug)
	for col := 0; col < size; col++ {
		pivot := col
		for row := col + 1; row < size; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		if math.Abs(aug[col][col]) < pivotTolerance {
			return nil, fmt.Errorf("%w: pivot %d is %g", core.ErrSingularSystem, col, aug[col][col])
		}
		for row := col + 1; row < size; row++ {
			f := aug[row][col] / aug[col][col]
			for j := col; j <= size; j++ {
				aug[row][j] -= f * aug[col][j]
			}
		}
	}
	coeffs := make([]float64, size)
	for i := size - 1; i >= 0; i-- {
		v := aug[i][size]
		for j := i + 1; j < size; j++ {
			v -= aug[i][j] * coeffs[j]
		}
		coeffs[i] = v / aug[i][i]
	}
	return coeffs, nil
}
