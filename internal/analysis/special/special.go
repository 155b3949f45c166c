// Package special implements the special-function approximations behind every
// distribution computation: log-gamma, the complementary error function and
// the regularized incomplete beta and gamma functions.
//
// All functions are pure and allocation free. Outside their documented domain
// they return the analytic boundary value (0 or 1) where one exists and NaN
// only for invalid shape parameters, which callers in package dist guard.
package special

import "math"

const (
	// tiny keeps the modified Lentz recurrences away from division by zero.
	tiny = 1e-30
	// eps is the relative convergence threshold of the continued fractions and series.
	eps = 1e-14
	// baseIterations is the iteration floor; large shape parameters get more.
	baseIterations = 200
)

// Lanczos coefficients for g=5, n=6.
var lanczos = [6]float64{
	76.18009172947146,
	-86.50532032941677,
	24.01409824083091,
	-1.231739572450155,
	0.1208650973866179e-2,
	-0.5395239384953e-5,
}

// LogGamma returns ln Γ(x) for x > 0 using the Lanczos approximation.
func LogGamma(x float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return math.NaN()
	}
	if math.IsInf(x, 1) {
		return math.Inf(1)
	}
	y := x
	tmp := x + 5.5
	tmp -= (x + 0.5) * math.Log(tmp)
	ser := 1.000000000190015
	for _, c := range lanczos {
		y++
		ser += c / y
	}
	return -tmp + math.Log(2.5066282746310005*ser/x)
}

// LogBeta returns ln B(a, b).
func LogBeta(a, b float64) float64 {
	return LogGamma(a) + LogGamma(b) - LogGamma(a+b)
}

// Erfc returns the complementary error function using the Abramowitz-Stegun
// 7.1.26 rational approximation (|error| <= 1.5e-7). Erfc(-x) = 2 - Erfc(x).
func Erfc(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x == 0 {
		return 1
	}
	t := 1 / (1 + 0.3275911*math.Abs(x))
	poly := t * (0.254829592 + t*(-0.284496736+t*(1.421413741+t*(-1.453152027+t*1.061405429))))
	r := poly * math.Exp(-x*x)
	if x >= 0 {
		return r
	}
	return 2 - r
}

// RegularizedIncompleteBeta returns I_x(a, b) for a, b > 0.
// It is 0 for x <= 0 and 1 for x >= 1.
func RegularizedIncompleteBeta(x, a, b float64) float64 {
	if a <= 0 || b <= 0 || math.IsNaN(x) || math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	front := math.Exp(a*math.Log(x) + b*math.Log1p(-x) - LogBeta(a, b))
	// The continued fraction converges fastest below the mean; above it use
	// the symmetry I_x(a,b) = 1 - I_{1-x}(b,a).
	if x < (a+1)/(a+b+2) {
		return clamp01(front * betaContinuedFraction(x, a, b) / a)
	}
	return clamp01(1 - front*betaContinuedFraction(1-x, b, a)/b)
}

// betaContinuedFraction evaluates the incomplete beta continued fraction with
// the modified Lentz method.
func betaContinuedFraction(x, a, b float64) float64 {
	maxIter := iterationBudget(math.Max(a, b))
	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIter; m++ {
		mf := float64(m)
		m2 := 2 * mf

		// even step
		aa := mf * (b - mf) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		h *= d * c

		// odd step
		aa = -(a + mf) * (qab + mf) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

// RegularizedIncompleteGamma returns the lower regularized gamma P(a, x) for
// a > 0. It is 0 for x <= 0 and tends to 1 as x grows.
func RegularizedIncompleteGamma(a, x float64) float64 {
	if a <= 0 || math.IsNaN(a) || math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	logPrefix := -x + a*math.Log(x) - LogGamma(a)
	if x < a+1 {
		return clamp01(gammaSeries(a, x) * math.Exp(logPrefix))
	}
	return clamp01(1 - gammaContinuedFraction(a, x)*math.Exp(logPrefix))
}

// gammaSeries sums Σ x^n / (a(a+1)...(a+n)).
func gammaSeries(a, x float64) float64 {
	maxIter := iterationBudget(a)
	sum := 1 / a
	term := sum
	for n := 1; n <= maxIter; n++ {
		term *= x / (a + float64(n))
		sum += term
		if math.Abs(term) < math.Abs(sum)*eps {
			break
		}
	}
	return sum
}

// gammaContinuedFraction evaluates the continued fraction for Q(a, x) without
// its prefactor, again by modified Lentz.
func gammaContinuedFraction(a, x float64) float64 {
	maxIter := iterationBudget(a)
	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for n := 1; n <= maxIter; n++ {
		nf := float64(n)
		an := -nf * (nf - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

// iterationBudget grows with the square root of the largest shape parameter,
// which is how the number of terms needed near the distribution's centre scales.
func iterationBudget(shape float64) int {
	return baseIterations + int(10*math.Sqrt(shape))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
