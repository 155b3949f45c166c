package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"statgrid/domain/analysis"
)

// Num formats a value the way the report prints every statistic: rounded to
// four decimals with no trailing zeros.
func Num(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(analysis.Round4(v), 'f', -1, 64)
}

// ExplainHypothesis states a test outcome in plain language.
func ExplainHypothesis(h analysis.HypothesisResult) string {
	p := Num(h.PValue)
	switch h.Kind {
	case analysis.TestOneSampleT:
		mean, mu0 := deref(h.Mean), deref(h.Mu0)
		if h.Significant {
			return fmt.Sprintf("The mean of %s (%s) is significantly different from %s (p=%s). There is strong evidence the true average is not %s.",
				bold(h.Column), mean, mu0, p, mu0)
		}
		return fmt.Sprintf("The mean of %s (%s) is not significantly different from %s (p=%s). Not enough evidence to reject that the true average equals %s.",
			bold(h.Column), mean, mu0, p, mu0)

	case analysis.TestWelchT:
		var base string
		if h.Significant {
			base = fmt.Sprintf("%s differs significantly between the two levels of %s (p=%s). The difference is unlikely due to chance.",
				bold(h.Variable), bold(h.GroupBy), p)
		} else {
			base = fmt.Sprintf("%s does not differ significantly between the two levels of %s (p=%s). The difference could be random variation.",
				bold(h.Variable), bold(h.GroupBy), p)
		}
		return withMeans(base, h)

	case analysis.TestANOVA:
		var base string
		if h.Significant {
			base = fmt.Sprintf("At least one level of %s has a significantly different mean for %s (p=%s).",
				bold(h.GroupBy), bold(h.Variable), p)
		} else {
			base = fmt.Sprintf("No significant difference in %s across the levels of %s (p=%s). The groups have similar averages.",
				bold(h.Variable), bold(h.GroupBy), p)
		}
		return withMeans(base, h)

	case analysis.TestChiSquared:
		subject := h.Variable
		if subject == "" {
			subject = h.Column
		}
		if h.Significant {
			return fmt.Sprintf("The category frequencies for %s are significantly unequal (p=%s). The distribution is not uniform.",
				bold(subject), p)
		}
		return fmt.Sprintf("The category frequencies for %s are not significantly different from uniform (p=%s).",
			bold(subject), p)
	}
	return ""
}

// ExplainEffect describes an effect size and its magnitude band.
func ExplainEffect(e analysis.EffectSizeResult) string {
	switch e.Kind {
	case analysis.EffectCohensD:
		groups := strings.Join(e.Groups, " vs ")
		d := Num(e.Value)
		switch e.Magnitude {
		case analysis.MagnitudeNegligible:
			return fmt.Sprintf("The difference between groups (%s) for %s is negligible (d=%s). The means are practically identical.", groups, bold(e.Column), d)
		case analysis.MagnitudeSmall:
			dir := "lower"
			if e.Value > 0 {
				dir = "higher"
			}
			return fmt.Sprintf("A small difference exists between groups (%s) for %s (d=%s). The first group is slightly %s.", groups, bold(e.Column), d, dir)
		case analysis.MagnitudeMedium:
			return fmt.Sprintf("A moderate difference between groups (%s) for %s (d=%s). The effect is noticeable and practically meaningful.", groups, bold(e.Column), d)
		}
		return fmt.Sprintf("A large difference between groups (%s) for %s (d=%s). The groups are clearly separated on this variable.", groups, bold(e.Column), d)

	case analysis.EffectEtaSquared:
		pct := strconv.FormatFloat(e.Value*100, 'f', 1, 64)
		switch e.Magnitude {
		case analysis.MagnitudeNegligible:
			return fmt.Sprintf("The grouping variable explains only %s%% of variance in %s, virtually none.", pct, bold(e.Column))
		case analysis.MagnitudeSmall:
			return fmt.Sprintf("The grouping variable explains %s%% of variance in %s, a small but detectable effect.", pct, bold(e.Column))
		case analysis.MagnitudeMedium:
			return fmt.Sprintf("The grouping variable explains %s%% of variance in %s, a moderate and practically relevant effect.", pct, bold(e.Column))
		}
		return fmt.Sprintf("The grouping variable explains %s%% of variance in %s, a large effect. Group membership strongly predicts this variable.", pct, bold(e.Column))
	}
	return ""
}

func withMeans(base string, h analysis.HypothesisResult) string {
	if len(h.GroupMeans) == 0 {
		return base
	}
	labels := h.Groups
	if len(labels) == 0 {
		for g := range h.GroupMeans {
			labels = append(labels, g)
		}
		sort.Strings(labels)
	}
	parts := make([]string, 0, len(labels))
	for _, g := range labels {
		if m, ok := h.GroupMeans[g]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", bold(g), Num(m)))
		}
	}
	return base + " Group means: " + strings.Join(parts, ", ") + "."
}

func deref(v *float64) string {
	if v == nil {
		return "?"
	}
	return Num(*v)
}

func bold(s string) string {
	return "**" + escape(s) + "**"
}

// escape keeps column names from breaking Markdown emphasis or tables.
func escape(s string) string {
	r := strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`")
	return r.Replace(s)
}
