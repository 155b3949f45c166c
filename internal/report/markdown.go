// Package report renders an analysis.Report for people: plain-language
// insights and test explanations, a Markdown document and its HTML page.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"statgrid/domain/analysis"
)

// Markdown renders the whole report as a Markdown document.
func Markdown(title string, r *analysis.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	writeOverview(&b, r)
	writeInsights(&b, r)
	writeDescriptive(&b, r)
	writeCorrelation(&b, r)
	writeGroupStats(&b, r)
	writeHypotheses(&b, r)
	writeEffects(&b, r)
	writeOutliers(&b, r)
	return b.String()
}

// HTML converts Markdown into a complete HTML page.
func HTML(title, md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// Render is Markdown followed by HTML.
func Render(title string, r *analysis.Report) []byte {
	return HTML(title, Markdown(title, r))
}

func writeOverview(b *strings.Builder, r *analysis.Report) {
	fmt.Fprintf(b, "%d columns: %d numeric (%s), %d categorical (%s).\n",
		len(r.Columns),
		len(r.NumericColumns), list(r.NumericColumns),
		len(r.CategoricalColumns), list(r.CategoricalColumns))
	if r.GroupBy != "" {
		fmt.Fprintf(b, "Grouped by %s.\n", bold(r.GroupBy))
	}
	if c := r.Chart; c.Type != "" {
		fmt.Fprintf(b, "Suggested chart: %s%s.\n", c.Type, chartColumns(c))
	}
	b.WriteString("\n")
}

func chartColumns(c analysis.ChartSuggestion) string {
	switch {
	case c.X != "":
		return fmt.Sprintf(" of %s against %s", escape(c.Y), escape(c.X))
	case c.Cat != "":
		return fmt.Sprintf(" of %s by %s", escape(c.Column), escape(c.Cat))
	case c.Column != "":
		return " of " + escape(c.Column)
	}
	return ""
}

func writeInsights(b *strings.Builder, r *analysis.Report) {
	b.WriteString("## Insights\n\n")
	insights := Insights(r)
	if len(insights) == 0 {
		b.WriteString("No notable patterns.\n\n")
		return
	}
	for _, in := range insights {
		fmt.Fprintf(b, "- %s: %s\n", bold(in.Subject), in.Text)
	}
	b.WriteString("\n")
}

func writeDescriptive(b *strings.Builder, r *analysis.Report) {
	if len(r.Stats) == 0 {
		return
	}
	b.WriteString("## Descriptive statistics\n\n")
	header(b, "Column", "N", "Mean", "Median", "Mode", "Std Dev", "Min", "Q1", "Q3", "Max",
		"Skewness", "Kurtosis", "95% CI", "Normal?", "Outliers")
	for _, name := range r.NumericColumns {
		s, ok := r.Stats[name]
		if !ok {
			continue
		}
		row(b, escape(name), strconv.Itoa(s.Count), Num(s.Mean), Num(s.Median), escape(s.Mode),
			Num(s.StdDev), Num(s.Min), Num(s.Q1), Num(s.Q3), Num(s.Max),
			Num(s.Skewness), Num(s.Kurtosis),
			fmt.Sprintf("[%s, %s]", Num(s.CI95.Lower), Num(s.CI95.Upper)),
			escape(s.Normality.Label), strconv.Itoa(len(s.Outliers)))
	}
	b.WriteString("\n")
}

func writeCorrelation(b *strings.Builder, r *analysis.Report) {
	m := r.Correlation
	if m == nil {
		return
	}
	b.WriteString("## Correlation (Pearson r)\n\n")
	cols := append([]string{""}, escapeAll(m.Keys)...)
	header(b, cols...)
	for _, a := range m.Keys {
		cells := []string{bold(a)}
		for _, c := range m.Keys {
			v, _ := m.At(a, c)
			cells = append(cells, Num(v))
		}
		row(b, cells...)
	}
	b.WriteString("\n")
}

func writeGroupStats(b *strings.Builder, r *analysis.Report) {
	if r.GroupBy == "" || len(r.GroupStats) == 0 {
		return
	}
	fmt.Fprintf(b, "## Statistics by %s\n\n", escape(r.GroupBy))
	for _, name := range r.NumericColumns {
		groups := r.GroupStats[name]
		if len(groups) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", escape(name))
		header(b, "Group", "Count", "Mean", "Median", "Std Dev", "Min", "Max")
		for _, label := range r.GroupLabels {
			s, ok := groups[label]
			if !ok {
				continue
			}
			row(b, bold(label), strconv.Itoa(s.Count), Num(s.Mean), Num(s.Median), Num(s.StdDev), Num(s.Min), Num(s.Max))
		}
		b.WriteString("\n")
	}
}

func writeHypotheses(b *strings.Builder, r *analysis.Report) {
	if len(r.Hypotheses) == 0 {
		return
	}
	b.WriteString("## Hypothesis tests\n\n")
	header(b, "Variable", "Test", "Statistic", "df", "p-value", "Result")
	for _, h := range r.Hypotheses {
		result := "Not sig."
		if h.Significant {
			result = "Significant"
		}
		row(b, escape(h.Column), h.Test,
			fmt.Sprintf("%s=%s", h.StatisticName(), Num(float64(h.Statistic))),
			h.DFString(), Num(h.PValue), result)
	}
	b.WriteString("\n")
	for _, h := range r.Hypotheses {
		fmt.Fprintf(b, "- %s\n", ExplainHypothesis(h))
	}
	fmt.Fprintf(b, "\nSignificance level α = %s.\n\n", Num(analysis.Alpha))
}

func writeEffects(b *strings.Builder, r *analysis.Report) {
	if len(r.EffectSizes) == 0 {
		return
	}
	b.WriteString("## Effect sizes\n\n")
	header(b, "Variable", "Measure", "Value", "Magnitude")
	for _, e := range r.EffectSizes {
		row(b, escape(e.Column), e.Measure, Num(e.Value), string(e.Magnitude))
	}
	b.WriteString("\n")
	for _, e := range r.EffectSizes {
		fmt.Fprintf(b, "- %s\n", ExplainEffect(e))
	}
	b.WriteString("\n")
}

func writeOutliers(b *strings.Builder, r *analysis.Report) {
	if len(r.OutlierCells) == 0 {
		return
	}
	b.WriteString("## Outlier cells\n\n")
	header(b, "Column", "Data row", "Value")
	for _, c := range r.OutlierCells {
		row(b, escape(c.Column), strconv.Itoa(c.Row+1), Num(c.Value))
	}
	b.WriteString("\n")
}

func header(b *strings.Builder, cols ...string) {
	row(b, cols...)
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	row(b, seps...)
}

func row(b *strings.Builder, cells ...string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(escapeAll(names), ", ")
}

func escapeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = escape(n)
	}
	return out
}
