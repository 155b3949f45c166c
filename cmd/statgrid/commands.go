package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"statgrid/adapters/datareadiness/coercer"
	"statgrid/internal/analysis/density"
	"statgrid/internal/analysis/engine"
	"statgrid/internal/api"
	"statgrid/internal/dataset"
	"statgrid/internal/errors"
	"statgrid/internal/report"
	"statgrid/ui"
)

const (
	outputMarkdown = "markdown"
	outputHTML     = "html"
	outputJSON     = "json"
)

func (c *cli) policy(threshold float64, lenient bool, cmd *cobra.Command) coercer.NumericPolicy {
	p := c.cfg.Analysis.Policy()
	if cmd.Flags().Changed("threshold") {
		p.Threshold = threshold
	}
	if cmd.Flags().Changed("lenient") {
		p.Lenient = lenient
	}
	return p
}

func (c *cli) newAnalyzeCmd() *cobra.Command {
	var (
		src           source
		groupBy       string
		mu0           float64
		threshold     float64
		lenient       bool
		noCorrelation bool
		output        string
		outFile       string
		title         string
	)

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze every column of a table and print a report",
		Long: `Analyze a CSV, TSV, XLSX, JSON or pasted-text table: descriptive statistics,
correlation, per-group summaries, hypothesis tests, effect sizes and outlier cells.

Reads stdin when no file (or "-") is given.

Examples:
  statgrid analyze scores.csv --group-by Team
  statgrid analyze book.xlsx --sheet Results --output html --out report.html
  pbpaste | statgrid analyze --output json
  statgrid analyze --url https://example.com/api/rows --data-path data --pagination cursor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case outputMarkdown, outputHTML, outputJSON:
			default:
				return errors.InvalidInput(fmt.Sprintf("unknown output %q (want markdown, html or json)", output))
			}

			t, err := c.load(cmd.Context(), cmd, &src, args)
			if err != nil {
				return err
			}

			opts := engine.DefaultOptions()
			opts.Policy = c.policy(threshold, lenient, cmd)
			opts.Mu0 = c.cfg.Analysis.Mu0
			if cmd.Flags().Changed("mu0") {
				opts.Mu0 = mu0
			}
			opts.Workers = c.cfg.Analysis.Workers
			opts.GroupBy = groupBy
			opts.Correlation = !noCorrelation

			start := time.Now()
			r, err := engine.Analyze(cmd.Context(), t, opts)
			if err != nil {
				return err
			}
			c.logger.Debug("[analyze] %s: %d columns, %d rows in %s", t.Name, len(t.Columns), t.Rows(), time.Since(start))

			if title == "" {
				title = t.Name
			}
			if title == "" {
				title = "Analysis report"
			}

			w := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return errors.Wrap(err, "failed to create output file")
				}
				defer f.Close()
				w = f
			}

			switch output {
			case outputJSON:
				return writeJSON(w, struct {
					Fingerprint string           `json:"fingerprint"`
					Report      interface{}      `json:"report"`
					Insights    []report.Insight `json:"insights"`
				}{t.Fingerprint().String(), r, report.Insights(r)})
			case outputHTML:
				_, err = w.Write(report.Render(title, r))
			default:
				_, err = fmt.Fprint(w, report.Markdown(title, r))
			}
			return err
		},
	}

	src.bind(cmd)
	f := cmd.Flags()
	f.StringVar(&groupBy, "group-by", "", "Categorical column to compare groups by (default: first categorical column)")
	f.Float64Var(&mu0, "mu0", 0, "Hypothesised mean for one-sample t-tests (default MU0)")
	f.Float64Var(&threshold, "threshold", 0, "Share of non-blank cells that must parse for a column to be numeric (default NUMERIC_THRESHOLD)")
	f.BoolVar(&lenient, "lenient", false, "Accept currency symbols, thousands separators, percents and (negatives)")
	f.BoolVar(&noCorrelation, "no-correlation", false, "Skip the correlation matrix")
	f.StringVarP(&output, "output", "o", outputMarkdown, "Output: markdown, html or json")
	f.StringVar(&outFile, "out", "", "Write the report to this file instead of stdout")
	f.StringVar(&title, "title", "", "Report title (default: input name)")
	return cmd
}

// columnCmd builds the commands that operate on one numeric column.
type columnCmd struct {
	src       source
	column    string
	threshold float64
	lenient   bool
}

func (cc *columnCmd) bind(cmd *cobra.Command) {
	cc.src.bind(cmd)
	cmd.Flags().StringVarP(&cc.column, "column", "c", "", "Numeric column to use (default: first numeric column)")
	cmd.Flags().Float64Var(&cc.threshold, "threshold", 0, "Numeric threshold (default NUMERIC_THRESHOLD)")
	cmd.Flags().BoolVar(&cc.lenient, "lenient", false, "Accept formatted numbers")
}

func (c *cli) columnValues(cmd *cobra.Command, cc *columnCmd, args []string) ([]float64, error) {
	t, err := c.load(cmd.Context(), cmd, &cc.src, args)
	if err != nil {
		return nil, err
	}
	policy := c.policy(cc.threshold, cc.lenient, cmd)
	name := cc.column
	if name == "" {
		numeric := dataset.Classify(t, policy).Numeric
		if len(numeric) == 0 {
			return nil, errors.InvalidInput("the table has no numeric column")
		}
		name = numeric[0]
	}
	return engine.NumericColumn(t, name, policy)
}

func (c *cli) newKDECmd() *cobra.Command {
	var cc columnCmd
	var points int
	cmd := &cobra.Command{
		Use:   "kde [file]",
		Short: "Print a Gaussian kernel density estimate of a column as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.columnValues(cmd, &cc, args)
			if err != nil {
				return err
			}
			if points <= 0 {
				points = c.cfg.Analysis.KDEPoints
			}
			return writeJSON(cmd.OutOrStdout(), density.KDE(values, points))
		},
	}
	cc.bind(cmd)
	cmd.Flags().IntVar(&points, "points", 0, "Grid points (default KDE_POINTS)")
	return cmd
}

func (c *cli) newHistogramCmd() *cobra.Command {
	var cc columnCmd
	var overlay bool
	cmd := &cobra.Command{
		Use:   "histogram [file]",
		Short: "Print the histogram of a column as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.columnValues(cmd, &cc, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), api.Histogram(values, overlay))
		},
	}
	cc.bind(cmd)
	cmd.Flags().BoolVar(&overlay, "overlay", false, "Add the fitted normal curve per bin")
	return cmd
}

func (c *cli) newSmoothCmd() *cobra.Command {
	var cc columnCmd
	var window int
	cmd := &cobra.Command{
		Use:   "smooth [file]",
		Short: "Print the centred moving average of a column as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := c.columnValues(cmd, &cc, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), api.Smooth(values, window))
		},
	}
	cc.bind(cmd)
	cmd.Flags().IntVar(&window, "window", 0, "Window size (default max(3, n/10))")
	return cmd
}

func (c *cli) newRegressCmd() *cobra.Command {
	var (
		src       source
		xName     string
		yName     string
		degree    int
		threshold float64
		lenient   bool
	)
	cmd := &cobra.Command{
		Use:   "regress [file]",
		Short: "Fit y against x by least squares and print the fit as JSON",
		Long: `Fit a least-squares line (degree 1, the default) or polynomial of the
given degree through the rows where both columns hold numbers.

Example: statgrid regress sales.csv --x Spend --y Revenue --degree 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if xName == "" || yName == "" {
				return errors.InvalidInput("both --x and --y are required")
			}
			if degree < 0 || degree > 10 {
				return errors.InvalidInput("--degree must be between 0 and 10")
			}
			t, err := c.load(cmd.Context(), cmd, &src, args)
			if err != nil {
				return err
			}
			x, y, err := engine.PairedColumns(t, xName, yName, c.policy(threshold, lenient, cmd))
			if err != nil {
				return err
			}
			fit, err := api.Regress(x, y, degree)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fit)
		},
	}
	src.bind(cmd)
	f := cmd.Flags()
	f.StringVar(&xName, "x", "", "Predictor column")
	f.StringVar(&yName, "y", "", "Response column")
	f.IntVar(&degree, "degree", 1, "Polynomial degree")
	f.Float64Var(&threshold, "threshold", 0, "Numeric threshold (default NUMERIC_THRESHOLD)")
	f.BoolVar(&lenient, "lenient", false, "Accept formatted numbers")
	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form, the JSON API and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				c.cfg.Server.Port = port
			}
			app, err := ui.NewApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer func() { _ = c.logger.Sync() }()
			return app.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (default PORT)")
	return cmd
}
