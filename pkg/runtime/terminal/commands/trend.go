package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/chartprep"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
	"github.com/de-tools/resp-atlas/pkg/services/trend"
	"github.com/spf13/cobra"
)

type TrendCmd struct {
	env       *Env
	source    string
	metric    string
	submetric string
	display   string
	weeks     int
}

func NewTrendCmd(env *Env) *cobra.Command {
	tc := &TrendCmd{env: env}
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show the week-over-week trend of one metric",
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.source, "source", "", "Data source name, defaults to default_source")
	cmd.Flags().StringVar(&tc.metric, "metric", "", "Metric name (e.g., \"COVID-19 visits\")")
	cmd.Flags().StringVar(&tc.submetric, "submetric", "Overall", "Submetric, empty for all")
	cmd.Flags().StringVar(&tc.display, "display", "", "Display type (e.g., Percent), empty for all")
	cmd.Flags().IntVar(&tc.weeks, "weeks", 8, "Number of most recent rows to print")

	_ = cmd.MarkFlagRequired("metric")

	return cmd
}

func (tc *TrendCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := tc.env.App(ctx)
	if err != nil {
		return err
	}

	name := tc.source
	if name == "" {
		name = a.Config.DefaultSource
	}
	ds, err := a.Dashboard.Dataset(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load source %s: %w", name, err)
	}

	rows := a.Filterer.ByMetric(ds, domain.Criteria{
		Metric:    tc.metric,
		Submetric: tc.submetric,
		Display:   tc.display,
	})
	if len(rows) == 0 {
		return fmt.Errorf("no rows for metric %q in source %s", tc.metric, name)
	}

	points := chartprep.WeekRows(normalize.Sorted(rows))

	out := cmd.OutOrStdout()
	shown := points
	if tc.weeks > 0 && len(shown) > tc.weeks {
		shown = shown[len(shown)-tc.weeks:]
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WEEK\tSUBMETRIC\tVALUE")
	for _, p := range shown {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Week, p.Submetric, p.ValueRaw)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	t, ok := trend.Points(points)
	if !ok {
		fmt.Fprintf(out, "%s: not enough values for a trend\n", tc.metric)
		return nil
	}
	fmt.Fprintln(out, trend.Describe(tc.metric, t))
	return nil
}
