package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/de-tools/resp-atlas/pkg/adapters"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/dashboard"
	"github.com/spf13/cobra"
)

const FormatJSON = "json"

type HydrateCmd struct {
	env    *Env
	page   string
	source string
	vars   map[string]string
	format string
}

func NewHydrateCmd(env *Env) *cobra.Command {
	hc := &HydrateCmd{env: env}
	cmd := &cobra.Command{
		Use:   "hydrate",
		Short: "Render a dashboard page against a data source",
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.page, "page", "", "Page id (e.g., covid)")
	cmd.Flags().StringVar(&hc.source, "source", "", "Data source name, defaults to the page source")
	cmd.Flags().StringToStringVar(&hc.vars, "var", nil, "Page variable as key=value (e.g., --var view=hospitalizations)")
	cmd.Flags().StringVar(&hc.format, "format", "text", "Output format: text, table or json")

	_ = cmd.MarkFlagRequired("page")

	return cmd
}

func (hc *HydrateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	reporter, ok := hc.env.Reporters[hc.format]
	if !ok && hc.format != FormatJSON {
		return fmt.Errorf("unsupported format %q. Supported formats: %v", hc.format, hc.formats())
	}

	a, err := hc.env.App(ctx)
	if err != nil {
		return err
	}

	page, err := a.Dashboard.RenderPage(ctx, hc.page, dashboard.Request{Source: hc.source, Vars: hc.vars})
	if err != nil {
		return fmt.Errorf("failed to render page %s: %w", hc.page, err)
	}

	for _, o := range page.Report.Outcomes {
		if o.Severity == domain.SeverityOK {
			continue
		}
		section := o.Section
		if section == "" {
			section = "page"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", o.Severity, section, o.Message)
	}

	if hc.format == FormatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(adapters.MapDomainRenderedPageToAPI(page))
	}

	report := dashboard.BuildReport(page)
	return reporter.Handle(&report)
}

func (hc *HydrateCmd) formats() []string {
	out := []string{FormatJSON}
	for name := range hc.env.Reporters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
