package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type PagesCmd struct {
	env *Env
}

func NewPagesCmd(env *Env) *cobra.Command {
	pc := &PagesCmd{env: env}
	return &cobra.Command{
		Use:   "pages",
		Short: "List dashboard pages",
		RunE:  pc.run,
	}
}

func (pc *PagesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := pc.env.App(ctx)
	if err != nil {
		return err
	}

	list, err := a.Dashboard.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSOURCE\tSECTIONS")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Source, strings.Join(p.Sections, ","))
	}
	return w.Flush()
}
