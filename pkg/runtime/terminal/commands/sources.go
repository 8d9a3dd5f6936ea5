package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type SourcesCmd struct {
	env     *Env
	history bool
}

func NewSourcesCmd(env *Env) *cobra.Command {
	sc := &SourcesCmd{env: env}
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List configured data sources",
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.history, "history", false, "Show the ingest history of each source")

	return cmd
}

func (sc *SourcesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := sc.env.App(ctx)
	if err != nil {
		return err
	}

	registry := a.Loader.Registry()
	names, err := registry.Names(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No sources configured in %s\n", a.Config.SourcesFile)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tLOCATION")
	for _, name := range names {
		cfg, err := registry.Config(ctx, name)
		if err != nil {
			fmt.Fprintf(w, "%s\t?\t%v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, cfg.Kind, cfg.Location())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !sc.history {
		return nil
	}

	history, err := a.Runs.List(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list ingest runs: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSTARTED\tROWS\tRESULT")
	for _, run := range history {
		result := "ok"
		if run.Error != nil {
			result = *run.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", run.Source, run.StartedAt.Format("2006-01-02 15:04:05"), run.Rows, result)
	}
	return w.Flush()
}
