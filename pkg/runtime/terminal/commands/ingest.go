package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/de-tools/resp-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

type IngestCmd struct {
	env     *Env
	sources []string
	dbPath  string
}

func NewIngestCmd(env *Env) *cobra.Command {
	ic := &IngestCmd{env: env}
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Copy data sources into the local DuckDB snapshot store",
		RunE:  ic.run,
	}

	cmd.Flags().StringSliceVar(&ic.sources, "source", nil, "Source to ingest, repeatable (default all)")
	cmd.Flags().StringVar(&ic.dbPath, "db", "", "Path to the DuckDB file, overrides db_path")

	return cmd
}

func (ic *IngestCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := ic.env.App(ctx, func(cfg *config.Config) {
		if ic.dbPath != "" {
			cfg.DbPath = ic.dbPath
		}
	})
	if err != nil {
		return err
	}

	names := ic.sources
	if len(names) == 0 {
		names, err = a.Loader.Registry().Names(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sources: %w", err)
		}
	}

	results, ingestErr := a.Ingester.IngestAll(ctx, names)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tDATASET\tROWS\tRESULT")
	for _, run := range results {
		result := "ok"
		if run.Error != nil {
			result = *run.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", run.Source, run.DatasetID, run.Rows, result)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return ingestErr
}
