package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/resp-atlas/pkg/runtime/app"
	"github.com/de-tools/resp-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/resp-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Setup  commands.Setup
	Output io.Writer
	Args   []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Setup == nil {
		opts.Setup = app.Load
	}

	cli := &CLI{
		env: &commands.Env{
			Setup: opts.Setup,
			Reporters: map[string]commands.Reporter{
				"text":  NewReporter(opts.Output),
				"table": export.NewReporter(opts.Output),
			},
		},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

// ExecuteContext runs the command line; ctx carries the logger.
func (cli *CLI) ExecuteContext(ctx context.Context) error {
	defer func() {
		_ = cli.env.Close()
	}()
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "resp-atlas",
		Short:         "Respiratory illness dashboard data tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.env.ConfigPath, "config", "c", "",
		"Path to the resp-atlas config file (default: built-in defaults and RESP_ATLAS_* env)")

	cmd.AddCommand(commands.NewSourcesCmd(cli.env))
	cmd.AddCommand(commands.NewPagesCmd(cli.env))
	cmd.AddCommand(commands.NewHydrateCmd(cli.env))
	cmd.AddCommand(commands.NewTrendCmd(cli.env))
	cmd.AddCommand(commands.NewIngestCmd(cli.env))
	cmd.AddCommand(commands.NewServeCmd(cli.env))

	return cmd
}
