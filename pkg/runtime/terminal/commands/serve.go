package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/resp-atlas/pkg/server"
	"github.com/de-tools/resp-atlas/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type ServeCmd struct {
	env  *Env
	host string
	port int
}

func NewServeCmd(env *Env) *cobra.Command {
	sc := &ServeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web API",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.host, "host", "", "Listen host, overrides server.host")
	cmd.Flags().IntVar(&sc.port, "port", 0, "Listen port, overrides server.port")

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := zerolog.Ctx(ctx)

	a, err := sc.env.App(ctx, func(cfg *config.Config) {
		if sc.host != "" {
			cfg.Server.Host = sc.host
		}
		if sc.port != 0 {
			cfg.Server.Port = sc.port
		}
	})
	if err != nil {
		return err
	}

	if err := a.Dashboard.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial source load incomplete")
	}

	if runner := a.RefreshRunner(); runner != nil {
		logger.Info().Dur("interval", a.Config.RefreshInterval).Msg("starting refresh runner")
		go runner.Run(ctx)
		defer func() {
			cancel()
			<-runner.Done()
		}()
	}

	webAPI := server.NewWebAPI(server.Config{
		Addr: a.Config.Addr(),
		Dependencies: server.Dependencies{
			Dashboard: a.Dashboard,
			Logger:    *logger,
		},
	})
	if err := webAPI.Start(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
