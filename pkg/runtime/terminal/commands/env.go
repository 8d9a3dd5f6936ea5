package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/runtime/app"
	"github.com/de-tools/resp-atlas/pkg/services/config"
)

// Setup builds the application for a config file path. An empty path means
// defaults plus environment overrides.
type Setup func(ctx context.Context, configPath string, overrides ...func(*config.Config)) (*app.App, error)

// Reporter renders a page report for the terminal.
type Reporter interface {
	Handle(report *domain.Report) error
}

// Env is shared by the commands of one CLI invocation. The application is
// built on first use and closed by Close.
type Env struct {
	ConfigPath string
	Setup      Setup
	Reporters  map[string]Reporter

	app *app.App
}

// App returns the application, building it on the first call. overrides
// only take effect on that first call.
func (e *Env) App(ctx context.Context, overrides ...func(*config.Config)) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	if e.Setup == nil {
		return nil, fmt.Errorf("no application setup configured")
	}
	a, err := e.Setup(ctx, e.ConfigPath, overrides...)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

func (e *Env) Close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}
