package source

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Registry resolves source names to their settings.
type Registry interface {
	Names(ctx context.Context) ([]string, error)
	Config(ctx context.Context, name string) (Config, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// NewRegistry loads an INI file (path) or raw INI bytes. Sections without
// keys, including the default section, are ignored.
func NewRegistry(source interface{}) (Registry, error) {
	cfg, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("load source registry: %w", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) Names(_ context.Context) ([]string, error) {
	var names []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 && section.Name() != ini.DefaultSection {
			names = append(names, section.Name())
		}
	}
	return names, nil
}

func (r *iniRegistry) Config(_ context.Context, name string) (Config, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return Config{}, fmt.Errorf("%q: %w", name, ErrSourceNotFound)
	}

	key := func(k string) string {
		return section.Key(k).String()
	}

	cfg := Config{
		Name:       name,
		Kind:       Kind(key("kind")),
		Format:     key("format"),
		Timeout:    section.Key("timeout").MustDuration(DefaultTimeout),
		Path:       key("path"),
		URL:        key("url"),
		MaxRetries: section.Key("max_retries").MustInt(2),
		Bucket:     key("bucket"),
		Key:        key("key"),
		Profile:    key("profile"),
		Region:     key("region"),
		Driver:     key("driver"),
		DSN:        key("dsn"),
		Query:      key("query"),
		Host:       key("host"),
		Token:      key("token"),
		HTTPPath:   key("http_path"),
		Account:    key("account"),
		User:       key("user"),
		Password:   key("password"),
		Database:   key("database"),
		Warehouse:  key("warehouse"),
		Role:       key("role"),
		Schema:     key("schema"),
		Dataset:    section.Key("dataset").MustString(name),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// StaticRegistry serves a fixed set of configs, in the given order.
type StaticRegistry []Config

func (s StaticRegistry) Names(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s))
	for _, c := range s {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s StaticRegistry) Config(_ context.Context, name string) (Config, error) {
	for _, c := range s {
		if c.Name == name {
			return c, c.Validate()
		}
	}
	return Config{}, fmt.Errorf("%q: %w", name, ErrSourceNotFound)
}
