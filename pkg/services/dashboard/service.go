// Package dashboard renders page configurations against source data.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/pages"
	"github.com/de-tools/resp-atlas/pkg/services/content"
	"github.com/de-tools/resp-atlas/pkg/services/hydrate"
	"github.com/de-tools/resp-atlas/pkg/services/source"
	"github.com/rs/zerolog"
)

// Request carries the caller's choices for one render. Empty fields fall
// back to the page defaults.
type Request struct {
	Source string
	Vars   map[string]string
}

type Service interface {
	ListPages(ctx context.Context) ([]domain.PageSummary, error)
	ListSources(ctx context.Context) ([]string, error)
	RenderPage(ctx context.Context, pageID string, req Request) (domain.RenderedPage, error)
	ContentSection(ctx context.Context, file, title string) (content.Section, error)
	Dataset(ctx context.Context, name string) (domain.Dataset, error)
	Refresh(ctx context.Context, names ...string) error
}

type Settings struct {
	DefaultSource string
}

type service struct {
	catalog  *pages.Catalog
	texts    *pages.Texts
	loader   *source.Loader
	hydrator *hydrate.Hydrator
	content  *content.Loader
	settings Settings

	mu       sync.RWMutex
	datasets map[string]domain.Dataset
}

func NewService(
	catalog *pages.Catalog,
	texts *pages.Texts,
	loader *source.Loader,
	hydrator *hydrate.Hydrator,
	contentLoader *content.Loader,
	settings Settings,
) Service {
	if texts == nil {
		texts = pages.DefaultTexts()
	}
	if settings.DefaultSource == "" {
		settings.DefaultSource = pages.DefaultSource
	}
	return &service{
		catalog:  catalog,
		texts:    texts,
		loader:   loader,
		hydrator: hydrator,
		content:  contentLoader,
		settings: settings,
		datasets: make(map[string]domain.Dataset),
	}
}

func (s *service) ListPages(_ context.Context) ([]domain.PageSummary, error) {
	list := s.catalog.List()
	out := make([]domain.PageSummary, 0, len(list))
	for _, p := range list {
		vars := p.MergeVars(nil)
		sections := make([]string, 0, len(p.Sections))
		for _, sec := range p.Sections {
			sections = append(sections, hydrate.SectionKey(sec))
		}
		out = append(out, domain.PageSummary{
			ID:       p.ID,
			Title:    s.text(p.TitleKey, vars),
			Subtitle: s.text(p.SubtitleKey, vars),
			Source:   s.sourceFor(p, ""),
			Sections: sections,
		})
	}
	return out, nil
}

func (s *service) ListSources(ctx context.Context) ([]string, error) {
	return s.loader.Registry().Names(ctx)
}

func (s *service) RenderPage(ctx context.Context, pageID string, req Request) (domain.RenderedPage, error) {
	page, err := s.catalog.Get(pageID)
	if err != nil {
		return domain.RenderedPage{}, err
	}

	vars := page.MergeVars(req.Vars)
	sourceName := s.sourceFor(page, req.Source)
	logger := zerolog.Ctx(ctx).With().Str("page", page.ID).Str("source", sourceName).Logger()
	ctx = logger.WithContext(ctx)

	ds, fetchErr := s.Dataset(ctx, sourceName)
	if fetchErr != nil {
		logger.Error().Err(fetchErr).Msg("rendering page without data")
	}

	data, report := s.hydrator.Hydrate(ctx, page, ds, vars)
	if fetchErr != nil {
		report.Add("", domain.SeverityError, fetchErr.Error())
	}

	rendered := domain.RenderedPage{
		ID:        page.ID,
		Title:     s.text(page.TitleKey, vars),
		Subtitle:  s.text(page.SubtitleKey, vars),
		Source:    sourceName,
		DatasetID: ds.ID,
		LoadedAt:  ds.LoadedAt,
		Vars:      vars,
		Sections:  make([]domain.RenderedSection, 0, len(page.Sections)),
		Report:    report,
	}

	for _, section := range page.Sections {
		key := hydrate.SectionKey(section)
		outcome := lastOutcome(report, key)
		sd, ok := data[key]
		if !ok {
			rendered.Sections = append(rendered.Sections, domain.RenderedSection{
				ID:        section.ID,
				Key:       key,
				Title:     s.text(section.TitleKey, vars),
				ChartType: section.ChartType,
				Outcome:   outcome,
			})
			continue
		}
		rs := renderSection(section, sd, hydrate.ResolveProps(section.Props, vars))
		rs.Title = s.text(section.TitleKey, vars)
		rs.Sentence = s.sentence(section, rs.Trend, vars)
		rs.Outcome = outcome
		rendered.Sections = append(rendered.Sections, rs)
	}

	return rendered, nil
}

func (s *service) ContentSection(ctx context.Context, file, title string) (content.Section, error) {
	if s.content == nil {
		return content.Section{}, content.ErrSectionNotFound
	}
	return s.content.Section(ctx, file, title)
}

// Dataset returns the cached dataset for name, loading it on first use.
// Failed loads are not cached; the empty dataset is returned with the error.
func (s *service) Dataset(ctx context.Context, name string) (domain.Dataset, error) {
	s.mu.RLock()
	ds, ok := s.datasets[name]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}

	ds, err := s.loader.Load(ctx, name)
	if err != nil {
		return ds, err
	}

	s.mu.Lock()
	s.datasets[name] = ds
	s.mu.Unlock()
	return ds, nil
}

// Refresh reloads names, or every registered source when names is empty.
// Sources that fail keep their previous dataset.
func (s *service) Refresh(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		var err error
		names, err = s.loader.Registry().Names(ctx)
		if err != nil {
			return err
		}
	}

	results, err := s.loader.FetchAll(ctx, names)
	if err != nil {
		return err
	}

	errs := make([]error, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		s.datasets[r.Dataset.Name] = r.Dataset
	}
	return errors.Join(errs...)
}

func (s *service) sourceFor(page domain.Page, requested string) string {
	switch {
	case requested != "":
		return requested
	case page.Source != "":
		return page.Source
	default:
		return s.settings.DefaultSource
	}
}

func (s *service) text(key string, vars map[string]string) string {
	if key == "" {
		return ""
	}
	return content.ParseTemplate(s.texts.Get(key)).Text(s.displayVars(vars))
}

func lastOutcome(report domain.HydrationReport, key string) domain.Outcome {
	outcomes := report.For(key)
	if len(outcomes) == 0 {
		return domain.Outcome{Section: key, Severity: domain.SeverityOK}
	}
	worst := outcomes[0]
	for _, o := range outcomes[1:] {
		if rank(o.Severity) >= rank(worst.Severity) {
			worst = o
		}
	}
	return worst
}

func rank(s domain.Severity) int {
	switch s {
	case domain.SeverityError:
		return 2
	case domain.SeverityWarning:
		return 1
	default:
		return 0
	}
}
