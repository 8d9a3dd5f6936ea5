package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/pages"
	"github.com/de-tools/resp-atlas/pkg/services/content"
	"github.com/de-tools/resp-atlas/pkg/services/filter"
	"github.com/de-tools/resp-atlas/pkg/services/hydrate"
	"github.com/de-tools/resp-atlas/pkg/services/normalize"
	"github.com/de-tools/resp-atlas/pkg/services/source"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(date, metric, sub, display, value string) domain.Row {
	return normalize.NormalizeRecord(map[string]string{
		"date": date, "metric": metric, "submetric": sub, "display": display, "value": value,
	})
}

func weeklyRows() []domain.Row {
	return []domain.Row{
		row("2024-01-08", "COVID-19 visits", "Overall", "Percent", "12"),
		row("2024-01-01", "COVID-19 visits", "Overall", "Percent", "10"),
		row("2024-01-01", "COVID-19 hospitalizations", "Overall", "Percent", "1.0"),
		row("2024-01-08", "COVID-19 hospitalizations", "Overall", "Percent", "1.0"),
		row("2024-01-01", "COVID-19 visits by age group", "0-4", "Percent", "0"),
		row("2024-01-01", "COVID-19 visits by age group", "65+", "Percent", "10"),
		row("2024-01-08", "COVID-19 visits by age group", "0-4", "Percent", "<5"),
	}
}

type fixture struct {
	svc   Service
	loads *int32
}

func setupFixture(t *testing.T) fixture {
	var loads int32
	reg := source.StaticRegistry{
		{Name: "weekly", Kind: source.KindFile, Path: "weekly.csv"},
		{Name: "down", Kind: source.KindFile, Path: "down.csv"},
	}
	factory := func(ctx context.Context, cfg source.Config) (source.Source, error) {
		return source.SourceFunc(func(ctx context.Context) ([]domain.Row, error) {
			atomic.AddInt32(&loads, 1)
			if cfg.Name == "down" {
				return nil, errors.New("connection refused")
			}
			return weeklyRows(), nil
		}), nil
	}

	catalog, err := pages.NewCatalog(pages.Builtin()...)
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"about.md": &fstest.MapFile{Data: []byte("## Data notes\n\nCounts under 5 are suppressed.\n")},
	}

	svc := NewService(
		catalog,
		pages.DefaultTexts(),
		source.NewLoader(reg, factory),
		hydrate.New(filter.NewFilterer(filter.NewLRU(32))),
		content.NewLoader(fsys),
		Settings{},
	)
	return fixture{svc: svc, loads: &loads}
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func section(t *testing.T, p domain.RenderedPage, id string) domain.RenderedSection {
	for _, s := range p.Sections {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("section %s not rendered", id)
	return domain.RenderedSection{}
}

func TestRenderPage_Covid(t *testing.T) {
	f := setupFixture(t)

	// When
	page, err := f.svc.RenderPage(testContext(t), "covid", Request{})

	// Then
	require.NoError(t, err)
	assert.Equal(t, "COVID-19", page.Title)
	assert.Equal(t, "weekly", page.Source)
	assert.NotEmpty(t, page.DatasetID)
	assert.Equal(t, "COVID-19", page.Vars["virus"])
	assert.Equal(t, domain.ViewVisits, page.Vars["view"])

	overview := section(t, page, "overview")
	assert.Equal(t, "Percent of emergency department visits due to COVID-19", overview.Title)
	require.NotNil(t, overview.Trend)
	assert.Equal(t, domain.TrendIncreased, overview.Trend.Label)
	assert.Equal(t, "20%", overview.Trend.Value)
	assert.Contains(t, overview.Sentence, "<strong>COVID-19</strong>")
	assert.Contains(t, overview.Sentence, "have increased by 20% from the previous week")
	require.Len(t, overview.Series, 2)
	assert.Equal(t, "2024-W01", overview.Series[0].Week)
	assert.Equal(t, "COVID visits", overview.Series[0].Label)
	assert.Equal(t, domain.SeverityOK, overview.Outcome.Severity)

	views := section(t, page, "views")
	require.Len(t, views.Views, 2)
	assert.Equal(t, domain.TrendNotChanged, views.Trends[domain.ViewHospitalizations].Label)
	assert.Equal(t, "20%", views.Trends[domain.ViewVisits].Value)

	age := section(t, page, "age")
	require.Len(t, age.Groups, 2)
	assert.Equal(t, "0-4", age.Groups[0].Key)
	require.NotNil(t, age.Domain)
	assert.Equal(t, -0.5, age.Domain.Min, "padding is not clamped at zero")
	assert.Equal(t, 10.5, age.Domain.Max)
	assert.Nil(t, age.Trend)

	deaths := section(t, page, "deaths")
	assert.Equal(t, domain.SeverityWarning, deaths.Outcome.Severity)
	assert.Empty(t, deaths.Series)
	assert.True(t, page.Report.OK())
}

func TestRenderPage_VarsOverrideDefaults(t *testing.T) {
	f := setupFixture(t)

	page, err := f.svc.RenderPage(testContext(t), "covid", Request{Vars: map[string]string{"view": "hospitalizations"}})
	require.NoError(t, err)

	overview := section(t, page, "overview")
	require.NotNil(t, overview.Trend)
	assert.Equal(t, domain.TrendNotChanged, overview.Trend.Label)
	assert.Contains(t, overview.Sentence, "hospitalizations have not changed")
}

func TestRenderPage_FetchFailureDegrades(t *testing.T) {
	f := setupFixture(t)

	page, err := f.svc.RenderPage(testContext(t), "covid", Request{Source: "down"})
	require.NoError(t, err)

	assert.False(t, page.Report.OK())
	errs := page.Report.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `fetch source "down"`)
	for _, s := range page.Sections {
		assert.Empty(t, s.Series, s.ID)
		assert.Equal(t, domain.SeverityWarning, s.Outcome.Severity, s.ID)
	}
}

func TestRenderPage_UnknownPage(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.RenderPage(testContext(t), "measles", Request{})
	assert.True(t, errors.Is(err, pages.ErrPageNotFound))
}

func TestDataset_CachedUntilRefresh(t *testing.T) {
	f := setupFixture(t)
	ctx := testContext(t)

	first, err := f.svc.Dataset(ctx, "weekly")
	require.NoError(t, err)
	again, err := f.svc.Dataset(ctx, "weekly")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.loads))

	err = f.svc.Refresh(ctx)
	require.Error(t, err, "the down source fails")

	refreshed, err := f.svc.Dataset(ctx, "weekly")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, refreshed.ID)

	_, err = f.svc.Dataset(ctx, "down")
	assert.Error(t, err)
}

func TestListPages(t *testing.T) {
	f := setupFixture(t)

	list, err := f.svc.ListPages(testContext(t))
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "ari", list[0].ID)
	assert.Equal(t, "Acute respiratory illness", list[0].Title)
	assert.Equal(t, "COVID-19 activity in New York City, by week", list[1].Subtitle)
	assert.Contains(t, list[2].Sections, "subtypes")
}

func TestContentSection(t *testing.T) {
	f := setupFixture(t)

	s, err := f.svc.ContentSection(testContext(t), "about", "data notes")
	require.NoError(t, err)
	assert.Contains(t, s.HTML, "suppressed")

	_, err = f.svc.ContentSection(testContext(t), "about", "missing")
	assert.True(t, errors.Is(err, content.ErrSectionNotFound))
}

func TestBuildReport(t *testing.T) {
	f := setupFixture(t)

	page, err := f.svc.RenderPage(testContext(t), "covid", Request{})
	require.NoError(t, err)

	report := BuildReport(page)
	assert.Equal(t, "COVID-19", report.Title)
	assert.Equal(t, 2, report.Period.Weeks)
	assert.Equal(t, "2024-01-01", report.Period.Start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-08", report.Period.End.Format("2006-01-02"))
	require.Len(t, report.Sections, len(page.Sections))

	overview := report.Sections[0]
	assert.Equal(t, "Latest value has increased by 20% from the previous week", overview.Sentence)
	require.Len(t, overview.Details, 1)
	assert.Equal(t, 12.0, overview.Details[0].Value)
	assert.Equal(t, "%", overview.Details[0].Unit)

	views := report.Sections[1]
	require.Len(t, views.Details, 2)
	assert.Equal(t, "visits", views.Details[0].Name)
	assert.Contains(t, views.Details[0].Description, "increased by 20%")

	age := report.Sections[2]
	require.Len(t, age.Details, 2)
	assert.Equal(t, "0-4", age.Details[0].Name)
	assert.Equal(t, 0.0, age.Details[0].Value, "the suppressed week has no value")
}

func TestListSources(t *testing.T) {
	f := setupFixture(t)

	names, err := f.svc.ListSources(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"weekly", "down"}, names)
}
