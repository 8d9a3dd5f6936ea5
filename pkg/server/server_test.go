package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/resp-atlas/pkg/models/api"
	"github.com/de-tools/resp-atlas/pkg/models/domain"
	"github.com/de-tools/resp-atlas/pkg/services/content"
	"github.com/de-tools/resp-atlas/pkg/services/dashboard"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDashboard struct {
	mock.Mock
}

func (m *mockDashboard) ListPages(ctx context.Context) ([]domain.PageSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PageSummary), args.Error(1)
}

func (m *mockDashboard) ListSources(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDashboard) RenderPage(ctx context.Context, pageID string, req dashboard.Request) (domain.RenderedPage, error) {
	args := m.Called(ctx, pageID, req)
	return args.Get(0).(domain.RenderedPage), args.Error(1)
}

func (m *mockDashboard) ContentSection(ctx context.Context, file, title string) (content.Section, error) {
	args := m.Called(ctx, file, title)
	return args.Get(0).(content.Section), args.Error(1)
}

func (m *mockDashboard) Dataset(ctx context.Context, name string) (domain.Dataset, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Dataset), args.Error(1)
}

func (m *mockDashboard) Refresh(ctx context.Context, names ...string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockDash := new(mockDashboard)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Dashboard: mockDash,
			Logger:    logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	week := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	value := 2.5

	tests := []struct {
		name           string
		path           string
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "Health",
			path:           "/healthz",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			expected:       map[string]string{"status": "ok"},
			parseResponse:  unmarshalResponse[map[string]string](),
		},
		{
			name: "ListPages",
			path: "/api/v1/pages",
			setupMocks: func() {
				mockDash.On("ListPages", mock.Anything).
					Return([]domain.PageSummary{{ID: "rsv", Title: "RSV", Source: "weekly", Sections: []string{"overview"}}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected:       []api.PageSummary{{ID: "rsv", Title: "RSV", Source: "weekly", Sections: []string{"overview"}}},
			parseResponse:  unmarshalResponse[[]api.PageSummary](),
		},
		{
			name: "ListSources",
			path: "/api/v1/sources",
			setupMocks: func() {
				mockDash.On("ListSources", mock.Anything).Return([]string{"archive", "weekly"}, nil)
			},
			expectedStatus: http.StatusOK,
			expected:       []string{"archive", "weekly"},
			parseResponse:  unmarshalResponse[[]string](),
		},
		{
			name: "GetPage",
			path: "/api/v1/pages/rsv?source=weekly",
			setupMocks: func() {
				mockDash.On("RenderPage", mock.Anything, "rsv", dashboard.Request{
					Source: "weekly",
					Vars:   map[string]string{},
				}).Return(domain.RenderedPage{
					ID:        "rsv",
					Title:     "RSV",
					Source:    "weekly",
					DatasetID: "ds-9",
					Vars:      map[string]string{"virus": "RSV", "view": "visits"},
					Sections: []domain.RenderedSection{{
						ID:        "cases",
						Key:       "cases",
						Title:     "Lab-confirmed cases",
						ChartType: "bar",
						Kind:      domain.StrategySingleMetric,
						Series: []domain.SeriesRow{{
							SeriesPoint: domain.SeriesPoint{
								Row: domain.Row{
									Date:      week,
									DateValid: true,
									Metric:    "RSV lab-confirmed cases",
									Submetric: "Overall",
									Display:   domain.DisplayNumber,
									Value:     &value,
									ValueRaw:  "2.5",
								},
								Week: "2024-W01",
							},
						}},
						Outcome: domain.Outcome{Section: "cases", Severity: domain.SeverityOK},
					}},
					Report: domain.HydrationReport{RunID: "run-9", Page: "rsv"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.Page{
				ID:        "rsv",
				Title:     "RSV",
				Source:    "weekly",
				DatasetID: "ds-9",
				Vars:      map[string]string{"virus": "RSV", "view": "visits"},
				RunID:     "run-9",
				Outcomes:  []api.Outcome{},
				Sections: []api.Section{{
					ID:        "cases",
					Key:       "cases",
					Title:     "Lab-confirmed cases",
					ChartType: "bar",
					Kind:      "singleMetric",
					Series: []api.SeriesPoint{{
						Date:      "2024-01-06",
						Week:      "2024-W01",
						Metric:    "RSV lab-confirmed cases",
						Submetric: "Overall",
						Display:   domain.DisplayNumber,
						Value:     &value,
						ValueRaw:  "2.5",
					}},
					Status: "ok",
				}},
			},
			parseResponse: unmarshalResponse[api.Page](),
		},
		{
			name: "GetPage_UnknownSource",
			path: "/api/v1/pages/rsv?source=nightly",
			setupMocks: func() {
				mockDash.On("ListSources", mock.Anything).Return([]string{"archive", "weekly"}, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expected:       "unknown source: nightly\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name:           "GetPage_InvalidView",
			path:           "/api/v1/pages/rsv?view=icu",
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       "invalid 'view'. Expected one of: visits, hospitalizations\n",
			parseResponse: func(data []byte) (interface{}, error) {
				return string(data), nil
			},
		},
		{
			name: "GetContentSection",
			path: "/api/v1/content/about/Data%20notes",
			setupMocks: func() {
				mockDash.On("ContentSection", mock.Anything, "about", "Data notes").
					Return(content.Section{Title: "Data notes", HTML: "<p>Counts under 5 are suppressed.</p>\n"}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.ContentSection{
				File:  "about",
				Title: "Data notes",
				HTML:  "<p>Counts under 5 are suppressed.</p>\n",
			},
			parseResponse: unmarshalResponse[api.ContentSection](),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWebAPI_StartStopsOnCancel(t *testing.T) {
	webAPI := NewWebAPI(Config{
		Addr:            "127.0.0.1:0",
		ShutdownTimeout: time.Second,
		Dependencies: Dependencies{
			Dashboard: new(mockDashboard),
			Logger:    zerolog.Nop(),
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- webAPI.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
