package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/satisfaction-radar/internal/http/mocks"
	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/repository"
	"github.com/godilite/satisfaction-radar/internal/service"
)

var fakePNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newMockReports() *mocks.MockReportService {
	return &mocks.MockReportService{
		DatasetsFunc: func() []string { return []string{"Serviplus", "Transporte"} },
		CategoriesFunc: func(ctx context.Context, dataset string) ([]string, error) {
			if dataset == "Transporte" {
				return []string{}, nil
			}
			return []string{"Arequipa", "Lima"}, nil
		},
		GenerateFunc: func(ctx context.Context, q service.Query) (*service.Report, error) {
			return &service.Report{
				Query:    q,
				Chart:    &render.Chart{PNG: fakePNG},
				Filename: service.ExportFilename(q.Dataset, q.Category, q.Month),
			}, nil
		},
	}
}

func newTestRouter(t *testing.T, reports ReportService) http.Handler {
	t.Helper()
	router, err := NewRouter(reports, zaptest.NewLogger(t), []string{"*"})
	require.NoError(t, err)
	return router
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	router := newTestRouter(t, newMockReports())

	rec := get(t, router, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<option value="Serviplus" selected>`)
	assert.Contains(t, body, `<option value="Todas">Todas</option>`)
	assert.Contains(t, body, `<option value="Lima">`)
	assert.NotContains(t, body, "<img")
}

func TestReport(t *testing.T) {
	t.Run("renders inline chart and download link", func(t *testing.T) {
		var got service.Query
		reports := newMockReports()
		generate := reports.GenerateFunc
		reports.GenerateFunc = func(ctx context.Context, q service.Query) (*service.Report, error) {
			got = q
			return generate(ctx, q)
		}
		router := newTestRouter(t, reports)

		rec := get(t, router, "/report?dataset=Serviplus&category=Todas&month=5")
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, service.Query{Dataset: "Serviplus", Month: 5}, got)
		body := rec.Body.String()
		assert.Contains(t, body, `src="data:image/png;base64,iVBORw0KGgo="`)
		assert.Contains(t, body, `download="satisfaction_serviplus_None_month_5.png"`)
		assert.Contains(t, body, `href="/report.png?category=Todas&amp;dataset=Serviplus&amp;month=5"`)
		assert.Contains(t, body, `<option value="5" selected>`)
	})

	t.Run("no data shows warning without chart", func(t *testing.T) {
		reports := newMockReports()
		reports.GenerateFunc = func(ctx context.Context, q service.Query) (*service.Report, error) {
			return nil, &service.NoDataForFilterError{Dataset: q.Dataset, Month: q.Month}
		}
		router := newTestRouter(t, reports)

		rec := get(t, router, "/report?dataset=Transporte&category=Todas&month=1")
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, `class="warning"`)
		assert.Contains(t, body, "mes 1")
		assert.NotContains(t, body, "<img")
		assert.NotContains(t, body, "/report.png")
	})

	t.Run("month required", func(t *testing.T) {
		router := newTestRouter(t, newMockReports())

		rec := get(t, router, "/report?dataset=Serviplus")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "month is required")
	})

	t.Run("data source failure", func(t *testing.T) {
		reports := newMockReports()
		reports.GenerateFunc = func(ctx context.Context, q service.Query) (*service.Report, error) {
			return nil, fmt.Errorf("%w: workbook locked", service.ErrDataSourceUnavailable)
		}
		router := newTestRouter(t, reports)

		rec := get(t, router, "/report?dataset=Serviplus&month=2")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "data source unavailable")
		assert.NotContains(t, rec.Body.String(), "workbook locked")
	})
}

func TestDownload(t *testing.T) {
	t.Run("serves png attachment", func(t *testing.T) {
		router := newTestRouter(t, newMockReports())

		rec := get(t, router, "/report.png?dataset=Serviplus&category=Lima&month=5")
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=satisfaction_serviplus_Lima_month_5.png", rec.Header().Get("Content-Disposition"))
		assert.Equal(t, fakePNG, rec.Body.Bytes())
	})

	t.Run("no data is not downloadable", func(t *testing.T) {
		reports := newMockReports()
		reports.GenerateFunc = func(ctx context.Context, q service.Query) (*service.Report, error) {
			return nil, &service.NoDataForFilterError{Dataset: q.Dataset, Month: q.Month}
		}
		router := newTestRouter(t, reports)

		rec := get(t, router, "/report.png?dataset=Transporte&month=1")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})

	t.Run("invalid month", func(t *testing.T) {
		router := newTestRouter(t, newMockReports())

		rec := get(t, router, "/report.png?dataset=Serviplus&month=13")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestJSONEndpoints(t *testing.T) {
	router := newTestRouter(t, newMockReports())

	t.Run("datasets", func(t *testing.T) {
		rec := get(t, router, "/api/datasets")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Datasets []string `json:"datasets"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, []string{"Serviplus", "Transporte"}, body.Datasets)
	})

	t.Run("categories", func(t *testing.T) {
		rec := get(t, router, "/api/categories?dataset=Serviplus")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Categories []string `json:"categories"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, []string{"Arequipa", "Lima"}, body.Categories)
	})

	t.Run("categories without dataset", func(t *testing.T) {
		rec := get(t, router, "/api/categories")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("categories unknown dataset", func(t *testing.T) {
		reports := newMockReports()
		reports.CategoriesFunc = func(ctx context.Context, dataset string) ([]string, error) {
			return nil, fmt.Errorf("%w: %s", service.ErrUnknownDataset, dataset)
		}
		rec := get(t, newTestRouter(t, reports), "/api/categories?dataset=Nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStaticAndHealth(t *testing.T) {
	router := newTestRouter(t, newMockReports())

	rec := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = get(t, router, "/static/main.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "form.selection")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.NoDataForFilterError{Dataset: "Serviplus"}, http.StatusNotFound},
		{fmt.Errorf("%w: month 0", service.ErrInvalidFilter), http.StatusBadRequest},
		{fmt.Errorf("%w: x", service.ErrUnknownDataset), http.StatusBadRequest},
		{fmt.Errorf("%w: x", service.ErrDataSourceUnavailable), http.StatusServiceUnavailable},
		{&repository.SchemaMismatchError{Table: "t", Column: "c"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServerLifecycle(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv, err := New(newMockReports(), WithListener(lis), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	srv.Start()

	resp, err := http.Get("http://" + srv.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
