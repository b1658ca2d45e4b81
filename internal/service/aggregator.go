package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/satisfaction-radar/internal/repository"
	"github.com/godilite/satisfaction-radar/internal/repository/models"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

const (
	fetchTimeout = 15 * time.Second
)

// Aggregator averages survey answers per question.
type Aggregator struct {
	catalog *survey.Catalog
	storage SurveyRepository
	logger  *zap.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(catalog *survey.Catalog, storage SurveyRepository, logger *zap.Logger) *Aggregator {
	if catalog == nil {
		panic("catalog must not be nil")
	}
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &Aggregator{
		catalog: catalog,
		storage: storage,
		logger:  logger,
	}
}

// Dataset resolves a dataset by name.
func (a *Aggregator) Dataset(name string) (survey.Dataset, error) {
	ds, ok := a.catalog.Lookup(name)
	if !ok {
		return survey.Dataset{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return ds, nil
}

// Datasets returns dataset names in display order.
func (a *Aggregator) Datasets() []string {
	return a.catalog.Names()
}

// Aggregate returns the per-question means of the rows matching q. It fails
// with *NoDataForFilterError when no row survives the filters.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (ScoreVector, error) {
	q = q.Normalize()

	ds, err := a.Dataset(q.Dataset)
	if err != nil {
		return ScoreVector{}, err
	}
	if q.Month < 0 || q.Month > 12 {
		return ScoreVector{}, fmt.Errorf("%w: month %d out of range 1-12", ErrInvalidFilter, q.Month)
	}
	if q.Category != "" && !ds.HasDirectory() {
		return ScoreVector{}, fmt.Errorf("%w: dataset %s has no category dimension", ErrInvalidFilter, ds.Name)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	responses, err := a.storage.ListResponses(fetchCtx, ds)
	if err != nil {
		return ScoreVector{}, storageError(err)
	}

	if ds.HasDirectory() && (ds.JoinScope == survey.JoinAlways || q.Category != "") {
		offices, err := a.storage.ListOffices(fetchCtx, *ds.Directory)
		if err != nil {
			return ScoreVector{}, storageError(err)
		}
		responses = filterByCategory(join(responses, offices), q.Category)
	}

	if q.Month != 0 {
		responses = filterByMonth(responses, q.Month)
	}

	noData := &NoDataForFilterError{Dataset: ds.Name, Category: q.Category, Month: q.Month}
	if len(responses) == 0 {
		a.logger.Info("no rows for filter",
			zap.String("dataset", ds.Name),
			zap.String("category", q.Category),
			zap.Int("month", q.Month))
		return ScoreVector{}, noData
	}

	values, err := means(responses, ds.Questions)
	if err != nil {
		var missing *missingQuestionError
		if errors.As(err, &missing) {
			noData.Question = missing.label
			return ScoreVector{}, noData
		}
		return ScoreVector{}, err
	}

	a.logger.Info("aggregated scores",
		zap.String("dataset", ds.Name),
		zap.String("category", q.Category),
		zap.Int("month", q.Month),
		zap.Int("rows", len(responses)),
		zap.Float64s("means", values))

	return ScoreVector{
		Dataset: ds.Name,
		Labels:  ds.Labels(),
		Values:  values,
		Rows:    len(responses),
	}, nil
}

// Categories lists the distinct capitals of a dataset's office directory,
// sorted. Datasets without a directory have none.
func (a *Aggregator) Categories(ctx context.Context, dataset string) ([]string, error) {
	ds, err := a.Dataset(dataset)
	if err != nil {
		return nil, err
	}
	if !ds.HasDirectory() {
		return []string{}, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	offices, err := a.storage.ListOffices(fetchCtx, *ds.Directory)
	if err != nil {
		return nil, storageError(err)
	}

	seen := make(map[string]bool, len(offices))
	out := make([]string, 0, len(offices))
	for _, o := range offices {
		if o.Capital == "" || seen[o.Capital] {
			continue
		}
		seen[o.Capital] = true
		out = append(out, o.Capital)
	}
	sort.Strings(out)
	return out, nil
}

func storageError(err error) error {
	if errors.Is(err, repository.ErrSchemaMismatch) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDataSourceUnavailable, err)
}

// join keeps the responses whose office code is in the directory.
func join(responses []models.Response, offices []models.Office) []models.JoinedResponse {
	byCode := make(map[string]models.Office, len(offices))
	for _, o := range offices {
		byCode[o.Code] = o
	}

	out := make([]models.JoinedResponse, 0, len(responses))
	for _, r := range responses {
		if o, ok := byCode[r.OfficeCode]; ok {
			out = append(out, models.JoinedResponse{Response: r, Office: o})
		}
	}
	return out
}

func filterByCategory(rows []models.JoinedResponse, capital string) []models.Response {
	out := make([]models.Response, 0, len(rows))
	for _, r := range rows {
		if capital == "" || r.Office.Capital == capital {
			out = append(out, r.Response)
		}
	}
	return out
}

func filterByMonth(rows []models.Response, month int) []models.Response {
	out := make([]models.Response, 0, len(rows))
	for _, r := range rows {
		if int(r.Date.Month()) == month {
			out = append(out, r)
		}
	}
	return out
}

type missingQuestionError struct {
	label string
}

func (e *missingQuestionError) Error() string {
	return fmt.Sprintf("no answers for %q", e.label)
}

// means averages each question over the rows that answered it. Empty cells
// are left out of that question's denominator only.
func means(rows []models.Response, questions []survey.Question) ([]float64, error) {
	out := make([]float64, len(questions))
	for j, q := range questions {
		var sum float64
		var n int
		lo, hi := 0.0, 0.0
		for _, r := range rows {
			s := r.Scores[j]
			if !s.Valid {
				continue
			}
			if n == 0 || s.Float64 < lo {
				lo = s.Float64
			}
			if n == 0 || s.Float64 > hi {
				hi = s.Float64
			}
			sum += s.Float64
			n++
		}
		if n == 0 {
			return nil, &missingQuestionError{label: q.Label}
		}

		// float summation can land a hair outside the inputs' range
		mean := sum / float64(n)
		out[j] = min(max(mean, lo), hi)
	}
	return out, nil
}
