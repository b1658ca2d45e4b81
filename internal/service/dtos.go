package service

import (
	"strings"

	"github.com/godilite/satisfaction-radar/internal/render"
)

// AllCategories is the selector value meaning "no category filter".
const AllCategories = "Todas"

// Query selects a dataset and optional filters. An empty Category and a zero
// Month mean "no filter".
type Query struct {
	Dataset  string
	Category string
	Month    int
}

// Normalize trims fields and folds the "all categories" selector into "".
func (q Query) Normalize() Query {
	q.Dataset = strings.TrimSpace(q.Dataset)
	q.Category = strings.TrimSpace(q.Category)
	if strings.EqualFold(q.Category, AllCategories) || strings.EqualFold(q.Category, "None") {
		q.Category = ""
	}
	return q
}

// ScoreVector holds one mean per question. Labels[i] names Values[i].
type ScoreVector struct {
	Dataset string    `json:"dataset"`
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Rows    int       `json:"rows"`
}

type Report struct {
	Query    Query
	Scores   ScoreVector
	Chart    *render.Chart
	Filename string
}
