package survey

import (
	"fmt"
	"strings"
)

// JoinScope controls when response rows are joined against the office directory.
type JoinScope int

const (
	// JoinAlways inner-joins every query, dropping rows whose office is unknown.
	JoinAlways JoinScope = iota
	// JoinWhenFiltered joins only when a category filter is requested.
	JoinWhenFiltered
)

// ParseJoinScope maps a config value ("always", "filtered") to a JoinScope.
func ParseJoinScope(s string) (JoinScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return JoinAlways, nil
	case "filtered":
		return JoinWhenFiltered, nil
	default:
		return JoinAlways, fmt.Errorf("unknown join scope %q", s)
	}
}

func (j JoinScope) String() string {
	if j == JoinWhenFiltered {
		return "filtered"
	}
	return "always"
}

// Table addresses one worksheet inside a named workbook.
type Table struct {
	Workbook string
	Sheet    string
}

func (t Table) String() string {
	return t.Workbook + "/" + t.Sheet
}

// Directory describes the office directory sheet and its columns.
type Directory struct {
	Table         Table
	RegionColumn  string
	CapitalColumn string
	CodeColumn    string
}

// Question pairs a spreadsheet column with the label drawn on the chart axis.
type Question struct {
	Column string
	Label  string
}

// Dataset is one survey source. Questions are kept in canonical order and the
// same order is used for aggregation and rendering.
type Dataset struct {
	Name         string
	Title        string
	Responses    Table
	Directory    *Directory
	OfficeColumn string
	DateColumn   string
	Questions    []Question
	BandColors   [4]string
	JoinScope    JoinScope
}

// Key is the lower-cased dataset name used in URLs and file names.
func (d Dataset) Key() string {
	return strings.ToLower(d.Name)
}

// Labels returns the axis labels in question order.
func (d Dataset) Labels() []string {
	out := make([]string, len(d.Questions))
	for i, q := range d.Questions {
		out[i] = q.Label
	}
	return out
}

// HasDirectory reports whether rows of this dataset carry an office code.
func (d Dataset) HasDirectory() bool {
	return d.Directory != nil
}

const (
	workbookColectivas = "EVALUACIONES COLECTIVAS"
	workbookTransporte = "BD TRANSPORTE"
)

// AgenciesDirectory is the office directory shared by the Serviplus survey.
var AgenciesDirectory = Directory{
	Table:         Table{Workbook: workbookColectivas, Sheet: "AGENCIAS"},
	RegionColumn:  "REGIÓN",
	CapitalColumn: "CAPITAL",
	CodeColumn:    "CODIGO",
}

func questions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		label := fmt.Sprintf("Pregunta %d", i+1)
		qs[i] = Question{Column: label, Label: label}
	}
	return qs
}

// Serviplus returns the office-joined customer survey.
func Serviplus() Dataset {
	dir := AgenciesDirectory
	return Dataset{
		Name:         "Serviplus",
		Title:        "Satisfacción del Cliente Serviplus",
		Responses:    Table{Workbook: workbookColectivas, Sheet: "SATISFACCION CLIENTE"},
		Directory:    &dir,
		OfficeColumn: "OFICINA",
		DateColumn:   "FECHA",
		Questions:    questions(6),
		BandColors:   [4]string{"#E05666", "#E3787B", "#E09498", "#E0B2A3"},
		JoinScope:    JoinAlways,
	}
}

// Transporte returns the transport survey, which has no office dimension.
func Transporte() Dataset {
	return Dataset{
		Name:       "Transporte",
		Title:      "Evaluación Satisfacción del Cliente Transporte",
		Responses:  Table{Workbook: workbookTransporte, Sheet: "SATISFACCION DEL CLIENTE"},
		DateColumn: "FECHA",
		Questions:  questions(7),
		BandColors: [4]string{"#283593", "#303F9F", "#3949AB", "#3F51B5"},
	}
}

// Catalog is an ordered, read-only set of datasets.
type Catalog struct {
	datasets []Dataset
}

// NewCatalog builds a catalog preserving the given display order.
func NewCatalog(datasets ...Dataset) *Catalog {
	return &Catalog{datasets: datasets}
}

// DefaultCatalog returns Serviplus and Transporte with the given join scope
// applied to every dataset that has a directory.
func DefaultCatalog(scope JoinScope) *Catalog {
	sp := Serviplus()
	sp.JoinScope = scope
	return NewCatalog(sp, Transporte())
}

// Lookup finds a dataset by case-insensitive name.
func (c *Catalog) Lookup(name string) (Dataset, bool) {
	name = strings.TrimSpace(name)
	for _, d := range c.datasets {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return Dataset{}, false
}

// Names returns dataset names in display order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.datasets))
	for i, d := range c.datasets {
		out[i] = d.Name
	}
	return out
}

// Tables lists every table referenced by the catalog, deduplicated.
func (c *Catalog) Tables() []Table {
	seen := make(map[Table]bool)
	var out []Table
	add := func(t Table) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, d := range c.datasets {
		add(d.Responses)
		if d.Directory != nil {
			add(d.Directory.Table)
		}
	}
	return out
}
