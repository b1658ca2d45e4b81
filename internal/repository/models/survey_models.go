package models

import (
	"database/sql"
	"time"
)

type Office struct {
	Code    string
	Region  string
	Capital string
}

// Response is one survey answer row. Scores follow the dataset's question
// order; a score is invalid when the cell was left empty.
type Response struct {
	Row        int
	OfficeCode string
	Date       time.Time
	Scores     []sql.NullFloat64
}

type JoinedResponse struct {
	Response
	Office Office
}
