package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoDataForFilter       = errors.New("no data for filter")
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	ErrUnknownDataset        = errors.New("unknown dataset")
	ErrInvalidFilter         = errors.New("invalid filter")
)

// NoDataForFilterError carries the filter values that matched no rows.
// Question is set when rows matched but one question had no answers.
type NoDataForFilterError struct {
	Dataset  string
	Category string
	Month    int
	Question string
}

func (e *NoDataForFilterError) Error() string {
	category := e.Category
	if category == "" {
		category = "None"
	}
	msg := fmt.Sprintf("no data for dataset=%s category=%s month=%d", e.Dataset, category, e.Month)
	if e.Question != "" {
		msg += fmt.Sprintf(" question=%q", e.Question)
	}
	return msg
}

func (e *NoDataForFilterError) Is(target error) bool {
	return target == ErrNoDataForFilter
}
