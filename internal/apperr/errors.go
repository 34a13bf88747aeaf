package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidTaxonomy = errors.New("invalid taxonomy config")
	ErrTagIssues       = errors.New("tag issues found")
)
