package models

import "errors"

// Fatal lookup failures: the only errors that fail a whole run.
var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrSubjectNotFound = errors.New("subject not found")
)
