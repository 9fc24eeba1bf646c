package apperrors

import "errors"

var (
	ErrQueryNotFound    = errors.New("query not found")
	ErrConnNotFound     = errors.New("connection not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrMultipleStmts    = errors.New("query must render to exactly one statement")
	ErrUnsafeValue      = errors.New("parameter value rejected by injection scan")
)
