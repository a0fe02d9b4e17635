/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqldb"
)

// AnalysisError is a valid but unsupported query, the message is user facing.
type AnalysisError struct {
	Msg string
}

// NewAnalysisError creates an AnalysisError.
func NewAnalysisError(format string, args ...interface{}) error {
	return errors.WithStack(&AnalysisError{Msg: fmt.Sprintf(format, args...)})
}

// Error implements error.
func (e *AnalysisError) Error() string {
	return e.Msg
}

// LogicError is a planner invariant violation.
type LogicError struct {
	Msg string
}

// NewLogicError creates a LogicError.
func NewLogicError(format string, args ...interface{}) error {
	return errors.WithStack(&LogicError{Msg: fmt.Sprintf(format, args...)})
}

// Error implements error.
func (e *LogicError) Error() string {
	return e.Msg
}

// ParseError carries the parser's error unchanged.
type ParseError struct {
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	return e.Err.Error()
}

// ErrorKind classifies planning failures.
type ErrorKind int

const (
	// ErrKindNone means no error.
	ErrKindNone ErrorKind = iota
	// ErrKindAnalysis is a user-facing unsupported query.
	ErrKindAnalysis
	// ErrKindCatalog is an unknown database or table.
	ErrKindCatalog
	// ErrKindLogic is a planner defect.
	ErrKindLogic
	// ErrKindParse comes from the SQL parser.
	ErrKindParse
	// ErrKindInternal is anything else.
	ErrKindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindNone:
		return "none"
	case ErrKindAnalysis:
		return "analysis"
	case ErrKindCatalog:
		return "catalog"
	case ErrKindLogic:
		return "logic"
	case ErrKindParse:
		return "parse"
	}
	return "internal"
}

// KindOf returns the kind of err, looking through pkg/errors wrappers.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrKindNone
	}
	switch e := errors.Cause(err).(type) {
	case *AnalysisError:
		return ErrKindAnalysis
	case *LogicError:
		return ErrKindLogic
	case *ParseError:
		return ErrKindParse
	case *sqldb.SQLError:
		switch e.Num {
		case sqldb.ER_BAD_DB_ERROR, sqldb.ER_NO_SUCH_TABLE, sqldb.ER_NO_DB_ERROR:
			return ErrKindCatalog
		case sqldb.ER_SYNTAX_ERROR:
			return ErrKindParse
		}
	}
	return ErrKindInternal
}
