/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/sqldb"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind ErrorKind
		str  string
	}{
		{nil, ErrKindNone, "none"},
		{NewAnalysisError("Duplicate names: %s", "f1"), ErrKindAnalysis, "analysis"},
		{errors.Wrap(NewAnalysisError("x"), "plugin"), ErrKindAnalysis, "analysis"},
		{NewLogicError("Duplicate table alias"), ErrKindLogic, "logic"},
		{&ParseError{Err: errors.New("syntax error at position 7")}, ErrKindParse, "parse"},
		{sqldb.NewSQLError(sqldb.ER_NO_SUCH_TABLE, "LSST.Nope"), ErrKindCatalog, "catalog"},
		{sqldb.NewSQLError(sqldb.ER_BAD_DB_ERROR, "Nope"), ErrKindCatalog, "catalog"},
		{errors.WithStack(sqldb.NewSQLError(sqldb.ER_SYNTAX_ERROR, "x")), ErrKindParse, "parse"},
		{errors.New("boom"), ErrKindInternal, "internal"},
	}
	for _, test := range tests {
		assert.Equal(t, test.kind, KindOf(test.err))
		assert.Equal(t, test.str, KindOf(test.err).String())
	}

	assert.Equal(t, "Duplicate names: f1", NewAnalysisError("Duplicate names: %s", "f1").Error())
	assert.Equal(t, "syntax error at position 7", (&ParseError{Err: errors.New("syntax error at position 7")}).Error())
}
