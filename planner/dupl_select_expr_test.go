/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"testing"

	"github.com/radondb/qplan/parser"
	"github.com/radondb/qplan/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestFindDuplicates(t *testing.T) {
	querys := []string{
		"select sum(pm_declErr), f1, f1, avg(pm_declErr) from Object",
		"select a, b as A, c, a from t",
		"select *, * from t",
		"select a, b, c from t",
	}
	results := [][]Duplicate{
		{{Name: "f1", Positions: []int{2, 3}}},
		{{Name: "a", Positions: []int{1, 2, 4}}},
		nil,
		nil,
	}
	for i, q := range querys {
		stmt, err := parser.Parse(q)
		require.Nil(t, err, q)
		assert.Equal(t, results[i], FindDuplicates(stmt.SelectList), q)
	}
}

func TestDuplSelectExprPlugin(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	p := NewDuplSelectExprPlugin(log)
	ctx := query.NewQueryContext(log, "LSST", nil)

	stmt, err := parser.Parse("select sum(pm_declErr), f1, f1, avg(pm_declErr) from Object")
	require.Nil(t, err)
	err = p.ApplyLogical(stmt, ctx)
	assert.NotNil(t, err)
	assert.Equal(t, query.ErrKindAnalysis, query.KindOf(err))
	assert.Equal(t, "Duplicate names detected in select expression, rewrite SQL query using alias: - f1 at positions: 2 3", err.Error())

	stmt, err = parser.Parse("select f1, f1 as f2 from Object")
	require.Nil(t, err)
	assert.Nil(t, p.ApplyLogical(stmt, ctx))
}
