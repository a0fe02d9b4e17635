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

	"github.com/radondb/qplan/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePlugin(t *testing.T) {
	querys := []string{
		"select objectId, count(*), avg(flux) as f from Source group by objectId",
		"select objectId, count(*) as n from Source group by objectId having count(*) > 2",
		"select min(flux), max(flux), sum(flux) as s from Source",
	}
	parallels := []string{
		"SELECT `LSST.Source`.objectId AS `objectId`, COUNT(*) AS `QS1_COUNT`, COUNT(`LSST.Source`.flux) AS `QS2_COUNT`, SUM(`LSST.Source`.flux) AS `QS3_SUM` FROM LSST.Source_%CC% AS `LSST.Source` GROUP BY objectId",
		"SELECT `LSST.Source`.objectId AS `objectId`, COUNT(*) AS `QS1_COUNT` FROM LSST.Source_%CC% AS `LSST.Source` GROUP BY objectId",
		"SELECT MIN(`LSST.Source`.flux) AS `QS1_MIN`, MAX(`LSST.Source`.flux) AS `QS2_MAX`, SUM(`LSST.Source`.flux) AS `QS3_SUM` FROM LSST.Source_%CC% AS `LSST.Source`",
	}
	merges := []string{
		"SELECT objectId AS `objectId`, SUM(QS1_COUNT) AS `COUNT(*)`, (SUM(QS3_SUM) / SUM(QS2_COUNT)) AS `f` GROUP BY objectId",
		"SELECT objectId AS `objectId`, SUM(QS1_COUNT) AS `n` GROUP BY objectId HAVING SUM(QS1_COUNT) > 2",
		"SELECT MIN(QS1_MIN) AS `MIN(flux)`, MAX(QS2_MAX) AS `MAX(flux)`, SUM(QS3_SUM) AS `s`",
	}
	for i, q := range querys {
		plan, ctx, err := planQuery(t, q)
		require.Nil(t, err, q)
		assert.Equal(t, []string{parallels[i]}, parallelStrings(plan), q)
		assert.Equal(t, merges[i], plan.Merge.String(), q)
		assert.True(t, ctx.HasAggregate, q)
		assert.True(t, ctx.NeedsMerge, q)
		assert.True(t, plan.HasMerge, q)
	}
}

func TestAggregatePluginNoAggregate(t *testing.T) {
	plan, ctx, err := planQuery(t, "select objectId from Source")
	require.Nil(t, err)
	assert.False(t, ctx.HasAggregate)
	assert.False(t, plan.HasMerge)
}

func TestAggregatePluginErrors(t *testing.T) {
	querys := []string{
		"select count(distinct objectId) from Source",
		"select avg(distinct flux) from Source",
		"select std(flux) from Source",
		"select count(*) from Source group by flux + 1",
		"select count(*) as n from Source having max(flux) > 1",
	}
	for _, q := range querys {
		_, _, err := planQuery(t, q)
		assert.NotNil(t, err, q)
		assert.Equal(t, query.ErrKindAnalysis, query.KindOf(err), q)
	}
}
