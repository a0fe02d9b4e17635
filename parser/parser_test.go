/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package parser

import (
	"testing"

	"github.com/radondb/qplan/query"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRender(t *testing.T) {
	querys := []string{
		"SELECT * FROM Object WHERE someField > 5.0",
		"select objectId, ra_PS as ra from LSST.Object o where o.flux_g between 1 and 2 and o.objectId in (1, 2, 3) order by ra desc limit 10",
		"select o1.objectId from Object o1 join Object o2 on o1.objectId = o2.objectId",
		"select s.flux from Object o left join Source s on o.objectId = s.objectId",
		"select * from Object where scisql_angSep(ra_PS, decl_PS, 1.5, -2.5) < 0.1",
		"select count(*), avg(flux) as f, sum(distinct flux) from Source group by objectId having count(*) > 2",
		"select a + b * 2, (a - b) / 2 from t",
		"select * from t where not (a = 1 or b = 2) and c is not null and d like 'x%'",
		"select distinct filterId from Source where flux not between 1 and 2 and filterId not in (3)",
		"select * from Object where qserv_areaspec_box(0, 0, 1, 1) and someField > 1",
		"select 1",
	}
	results := []string{
		"SELECT * FROM Object WHERE someField > 5.0",
		"SELECT objectId, ra_PS AS `ra` FROM LSST.Object AS `o` WHERE o.flux_g BETWEEN 1 AND 2 AND o.objectId IN (1, 2, 3) ORDER BY ra DESC LIMIT 10",
		"SELECT o1.objectId FROM Object AS `o1` JOIN Object AS `o2` ON o1.objectId = o2.objectId",
		"SELECT s.flux FROM Object AS `o` LEFT JOIN Source AS `s` ON o.objectId = s.objectId",
		"SELECT * FROM Object WHERE scisql_angSep(ra_PS, decl_PS, 1.5, -2.5) < 0.1",
		"SELECT COUNT(*), AVG(flux) AS `f`, SUM(DISTINCT flux) FROM Source GROUP BY objectId HAVING COUNT(*) > 2",
		"SELECT a + b * 2, (a - b) / 2 FROM t",
		"SELECT * FROM t WHERE NOT (a = 1 OR b = 2) AND c IS NOT NULL AND d LIKE 'x%'",
		"SELECT DISTINCT filterId FROM Source WHERE flux NOT BETWEEN 1 AND 2 AND filterId NOT IN (3)",
		"SELECT * FROM Object WHERE qserv_areaspec_box(0, 0, 1, 1) AND someField > 1",
		"SELECT 1",
	}
	for i, q := range querys {
		stmt, err := Parse(q)
		require.Nil(t, err, q)
		assert.Equal(t, results[i], stmt.String(), q)
	}
}

func TestParseWhereShape(t *testing.T) {
	stmt, err := Parse("select * from Object where a = 1 and (b = 2 or c = 3) and d in (1, 2)")
	require.Nil(t, err)

	root, ok := stmt.Where.(*query.OrTerm)
	require.True(t, ok)
	assert.Equal(t, 1, len(root.Terms))
	and := query.RootAndTerm(stmt.Where)
	require.NotNil(t, and)
	assert.Equal(t, 3, len(and.Terms))

	comp, ok := and.Terms[0].(*query.BoolFactor).Single().(*query.CompPredicate)
	require.True(t, ok)
	assert.Equal(t, "a", comp.Left.ColumnRef().Column)
	assert.Equal(t, "=", comp.Op)

	_, ok = and.Terms[1].(*query.BoolFactor).Single().(*query.BoolTermFactor)
	assert.True(t, ok)

	in, ok := and.Terms[2].(*query.BoolFactor).Single().(*query.InPredicate)
	require.True(t, ok)
	assert.Equal(t, 2, len(in.Cands))

	// A single predicate is wrapped the same way.
	stmt, err = Parse("select * from Object where a = 1")
	require.Nil(t, err)
	assert.Equal(t, 1, len(query.RootAndTerm(stmt.Where).Terms))
}

func TestParseTables(t *testing.T) {
	stmt, err := Parse("select * from LSST.Object o, Source join Filter f on Source.filterId = f.filterId")
	require.Nil(t, err)
	require.Equal(t, 2, len(stmt.FromList))
	assert.Equal(t, &query.TableRef{Db: "LSST", Table: "Object", Alias: "o"}, stmt.FromList[0])

	tables := stmt.Tables()
	require.Equal(t, 3, len(tables))
	assert.Equal(t, "Source", tables[1].Table)
	assert.Equal(t, "", tables[1].Alias)
	assert.Equal(t, "f", tables[2].Alias)
	assert.Equal(t, query.JoinDefault, stmt.FromList[1].Joins[0].Type)
}

func TestParseSelectItems(t *testing.T) {
	stmt, err := Parse("select o.*, count(distinct objectId), scisql_fluxToAbMag(flux_g) as mag from Object o")
	require.Nil(t, err)
	require.Equal(t, 3, len(stmt.SelectList))
	assert.True(t, stmt.SelectList[0].IsStar())

	agg := stmt.SelectList[1].AggFunc()
	require.NotNil(t, agg)
	assert.Equal(t, "COUNT", agg.Name)
	assert.True(t, agg.Distinct)

	fn := stmt.SelectList[2].FuncExpr()
	require.NotNil(t, fn)
	assert.Equal(t, "scisql_fluxToAbMag", fn.Name)
	assert.Equal(t, "mag", stmt.SelectList[2].Alias)
	assert.False(t, stmt.SelectList[2].HasAggregate())
	assert.True(t, stmt.SelectList[1].HasAggregate())
}

func TestParseLimit(t *testing.T) {
	stmt, err := Parse("select * from Object")
	require.Nil(t, err)
	assert.False(t, stmt.HasLimit())

	stmt, err = Parse("select * from Object limit 0")
	require.Nil(t, err)
	assert.True(t, stmt.HasLimit())
	assert.Equal(t, 0, stmt.Limit)
}

func TestParseErrors(t *testing.T) {
	querys := []string{
		"select * from",
		"select * from Object limit 2, 10",
		"select * from (select * from Object) t",
		"select * from Object where objectId in (select objectId from Source)",
		"insert into Object values(1)",
	}
	kinds := []query.ErrorKind{
		query.ErrKindParse,
		query.ErrKindAnalysis,
		query.ErrKindAnalysis,
		query.ErrKindAnalysis,
		query.ErrKindAnalysis,
	}
	for i, q := range querys {
		_, err := Parse(q)
		assert.NotNil(t, err, q)
		assert.Equal(t, kinds[i], query.KindOf(err), q)
	}
}

func TestParseDeterministic(t *testing.T) {
	q := "select o.objectId, avg(s.flux) from Object o join Source s on o.objectId = s.objectId where o.someField > 1 group by o.objectId"
	a, err := Parse(q)
	require.Nil(t, err)
	b, err := Parse(q)
	require.Nil(t, err)
	assert.True(t, cmp.Equal(a, b), cmp.Diff(a, b))
	assert.True(t, cmp.Equal(a, a.Clone()), cmp.Diff(a, a.Clone()))
}
