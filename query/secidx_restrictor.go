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
	"strings"

	"github.com/shopspring/decimal"
)

// SecIdxColumn is the director column a secondary index is keyed on.
type SecIdxColumn struct {
	Db     string
	Table  string
	Column string
}

// IndexTable is the name of the index table for the director.
func (c SecIdxColumn) IndexTable() string {
	return c.Db + "__" + c.Table
}

// SecIdxRestrictor narrows a query to the chunks holding given key values.
type SecIdxRestrictor interface {
	// Target returns the director column the lookup runs against.
	Target() SecIdxColumn
	// Matches reports whether an index key satisfies the restrictor.
	Matches(key string) bool
	// LookupQuery renders the index lookup for an index table.
	LookupQuery(idxDb, idxTable, chunkCol, subChunkCol string) string
	String() string
}

// SecIdxCompRestrictor is `col op value` with op one of = < > <= >=.
type SecIdxCompRestrictor struct {
	Col   SecIdxColumn
	Op    string
	Value string
}

// SecIdxBetweenRestrictor is `col BETWEEN min AND max`.
type SecIdxBetweenRestrictor struct {
	Col SecIdxColumn
	Min string
	Max string
}

// SecIdxInRestrictor is `col IN (values)`.
type SecIdxInRestrictor struct {
	Col    SecIdxColumn
	Values []string
}

var (
	_ SecIdxRestrictor = &SecIdxCompRestrictor{}
	_ SecIdxRestrictor = &SecIdxBetweenRestrictor{}
	_ SecIdxRestrictor = &SecIdxInRestrictor{}
)

// unquote strips SQL string quotes from a literal.
func unquote(lit string) string {
	if len(lit) >= 2 && (lit[0] == '\'' || lit[0] == '"') && lit[len(lit)-1] == lit[0] {
		return lit[1 : len(lit)-1]
	}
	return lit
}

// compareKeys orders two keys numerically when both are numbers, else
// lexically.
func compareKeys(a, b string) int {
	a, b = unquote(a), unquote(b)
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA == nil && errB == nil {
		return da.Cmp(db)
	}
	return strings.Compare(a, b)
}

func lookupPrefix(idxDb, idxTable, chunkCol, subChunkCol string) string {
	return fmt.Sprintf("SELECT %s, %s FROM %s.%s WHERE ",
		BackQuote(chunkCol), BackQuote(subChunkCol), BackQuote(idxDb), BackQuote(idxTable))
}

// Target implements SecIdxRestrictor.
func (r *SecIdxCompRestrictor) Target() SecIdxColumn { return r.Col }

// Matches implements SecIdxRestrictor.
func (r *SecIdxCompRestrictor) Matches(key string) bool {
	c := compareKeys(key, r.Value)
	switch r.Op {
	case "=":
		return c == 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

// LookupQuery implements SecIdxRestrictor.
func (r *SecIdxCompRestrictor) LookupQuery(idxDb, idxTable, chunkCol, subChunkCol string) string {
	return lookupPrefix(idxDb, idxTable, chunkCol, subChunkCol) +
		BackQuote(r.Col.Column) + " " + r.Op + " " + r.Value
}

func (r *SecIdxCompRestrictor) String() string {
	return fmt.Sprintf("%s.%s.%s %s %s", r.Col.Db, r.Col.Table, r.Col.Column, r.Op, r.Value)
}

// Target implements SecIdxRestrictor.
func (r *SecIdxBetweenRestrictor) Target() SecIdxColumn { return r.Col }

// Matches implements SecIdxRestrictor.
func (r *SecIdxBetweenRestrictor) Matches(key string) bool {
	return compareKeys(key, r.Min) >= 0 && compareKeys(key, r.Max) <= 0
}

// LookupQuery implements SecIdxRestrictor.
func (r *SecIdxBetweenRestrictor) LookupQuery(idxDb, idxTable, chunkCol, subChunkCol string) string {
	return lookupPrefix(idxDb, idxTable, chunkCol, subChunkCol) +
		BackQuote(r.Col.Column) + " BETWEEN " + r.Min + " AND " + r.Max
}

func (r *SecIdxBetweenRestrictor) String() string {
	return fmt.Sprintf("%s.%s.%s BETWEEN %s AND %s", r.Col.Db, r.Col.Table, r.Col.Column, r.Min, r.Max)
}

// Target implements SecIdxRestrictor.
func (r *SecIdxInRestrictor) Target() SecIdxColumn { return r.Col }

// Matches implements SecIdxRestrictor.
func (r *SecIdxInRestrictor) Matches(key string) bool {
	for _, v := range r.Values {
		if compareKeys(key, v) == 0 {
			return true
		}
	}
	return false
}

// LookupQuery implements SecIdxRestrictor.
func (r *SecIdxInRestrictor) LookupQuery(idxDb, idxTable, chunkCol, subChunkCol string) string {
	return lookupPrefix(idxDb, idxTable, chunkCol, subChunkCol) +
		BackQuote(r.Col.Column) + " IN(" + strings.Join(r.Values, ", ") + ")"
}

func (r *SecIdxInRestrictor) String() string {
	return fmt.Sprintf("%s.%s.%s IN(%s)", r.Col.Db, r.Col.Table, r.Col.Column, strings.Join(r.Values, ", "))
}
