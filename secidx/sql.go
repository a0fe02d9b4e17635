/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package secidx

import (
	"context"
	"database/sql"
	"strings"

	"github.com/radondb/qplan/chunk"
	"github.com/radondb/qplan/query"

	// Index drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var _ Index = &SQLIndex{}

// SQLIndex runs index lookups against `<idxDb>.<db>__<table>` tables of a
// database/sql backend.
type SQLIndex struct {
	log   *xlog.Log
	db    *sql.DB
	idxDb string
}

// NewSQLIndex opens the index database.
func NewSQLIndex(log *xlog.Log, driver, dsn, idxDb string) (*SQLIndex, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		log.Error("secidx.sql.ping[%s].error:%v", driver, err)
		return nil, errors.WithStack(err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return &SQLIndex{log: log, db: db, idxDb: idxDb}, nil
}

// LookupQuery returns the UNION of the per-restrictor lookups.
func (s *SQLIndex) LookupQuery(restrictors []query.SecIdxRestrictor) string {
	qs := make([]string, 0, len(restrictors))
	for _, r := range restrictors {
		qs = append(qs, r.LookupQuery(s.idxDb, r.Target().IndexTable(), ChunkColumn, SubChunkColumn))
	}
	return strings.Join(qs, " UNION ")
}

// Lookup implements Index.
func (s *SQLIndex) Lookup(ctx context.Context, restrictors []query.SecIdxRestrictor) ([]chunk.Spec, error) {
	if len(restrictors) == 0 {
		return nil, nil
	}
	q := s.LookupQuery(restrictors)
	s.log.Debug("secidx.sql.lookup[%s]", q)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.log.Error("secidx.sql.lookup[%s].error:%v", q, err)
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var specs []chunk.Spec
	for rows.Next() {
		var chunkID, subChunkID int32
		if err := rows.Scan(&chunkID, &subChunkID); err != nil {
			return nil, errors.WithStack(err)
		}
		specs = addSpec(specs, chunkID, subChunkID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return chunk.Normalize(specs), nil
}

// Close implements Index.
func (s *SQLIndex) Close() error {
	return s.db.Close()
}

// Ping checks the index database is reachable.
func (s *SQLIndex) Ping(ctx context.Context) error {
	return errors.WithStack(s.db.PingContext(ctx))
}
