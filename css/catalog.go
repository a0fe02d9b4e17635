/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package css

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/radondb/qplan/config"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqldb"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var _ Facade = &Catalog{}

// Table tuple.
type Table struct {
	Name   string           `json:",omitempty"`
	Params *PartTableParams `json:",omitempty"`
	Scan   *ScanTableParams `json:",omitempty"`
	// table config.
	TableConfig *config.TableConfig `json:"-"`
}

// Database tuple.
type Database struct {
	Name        string          `json:",omitempty"`
	Striping    *StripingParams `json:",omitempty"`
	EmptyChunks []int32         `json:",omitempty"`
	// tables map, key is table name
	Tables map[string]*Table `json:",omitempty"`
}

// Catalog holds partitioning metadata for every database.
type Catalog struct {
	log     *xlog.Log
	mu      sync.RWMutex
	metadir string

	// databases map, key is database name
	Databases map[string]*Database `json:",omitempty"`
}

// NewCatalog creates the new catalog.
func NewCatalog(log *xlog.Log, metadir string) *Catalog {
	return &Catalog{
		log:       log,
		metadir:   metadir,
		Databases: make(map[string]*Database),
	}
}

func chunkLevel(tbl *config.TableConfig) int {
	switch tbl.Partitioning {
	case config.PartitionDirector, config.PartitionChild:
		if tbl.SubChunked {
			return ChunkLevelSubChunk
		}
		return ChunkLevelChunk
	case config.PartitionMatch:
		return ChunkLevelChunk
	}
	return ChunkLevelNone
}

// buildTable checks the table config against the tables already known in db.
func buildTable(db string, tbl *config.TableConfig, known map[string]*config.TableConfig) (*Table, error) {
	params := &PartTableParams{
		Db:         db,
		Table:      tbl.Name,
		Kind:       tbl.Partitioning,
		ChunkLevel: chunkLevel(tbl),
		LonColName: tbl.LonColName,
		LatColName: tbl.LatColName,
	}

	switch tbl.Partitioning {
	case config.PartitionDirector:
		if tbl.DirColName == "" {
			return nil, errors.Errorf("css.director[%s.%s].dir-col.is.empty", db, tbl.Name)
		}
		if !params.HasPartitionCols() {
			return nil, errors.Errorf("css.director[%s.%s].lon-col.or.lat-col.is.empty", db, tbl.Name)
		}
		params.DirDb = db
		params.DirTable = tbl.Name
		params.DirColName = tbl.DirColName
	case config.PartitionChild:
		if tbl.DirTable == "" || tbl.DirColName == "" {
			return nil, errors.Errorf("css.child[%s.%s].director.is.empty", db, tbl.Name)
		}
		params.DirDb = tbl.DirDb
		if params.DirDb == "" {
			params.DirDb = db
		}
		if params.DirDb == db {
			dir, ok := known[tbl.DirTable]
			if !ok || dir.Partitioning != config.PartitionDirector {
				return nil, errors.Errorf("css.child[%s.%s].director[%s].not.found", db, tbl.Name, tbl.DirTable)
			}
		}
		params.DirTable = tbl.DirTable
		params.DirColName = tbl.DirColName
	case config.PartitionMatch:
		m := tbl.Match
		if m == nil || m.DirTable1 == "" || m.DirTable2 == "" || m.DirColName1 == "" || m.DirColName2 == "" {
			return nil, errors.Errorf("css.match[%s.%s].match.params.incomplete", db, tbl.Name)
		}
		for _, name := range []string{m.DirTable1, m.DirTable2} {
			dir, ok := known[name]
			if !ok || dir.Partitioning != config.PartitionDirector {
				return nil, errors.Errorf("css.match[%s.%s].director[%s].not.found", db, tbl.Name, name)
			}
		}
		params.Match = &MatchParams{
			DirTable1:   m.DirTable1,
			DirColName1: m.DirColName1,
			DirTable2:   m.DirTable2,
			DirColName2: m.DirColName2,
			FlagColName: m.FlagColName,
		}
	case config.PartitionNone:
	default:
		return nil, errors.Errorf("css.unsupport.partitioning[%v]", tbl.Partitioning)
	}

	return &Table{
		Name:   tbl.Name,
		Params: params,
		Scan: &ScanTableParams{
			LockInMem:  tbl.LockInMem,
			ScanRating: tbl.ScanRating,
		},
		TableConfig: tbl,
	}, nil
}

// buildDatabase orders the tables so that directors are resolved before
// the children and match tables that reference them.
func buildDatabase(conf *config.DatabaseConfig) (*Database, error) {
	if conf.Name == "" {
		return nil, errors.New("css.database.name.should.not.be.empty")
	}
	if conf.Stripes < 1 || conf.SubStripes < 1 {
		return nil, errors.Errorf("css.database[%s].invalid.striping[%d/%d]", conf.Name, conf.Stripes, conf.SubStripes)
	}
	if conf.Overlap < 0 {
		return nil, errors.Errorf("css.database[%s].invalid.overlap[%v]", conf.Name, conf.Overlap)
	}

	tbls := make([]*config.TableConfig, len(conf.Tables))
	copy(tbls, conf.Tables)
	rank := func(t *config.TableConfig) int {
		if t.Partitioning == config.PartitionDirector {
			return 0
		}
		return 1
	}
	sort.SliceStable(tbls, func(i, j int) bool { return rank(tbls[i]) < rank(tbls[j]) })

	db := &Database{
		Name: conf.Name,
		Striping: &StripingParams{
			Stripes:        conf.Stripes,
			SubStripes:     conf.SubStripes,
			PartitioningID: conf.PartitioningID,
			Overlap:        conf.Overlap,
		},
		EmptyChunks: conf.EmptyChunks,
		Tables:      make(map[string]*Table),
	}
	known := make(map[string]*config.TableConfig)
	for _, tbl := range tbls {
		if tbl == nil {
			return nil, errors.New("css.table.config.can't.be.nil")
		}
		if _, ok := known[tbl.Name]; ok {
			return nil, errors.Errorf("css.add.db[%v].table[%v].exists", conf.Name, tbl.Name)
		}
		table, err := buildTable(conf.Name, tbl, known)
		if err != nil {
			return nil, err
		}
		known[tbl.Name] = tbl
		db.Tables[tbl.Name] = table
	}
	return db, nil
}

// AddDatabase adds a database and all of its tables to the catalog.
func (c *Catalog) AddDatabase(conf *config.DatabaseConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.Databases[conf.Name]; ok {
		return errors.Errorf("css.database[%v].exists", conf.Name)
	}
	db, err := buildDatabase(conf)
	if err != nil {
		c.log.Error("css.add.database[%v].error:%v", conf.Name, err)
		return err
	}
	c.Databases[conf.Name] = db
	return nil
}

// DropDatabase removes a database from the catalog.
func (c *Catalog) DropDatabase(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.Databases[name]; !ok {
		return sqldb.NewSQLError(sqldb.ER_BAD_DB_ERROR, name)
	}
	delete(c.Databases, name)
	return nil
}

// clear used to reset Databases to new.
func (c *Catalog) clear() {
	c.Databases = make(map[string]*Database)
}

// DatabaseNames returns the sorted database names.
func (c *Catalog) DatabaseNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.Databases))
	for name := range c.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JSON returns the catalog info as JSON string.
func (c *Catalog) JSON() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bout, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return err.Error()
	}
	return string(bout)
}

// checkDatabase is used to check the database exists or not without lock.
func (c *Catalog) checkDatabase(db string) (*Database, error) {
	if db == "" {
		return nil, sqldb.NewSQLError(sqldb.ER_NO_DB_ERROR)
	}
	database, ok := c.Databases[db]
	if !ok {
		return nil, sqldb.NewSQLError(sqldb.ER_BAD_DB_ERROR, db)
	}
	return database, nil
}

func (c *Catalog) getTable(db, table string) (*Table, error) {
	database, err := c.checkDatabase(db)
	if err != nil {
		return nil, err
	}
	tbl, ok := database.Tables[table]
	if !ok {
		c.log.Warning("css.can.not.find.table[%s.%s]", db, table)
		return nil, sqldb.NewSQLError(sqldb.ER_NO_SUCH_TABLE, db+"."+table)
	}
	return tbl, nil
}

// CheckDatabase is used to check the Database exist.
func (c *Catalog) CheckDatabase(db string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, err := c.checkDatabase(db)
	return err
}

// ContainsDb returns true if the database is known.
func (c *Catalog) ContainsDb(db string) bool {
	return c.CheckDatabase(db) == nil
}

// ContainsTable returns true if the table is known.
func (c *Catalog) ContainsTable(db, table string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	database, err := c.checkDatabase(db)
	if err != nil {
		return false
	}
	_, ok := database.Tables[table]
	return ok
}

// GetPartTableParams returns a copy of the table partitioning params.
func (c *Catalog) GetPartTableParams(db, table string) (*PartTableParams, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tbl, err := c.getTable(db, table)
	if err != nil {
		return nil, err
	}
	params := *tbl.Params
	if params.Match != nil {
		m := *params.Match
		params.Match = &m
	}
	return &params, nil
}

// GetScanTableParams returns the table scan params.
func (c *Catalog) GetScanTableParams(db, table string) (*ScanTableParams, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tbl, err := c.getTable(db, table)
	if err != nil {
		return nil, err
	}
	scan := *tbl.Scan
	return &scan, nil
}

// GetDbStriping returns the database striping.
func (c *Catalog) GetDbStriping(db string) (*StripingParams, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	database, err := c.checkDatabase(db)
	if err != nil {
		return nil, err
	}
	striping := *database.Striping
	return &striping, nil
}

// GetEmptyChunks returns the chunks known to hold no rows.
func (c *Catalog) GetEmptyChunks(db string) ([]int32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	database, err := c.checkDatabase(db)
	if err != nil {
		return nil, err
	}
	chunks := make([]int32, len(database.EmptyChunks))
	copy(chunks, database.EmptyChunks)
	return chunks, nil
}

// GetTableColumns returns the table columns in declaration order.
func (c *Catalog) GetTableColumns(db, table string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tbl, err := c.getTable(db, table)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(tbl.TableConfig.Columns))
	copy(cols, tbl.TableConfig.Columns)
	return cols, nil
}
