/*
 * Radon
 *
 * Copyright 2018-2019 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package css

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/radondb/qplan/config"

	"github.com/pkg/errors"
)

const (
	// dbFileBase is the database striping file name without extension.
	dbFileBase = "db"
)

func isMetaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func isDbFile(name string) bool {
	return strings.TrimSuffix(name, filepath.Ext(name)) == dbFileBase
}

// readDatabaseDir reads [meta-dir]/[database]/db.{json,yaml} and every table file next to it.
func (c *Catalog) readDatabaseDir(dbName string) (*config.DatabaseConfig, error) {
	log := c.log
	dir := path.Join(c.metadir, dbName)
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		log.Error("frm.load.readsubdir[%v].error:%v", dir, err)
		return nil, errors.WithStack(err)
	}

	var conf *config.DatabaseConfig
	var tables []*config.TableConfig
	for _, f := range files {
		if f.IsDir() || !isMetaFile(f.Name()) {
			continue
		}
		file := path.Join(dir, f.Name())
		data, err := ioutil.ReadFile(file)
		if err != nil {
			log.Error("frm.read.from.file[%v].error:%v", file, err)
			return nil, errors.WithStack(err)
		}
		if isDbFile(f.Name()) {
			if conf != nil {
				return nil, errors.Errorf("frm.database[%s].duplicate.db.file", dbName)
			}
			if conf, err = config.ReadDatabaseConfig(f.Name(), data); err != nil {
				log.Error("frm.read.parse.db.file[%v].error:%v", file, err)
				return nil, err
			}
			continue
		}
		tbl, err := config.ReadTableConfig(f.Name(), data)
		if err != nil {
			log.Error("frm.read.parse.table.file[%v].error:%v", file, err)
			return nil, err
		}
		tables = append(tables, tbl)
	}
	if conf == nil {
		return nil, errors.Errorf("frm.database[%s].db.file.not.found", dbName)
	}
	if conf.Name == "" {
		conf.Name = dbName
	}
	if conf.Name != dbName {
		return nil, errors.Errorf("frm.database[%s].name.mismatch[%s]", dbName, conf.Name)
	}
	conf.Tables = append(conf.Tables, tables...)
	return conf, nil
}

// LoadConfig used to load all the databases from the meta dir.
func (c *Catalog) LoadConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log
	// Clear the catalog first.
	c.clear()

	// Check the metadir, create it if not exists.
	if _, err := os.Stat(c.metadir); os.IsNotExist(err) {
		if x := os.MkdirAll(c.metadir, os.ModePerm); x != nil {
			log.Error("css.load.create.dir[%v].error:%v", c.metadir, x)
			return errors.WithStack(x)
		}
		return nil
	}

	files, err := ioutil.ReadDir(c.metadir)
	if err != nil {
		log.Error("css.load.readdir[%v].error:%v", c.metadir, err)
		return errors.WithStack(err)
	}
	for _, f := range files {
		if !f.IsDir() {
			continue
		}
		conf, err := c.readDatabaseDir(f.Name())
		if err != nil {
			return err
		}
		db, err := buildDatabase(conf)
		if err != nil {
			log.Error("css.load.database[%v].error:%v", conf.Name, err)
			return err
		}
		c.Databases[db.Name] = db
		log.Info("css.load.database[%v].tables[%d]", db.Name, len(db.Tables))
	}
	return nil
}

// WriteDatabase persists a database as [meta-dir]/[database]/db.json plus
// one [table].json per table, then adds it to the catalog.
func (c *Catalog) WriteDatabase(conf *config.DatabaseConfig) error {
	log := c.log
	if _, err := buildDatabase(conf); err != nil {
		return err
	}

	dir := path.Join(c.metadir, conf.Name)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.Error("frm.write.mkdir[%v].error:%v", dir, err)
		return errors.WithStack(err)
	}

	dbConf := *conf
	dbConf.Tables = nil
	if err := config.WriteConfig(path.Join(dir, dbFileBase+".json"), &dbConf); err != nil {
		log.Error("frm.write.database[%v].error:%v", conf.Name, err)
		return err
	}
	for _, tbl := range conf.Tables {
		file := path.Join(dir, fmt.Sprintf("%s.json", tbl.Name))
		log.Info("frm.write.data[db:%s, table:%s, partitioning:%s]", conf.Name, tbl.Name, tbl.Partitioning)
		if err := config.WriteConfig(file, tbl); err != nil {
			log.Error("frm.write.to.file[%v].error:%v", file, err)
			return err
		}
	}
	if err := c.AddDatabase(conf); err != nil {
		return err
	}
	return UpdateVersion(c.metadir)
}

// Tables returns the sorted table names of db.
func (c *Catalog) Tables(db string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	database, err := c.checkDatabase(db)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(database.Tables))
	for name := range database.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MetaDir returns the catalog meta dir.
func (c *Catalog) MetaDir() string {
	return c.metadir
}
