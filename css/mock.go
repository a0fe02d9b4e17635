/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package css

import (
	"github.com/radondb/qplan/config"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// MockCatalog returns a catalog holding the mock LSST and Sdss databases.
func MockCatalog(log *xlog.Log) *Catalog {
	c := NewCatalog(log, "/tmp/qplan-mock-meta")
	for _, conf := range []*config.DatabaseConfig{
		config.MockLSSTDatabaseConfig,
		config.MockSdssDatabaseConfig,
	} {
		if err := c.AddDatabase(conf); err != nil {
			log.Panic("css.mock.add.database[%v].error:%v", conf.Name, err)
		}
	}
	return c
}
