/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proxy

import (
	"io/ioutil"
	"os"
	"path"

	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/css"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// MockDefaultConfig mocks the default config.
func MockDefaultConfig() *config.Config {
	conf := config.DefaultConfig()
	planner := *config.MockPlannerConfig
	conf.Planner = &planner
	return conf
}

// MockProxy mocks a started proxy over the mock catalog, no index.
func MockProxy(log *xlog.Log) (*Proxy, func()) {
	return MockProxyWithConfig(log, MockDefaultConfig())
}

// MockProxyWithConfig mocks a started proxy with conf, the meta dir is
// replaced by a temporary one holding the mock databases.
func MockProxyWithConfig(log *xlog.Log, conf *config.Config) (*Proxy, func()) {
	dir, err := ioutil.TempDir("", "qplan-proxy-")
	if err != nil {
		log.Panic("proxy.mock.tempdir.error:%v", err)
	}
	conf.Catalog.MetaDir = path.Join(dir, "meta")
	conf.Audit.LogDir = path.Join(dir, "audit")

	writer := css.NewCatalog(log, conf.Catalog.MetaDir)
	for _, db := range []*config.DatabaseConfig{
		config.MockLSSTDatabaseConfig,
		config.MockSdssDatabaseConfig,
	} {
		if err := writer.WriteDatabase(db); err != nil {
			log.Panic("proxy.mock.write.database[%s].error:%v", db.Name, err)
		}
	}

	proxy := NewProxy(log, path.Join(dir, "qplan.json"), conf)
	proxy.Start()
	return proxy, func() {
		proxy.Stop()
		os.RemoveAll(dir)
	}
}
