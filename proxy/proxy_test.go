/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proxy

import (
	"context"
	"io/ioutil"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/radondb/qplan/audit"
	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/secidx"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestProxy1(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := MockProxy(log)
	defer cleanup()

	assert.NotNil(t, proxy.Catalog())
	assert.Nil(t, proxy.Index())
	assert.NotNil(t, proxy.TaskMsgFactory())
	assert.Equal(t, []string{"LSST", "Sdss"}, proxy.Catalog().DatabaseNames())
	assert.Nil(t, proxy.Ping(context.Background()))

	// SetScanRatingLimit
	{
		proxy.SetScanRatingLimit(6)
		assert.Equal(t, 6, proxy.Config().Planner.ScanRatingLimit)
	}

	// SetSubChunksPerMessage
	{
		proxy.SetSubChunksPerMessage(66)
		assert.Equal(t, 66, proxy.Config().Planner.SubChunksPerMessage)
	}

	// SetDefaultDatabase
	{
		proxy.SetDefaultDatabase("Sdss")
		assert.Equal(t, "Sdss", proxy.Config().Planner.DefaultDatabase)
	}

	// FlushConfig
	{
		assert.Nil(t, proxy.FlushConfig())
		conf, err := config.LoadConfig(proxy.confPath)
		assert.Nil(t, err)
		assert.Equal(t, 66, conf.Planner.SubChunksPerMessage)
	}

	id := proxy.NextQueryID()
	assert.Equal(t, id+1, proxy.NextQueryID())
}

func TestProxyMemoryIndex(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	dir, err := ioutil.TempDir("", "qplan-index-")
	require.Nil(t, err)

	file := path.Join(dir, "index.yaml")
	data := "- {db: LSST, table: Object, key: \"42\", chunk: 100, subchunk: 7}\n"
	require.Nil(t, ioutil.WriteFile(file, []byte(data), 0644))

	conf := MockDefaultConfig()
	conf.Catalog.IndexFile = file
	proxy, cleanup := MockProxyWithConfig(log, conf)
	defer cleanup()

	_, ok := proxy.Index().(*secidx.MemoryIndex)
	assert.True(t, ok)

	res := proxy.Explain(context.Background(), "select * from Object where objectId = 42")
	assert.Equal(t, "", res.Error)
	assert.Equal(t, 1, res.Chunks)
	require.NotNil(t, res.Sample)
	assert.Equal(t, int32(100), res.Sample.ChunkID)
}

func TestProxyExplain(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := MockProxy(log)
	defer cleanup()

	res := proxy.Explain(context.Background(), "SELECT * FROM Sdss.Object WHERE someField > 5.0")
	assert.Equal(t, "", res.Error)
	assert.Equal(t, "Sdss", res.DominantDb)
	assert.Equal(t, []string{"SELECT * FROM Sdss.Object_%CC% AS `Sdss.Object` WHERE `Sdss.Object`.someField > 5.0"}, res.Parallel)
	assert.Equal(t, "", res.Merge)
	assert.Equal(t, 1, res.Chunks)
	require.NotNil(t, res.Sample)
	assert.Equal(t, []string{"SELECT * FROM Sdss.Object_0 AS `Sdss.Object` WHERE `Sdss.Object`.someField > 5.0"}, res.Sample.Fragments[0].Queries)

	res = proxy.Explain(context.Background(), "select * from Object o, Source s")
	assert.Equal(t, "analysis", res.ErrorKind)
	assert.Contains(t, res.Error, "Qserv cannot evaluate locally")
	assert.Nil(t, res.Sample)
}

func TestProxyExplainBatch(t *testing.T) {
	defer leaktest.Check(t)()
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := MockProxy(log)
	defer cleanup()

	querys := []string{
		"SELECT * FROM Sdss.Object WHERE someField > 5.0",
		"select * from NoSuchTable",
		"select objectId from Object order by objectId limit 3",
		"select filterName from Filter",
	}
	results, err := proxy.ExplainBatch(context.Background(), querys)
	assert.Nil(t, err)
	require.Equal(t, len(querys), len(results))
	for i, res := range results {
		assert.Equal(t, querys[i], res.Query)
	}
	assert.Equal(t, "", results[0].Error)
	assert.Equal(t, "catalog", results[1].ErrorKind)
	assert.Equal(t, "SELECT * ORDER BY objectId ASC LIMIT 3", results[2].Merge)
	assert.Equal(t, 1, results[3].Chunks)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = proxy.ExplainBatch(ctx, querys)
	assert.NotNil(t, err)
}

func TestProxyAudit(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	conf := MockDefaultConfig()
	conf.Audit.Mode = audit.ERROR
	proxy, cleanup := MockProxyWithConfig(log, conf)
	defer cleanup()

	proxy.Explain(context.Background(), "select filterName from Filter")
	proxy.Explain(context.Background(), "select * from NoSuchTable")

	read := func() string {
		files, _ := filepath.Glob(filepath.Join(conf.Audit.LogDir, "audit-*.log"))
		var out []string
		for _, f := range files {
			data, _ := ioutil.ReadFile(f)
			out = append(out, string(data))
		}
		return strings.Join(out, "")
	}
	require.Eventually(t, func() bool { return strings.Contains(read(), "NoSuchTable") }, 5*time.Second, 10*time.Millisecond)
	got := read()
	assert.Contains(t, got, `"error_kind":"catalog"`)
	assert.NotContains(t, got, "Filter")
}
