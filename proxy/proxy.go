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
	"sync"
	"sync/atomic"
	"time"

	"github.com/radondb/qplan/audit"
	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/css"
	"github.com/radondb/qplan/qproc"
	"github.com/radondb/qplan/secidx"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Proxy tuple.
type Proxy struct {
	mu       sync.RWMutex
	log      *xlog.Log
	conf     *config.Config
	confPath string
	catalog  *css.Catalog
	index    secidx.Index
	audit    *audit.Audit
	factory  *qproc.TaskMsgFactory
	queryID  uint64
}

// NewProxy creates new proxy.
func NewProxy(log *xlog.Log, path string, conf *config.Config) *Proxy {
	return &Proxy{
		log:      log,
		conf:     conf,
		confPath: path,
		catalog:  css.NewCatalog(log, conf.Catalog.MetaDir),
		audit:    audit.NewAudit(log, conf.Audit),
		factory:  qproc.NewTaskMsgFactory(log, uint64(time.Now().Unix())),
	}
}

func openIndex(log *xlog.Log, conf *config.CatalogConfig) (secidx.Index, error) {
	switch {
	case conf.IndexDSN != "":
		index, err := secidx.NewSQLIndex(log, conf.IndexDriver, conf.IndexDSN, conf.IndexDb)
		if err != nil {
			return nil, err
		}
		return index, nil
	case conf.IndexFile != "":
		index := secidx.NewMemoryIndex(log)
		if err := index.LoadFile(conf.IndexFile); err != nil {
			return nil, err
		}
		return index, nil
	}
	return nil, nil
}

// Start loads the catalog and opens the secondary index.
func (p *Proxy) Start() {
	log := p.log
	conf := p.conf

	log.Info("proxy.planner.config[%+v]...", conf.Planner)
	log.Info("proxy.catalog.config[%+v]...", conf.Catalog)
	log.Info("audit.config[%+v]...", conf.Audit)
	log.Info("log.config[%+v]...", conf.Log)

	if err := p.audit.Init(); err != nil {
		log.Panic("proxy.audit.init.panic:%+v", err)
	}

	if err := p.catalog.LoadConfig(); err != nil {
		log.Panic("proxy.catalog.load.panic:%+v", err)
	}
	index, err := openIndex(log, conf.Catalog)
	if err != nil {
		log.Panic("proxy.secidx.open.panic:%+v", err)
	}
	p.index = index
	log.Info("proxy.start.databases%v.index[%v]...", p.catalog.DatabaseNames(), index != nil)
}

// Stop used to stop the proxy.
func (p *Proxy) Stop() {
	log := p.log

	log.Info("proxy.starting.shutdown...")
	p.audit.Close()
	if p.index != nil {
		if err := p.index.Close(); err != nil {
			log.Error("proxy.secidx.close.error:%v", err)
		}
	}
	log.Info("proxy.shutdown.complete...")
}

// Config returns the config.
func (p *Proxy) Config() *config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conf
}

// Catalog returns the catalog.
func (p *Proxy) Catalog() *css.Catalog {
	return p.catalog
}

// Index returns the secondary index, nil when none is configured.
func (p *Proxy) Index() secidx.Index {
	return p.index
}

// TaskMsgFactory returns the worker message factory.
func (p *Proxy) TaskMsgFactory() *qproc.TaskMsgFactory {
	return p.factory
}

// NextQueryID returns a new query id.
func (p *Proxy) NextQueryID() uint64 {
	return atomic.AddUint64(&p.queryID, 1)
}

// plannerConfig returns a copy, sessions never see a config being updated.
func (p *Proxy) plannerConfig() *config.PlannerConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	conf := *p.conf.Planner
	return &conf
}

// NewSession creates a query session over the catalog and index.
func (p *Proxy) NewSession() *qproc.QuerySession {
	return qproc.NewQuerySession(p.log, p.plannerConfig(), p.catalog, p.index)
}

// SetScanRatingLimit used to set the scan rating ceiling.
func (p *Proxy) SetScanRatingLimit(limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("proxy.SetScanRatingLimit:[%d->%d]", p.conf.Planner.ScanRatingLimit, limit)
	p.conf.Planner.ScanRatingLimit = limit
}

// SetSubChunksPerMessage used to set the subchunk ids per message.
func (p *Proxy) SetSubChunksPerMessage(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("proxy.SetSubChunksPerMessage:[%d->%d]", p.conf.Planner.SubChunksPerMessage, n)
	p.conf.Planner.SubChunksPerMessage = n
}

// SetDefaultDatabase used to set the database of unqualified tables.
func (p *Proxy) SetDefaultDatabase(db string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log.Info("proxy.SetDefaultDatabase:[%s->%s]", p.conf.Planner.DefaultDatabase, db)
	p.conf.Planner.DefaultDatabase = db
}

// FlushConfig writes the config to its file.
func (p *Proxy) FlushConfig() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	p.log.Info("proxy.flush.config.to.file:%v", p.confPath)
	if err := config.WriteConfig(p.confPath, p.conf); err != nil {
		p.log.Error("proxy.flush.config.to.file[%v].error:%v", p.confPath, err)
		return err
	}
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the catalog holds a database and the index is reachable.
func (p *Proxy) Ping(ctx context.Context) error {
	if len(p.catalog.DatabaseNames()) == 0 {
		return errors.New("proxy.ping.catalog.empty")
	}
	if pi, ok := p.index.(pinger); ok {
		return pi.Ping(ctx)
	}
	return nil
}
