/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package ctl

import (
	"context"
	"net/http"

	"github.com/radondb/qplan/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// Admin tuple.
type Admin struct {
	log    *xlog.Log
	proxy  *proxy.Proxy
	server *http.Server
}

// NewAdmin creates the new admin.
func NewAdmin(log *xlog.Log, proxy *proxy.Proxy) *Admin {
	return &Admin{
		log:   log,
		proxy: proxy,
	}
}

// Start starts http server.
func (admin *Admin) Start() {
	api := rest.NewApi()
	router, err := admin.NewRouter()
	if err != nil {
		panic(err)
	}

	api.SetApp(router)
	handlers := api.MakeHandler()
	endpoint := admin.proxy.Config().Admin.Endpoint
	admin.server = &http.Server{Addr: endpoint, Handler: handlers}

	go func() {
		log := admin.log
		log.Info("http.server.start[%v]...", endpoint)
		if err := admin.server.ListenAndServe(); err != http.ErrServerClosed {
			log.Panic("%v", err)
		}
	}()
}

// Stop stops http server.
func (admin *Admin) Stop() {
	log := admin.log
	admin.server.Shutdown(context.Background())
	log.Info("http.server.gracefully.stop")
}
