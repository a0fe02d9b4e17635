/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"context"
	"net/http"

	"github.com/radondb/qplan/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// PingHandler impl.
func PingHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		pingHandler(log, proxy, w, r)
	}
	return f
}

func pingHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	if err := proxy.Ping(context.Background()); err != nil {
		log.Error("api.v1.ping.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}
