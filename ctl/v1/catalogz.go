/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"encoding/json"

	"github.com/radondb/qplan/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// CatalogzHandler impl.
func CatalogzHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		catalogzHandler(log, proxy, w, r)
	}
	return f
}

func catalogzHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	w.WriteJson(json.RawMessage(proxy.Catalog().JSON()))
}
