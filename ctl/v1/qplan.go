/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"net/http"

	"github.com/radondb/qplan/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/xelabs/go-mysqlstack/xlog"
)

type qplanParams struct {
	DefaultDatabase     *string `json:"default-database"`
	ScanRatingLimit     *int    `json:"scan-rating-limit"`
	SubChunksPerMessage *int    `json:"subchunks-per-message"`
}

// QplanConfigHandler impl.
func QplanConfigHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		qplanConfigHandler(log, proxy, w, r)
	}
	return f
}

func qplanConfigHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	p := qplanParams{}
	err := r.DecodeJsonPayload(&p)
	if err != nil {
		log.Error("api.v1.qplan.config.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Warning("api.v1.qplan[from:%v].body:%+v", r.RemoteAddr, p)
	if p.DefaultDatabase != nil {
		if !proxy.Catalog().ContainsDb(*p.DefaultDatabase) {
			rest.Error(w, "api.v1.qplan.config.unknown.database:"+*p.DefaultDatabase, http.StatusBadRequest)
			return
		}
		proxy.SetDefaultDatabase(*p.DefaultDatabase)
	}
	if p.ScanRatingLimit != nil {
		proxy.SetScanRatingLimit(*p.ScanRatingLimit)
	}
	if p.SubChunksPerMessage != nil {
		proxy.SetSubChunksPerMessage(*p.SubChunksPerMessage)
	}

	// write to file.
	if err := proxy.FlushConfig(); err != nil {
		log.Error("api.v1.qplan.flush.config.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
