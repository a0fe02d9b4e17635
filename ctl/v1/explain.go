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

type explainParams struct {
	Query   string   `json:"query"`
	Queries []string `json:"queries,omitempty"`
}

// ExplainHandler impl.
func ExplainHandler(log *xlog.Log, proxy *proxy.Proxy) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		explainHandler(log, proxy, w, r)
	}
	return f
}

func explainHandler(log *xlog.Log, proxy *proxy.Proxy, w rest.ResponseWriter, r *rest.Request) {
	p := explainParams{}
	err := r.DecodeJsonPayload(&p)
	if err != nil {
		log.Error("api.v1.explain.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx := context.Background()
	if len(p.Queries) > 0 {
		results, err := proxy.ExplainBatch(ctx, p.Queries)
		if err != nil {
			log.Error("api.v1.explain.batch[%d].error:%+v", len(p.Queries), err)
			rest.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteJson(results)
		return
	}
	if p.Query == "" {
		rest.Error(w, "api.v1.explain.query.empty", http.StatusBadRequest)
		return
	}
	w.WriteJson(proxy.Explain(ctx, p.Query))
}
