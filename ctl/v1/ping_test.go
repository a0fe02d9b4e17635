/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"testing"

	"github.com/radondb/qplan/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/ant0ine/go-json-rest/rest/test"
	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestCtlV1Ping(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Get("/v1/qplan/ping", PingHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	// client
	recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("GET", "http://localhost/v1/qplan/ping", nil))
	recorded.CodeIs(200)
}

func TestCtlV1PingError(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// empty catalog.
	{
		for _, db := range proxy.Catalog().DatabaseNames() {
			err := proxy.Catalog().DropDatabase(db)
			assert.Nil(t, err)
		}
	}

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Get("/v1/qplan/ping", PingHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	// 405.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/qplan/ping", nil))
		recorded.CodeIs(405)
	}

	// 503.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("GET", "http://localhost/v1/qplan/ping", nil))
		recorded.CodeIs(503)
	}
}
