/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package ctl

import (
	v1 "github.com/radondb/qplan/ctl/v1"

	"github.com/ant0ine/go-json-rest/rest"
)

// NewRouter creates the new router.
func (admin *Admin) NewRouter() (rest.App, error) {
	log := admin.log
	proxy := admin.proxy

	return rest.MakeRouter(
		// qplan
		rest.Post("/v1/qplan/explain", v1.ExplainHandler(log, proxy)),
		rest.Put("/v1/qplan/config", v1.QplanConfigHandler(log, proxy)),
		rest.Get("/v1/qplan/ping", v1.PingHandler(log, proxy)),

		// debug
		rest.Get("/v1/debug/configz", v1.ConfigzHandler(log, proxy)),
		rest.Get("/v1/debug/catalogz", v1.CatalogzHandler(log, proxy)),
	)
}
