/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package ctl

import (
	"testing"

	"github.com/radondb/qplan/proxy"

	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestCtlAdmin(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	conf := proxy.MockDefaultConfig()
	conf.Admin.Endpoint = "127.0.0.1:18380"
	proxy, cleanup := proxy.MockProxyWithConfig(log, conf)
	defer cleanup()

	admin := NewAdmin(log, proxy)
	router, err := admin.NewRouter()
	assert.Nil(t, err)
	assert.NotNil(t, router)

	admin.Start()
	admin.Stop()
}
