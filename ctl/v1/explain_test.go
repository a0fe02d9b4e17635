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
	"testing"

	"github.com/radondb/qplan/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/ant0ine/go-json-rest/rest/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestCtlV1Explain(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Post("/v1/qplan/explain", ExplainHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	// 200.
	{
		p := &explainParams{Query: "SELECT * FROM Sdss.Object WHERE someField > 5.0"}
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/qplan/explain", p))
		recorded.CodeIs(200)

		got := map[string]interface{}{}
		require.Nil(t, json.Unmarshal(recorded.Recorder.Body.Bytes(), &got))
		assert.Equal(t, "Sdss", got["dominant-db"])
		assert.Equal(t, float64(1), got["chunks"])
		assert.Nil(t, got["error"])
	}

	// Planning error is in the body.
	{
		p := &explainParams{Query: "select * from NoSuchTable"}
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/qplan/explain", p))
		recorded.CodeIs(200)

		got := map[string]interface{}{}
		require.Nil(t, json.Unmarshal(recorded.Recorder.Body.Bytes(), &got))
		assert.Equal(t, "catalog", got["error-kind"])
	}

	// Batch.
	{
		p := &explainParams{Queries: []string{
			"select objectId from Object order by objectId limit 3",
			"select filterName from Filter",
		}}
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/qplan/explain", p))
		recorded.CodeIs(200)

		var got []map[string]interface{}
		require.Nil(t, json.Unmarshal(recorded.Recorder.Body.Bytes(), &got))
		require.Equal(t, 2, len(got))
		assert.Equal(t, "SELECT * ORDER BY objectId ASC LIMIT 3", got[0]["merge"])
		assert.Equal(t, float64(1), got[1]["chunks"])
	}

	// 400.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/qplan/explain", &explainParams{}))
		recorded.CodeIs(400)
	}
}

func TestCtlV1ExplainError(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Post("/v1/qplan/explain", ExplainHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	// 405.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("GET", "http://localhost/v1/qplan/explain", nil))
		recorded.CodeIs(405)
	}

	// 500.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/qplan/explain", "query"))
		recorded.CodeIs(500)
	}
}
