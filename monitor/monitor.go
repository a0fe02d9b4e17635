/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package monitor

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	webMonitorPort = "13380"
	webMonitorAddr = "0.0.0.0"
	webMonitorURL  = "/metrics"

	queryTotalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qplan_query_total",
			Help: "Counter of planned queries.",
		},
		[]string{"result"},
	)

	chunksPerQuery = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qplan_chunks_per_query",
			Help:    "Chunks visited by a planned query.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	pluginErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qplan_plugin_error_total",
			Help: "Counter of planning failures by plugin.",
		},
		[]string{"plugin"},
	)
)

func init() {
	prometheus.MustRegister(queryTotalCounter)
	prometheus.MustRegister(chunksPerQuery)
	prometheus.MustRegister(pluginErrorCounter)
}

// Start monitor
func Start(addr, port string) {
	if addr != "" {
		webMonitorAddr = addr
	}
	if port != "" {
		webMonitorPort = port
	}
	fmt.Printf("[prometheus metrics]:\thttp://{%s}:%s%s\n",
		webMonitorAddr, webMonitorPort, webMonitorURL)
	http.Handle(webMonitorURL, promhttp.Handler())
	go http.ListenAndServe(webMonitorAddr+":"+webMonitorPort, nil)
}

// QueryTotalCounterInc add 1
func QueryTotalCounterInc(result string) {
	queryTotalCounter.WithLabelValues(result).Inc()
}

// ChunksPerQueryObserve records the chunk count of one query.
func ChunksPerQueryObserve(n int) {
	chunksPerQuery.Observe(float64(n))
}

// PluginErrorInc add 1
func PluginErrorInc(plugin string) {
	pluginErrorCounter.WithLabelValues(plugin).Inc()
}
