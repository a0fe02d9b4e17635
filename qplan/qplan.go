/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/radondb/qplan/build"
	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/ctl"
	"github.com/radondb/qplan/monitor"
	"github.com/radondb/qplan/proxy"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	flagConf   string
	fcpu       *os.File
	pprofCPUOn = flag.Bool("pcpu", false, "is cpu prof enable, default false")
)

func init() {
	flag.StringVar(&flagConf, "c", "", "qplan config file")
	flag.StringVar(&flagConf, "config", "", "qplan config file")
}

func usage() {
	fmt.Println("Usage: " + os.Args[0] + " [-c|--config] <qplan-config-file>")
}

func startPprof() {
	nowStr := time.Now().Format(time.RFC3339)
	if *pprofCPUOn {
		cpuFile := "pprof_cpu_" + nowStr
		f, err := os.Create(cpuFile)
		if err != nil {
			fmt.Println("start pprof cpu failed", err)
			os.Exit(1)
		}
		fcpu = f
		pprof.StartCPUProfile(fcpu)
		fmt.Println("[pprof cpu]:\t" + cpuFile)
	}
}

func stopPprof() {
	if *pprofCPUOn {
		pprof.StopCPUProfile()
		fcpu.Close()
	}
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	log := xlog.NewStdLog(xlog.Level(xlog.DEBUG))

	build := build.GetInfo()
	fmt.Printf("qplan:[%+v]\n", build)

	// config
	flag.Usage = func() { usage() }
	flag.Parse()
	if flagConf == "" {
		usage()
		os.Exit(0)
	}

	conf, err := config.LoadConfig(flagConf)
	if err != nil {
		log.Panic("qplan.load.config.error[%v]", err)
	}
	log.SetLevel(conf.Log.Level)

	// pprof
	startPprof()
	defer stopPprof()

	// Monitor
	monitor.Start(conf.Monitor.Addr, conf.Monitor.Port)

	// Proxy.
	proxy := proxy.NewProxy(log, flagConf, conf)
	proxy.Start()

	// Admin portal.
	admin := ctl.NewAdmin(log, proxy)
	admin.Start()

	// Handle SIGINT and SIGTERM.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	log.Info("qplan.signal:%+v", <-ch)

	// Stop the proxy and httpserver.
	proxy.Stop()
	admin.Stop()
}
