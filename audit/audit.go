/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

const (
	prefix    = "audit-"
	extension = ".log"
)

const (
	// NULL enum.
	NULL = "N"

	// ERROR enum, failed plans only.
	ERROR = "E"

	// ALL enum.
	ALL = "A"
)

// Event is one planned query.
type Event struct {
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Cost       time.Duration `json:"cost"`
	QueryID    uint64        `json:"query_id"`
	Query      string        `json:"query"`
	DominantDb string        `json:"dominant_db,omitempty"`
	Chunks     int           `json:"chunks"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Audit tuple.
type Audit struct {
	log    *xlog.Log
	conf   *config.AuditConfig
	ticker *time.Ticker
	queue  chan *Event
	done   chan bool
	rfile  xbase.RotateFile
	wg     sync.WaitGroup
}

// NewAudit creates the new audit.
func NewAudit(log *xlog.Log, conf *config.AuditConfig) *Audit {
	return &Audit{
		log:    log,
		conf:   conf,
		done:   make(chan bool),
		queue:  make(chan *Event, 1024),
		ticker: time.NewTicker(time.Duration(time.Second * 300)), // 5 minutes
		rfile:  xbase.NewRotateFile(conf.LogDir, prefix, extension, conf.MaxSize),
	}
}

// Init used to create the log dir, if EXISTS we do nothing.
func (a *Audit) Init() error {
	log := a.log

	log.Info("audit.init.conf:%+v", a.conf)
	if err := os.MkdirAll(a.conf.LogDir, 0744); err != nil {
		return errors.WithStack(err)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.eventConsumer()
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.purge()
	}()
	log.Info("audit.init.done")
	return nil
}

// LogEvent queues e if the mode wants it.
func (a *Audit) LogEvent(e *Event) {
	switch a.conf.Mode {
	case ALL:
	case ERROR:
		if e.ErrorKind == "" {
			return
		}
	default:
		return
	}
	if e.End.IsZero() {
		e.End = time.Now()
	}
	e.Cost = e.End.Sub(e.Start)
	a.queue <- e
}

// Close used to close the audit log.
func (a *Audit) Close() {
	// wait the queue event flush to file.
	close(a.done)
	close(a.queue)
	a.wg.Wait()
	a.rfile.Sync()
	a.rfile.Close()
	a.log.Info("audit.closed")
}

func (a *Audit) eventConsumer() {
	for e := range a.queue {
		a.writeEvent(e)
	}
}

func (a *Audit) writeEvent(e *Event) {
	log := a.log
	b, err := json.Marshal(e)
	if err != nil {
		b = []byte(err.Error())
	}
	b = append(b, '\n')

	// write
	_, err = a.rfile.Write(b)
	if err != nil {
		log.Error("audit.write.file.error:%v", err)
	}
}

func (a *Audit) purge() {
	defer a.ticker.Stop()
	for {
		select {
		case <-a.ticker.C:
			a.doPurge()
		case <-a.done:
			return
		}
	}
}

func (a *Audit) doPurge() {
	log := a.log
	if a.conf.ExpireHours == 0 {
		return
	}

	oldLogs, err := a.rfile.GetOldLogInfos()
	if err != nil {
		log.Error("audit.get.old.loginfos.error:%v", err)
		return
	}

	for _, old := range oldLogs {
		diff := time.Now().UTC().Sub(time.Unix(0, old.Ts))
		if int(diff.Hours()) > a.conf.ExpireHours {
			os.Remove(filepath.Join(a.conf.LogDir, old.Name))
		}
	}
}
