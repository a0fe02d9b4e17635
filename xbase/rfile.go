/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package xbase

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	fileFormat = "20060102150405.000"
)

var (
	_ RotateFile = &rotateFile{}
)

// RotateFile interface.
type RotateFile interface {
	Write(b []byte) (int, error)
	Sync() error
	Close()
	Name() string
	GetOldLogInfos() ([]LogInfo, error)
}

type rotateFile struct {
	mu        sync.RWMutex
	size      int
	max       int
	file      *os.File
	name      string
	dir       string
	prefix    string
	extension string
}

// NewRotateFile creates a new rotateFile.
func NewRotateFile(dir string, prefix string, extension string, maxSize int) RotateFile {
	return &rotateFile{
		max:       maxSize,
		dir:       dir,
		prefix:    prefix,
		extension: extension,
	}
}

func (f *rotateFile) openNew() error {
	t := time.Now().UTC()
	timestamp := t.Format(fileFormat)
	next := filepath.Join(f.dir, fmt.Sprintf("%s%s%s", f.prefix, timestamp, f.extension))

	cur, err := os.OpenFile(next, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(0644))
	if err != nil {
		return errors.WithStack(err)
	}
	f.mu.Lock()
	f.name = next
	f.mu.Unlock()
	f.file = cur
	f.size = 0
	return nil
}

func (f *rotateFile) rotate() error {
	if err := f.file.Sync(); err != nil {
		return errors.WithStack(err)
	}
	if err := f.file.Close(); err != nil {
		return errors.WithStack(err)
	}
	// Names have millisecond resolution.
	time.Sleep(time.Millisecond)
	return f.openNew()
}

// Name returns the current writing file base name.
func (f *rotateFile) Name() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return path.Base(f.name)
}

// Write used to writes datas to file.
func (f *rotateFile) Write(b []byte) (int, error) {
	if f.file == nil {
		if err := f.openNew(); err != nil {
			return 0, err
		}
	}
	n, err := f.file.Write(b)
	if err != nil {
		return n, errors.WithStack(err)
	}
	f.size += n

	if f.size > f.max {
		if err := f.rotate(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Sync used to sync the file.
func (f *rotateFile) Sync() error {
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

// Close used to close the file.
func (f *rotateFile) Close() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

// LogInfo tuple.
type LogInfo struct {
	Name string
	// Ts is the timestamp with UTC().UnixNano.
	Ts int64
}

func (f *rotateFile) logInfos() ([]LogInfo, error) {
	infos := make([]LogInfo, 0, 64)
	files, err := ioutil.ReadDir(f.dir)
	if err != nil {
		return infos, errors.WithStack(err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), f.prefix) {
			continue
		}
		if filepath.Ext(file.Name()) == f.extension {
			name := strings.TrimSuffix(strings.TrimPrefix(file.Name(), f.prefix), f.extension)
			t, err := time.Parse(fileFormat, name)
			if err != nil {
				continue
			}
			infos = append(infos, LogInfo{
				Name: file.Name(),
				Ts:   t.UnixNano(),
			})
		}
	}
	return infos, nil
}

// GetOldLogInfos returns all the files except the current writing file.
func (f *rotateFile) GetOldLogInfos() ([]LogInfo, error) {
	infos, err := f.logInfos()
	if err != nil {
		return nil, err
	}

	// sort by ts asc.
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Ts < infos[j].Ts
	})

	if len(infos) > 0 {
		return infos[:len(infos)-1], nil
	}
	return infos, nil
}
