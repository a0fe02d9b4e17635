/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package css

import (
	"encoding/json"
	"io/ioutil"
	"path"
	"time"

	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
)

const (
	// versionJSONFile version file name.
	versionJSONFile = "version.json"
)

// Version tuple.
type Version struct {
	Ts int64 `json:"version"`
}

// UpdateVersion stamps the meta dir with the current time.
func UpdateVersion(metadir string) error {
	b, err := json.Marshal(&Version{Ts: time.Now().UnixNano()})
	if err != nil {
		return errors.WithStack(err)
	}
	return xbase.WriteFile(path.Join(metadir, versionJSONFile), b)
}

// ReadVersion returns the meta dir stamp, 0 if there is none.
func ReadVersion(metadir string) int64 {
	version := &Version{}
	data, err := ioutil.ReadFile(path.Join(metadir, versionJSONFile))
	if err != nil {
		return 0
	}
	if err := json.Unmarshal(data, version); err != nil {
		return 0
	}
	return version.Ts
}
