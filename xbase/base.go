/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package xbase

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WriteFile writes data to file, creating it when missing.
func WriteFile(file string, data []byte) error {
	flag := os.O_RDWR | os.O_TRUNC
	if _, err := os.Stat(file); os.IsNotExist(err) {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(file, flag, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	n, err := f.Write(data)
	if err != nil {
		return errors.WithStack(err)
	}
	if n != len(data) {
		return errors.WithStack(io.ErrShortWrite)
	}
	return f.Sync()
}

// IsYAMLFile reports whether the file extension is .yaml or .yml.
func IsYAMLFile(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Unmarshal decodes data as YAML when name looks like a YAML file, else as JSON.
func Unmarshal(name string, data []byte, v interface{}) error {
	if IsYAMLFile(name) {
		return errors.WithStack(yaml.Unmarshal(data, v))
	}
	return errors.WithStack(json.Unmarshal(data, v))
}

// DecodeFile reads file and decodes it into v.
func DecodeFile(file string, v interface{}) error {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return errors.WithStack(err)
	}
	return Unmarshal(file, data, v)
}

// TruncateQuery cuts query to max bytes for logging, 0 means no limit.
func TruncateQuery(query string, max int) string {
	if max == 0 || len(query) <= max {
		return query
	}
	return query[:max] + " [TRUNCATED]"
}
