/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package config

import (
	"encoding/json"

	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
)

const (
	// PartitionDirector owns the chunking scheme.
	PartitionDirector = "director"
	// PartitionChild follows its director through a foreign key.
	PartitionChild = "child"
	// PartitionMatch relates rows of two directors.
	PartitionMatch = "match"
	// PartitionNone is a replicated, unpartitioned table.
	PartitionNone = "none"
)

// MatchConfig tuple.
type MatchConfig struct {
	DirTable1   string `json:"dir-table1" yaml:"dir-table1"`
	DirColName1 string `json:"dir-col1" yaml:"dir-col1"`
	DirTable2   string `json:"dir-table2" yaml:"dir-table2"`
	DirColName2 string `json:"dir-col2" yaml:"dir-col2"`
	FlagColName string `json:"flag-col" yaml:"flag-col"`
}

// TableConfig tuple.
type TableConfig struct {
	Name         string `json:"name" yaml:"name"`
	Partitioning string `json:"partitioning" yaml:"partitioning"`
	SubChunked   bool   `json:"subchunked,omitempty" yaml:"subchunked"`
	// Director of a child table, empty for directors.
	DirDb    string `json:"dir-db,omitempty" yaml:"dir-db"`
	DirTable string `json:"dir-table,omitempty" yaml:"dir-table"`
	// Column holding the director key: the key itself for a director,
	// the foreign key for a child.
	DirColName string       `json:"dir-col,omitempty" yaml:"dir-col"`
	LonColName string       `json:"lon-col,omitempty" yaml:"lon-col"`
	LatColName string       `json:"lat-col,omitempty" yaml:"lat-col"`
	Match      *MatchConfig `json:"match,omitempty" yaml:"match"`
	LockInMem  bool         `json:"lock-in-mem,omitempty" yaml:"lock-in-mem"`
	ScanRating int          `json:"scan-rating,omitempty" yaml:"scan-rating"`
	Columns    []string     `json:"columns,omitempty" yaml:"columns"`
}

// DatabaseConfig tuple.
type DatabaseConfig struct {
	Name           string  `json:"name" yaml:"name"`
	PartitioningID int     `json:"partitioning-id" yaml:"partitioning-id"`
	Stripes        int32   `json:"stripes" yaml:"stripes"`
	SubStripes     int32   `json:"substripes" yaml:"substripes"`
	// Overlap radius in degrees.
	Overlap     float64        `json:"overlap" yaml:"overlap"`
	EmptyChunks []int32        `json:"empty-chunks,omitempty" yaml:"empty-chunks"`
	Tables      []*TableConfig `json:"tables,omitempty" yaml:"tables"`
}

// DefaultDatabaseConfig returns the default striping.
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Stripes:    85,
		SubStripes: 12,
		Overlap:    0.01667,
	}
}

// UnmarshalJSON interface on DatabaseConfig.
func (c *DatabaseConfig) UnmarshalJSON(b []byte) error {
	type confAlias *DatabaseConfig
	conf := confAlias(DefaultDatabaseConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = DatabaseConfig(*conf)
	return nil
}

// ReadTableConfig reads a table config, name decides json or yaml.
func ReadTableConfig(name string, data []byte) (*TableConfig, error) {
	conf := &TableConfig{}
	if err := xbase.Unmarshal(name, data, conf); err != nil {
		return nil, err
	}
	if conf.Name == "" {
		return nil, errors.Errorf("table.config[%s].name.is.empty", name)
	}
	if conf.Partitioning == "" {
		conf.Partitioning = PartitionNone
	}
	return conf, nil
}

// ReadDatabaseConfig reads a database config, name decides json or yaml.
func ReadDatabaseConfig(name string, data []byte) (*DatabaseConfig, error) {
	conf := DefaultDatabaseConfig()
	if err := xbase.Unmarshal(name, data, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
