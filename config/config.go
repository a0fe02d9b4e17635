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
	"io/ioutil"

	"github.com/radondb/qplan/xbase"

	"github.com/pkg/errors"
)

// PlannerConfig tuple.
type PlannerConfig struct {
	DefaultDatabase string `json:"default-database"`
	// Ceiling of the aggregate scan rating of a query.
	ScanRatingLimit int `json:"scan-rating-limit"`
	// Max subchunk ids carried by one chunk query fragment.
	SubChunksPerMessage int `json:"subchunks-per-message"`
	// Query text longer than this is truncated in logs, 0 keeps it all.
	MaxLogQueryLength int `json:"max-log-query-length"`
}

// DefaultPlannerConfig returns default planner config.
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		DefaultDatabase:     "LSST",
		ScanRatingLimit:     3,
		SubChunksPerMessage: 20,
		MaxLogQueryLength:   1024,
	}
}

// UnmarshalJSON interface on PlannerConfig.
func (c *PlannerConfig) UnmarshalJSON(b []byte) error {
	type confAlias *PlannerConfig
	conf := confAlias(DefaultPlannerConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = PlannerConfig(*conf)
	return nil
}

// CatalogConfig tuple.
type CatalogConfig struct {
	MetaDir string `json:"meta-dir"`
	// In-memory secondary index fixture (json or yaml).
	IndexFile string `json:"index-file,omitempty"`
	// DSN of the SQL secondary index, used when set.
	IndexDSN string `json:"index-dsn,omitempty"`
	// database/sql driver of the index: mysql or sqlite3.
	IndexDriver string `json:"index-driver"`
	IndexDb     string `json:"index-db"`
}

// DefaultCatalogConfig returns default catalog config.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		MetaDir:     "./qplan-meta",
		IndexDriver: "mysql",
		IndexDb:     "qservMeta",
	}
}

// UnmarshalJSON interface on CatalogConfig.
func (c *CatalogConfig) UnmarshalJSON(b []byte) error {
	type confAlias *CatalogConfig
	conf := confAlias(DefaultCatalogConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = CatalogConfig(*conf)
	return nil
}

// AdminConfig tuple.
type AdminConfig struct {
	Endpoint string `json:"endpoint"`
}

// DefaultAdminConfig returns default admin config.
func DefaultAdminConfig() *AdminConfig {
	return &AdminConfig{
		Endpoint: "127.0.0.1:8080",
	}
}

// UnmarshalJSON interface on AdminConfig.
func (c *AdminConfig) UnmarshalJSON(b []byte) error {
	type confAlias *AdminConfig
	conf := confAlias(DefaultAdminConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = AdminConfig(*conf)
	return nil
}

// MonitorConfig tuple.
type MonitorConfig struct {
	Addr string `json:"addr"`
	Port string `json:"port"`
}

// DefaultMonitorConfig returns default monitor config.
func DefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		Addr: "0.0.0.0",
		Port: "13380",
	}
}

// UnmarshalJSON interface on MonitorConfig.
func (c *MonitorConfig) UnmarshalJSON(b []byte) error {
	type confAlias *MonitorConfig
	conf := confAlias(DefaultMonitorConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = MonitorConfig(*conf)
	return nil
}

// AuditConfig tuple.
type AuditConfig struct {
	Mode        string `json:"mode"`
	LogDir      string `json:"audit-dir"`
	MaxSize     int    `json:"max-size"`
	ExpireHours int    `json:"expire-hours"`
}

// DefaultAuditConfig returns default audit config.
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		Mode:        "N",
		LogDir:      "/tmp/qplan/audit",
		MaxSize:     1024 * 1024 * 256, // 256MB
		ExpireHours: 1,                 // 1hours
	}
}

// UnmarshalJSON interface on AuditConfig.
func (c *AuditConfig) UnmarshalJSON(b []byte) error {
	type confAlias *AuditConfig
	conf := confAlias(DefaultAuditConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = AuditConfig(*conf)
	return nil
}

// LogConfig tuple.
type LogConfig struct {
	Level string `json:"level"`
}

// DefaultLogConfig returns default log config.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level: "ERROR",
	}
}

// UnmarshalJSON interface on LogConfig.
func (c *LogConfig) UnmarshalJSON(b []byte) error {
	type confAlias *LogConfig
	conf := confAlias(DefaultLogConfig())
	if err := json.Unmarshal(b, conf); err != nil {
		return err
	}
	*c = LogConfig(*conf)
	return nil
}

// Config tuple.
type Config struct {
	Planner *PlannerConfig `json:"planner"`
	Catalog *CatalogConfig `json:"catalog"`
	Admin   *AdminConfig   `json:"admin"`
	Monitor *MonitorConfig `json:"monitor"`
	Audit   *AuditConfig   `json:"audit"`
	Log     *LogConfig     `json:"log"`
}

// DefaultConfig returns a config with every section defaulted.
func DefaultConfig() *Config {
	conf := &Config{}
	checkConfig(conf)
	return conf
}

func checkConfig(conf *Config) {
	if conf.Planner == nil {
		conf.Planner = DefaultPlannerConfig()
	}

	if conf.Catalog == nil {
		conf.Catalog = DefaultCatalogConfig()
	}

	if conf.Admin == nil {
		conf.Admin = DefaultAdminConfig()
	}

	if conf.Monitor == nil {
		conf.Monitor = DefaultMonitorConfig()
	}

	if conf.Audit == nil {
		conf.Audit = DefaultAuditConfig()
	}

	if conf.Log == nil {
		conf.Log = DefaultLogConfig()
	}
}

// LoadConfig used to load the config from file.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	conf := &Config{}
	if err := json.Unmarshal([]byte(data), conf); err != nil {
		return nil, errors.WithStack(err)
	}
	checkConfig(conf)
	return conf, nil
}

// WriteConfig used to write the conf to file.
func WriteConfig(path string, conf interface{}) error {
	b, err := json.MarshalIndent(conf, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return xbase.WriteFile(path, b)
}
