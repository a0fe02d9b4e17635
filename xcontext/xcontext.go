/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package xcontext

import (
	"sort"
)

// RequestMode type.
type RequestMode int

const (
	// ReqInteractive mode runs the chunk queries ahead of any shared scan.
	// This is the default mode.
	ReqInteractive RequestMode = iota

	// ReqScan mode joins the shared scan of the tables in ScanInfo.
	ReqScan
)

func (m RequestMode) String() string {
	if m == ReqScan {
		return "scan"
	}
	return "interactive"
}

// ScanTableInfo tuple.
type ScanTableInfo struct {
	Db           string `json:"db"`
	Table        string `json:"table"`
	LockInMemory bool   `json:"lock-in-memory"`
	ScanRating   int    `json:"scan-rating"`
}

// ScanTableInfos represents the scan table slice.
type ScanTableInfos []ScanTableInfo

// Len impl.
func (s ScanTableInfos) Len() int { return len(s) }

// Swap impl.
func (s ScanTableInfos) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Less impl.
func (s ScanTableInfos) Less(i, j int) bool {
	if s[i].Db != s[j].Db {
		return s[i].Db < s[j].Db
	}
	return s[i].Table < s[j].Table
}

// ScanInfo is the scan classification of a query.
type ScanInfo struct {
	Tables     ScanTableInfos `json:"tables,omitempty"`
	ScanRating int            `json:"scan-rating"`
}

// NewScanInfo creates an empty ScanInfo.
func NewScanInfo() *ScanInfo {
	return &ScanInfo{}
}

// Add appends a table unless it is already present.
func (s *ScanInfo) Add(info ScanTableInfo) {
	for _, t := range s.Tables {
		if t.Db == info.Db && t.Table == info.Table {
			return
		}
	}
	s.Tables = append(s.Tables, info)
	sort.Sort(s.Tables)
}

// Clear drops every table and resets the rating.
func (s *ScanInfo) Clear() {
	s.Tables = nil
	s.ScanRating = 0
}

// Mode returns ReqScan when the query scans any table.
func (s *ScanInfo) Mode() RequestMode {
	if len(s.Tables) > 0 {
		return ReqScan
	}
	return ReqInteractive
}

// Clone returns a deep copy.
func (s *ScanInfo) Clone() *ScanInfo {
	out := &ScanInfo{ScanRating: s.ScanRating}
	if s.Tables != nil {
		out.Tables = append(ScanTableInfos(nil), s.Tables...)
	}
	return out
}
