/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proto

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DbTable tuple.
type DbTable struct {
	Db    string `json:"db"`
	Table string `json:"table"`
}

// SubChunks describes the subchunk substitution a worker performs: every
// query of the fragment runs once per id, with the tables renamed.
type SubChunks struct {
	DbTables []DbTable `json:"dbtables"`
	IDs      []int32   `json:"ids"`
}

// Fragment is a group of queries whose results land in one table.
type Fragment struct {
	ResultTable string     `json:"resulttable"`
	Queries     []string   `json:"queries"`
	SubChunks   *SubChunks `json:"subchunks,omitempty"`
}

// ScanTable tuple.
type ScanTable struct {
	Db           string `json:"db"`
	Table        string `json:"table"`
	LockInMemory bool   `json:"lockinmemory"`
	ScanRating   int    `json:"scanrating"`
}

// TaskMsg is the message sent to the worker owning a chunk.
type TaskMsg struct {
	Session         uint64      `json:"session"`
	QueryID         uint64      `json:"queryid"`
	JobID           int         `json:"jobid"`
	AttemptCount    int         `json:"attemptcount"`
	Db              string      `json:"db"`
	ChunkID         int32       `json:"chunkid"`
	ScanPriority    int         `json:"scanpriority"`
	ScanInteractive bool        `json:"scaninteractive"`
	ScanTables      []ScanTable `json:"scantables,omitempty"`
	Fragments       []Fragment  `json:"fragments"`
}

// Validate checks the message is dispatchable.
func (m *TaskMsg) Validate() error {
	if m.Db == "" {
		return errors.Errorf("proto.taskmsg[%d:%d].db.empty", m.QueryID, m.JobID)
	}
	if len(m.Fragments) == 0 {
		return errors.Errorf("proto.taskmsg[%d:%d].fragments.empty", m.QueryID, m.JobID)
	}
	for i, f := range m.Fragments {
		if len(f.Queries) == 0 {
			return errors.Errorf("proto.taskmsg[%d:%d].fragment[%d].queries.empty", m.QueryID, m.JobID, i)
		}
		if f.ResultTable == "" {
			return errors.Errorf("proto.taskmsg[%d:%d].fragment[%d].resulttable.empty", m.QueryID, m.JobID, i)
		}
	}
	return nil
}

// Encode serializes the message.
func Encode(m *TaskMsg) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Decode parses a serialized message.
func Decode(data []byte) (*TaskMsg, error) {
	m := &TaskMsg{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
