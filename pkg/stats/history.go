/*
Copyright 2026 The Filebench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stats

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// HistoryWriter accumulates a time series of snapshots on disk, keyed
// by epoch-nanoseconds, so repeated "stats snap" calls can be
// inspected offline after a run finishes (spec.md §4.7).
type HistoryWriter struct {
	db *leveldb.DB
}

// OpenHistory opens (creating if absent) a goleveldb database at path.
func OpenHistory(path string) (*HistoryWriter, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("stats: open history db %s: %w", path, err)
	}
	return &HistoryWriter{db: db}, nil
}

// Close closes the underlying database.
func (h *HistoryWriter) Close() error { return h.db.Close() }

// Append records snaps under a monotonically increasing key so
// lexicographic iteration yields chronological order.
func (h *HistoryWriter) Append(epochNanos int64, snaps []Snapshot) error {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(epochNanos))
	val, err := json.Marshal(snaps)
	if err != nil {
		return err
	}
	return h.db.Put(key, val, nil)
}

// All replays every recorded snapshot batch in chronological order.
func (h *HistoryWriter) All() ([][]Snapshot, error) {
	iter := h.db.NewIterator(nil, nil)
	defer iter.Release()
	var out [][]Snapshot
	for iter.Next() {
		var snaps []Snapshot
		if err := json.Unmarshal(iter.Value(), &snaps); err != nil {
			return nil, err
		}
		out = append(out, snaps)
	}
	return out, iter.Error()
}
