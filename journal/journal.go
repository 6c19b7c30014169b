/* Copyright 2026 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package journal records performances in a BoltDB file: one bucket
// per session, one entry per handled input, keyed by sequence number.
//
// A journal can be replayed to reproduce a performance (given the
// same configuration and seed).
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/Comcast/riffs/core"

	bolt "go.etcd.io/bbolt"
)

// NoSuchSession is returned when a session's bucket doesn't exist.
var NoSuchSession = errors.New("no such session")

// Entry is one handled input.
type Entry struct {
	// Seq is assigned by Record.
	Seq uint64 `json:"seq"`

	// At is the host clock time in milliseconds when the input
	// was routed.
	At int64 `json:"at"`

	// Recorded is the wall-clock time (RFC3339Nano) when Record
	// wrote the entry.
	Recorded string `json:"recorded,omitempty"`

	Input    interface{}            `json:"input,omitempty"`
	Events   []core.Event           `json:"events,omitempty"`
	Emitted  []core.ActionRef       `json:"emitted"`
	Failures []string               `json:"failures,omitempty"`
	State    *core.PerformanceState `json:"state,omitempty"`
}

// Journal is a BoltDB-backed performance journal.
type Journal struct {
	Debug bool

	filename string
	db       *bolt.DB
}

func NewJournal(filename string) *Journal {
	return &Journal{
		filename: filename,
	}
}

// Open opens (or creates) the journal file.
func (j *Journal) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(j.filename, 0644, opts)
	if err != nil {
		return err
	}
	j.db = db
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) logf(format string, args ...interface{}) {
	if j.Debug {
		log.Printf("Journal."+format, args...)
	}
}

func seqKey(n uint64) []byte {
	bs := make([]byte, 8)
	binary.BigEndian.PutUint64(bs, n)
	return bs
}

// Record appends an entry to the given session, creating the session
// if necessary.  Record sets the entry's Seq.
func (j *Journal) Record(ctx context.Context, session string, e *Entry) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(session))
		if err != nil {
			return err
		}
		n, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.Seq = n
		if e.Recorded == "" {
			e.Recorded = core.Timestamp()
		}
		js, err := json.Marshal(e)
		if err != nil {
			return err
		}
		j.logf("Record %s %d %s", session, n, js)
		return b.Put(seqKey(n), js)
	})
}

// Entries returns the session's entries in order.
func (j *Journal) Entries(ctx context.Context, session string) ([]*Entry, error) {
	acc := make([]*Entry, 0, 32)
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(session))
		if b == nil {
			return NoSuchSession
		}
		c := b.Cursor()
		for _, bs := c.First(); bs != nil; _, bs = c.Next() {
			var e Entry
			if err := json.Unmarshal(bs, &e); err != nil {
				return err
			}
			acc = append(acc, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	j.logf("Entries %s found %d", session, len(acc))
	return acc, nil
}

// Sessions returns the names of all sessions in key order.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 8)
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	return acc, err
}

// Remove deletes a session.
func (j *Journal) Remove(ctx context.Context, session string) error {
	j.logf("Remove %s", session)
	return j.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(session)); err != nil {
			if err == bolt.ErrBucketNotFound {
				return NoSuchSession
			}
			return err
		}
		return nil
	})
}
