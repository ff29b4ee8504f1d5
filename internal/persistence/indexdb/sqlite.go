// Package indexdb keeps a secondary sqlite read-model of the streaming
// host: per-tick summaries and snapshot metadata. It never feeds back
// into the engine; losing it costs queries, not world state.
package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"corsair.world/internal/persistence/snapshot"
	"corsair.world/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
	reqFlush
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	snapshot snapshotRow
	flush    chan struct{}
}

type snapshotRow struct {
	Tick      uint64
	Path      string
	Seed      int64
	Generated int
	Active    int
	Water     int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			viewer_chunk TEXT NOT NULL,
			spawned INTEGER NOT NULL,
			despawned INTEGER NOT NULL,
			generated INTEGER NOT NULL,
			deferred INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_viewer_chunk ON ticks(viewer_chunk);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			generated INTEGER NOT NULL,
			active INTEGER NOT NULL,
			water INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the
		// source of truth.
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:      snap.Header.Tick,
		Path:      path,
		Seed:      snap.Seed,
		Generated: len(snap.Generated),
		Active:    len(snap.Active),
		Water:     len(snap.Water),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

// Flush blocks until everything queued so far has been committed. Meant
// for tests and shutdown paths, not the hot loop.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqFlush, flush: done}
	<-done
}

func (s *SQLiteIndex) loop() {
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,viewer_chunk,spawned,despawned,generated,deferred,skipped,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,generated,active,water,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	for r := range s.ch {
		switch r.kind {
		case reqTick:
			raw, _ := json.Marshal(r.tick)
			if insertTick != nil {
				_, _ = insertTick.Exec(r.tick.Tick, r.tick.ViewerChunk,
					len(r.tick.Spawned), len(r.tick.Despawned),
					r.tick.Generated, r.tick.Deferred, r.tick.Skipped, string(raw))
			}
		case reqSnapshot:
			if insertSnapshot != nil {
				_, _ = insertSnapshot.Exec(r.snapshot.Tick, r.snapshot.Path, r.snapshot.Seed,
					r.snapshot.Generated, r.snapshot.Active, r.snapshot.Water,
					time.Now().UTC().Format(time.RFC3339Nano))
			}
		case reqFlush:
			close(r.flush)
		}
	}
}

// TickCount reports how many ticks have been indexed.
func (s *SQLiteIndex) TickCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&n)
	return n, err
}

// LatestSnapshotPath returns the most recent recorded snapshot, or ""
// when none exists.
func (s *SQLiteIndex) LatestSnapshotPath() (string, error) {
	var p string
	err := s.db.QueryRow(`SELECT path FROM snapshots ORDER BY tick DESC LIMIT 1`).Scan(&p)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return p, err
}
