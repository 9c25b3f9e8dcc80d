// Package indexdb keeps a queryable SQLite read-model of runs and digest
// checkpoints. Writes go through a single writer goroutine so the session
// loops never block on the database.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"triocell/internal/sim/engine"
	"triocell/internal/sim/session"
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
	reqRun reqKind = iota + 1
	reqProgress
	reqFlush
)

type req struct {
	kind reqKind

	run      session.RunRecord
	progress progressRow
	done     chan struct{}
}

type progressRow struct {
	RunID      string
	Tick       uint64
	Digest     string
	RecordedAt string
}

// ProgressRow is one persisted digest checkpoint.
type ProgressRow struct {
	Tick   uint64
	Digest string
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
		// Generous buffer: checkpoint bursts from many sessions must not
		// stall autoplay loops.
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
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
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
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			backend TEXT NOT NULL,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			init_mode TEXT NOT NULL,
			config_json TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_client ON runs(client_id, started_at);`,
		`CREATE TABLE IF NOT EXISTS run_progress (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			digest TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
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

func (s *SQLiteIndex) RecordRun(rec session.RunRecord) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqRun, run: rec}:
	default:
		// Drop if the indexer falls behind; the frame journal remains the
		// source of truth.
	}
	return nil
}

func (s *SQLiteIndex) RecordProgress(runID string, tick uint64, digest string) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	r := progressRow{
		RunID:      runID,
		Tick:       tick,
		Digest:     digest,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqProgress, progress: r}:
	default:
	}
	return nil
}

// Flush blocks until everything queued before the call is committed.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqFlush, done: done}
	<-done
}

// LoadRun returns the normalized config a run was started with.
func (s *SQLiteIndex) LoadRun(runID string) (session.RunRecord, error) {
	var (
		rec        session.RunRecord
		configJSON string
		startedAt  string
	)
	row := s.db.QueryRow(
		`SELECT run_id, client_id, backend, config_json, started_at FROM runs WHERE run_id = ?`, runID)
	if err := row.Scan(&rec.RunID, &rec.ClientID, &rec.Backend, &configJSON, &startedAt); err != nil {
		if err == sql.ErrNoRows {
			return rec, fmt.Errorf("run %s: not found", runID)
		}
		return rec, err
	}
	var cfg engine.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return rec, fmt.Errorf("run %s: config: %w", runID, err)
	}
	rec.Config = cfg
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		rec.StartedAt = t
	}
	return rec, nil
}

// Progress returns the digest checkpoints for a run, ordered by tick.
func (s *SQLiteIndex) Progress(runID string) ([]ProgressRow, error) {
	rows, err := s.db.Query(
		`SELECT tick, digest FROM run_progress WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProgressRow
	for rows.Next() {
		var r ProgressRow
		var tick int64
		if err := rows.Scan(&tick, &r.Digest); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,client_id,backend,seed,width,height,init_mode,config_json,started_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertProgress, _ := s.db.Prepare(`INSERT OR REPLACE INTO run_progress(run_id,tick,digest,recorded_at) VALUES(?,?,?,?)`)
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
		if insertProgress != nil {
			_ = insertProgress.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}

		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqRun:
			rec := r.run
			cfgJSON, _ := json.Marshal(rec.Config)
			if insertRun != nil {
				if _, err := tx.Stmt(insertRun).Exec(
					rec.RunID,
					rec.ClientID,
					rec.Backend,
					rec.Config.Seed,
					rec.Config.Width,
					rec.Config.Height,
					string(rec.Config.InitMode),
					string(cfgJSON),
					rec.StartedAt.UTC().Format(time.RFC3339Nano),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqProgress:
			p := r.progress
			if insertProgress != nil {
				if _, err := tx.Stmt(insertProgress).Exec(
					p.RunID,
					int64(p.Tick),
					p.Digest,
					p.RecordedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
