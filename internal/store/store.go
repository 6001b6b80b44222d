// Package store persists evaluation results so repeated benchmark runs
// build up a local leaderboard.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/auralab/aura-bench/internal/qa"
)

const defaultLimit = 50

type Store struct {
	db *sql.DB
}

// Entry is one evaluated model run on the benchmark.
type Entry struct {
	ID                 int64
	Model              string
	JudgeModel         string
	Total              int
	Correct            int
	AnswerAccuracy     float64
	FactualConsistency float64
	CoreInference      float64
	EvalDate           time.Time
}

// EntryFromSummary builds a leaderboard entry from an evaluation summary.
func EntryFromSummary(model, judgeModel string, s *qa.Summary) (*Entry, error) {
	if s == nil {
		return nil, errors.New("store: nil summary")
	}
	return &Entry{
		Model:              strings.TrimSpace(model),
		JudgeModel:         strings.TrimSpace(judgeModel),
		Total:              s.Total,
		Correct:            s.Correct,
		AnswerAccuracy:     s.AnswerAccuracy,
		FactualConsistency: s.FactualConsistency,
		CoreInference:      s.CoreInference,
	}, nil
}

func New(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("store: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("store: nil db")
	}

	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS eval_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model TEXT NOT NULL,
			judge_model TEXT NOT NULL,
			total INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			answer_accuracy REAL NOT NULL,
			factual_consistency REAL NOT NULL,
			core_inference REAL NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_model ON eval_entries(model)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_date ON eval_entries(eval_date)`,
		`CREATE TABLE IF NOT EXISTS generation_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			model TEXT NOT NULL,
			items INTEGER NOT NULL,
			generated INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_genruns_category ON generation_runs(category)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, entry *Entry) error {
	if s == nil || s.db == nil {
		return errors.New("store: nil store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if entry == nil {
		return errors.New("store: nil entry")
	}

	model := strings.TrimSpace(entry.Model)
	if model == "" {
		return errors.New("store: missing model")
	}

	evalDate := entry.EvalDate
	if evalDate.IsZero() {
		evalDate = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO eval_entries (
			model, judge_model, total, correct,
			answer_accuracy, factual_consistency, core_inference, eval_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, model, strings.TrimSpace(entry.JudgeModel), entry.Total, entry.Correct,
		entry.AnswerAccuracy, entry.FactualConsistency, entry.CoreInference,
		evalDate.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: insert entry: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.EvalDate = evalDate
	entry.Model = model
	return nil
}

// Leaderboard returns the best runs ordered by answer accuracy, breaking
// ties on the reasoning scores.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store: nil store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, judge_model, total, correct,
			answer_accuracy, factual_consistency, core_inference, eval_date
		FROM eval_entries
		ORDER BY answer_accuracy DESC, core_inference DESC, factual_consistency DESC, eval_date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query leaderboard: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// ModelHistory returns every run of one model, newest first.
func (s *Store) ModelHistory(ctx context.Context, model string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store: nil store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("store: empty model")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, judge_model, total, correct,
			answer_accuracy, factual_consistency, core_inference, eval_date
		FROM eval_entries
		WHERE model = ?
		ORDER BY eval_date DESC
	`, model)
	if err != nil {
		return nil, fmt.Errorf("store: query model history: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// GenerationRun records one pass of the QA generator over a dataset.
type GenerationRun struct {
	ID         int64
	Category   string
	Model      string
	Items      int
	Generated  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (s *Store) SaveGenerationRun(ctx context.Context, run *GenerationRun) error {
	if s == nil || s.db == nil {
		return errors.New("store: nil store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if run == nil {
		return errors.New("store: nil run")
	}

	category := strings.TrimSpace(run.Category)
	if category == "" {
		return errors.New("store: missing category")
	}

	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	started := run.StartedAt
	if started.IsZero() {
		started = finished
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_runs (
			category, model, items, generated, failed, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, category, strings.TrimSpace(run.Model), run.Items, run.Generated, run.Failed,
		started.UTC().UnixMilli(), finished.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: insert generation run: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	run.Category = category
	run.StartedAt = started
	run.FinishedAt = finished
	return nil
}

// GenerationRuns returns recent generator passes, newest first.
func (s *Store) GenerationRuns(ctx context.Context, limit int) ([]GenerationRun, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store: nil store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, model, items, generated, failed, started_at, finished_at
		FROM generation_runs
		ORDER BY finished_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query generation runs: %w", err)
	}
	defer rows.Close()

	var out []GenerationRun
	for rows.Next() {
		var r GenerationRun
		var startedMS, finishedMS int64
		if err := rows.Scan(
			&r.ID,
			&r.Category,
			&r.Model,
			&r.Items,
			&r.Generated,
			&r.Failed,
			&startedMS,
			&finishedMS,
		); err != nil {
			return nil, fmt.Errorf("store: scan generation run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedMS).UTC()
		r.FinishedAt = time.UnixMilli(finishedMS).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: scan rows: %w", err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var evalDateMS int64
		if err := rows.Scan(
			&e.ID,
			&e.Model,
			&e.JudgeModel,
			&e.Total,
			&e.Correct,
			&e.AnswerAccuracy,
			&e.FactualConsistency,
			&e.CoreInference,
			&evalDateMS,
		); err != nil {
			return nil, fmt.Errorf("store: scan entry: %w", err)
		}
		e.EvalDate = time.UnixMilli(evalDateMS).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: scan rows: %w", err)
	}
	return out, nil
}
