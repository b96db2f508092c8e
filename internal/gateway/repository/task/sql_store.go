package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the driver and placeholder format of a SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite"
)

const (
	tasksTable   = "analysis_tasks"
	resultsTable = "analysis_results"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + tasksTable + ` (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		message    TEXT NOT NULL,
		result_id  TEXT NOT NULL DEFAULT '',
		error      TEXT NOT NULL DEFAULT '',
		retryable  INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + resultsTable + ` (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL,
		report     TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
}

// SQLStore keeps tasks and results in postgres or sqlite. Timestamps are
// stored as unix milliseconds so both dialects share one schema.
type SQLStore struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

// OpenPostgres connects through pgx and creates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open(string(DialectPostgres), strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewSQLStore(ctx, db, DialectPostgres)
}

// OpenSQLite opens a sqlite file, or an in-memory database for ":memory:".
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open(string(DialectSQLite), strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: every pooled connection to ":memory:" would be its own database.
	db.SetMaxOpenConns(1)
	return NewSQLStore(ctx, db, DialectSQLite)
}

// placeholders returns $n for postgres and ? otherwise.
func placeholders(dialect Dialect) sq.PlaceholderFormat {
	if dialect == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	s := &SQLStore{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(placeholders(dialect)),
		now: time.Now,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) Create(ctx context.Context, t Task) error {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return fmt.Errorf("task_id is required")
	}
	if t.Status == "" {
		t.Status = StatusProcessing
	}
	if t.Message == "" {
		t.Message = MessageProcessing
	}
	if _, err := s.Get(ctx, t.ID); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	now := s.now().UnixMilli()
	query, args, err := s.sb.Insert(tasksTable).
		Columns("id", "status", "message", "result_id", "error", "retryable", "created_at", "updated_at").
		Values(t.ID, string(t.Status), t.Message, t.ResultID, t.Error, boolInt(t.Retryable), now, now).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, taskID string) (Task, error) {
	query, args, err := s.sb.
		Select("id", "status", "message", "result_id", "error", "retryable", "created_at", "updated_at").
		From(tasksTable).
		Where(sq.Eq{"id": strings.TrimSpace(taskID)}).
		ToSql()
	if err != nil {
		return Task{}, err
	}
	var (
		t                Task
		status           string
		retryable        int
		created, updated int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&t.ID, &status, &t.Message, &t.ResultID, &t.Error, &retryable, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	t.Status = Status(status)
	t.Retryable = retryable != 0
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()
	return t, nil
}

func (s *SQLStore) Complete(ctx context.Context, taskID, resultID string, result []byte) error {
	resultID = strings.TrimSpace(resultID)
	if resultID == "" {
		return fmt.Errorf("result_id is required")
	}
	taskID = strings.TrimSpace(taskID)
	now := s.now().UnixMilli()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.finish(ctx, tx, taskID, sq.Eq{
			"status":     string(StatusCompleted),
			"message":    MessageCompleted,
			"result_id":  resultID,
			"updated_at": now,
		}); err != nil {
			return err
		}
		query, args, err := s.sb.Insert(resultsTable).
			Columns("id", "task_id", "report", "created_at").
			Values(resultID, taskID, string(result), now).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) Fail(ctx context.Context, taskID, message string, retryable bool) error {
	taskID = strings.TrimSpace(taskID)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.finish(ctx, tx, taskID, sq.Eq{
			"status":     string(StatusFailed),
			"message":    message,
			"error":      message,
			"retryable":  boolInt(retryable),
			"updated_at": s.now().UnixMilli(),
		})
	})
}

func (s *SQLStore) Result(ctx context.Context, resultID string) ([]byte, error) {
	query, args, err := s.sb.Select("report").
		From(resultsTable).
		Where(sq.Eq{"id": strings.TrimSpace(resultID)}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var report string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return []byte(report), nil
}

// finish moves a processing task to a terminal state.
func (s *SQLStore) finish(ctx context.Context, tx *sql.Tx, taskID string, set sq.Eq) error {
	query, args, err := s.sb.Update(tasksTable).
		SetMap(set).
		Where(sq.Eq{"id": taskID, "status": string(StatusProcessing)}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n > 0 {
		return nil
	}

	query, args, err = s.sb.Select("1").From(tasksTable).Where(sq.Eq{"id": taskID}).ToSql()
	if err != nil {
		return err
	}
	var one int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	return ErrNotProcessing
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
