package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// FileName is the snapshot database inside the data directory
const FileName = "tasks.db"

// Store keeps the last merged task list so the client can show it before
// the service answers
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite snapshot database in dataDir
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, FileName))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// WAL is best effort; the snapshot is only a cache
	_, _ = db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA journal_mode = WAL;
	`)

	s := &Store{db: db}
	if err := s.initTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot table: %w", err)
	}
	return s, nil
}

func (s *Store) initTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS tasks (
		task_id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		filename TEXT NOT NULL,
		status TEXT NOT NULL,
		progress REAL NOT NULL,
		file_size TEXT,
		error_message TEXT,
		created_at TEXT,
		max_threads INTEGER,
		speed_limit REAL
	);`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTasks replaces the snapshot with tasks in one transaction
func (s *Store) SaveTasks(ctx context.Context, tasks []model.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks
		(task_id, url, filename, status, progress, file_size, error_message, created_at, max_threads, speed_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, task := range tasks {
		var createdAt sql.NullString
		if !task.CreatedAt.IsZero() {
			createdAt = sql.NullString{String: task.CreatedAt.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		var speedLimit sql.NullFloat64
		if task.SpeedLimit != nil {
			speedLimit = sql.NullFloat64{Float64: *task.SpeedLimit, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, task.ID, task.URL, task.Filename, string(task.Status), task.Progress,
			task.FileSize, task.ErrorMessage, createdAt, task.MaxThreads, speedLimit); err != nil {
			return fmt.Errorf("save task %s: %w", task.ID, err)
		}
	}
	return tx.Commit()
}

// LoadTasks returns the last snapshot, newest first
func (s *Store) LoadTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id, url, filename, status, progress, file_size,
		error_message, created_at, max_threads, speed_limit FROM tasks ORDER BY created_at DESC, task_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			task         model.Task
			status       string
			fileSize     sql.NullString
			errorMessage sql.NullString
			createdAt    sql.NullString
			maxThreads   sql.NullInt64
			speedLimit   sql.NullFloat64
		)
		if err := rows.Scan(&task.ID, &task.URL, &task.Filename, &status, &task.Progress, &fileSize,
			&errorMessage, &createdAt, &maxThreads, &speedLimit); err != nil {
			return nil, err
		}
		task.Status = model.TaskStatus(status)
		task.FileSize = fileSize.String
		task.ErrorMessage = errorMessage.String
		task.CreatedAt = model.ParseTimestamp(createdAt.String)
		task.MaxThreads = int(maxThreads.Int64)
		if speedLimit.Valid {
			limit := speedLimit.Float64
			task.SpeedLimit = &limit
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}
