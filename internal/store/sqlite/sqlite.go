package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/store"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const defaultListLimit = 20

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens the database at dbPath and applies pending migrations.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup opens the database and runs setup before the first query.
// Tests pass Migrate against ":memory:".
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordMission archives a finished room summary.
func (s *SQLiteStore) RecordMission(ctx context.Context, summary core.Summary) error {
	_, err := s.SaveMission(ctx, store.MissionFromSummary(summary))
	return err
}

// SaveMission inserts a mission and returns its id.
func (s *SQLiteStore) SaveMission(ctx context.Context, m store.Mission) (int64, error) {
	members, err := json.Marshal(nonNil(m.Members))
	if err != nil {
		return 0, fmt.Errorf("encode members: %w", err)
	}
	solved, err := json.Marshal(nonNil(m.Solved))
	if err != nil {
		return 0, fmt.Errorf("encode solved stages: %w", err)
	}

	query := `
		INSERT INTO missions (code, final_time, max_time, outcome, members, solved_stages, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		m.Code,
		m.FinalTime,
		m.MaxTime,
		m.Outcome,
		string(members),
		string(solved),
		m.StartedAt.UnixMilli(),
		m.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert mission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// ListMissions returns the most recently completed missions first.
func (s *SQLiteStore) ListMissions(ctx context.Context, limit int) ([]store.Mission, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, code, final_time, max_time, outcome, members, solved_stages, started_at, completed_at
		FROM missions
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	var missions []store.Mission
	for rows.Next() {
		var (
			m                 store.Mission
			members, solved   string
			started, complete int64
		)
		if err := rows.Scan(&m.ID, &m.Code, &m.FinalTime, &m.MaxTime, &m.Outcome, &members, &solved, &started, &complete); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &m.Members); err != nil {
			return nil, fmt.Errorf("decode members of mission %d: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(solved), &m.Solved); err != nil {
			return nil, fmt.Errorf("decode solved stages of mission %d: %w", m.ID, err)
		}
		m.StartedAt = time.UnixMilli(started).UTC()
		m.CompletedAt = time.UnixMilli(complete).UTC()
		missions = append(missions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missions: %w", err)
	}

	return missions, nil
}

// CountMissions returns the number of archived missions.
func (s *SQLiteStore) CountMissions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM missions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count missions: %w", err)
	}
	return n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
