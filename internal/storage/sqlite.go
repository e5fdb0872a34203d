package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the local SQLite cache of user snapshots and measurement history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "dietfit.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: an in-memory database is per-connection, and a single
	// writer avoids "database is locked".
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded migrations/NNN_*.sql files not yet recorded in
// schema_version, in ascending version order, each in its own transaction.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	applied, err := s.AppliedMigrations()
	if err != nil {
		return fmt.Errorf("listing applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}
		if done[version] {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return fmt.Errorf("applying migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", version, err)
	}
	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Snapshots ---

// SaveSnapshot inserts or replaces the snapshot for snap.UserID.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	var health sql.NullString
	if snap.HealthJSON != "" {
		health = sql.NullString{String: snap.HealthJSON, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO user_snapshots (user_id, email, user_json, health_json, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			user_json = excluded.user_json,
			health_json = COALESCE(excluded.health_json, user_snapshots.health_json),
			fetched_at = excluded.fetched_at`,
		snap.UserID, snap.Email, snap.UserJSON, health, fetchedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetSnapshot(userID int) (Snapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(`
		SELECT user_id, email, user_json, health_json, fetched_at
		FROM user_snapshots WHERE user_id = ?`, userID))
}

// LatestSnapshot returns the most recently fetched snapshot of any user.
func (s *Store) LatestSnapshot() (Snapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(`
		SELECT user_id, email, user_json, health_json, fetched_at
		FROM user_snapshots ORDER BY fetched_at DESC, user_id DESC LIMIT 1`))
}

func (s *Store) DeleteSnapshots() error {
	_, err := s.db.Exec(`DELETE FROM user_snapshots`)
	return err
}

func (s *Store) scanSnapshot(row *sql.Row) (Snapshot, error) {
	var snap Snapshot
	var health sql.NullString
	var fetchedAt string
	err := row.Scan(&snap.UserID, &snap.Email, &snap.UserJSON, &health, &fetchedAt)
	if err == sql.ErrNoRows {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	snap.HealthJSON = health.String
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing fetched_at: %w", err)
	}
	snap.FetchedAt = t
	return snap, nil
}

// --- Measurements ---

// SaveMeasurement records m, assigning an ID and timestamp when unset.
func (s *Store) SaveMeasurement(m Measurement) (Measurement, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := s.db.Exec(`
		INSERT INTO measurements (id, created_at, height_cm, weight_kg, gender, bmi, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CreatedAt.UTC().Format(time.RFC3339), m.HeightCm, m.WeightKg, m.Gender, m.BMI, m.Category,
	)
	if err != nil {
		return Measurement{}, err
	}
	return m, nil
}

// RecentMeasurements returns up to limit entries, newest first.
func (s *Store) RecentMeasurements(limit int) ([]Measurement, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, height_cm, weight_kg, gender, bmi, category
		FROM measurements ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Measurement
	for rows.Next() {
		var m Measurement
		var createdAt string
		if err := rows.Scan(&m.ID, &createdAt, &m.HeightCm, &m.WeightKg, &m.Gender, &m.BMI, &m.Category); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		m.CreatedAt = t
		results = append(results, m)
	}
	return results, rows.Err()
}
