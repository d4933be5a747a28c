// Package sqlite provides a SQLite implementation of the TreeStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.TreeStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enabling foreign keys")
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enabling WAL mode")
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "setting busy timeout")
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Trees (named family timelines; the timeline itself is the event log)
	CREATE TABLE IF NOT EXISTS trees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trees_normalized ON trees(normalized_name);

	-- Event log (append-only; (slice_index, seq) is the resolution order)
	CREATE TABLE IF NOT EXISTS events (
		tree_id TEXT NOT NULL,
		slice_index INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (tree_id, slice_index, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(tree_id, type);

	-- Opinion profiles (selected opinion per dispute, stored as JSON)
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		selections TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Audit log (tracks mutating actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		tree_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_tree ON audit_log(tree_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return errors.Wrap(err, "creating schema")
	}
	return nil
}

// SaveTree saves or updates tree metadata.
func (r *Repository) SaveTree(ctx context.Context, tree *entities.Tree) error {
	query := `
		INSERT INTO trees (id, name, normalized_name, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			version = excluded.version,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		tree.ID,
		tree.Name,
		tree.NormalizedName,
		tree.Version,
		tree.CreatedAt,
		tree.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "saving tree")
	}
	return nil
}

// FindTreeByID finds a tree by its ID.
func (r *Repository) FindTreeByID(ctx context.Context, treeID string) (*entities.Tree, error) {
	query := `
		SELECT id, name, normalized_name, version, created_at, updated_at
		FROM trees
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, treeID)

	var tree entities.Tree
	err := row.Scan(
		&tree.ID,
		&tree.Name,
		&tree.NormalizedName,
		&tree.Version,
		&tree.CreatedAt,
		&tree.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning tree")
	}
	return &tree, nil
}

// FindTreeByName finds a tree by its normalized name (case-insensitive).
func (r *Repository) FindTreeByName(ctx context.Context, name string) (*entities.Tree, error) {
	normalizedName := entities.NormalizeName(name)
	query := `
		SELECT id, name, normalized_name, version, created_at, updated_at
		FROM trees
		WHERE normalized_name = ?
	`
	row := r.db.QueryRowContext(ctx, query, normalizedName)

	var tree entities.Tree
	err := row.Scan(
		&tree.ID,
		&tree.Name,
		&tree.NormalizedName,
		&tree.Version,
		&tree.CreatedAt,
		&tree.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning tree")
	}
	return &tree, nil
}

// ListTrees lists all trees, oldest first.
func (r *Repository) ListTrees(ctx context.Context) ([]*entities.Tree, error) {
	query := `
		SELECT id, name, normalized_name, version, created_at, updated_at
		FROM trees
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying trees")
	}
	defer rows.Close()

	result := make([]*entities.Tree, 0, 8)
	for rows.Next() {
		var tree entities.Tree
		if err := rows.Scan(
			&tree.ID,
			&tree.Name,
			&tree.NormalizedName,
			&tree.Version,
			&tree.CreatedAt,
			&tree.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scanning tree")
		}
		result = append(result, &tree)
	}
	return result, rows.Err()
}

// DeleteTree deletes a tree and its event log.
func (r *Repository) DeleteTree(ctx context.Context, treeID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE tree_id = ?`, treeID); err != nil {
		return errors.Wrap(err, "deleting tree events")
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM trees WHERE id = ?`, treeID)
	if err != nil {
		return errors.Wrap(err, "deleting tree")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "tree not found: %s", treeID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// AppendEvents appends events at the given slice of a tree's timeline. The
// log is append-only: sliceIndex must be the latest recorded slice or beyond
// it. All events land in one transaction, numbered after any events already
// recorded at that slice.
func (r *Repository) AppendEvents(ctx context.Context, treeID string, sliceIndex int, events []entities.Event) error {
	tree, err := r.FindTreeByID(ctx, treeID)
	if err != nil {
		return err
	}
	if tree == nil {
		return errors.Wrapf(errors.ErrNotFound, "tree not found: %s", treeID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	var latest int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(slice_index), -1) FROM events WHERE tree_id = ?`, treeID)
	if err := row.Scan(&latest); err != nil {
		return errors.Wrap(err, "scanning latest slice")
	}
	if sliceIndex < 0 || sliceIndex < latest {
		return errors.Wrapf(errors.ErrOutOfRange, "cannot append at slice %d: latest recorded slice is %d", sliceIndex, latest)
	}

	var maxSeq int
	row = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) FROM events WHERE tree_id = ? AND slice_index = ?`, treeID, sliceIndex)
	if err := row.Scan(&maxSeq); err != nil {
		return errors.Wrap(err, "scanning latest seq")
	}

	insert := `
		INSERT INTO events (tree_id, slice_index, seq, type, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := timeNow()
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "marshaling event")
		}
		if _, err := tx.ExecContext(ctx, insert,
			treeID,
			sliceIndex,
			maxSeq+1+i,
			string(event.Type),
			string(payload),
			now,
		); err != nil {
			return errors.Wrap(err, "inserting event")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// LoadGraph reconstructs the temporal graph from the event log. Events come
// back ordered by (slice_index, seq), which is exactly the order they were
// appended in.
func (r *Repository) LoadGraph(ctx context.Context, treeID string) (*entities.TemporalGraph, error) {
	tree, err := r.FindTreeByID(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "tree not found: %s", treeID)
	}

	query := `
		SELECT slice_index, type, payload
		FROM events
		WHERE tree_id = ?
		ORDER BY slice_index ASC, seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, treeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	defer rows.Close()

	var slices []entities.Slice
	for rows.Next() {
		var sliceIndex int
		var eventType, payload string
		if err := rows.Scan(&sliceIndex, &eventType, &payload); err != nil {
			return nil, errors.Wrap(err, "scanning event")
		}

		var event entities.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, errors.Wrap(err, "unmarshaling event payload")
		}
		event.Type = entities.EventType(eventType)

		// Intermediate slices with no events reconstruct as empty.
		for len(slices) <= sliceIndex {
			slices = append(slices, entities.Slice{})
		}
		slices[sliceIndex].Events = append(slices[sliceIndex].Events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating events")
	}

	return &entities.TemporalGraph{
		ID:      tree.ID,
		Version: tree.Version,
		Slices:  slices,
	}, nil
}

// CountEvents returns the total number of events recorded for a tree.
func (r *Repository) CountEvents(ctx context.Context, treeID string) (int, error) {
	query := `SELECT COUNT(*) FROM events WHERE tree_id = ?`
	var count int
	err := r.db.QueryRowContext(ctx, query, treeID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "counting events")
	}
	return count, nil
}

// SaveProfile saves or updates an opinion profile.
func (r *Repository) SaveProfile(ctx context.Context, profile *entities.OpinionProfile) error {
	selections, err := json.Marshal(profile.Selections)
	if err != nil {
		return errors.Wrap(err, "marshaling selections")
	}

	query := `
		INSERT INTO profiles (id, name, normalized_name, selections, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			normalized_name = excluded.normalized_name,
			selections = excluded.selections
	`
	_, err = r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Name,
		entities.NormalizeName(profile.Name),
		string(selections),
		timeNow(),
	)
	if err != nil {
		return errors.Wrap(err, "saving profile")
	}
	return nil
}

// FindProfile finds a profile by its ID.
func (r *Repository) FindProfile(ctx context.Context, profileID string) (*entities.OpinionProfile, error) {
	query := `
		SELECT id, name, selections
		FROM profiles
		WHERE id = ?
	`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, profileID))
}

// FindProfileByName finds a profile by name (case-insensitive).
func (r *Repository) FindProfileByName(ctx context.Context, name string) (*entities.OpinionProfile, error) {
	query := `
		SELECT id, name, selections
		FROM profiles
		WHERE normalized_name = ?
	`
	return r.scanProfile(r.db.QueryRowContext(ctx, query, entities.NormalizeName(name)))
}

// scanProfile is a helper to scan a single profile row.
func (r *Repository) scanProfile(row *sql.Row) (*entities.OpinionProfile, error) {
	var profile entities.OpinionProfile
	var selections string

	err := row.Scan(&profile.ID, &profile.Name, &selections)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning profile")
	}

	if err := json.Unmarshal([]byte(selections), &profile.Selections); err != nil {
		return nil, errors.Wrap(err, "unmarshaling selections")
	}
	return &profile, nil
}

// ListProfiles lists all profiles, sorted by name.
func (r *Repository) ListProfiles(ctx context.Context) ([]entities.OpinionProfile, error) {
	query := `
		SELECT id, name, selections
		FROM profiles
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	defer rows.Close()

	profiles := make([]entities.OpinionProfile, 0, 8)
	for rows.Next() {
		var profile entities.OpinionProfile
		var selections string

		if err := rows.Scan(&profile.ID, &profile.Name, &selections); err != nil {
			return nil, errors.Wrap(err, "scanning profile")
		}
		if err := json.Unmarshal([]byte(selections), &profile.Selections); err != nil {
			return nil, errors.Wrap(err, "unmarshaling selections")
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// DeleteProfile deletes a profile by its ID.
func (r *Repository) DeleteProfile(ctx context.Context, profileID string) error {
	query := `DELETE FROM profiles WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, profileID)
	if err != nil {
		return errors.Wrap(err, "deleting profile")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "profile not found: %s", profileID)
	}
	return nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action string, treeID string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return errors.Wrap(err, "marshaling details")
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var treeIDPtr sql.NullString
	if treeID != "" {
		treeIDPtr = sql.NullString{String: treeID, Valid: true}
	}

	query := `INSERT INTO audit_log (action, tree_id, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, treeIDPtr, detailsJSON)
	if err != nil {
		return errors.Wrap(err, "logging action")
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific tree.
func (r *Repository) FindAuditLog(ctx context.Context, treeID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, tree_id, details, created_at
		FROM audit_log
		WHERE tree_id = ?
		ORDER BY created_at DESC
	`
	return r.queryAuditLog(ctx, query, treeID)
}

// FindAuditLogByAction finds audit log entries by action type.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, tree_id, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying audit log")
	}
	defer rows.Close()

	// Use limit parameter as capacity hint if available
	var entries []entities.AuditEntry
	if len(args) > 0 {
		if limit, ok := args[len(args)-1].(int); ok && limit > 0 {
			entries = make([]entities.AuditEntry, 0, limit)
		}
	}

	for rows.Next() {
		var entry entities.AuditEntry
		var treeID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&treeID,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scanning audit entry")
		}

		entry.TreeID = treeID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, errors.Wrap(err, "unmarshaling details")
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
