// Package store persists the console's last-known view of the remote
// board/ticket/tag collections to a local SQLite database. The snapshot
// lets the UI render immediately on startup, before the first remote
// fetch completes; the remote store remains the source of truth.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/arenahub/trackboard/internal/model"
)

// activeBoardKey is the meta-table key holding the active board id, so a
// relaunch restores the same board a deep link would select.
const activeBoardKey = "active_board"

// SnapshotStore is the SQLite-backed local cache.
type SnapshotStore struct {
	db *sqlx.DB
}

// NewSnapshotStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// WAL improves concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SnapshotStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SnapshotStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ReplaceBoards replaces the entire board snapshot, preserving listing
// order via the position column.
func (s *SnapshotStore) ReplaceBoards(ctx context.Context, boards []model.Board) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM boards"); err != nil {
		return fmt.Errorf("clearing boards: %w", err)
	}

	const query = `
		INSERT INTO boards (id, name, description, color, is_default, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for i, b := range boards {
		_, err := tx.ExecContext(ctx, query,
			b.ID, b.Name, b.Description, b.Color,
			boolToInt(b.IsDefault), i, b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting board %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// LoadBoards retrieves the board snapshot in listing order.
func (s *SnapshotStore) LoadBoards(ctx context.Context) ([]model.Board, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, name, description, color, is_default, created_at, updated_at FROM boards ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	defer rows.Close()

	var boards []model.Board
	for rows.Next() {
		var (
			b         model.Board
			isDefault int
		)
		err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Color,
			&isDefault, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning board row: %w", err)
		}
		b.IsDefault = isDefault != 0
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// ReplaceBoardTickets replaces the snapshot entries for a single board.
// Tickets cached for other boards are untouched.
func (s *SnapshotStore) ReplaceBoardTickets(
	ctx context.Context,
	boardID string,
	tickets []model.Ticket,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM tickets WHERE board_id = ?", boardID); err != nil {
		return fmt.Errorf("clearing tickets for board %s: %w", boardID, err)
	}

	stmt, err := tx.PreparexContext(ctx, ticketInsertQuery)
	if err != nil {
		return fmt.Errorf("preparing ticket insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tickets {
		args, err := ticketInsertArgs(t)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting ticket %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// UpsertTicket inserts or replaces a single ticket snapshot entry.
func (s *SnapshotStore) UpsertTicket(ctx context.Context, t model.Ticket) error {
	args, err := ticketInsertArgs(t)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, ticketInsertQuery, args...); err != nil {
		return fmt.Errorf("upserting ticket %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTicket removes a single ticket snapshot entry.
func (s *SnapshotStore) DeleteTicket(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting ticket %s: %w", id, err)
	}
	return nil
}

// DeleteBoardTickets removes all snapshot entries for a board, mirroring
// the server-side cascade of a board deletion.
func (s *SnapshotStore) DeleteBoardTickets(ctx context.Context, boardID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM tickets WHERE board_id = ?", boardID); err != nil {
		return fmt.Errorf("deleting tickets for board %s: %w", boardID, err)
	}
	return nil
}

// LoadTickets retrieves the ticket snapshot for a board.
func (s *SnapshotStore) LoadTickets(ctx context.Context, boardID string) ([]model.Ticket, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, board_id, title, description, status, priority, assignee, tags, due_date, created_at, updated_at FROM tickets WHERE board_id = ?",
		boardID)
	if err != nil {
		return nil, fmt.Errorf("querying tickets for board %s: %w", boardID, err)
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// ReplaceTags replaces the entire tag snapshot.
func (s *SnapshotStore) ReplaceTags(ctx context.Context, tags []model.Tag) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tags"); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}

	for _, tag := range tags {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO tags (id, name, color, description, created_at) VALUES (?, ?, ?, ?, ?)",
			tag.ID, tag.Name, tag.Color, tag.Description, tag.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting tag %s: %w", tag.ID, err)
		}
	}

	return tx.Commit()
}

// UpsertTag inserts or replaces a single tag snapshot entry.
func (s *SnapshotStore) UpsertTag(ctx context.Context, tag model.Tag) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO tags (id, name, color, description, created_at) VALUES (?, ?, ?, ?, ?)",
		tag.ID, tag.Name, tag.Color, tag.Description, tag.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting tag %s: %w", tag.ID, err)
	}
	return nil
}

// LoadTags retrieves the tag snapshot ordered by name.
func (s *SnapshotStore) LoadTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, name, color, description, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// SetActiveBoard records the active board id.
func (s *SnapshotStore) SetActiveBoard(ctx context.Context, boardID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		activeBoardKey, boardID,
	)
	if err != nil {
		return fmt.Errorf("saving active board: %w", err)
	}
	return nil
}

// ActiveBoard returns the recorded active board id, or "" when none has
// been recorded yet.
func (s *SnapshotStore) ActiveBoard(ctx context.Context) (string, error) {
	var boardID string
	err := s.db.GetContext(ctx, &boardID,
		"SELECT value FROM meta WHERE key = ?", activeBoardKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading active board: %w", err)
	}
	return boardID, nil
}

const ticketInsertQuery = `
	INSERT OR REPLACE INTO tickets (
		id, board_id, title, description, status, priority,
		assignee, tags, due_date, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ticketInsertArgs flattens a ticket into insert arguments. Assignee and
// tags are stored as JSON blobs; the snapshot is a cache, not a
// relational source of truth.
func ticketInsertArgs(t model.Ticket) ([]interface{}, error) {
	assignee := ""
	if t.Assignee != nil {
		data, err := json.Marshal(t.Assignee)
		if err != nil {
			return nil, fmt.Errorf("marshaling assignee for ticket %s: %w", t.ID, err)
		}
		assignee = string(data)
	}

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshaling tags for ticket %s: %w", t.ID, err)
	}

	var dueDate interface{}
	if t.DueDate != nil {
		dueDate = t.DueDate.UTC()
	}

	return []interface{}{
		t.ID, t.BoardID, t.Title, t.Description, string(t.Status), string(t.Priority),
		assignee, string(tags), dueDate, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	}, nil
}

// scanTicket scans a ticket row from a sqlx.Rows result set.
func scanTicket(rows *sqlx.Rows) (model.Ticket, error) {
	var (
		t        model.Ticket
		status   string
		priority string
		assignee string
		tags     string
		dueDate  sql.NullTime
	)

	err := rows.Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &status, &priority,
		&assignee, &tags, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("scanning ticket row: %w", err)
	}

	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)

	if assignee != "" {
		var a model.Assignee
		if err := json.Unmarshal([]byte(assignee), &a); err != nil {
			return model.Ticket{}, fmt.Errorf("unmarshaling assignee: %w", err)
		}
		t.Assignee = &a
	}
	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return model.Ticket{}, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}

	return t, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
