// Package postgres implements the remote note store against a Postgres
// notes table keyed by owner id. It is a thin, fail-fast transport:
// errors propagate to the caller and all retry logic lives in the sync
// layer. This package is also the sole translation boundary between the
// internal note shape (epoch-millis timestamps) and the row shape
// (timestamptz columns).
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/stikie/stikie/pkg/core"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DefaultBatchSize chunks batch upserts to respect payload-size limits.
const DefaultBatchSize = 50

const ddl = `
CREATE TABLE IF NOT EXISTS notes (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    content     TEXT NOT NULL DEFAULT '',
    color       TEXT NOT NULL DEFAULT 'yellow',
    x           DOUBLE PRECISION NOT NULL DEFAULT 0,
    y           DOUBLE PRECISION NOT NULL DEFAULT 0,
    width       DOUBLE PRECISION NOT NULL DEFAULT 220,
    height      DOUBLE PRECISION NOT NULL DEFAULT 180,
    pinned      BOOLEAN NOT NULL DEFAULT FALSE,
    archived    BOOLEAN NOT NULL DEFAULT FALSE,
    archived_at TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notes_owner_id ON notes(owner_id);
`

var noteColumns = []string{
	"id", "owner_id", "content", "color", "x", "y", "width", "height",
	"pinned", "archived", "archived_at", "created_at", "updated_at",
}

const upsertSuffix = `ON CONFLICT (id) DO UPDATE SET
owner_id = EXCLUDED.owner_id,
content = EXCLUDED.content,
color = EXCLUDED.color,
x = EXCLUDED.x,
y = EXCLUDED.y,
width = EXCLUDED.width,
height = EXCLUDED.height,
pinned = EXCLUDED.pinned,
archived = EXCLUDED.archived,
archived_at = EXCLUDED.archived_at,
created_at = EXCLUDED.created_at,
updated_at = EXCLUDED.updated_at`

// Config holds the connection settings for the remote client.
type Config struct {
	DSN       string
	BatchSize int
	Logger    *slog.Logger
}

// Client performs owner-scoped CRUD against the notes table. It
// implements core.Remote.
type Client struct {
	db        *sqlx.DB
	batchSize int
	logger    *slog.Logger
}

var _ core.Remote = (*Client)(nil)

// Open connects to Postgres and ensures the schema exists.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to remote store: %w", err)
	}
	c := NewClient(db, cfg)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate notes table: %w", err)
	}
	return c, nil
}

// NewClient wraps an existing connection. Used by Open and by tests
// backed by sqlmock.
func NewClient(db *sqlx.DB, cfg Config) *Client {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Client{db: db, batchSize: batch, logger: cfg.Logger}
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping probes the remote store. Used by the connectivity monitor.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

type noteRow struct {
	ID         string     `db:"id"`
	OwnerID    string     `db:"owner_id"`
	Content    string     `db:"content"`
	Color      string     `db:"color"`
	X          float64    `db:"x"`
	Y          float64    `db:"y"`
	Width      float64    `db:"width"`
	Height     float64    `db:"height"`
	Pinned     bool       `db:"pinned"`
	Archived   bool       `db:"archived"`
	ArchivedAt *time.Time `db:"archived_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func toRow(n core.Note, ownerID string) noteRow {
	row := noteRow{
		ID:        n.ID,
		OwnerID:   ownerID,
		Content:   n.Content,
		Color:     string(n.Color),
		X:         n.X,
		Y:         n.Y,
		Width:     n.Width,
		Height:    n.Height,
		Pinned:    n.Pinned,
		Archived:  n.Archived,
		CreatedAt: time.UnixMilli(n.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(n.UpdatedAt).UTC(),
	}
	if n.ArchivedAt != nil {
		at := time.UnixMilli(*n.ArchivedAt).UTC()
		row.ArchivedAt = &at
	}
	return row
}

func fromRow(r noteRow) core.Note {
	n := core.Note{
		ID:        r.ID,
		Content:   r.Content,
		Color:     core.NoteColor(r.Color),
		X:         r.X,
		Y:         r.Y,
		Width:     r.Width,
		Height:    r.Height,
		Pinned:    r.Pinned,
		Archived:  r.Archived,
		CreatedAt: r.CreatedAt.UnixMilli(),
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	}
	if r.ArchivedAt != nil {
		at := r.ArchivedAt.UnixMilli()
		n.ArchivedAt = &at
	}
	return n
}

func rowValues(r noteRow) []any {
	return []any{
		r.ID, r.OwnerID, r.Content, r.Color, r.X, r.Y, r.Width, r.Height,
		r.Pinned, r.Archived, r.ArchivedAt, r.CreatedAt, r.UpdatedAt,
	}
}

// FetchAll returns every note owned by ownerID, creation time
// ascending.
func (c *Client) FetchAll(ctx context.Context, ownerID string) ([]core.Note, error) {
	query, args, err := psql.
		Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch query: %w", err)
	}

	var rows []noteRow
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}

	notes := make([]core.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, fromRow(r))
	}
	return notes, nil
}

// Upsert inserts or replaces one note by id.
func (c *Client) Upsert(ctx context.Context, n core.Note, ownerID string) error {
	query, args, err := psql.
		Insert("notes").
		Columns(noteColumns...).
		Values(rowValues(toRow(n, ownerID))...).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert note %s: %w", n.ID, err)
	}
	return nil
}

// Delete removes a note by id.
func (c *Client) Delete(ctx context.Context, noteID string) error {
	query, args, err := psql.
		Delete("notes").
		Where(sq.Eq{"id": noteID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", noteID, err)
	}
	return nil
}

// BatchUpsert upserts notes in chunks of the configured batch size,
// one statement per chunk. The first failing chunk aborts the rest.
func (c *Client) BatchUpsert(ctx context.Context, notes []core.Note, ownerID string) error {
	for start := 0; start < len(notes); start += c.batchSize {
		end := min(start+c.batchSize, len(notes))
		chunk := notes[start:end]

		insert := psql.Insert("notes").Columns(noteColumns...)
		for _, n := range chunk {
			insert = insert.Values(rowValues(toRow(n, ownerID))...)
		}
		query, args, err := insert.Suffix(upsertSuffix).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build batch upsert query: %w", err)
		}
		if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to batch upsert %d notes: %w", len(chunk), err)
		}
		if c.logger != nil {
			c.logger.Debug("batch upserted notes", "count", len(chunk), "owner", ownerID)
		}
	}
	return nil
}

// DeleteAllForOwner bulk-removes every note owned by ownerID.
func (c *Client) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	query, args, err := psql.
		Delete("notes").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete notes for owner %s: %w", ownerID, err)
	}
	return nil
}
