// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package drafts persists generated posts and tracks them from draft to
// posted. It runs on SQLite by default and on PostgreSQL when configured.
package drafts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/post-engine/pkg/types"
)

// DefaultSQLitePath is used when a sqlite3 store has no DSN.
const DefaultSQLitePath = "data/posts.db"

// ErrNotFound is returned when no row matches, including edits and posts of
// drafts that were already published.
var ErrNotFound = errors.New("draft not found")

// ErrEmptyContent rejects edits that would blank a draft.
var ErrEmptyContent = errors.New("draft content is empty")

const draftColumns = `id, content, topic, tone, created_at, status`

// Store manages the posts table.
type Store struct {
	db     *sql.DB
	driver types.StoreDriver
}

// NewDraft is what the pipeline hands over for persistence.
type NewDraft struct {
	Content string
	Topic   string
	Tone    string
}

// Open connects to the database described by cfg and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = types.DriverSQLite
	}

	dsn := cfg.DSN
	switch driver {
	case types.DriverSQLite:
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		if !strings.Contains(dsn, "?") {
			dsn += "?_journal_mode=WAL&_busy_timeout=5000"
		}
	case types.DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres store requires store.dsn")
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q: use sqlite3 or postgres", driver)
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s, err := New(db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database handle and ensures the schema exists.
func New(db *sql.DB, driver types.StoreDriver) (*Store, error) {
	s := &Store{db: db, driver: driver}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	var statements []string
	switch s.driver {
	case types.DriverPostgres:
		statements = []string{
			`CREATE TABLE IF NOT EXISTS posts (
				id BIGSERIAL PRIMARY KEY,
				content TEXT NOT NULL,
				topic VARCHAR(255) NOT NULL,
				tone VARCHAR(50) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				status VARCHAR(20) NOT NULL DEFAULT 'draft'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
		}
	default:
		statements = []string{
			`CREATE TABLE IF NOT EXISTS posts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				content TEXT NOT NULL,
				topic TEXT NOT NULL,
				tone TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'publishing', 'posted'))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
		}
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create stores a new draft and returns it with the assigned id, creation
// time and status.
func (s *Store) Create(ctx context.Context, nd NewDraft) (types.Draft, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO posts (content, topic, tone, status, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+draftColumns),
		nd.Content, nd.Topic, nd.Tone, string(types.StatusDraft), time.Now().UTC(),
	)
	d, err := scanDraft(row)
	if err != nil {
		return types.Draft{}, fmt.Errorf("inserting draft: %w", err)
	}
	return d, nil
}

// Get returns the draft with id.
func (s *Store) Get(ctx context.Context, id int64) (types.Draft, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+draftColumns+` FROM posts WHERE id = ?`), id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Draft{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return types.Draft{}, fmt.Errorf("looking up draft %d: %w", id, err)
	}
	return d, nil
}

// List returns every stored post, newest first.
func (s *Store) List(ctx context.Context) ([]types.Draft, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+draftColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var out []types.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateContent replaces the text of a draft. Drafts that are posted or
// being published cannot be edited and report ErrNotFound.
func (s *Store) UpdateContent(ctx context.Context, id int64, content string) (types.Draft, error) {
	if strings.TrimSpace(content) == "" {
		return types.Draft{}, ErrEmptyContent
	}
	return s.updateDraft(ctx, id, types.StatusDraft, `content = ?`, content)
}

// Claim moves a draft to publishing. The update is conditional on the
// current status, so of two concurrent claims exactly one succeeds; the
// other reports ErrNotFound.
func (s *Store) Claim(ctx context.Context, id int64) (types.Draft, error) {
	return s.updateDraft(ctx, id, types.StatusDraft, `status = ?`, string(types.StatusPublishing))
}

// Release returns a claimed draft to the draft state after a failed post.
func (s *Store) Release(ctx context.Context, id int64) (types.Draft, error) {
	return s.updateDraft(ctx, id, types.StatusPublishing, `status = ?`, string(types.StatusDraft))
}

// MarkPosted moves a claimed draft to the posted state.
func (s *Store) MarkPosted(ctx context.Context, id int64) (types.Draft, error) {
	return s.updateDraft(ctx, id, types.StatusPublishing, `status = ?`, string(types.StatusPosted))
}

// updateDraft applies set to the row with id only while it is in status from.
func (s *Store) updateDraft(ctx context.Context, id int64, from types.DraftStatus, set string, value any) (types.Draft, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`UPDATE posts SET `+set+` WHERE id = ? AND status = ? RETURNING `+draftColumns),
		value, id, string(from),
	)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Draft{}, fmt.Errorf("%w in status %s: id %d", ErrNotFound, from, id)
	}
	if err != nil {
		return types.Draft{}, fmt.Errorf("updating draft %d: %w", id, err)
	}
	return d, nil
}

// Delete removes a post regardless of status.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting draft %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting draft %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// rebind rewrites ? placeholders into $N for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != types.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (types.Draft, error) {
	var (
		d       types.Draft
		created dbTime
		status  string
	)
	if err := row.Scan(&d.ID, &d.Content, &d.Topic, &d.Tone, &created, &status); err != nil {
		return types.Draft{}, err
	}
	d.CreatedAt = created.Time
	d.Status = types.DraftStatus(status)
	return d, nil
}

// dbTime scans timestamps from either driver. SQLite hands back text when
// the column type is lost, e.g. for RETURNING clauses.
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	trimmed := strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if ts, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			t.Time = ts.UTC()
			return nil
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = ts.UTC()
		return nil
	}
	return fmt.Errorf("parsing timestamp %q", s)
}
