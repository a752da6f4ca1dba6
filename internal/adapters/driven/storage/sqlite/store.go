package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/phonetonote/paperweight/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/phonetonote/paperweight/internal/core/domain"
	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

// snapshotLayout is the timestamp format used in snapshot file names.
const snapshotLayout = "2006-01-02_15-04-05"

// paperColumns is the column list shared by every read.
const paperColumns = `url, status, title, authors, keywords, abstract, published_date,
	summary, institution, location, identifier, text, blob, embedding,
	encoded_pic, file_path, created_at, updated_at`

// Store is the SQLite record store.
type Store struct {
	db     *sql.DB
	path   string
	retry  RetryPolicy
	closed atomic.Bool
}

// NewStore opens or creates the database file at path and applies migrations.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: store path is required", domain.ErrInvalidInput)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		path:  path,
		retry: DefaultRetryPolicy,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// SetRetryPolicy replaces the policy applied to ScanAll.
func (s *Store) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// Close checkpoints the write-ahead log into the main file and closes the
// database connection.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	_, cpErr := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	if err := s.db.Close(); err != nil {
		return err
	}
	if cpErr != nil {
		return fmt.Errorf("checkpointing wal: %w", cpErr)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_papers.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Exists reports whether a record for url has been persisted.
func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	if s.closed.Load() {
		return false, domain.ErrStoreClosed
	}
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM papers WHERE url = ? LIMIT 1", url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", url, err)
	}
	return true, nil
}

// Insert persists a new record in a single statement.
// Returns domain.ErrDuplicateKey if the URL already has a record.
func (s *Store) Insert(ctx context.Context, r *domain.PaperRecord) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed
	}
	if r == nil || r.URL == "" {
		return fmt.Errorf("%w: record url is required", domain.ErrInvalidInput)
	}

	authors, err := marshalStrings(r.Authors)
	if err != nil {
		return fmt.Errorf("marshalling authors: %w", err)
	}
	keywords, err := marshalStrings(r.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO papers (`+paperColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.URL, string(r.Status), r.Title, authors, keywords, r.Abstract, r.PublishedDate,
		r.Summary, r.Institution, r.Location, r.Identifier, r.Text, nullBytes(r.Blob), nullBytes(r.Embedding),
		r.EncodedPic, r.FilePath, toUnixSeconds(r.CreatedAt), toUnixSeconds(r.UpdatedAt),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, r.URL)
		}
		return fmt.Errorf("inserting %s: %w", r.URL, err)
	}
	return nil
}

// Get retrieves the record for url.
func (s *Store) Get(ctx context.Context, url string) (*domain.PaperRecord, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+paperColumns+" FROM papers WHERE url = ?", url)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", url, err)
	}
	return r, nil
}

// ScanAll returns every record ordered by URL. Busy and locked errors are
// retried under the store's RetryPolicy.
func (s *Store) ScanAll(ctx context.Context) ([]domain.PaperRecord, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}
	var records []domain.PaperRecord
	err := withRetry(ctx, s.retry, "scan all", func() error {
		var err error
		records, err = s.scanAllOnce(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) scanAllOnce(ctx context.Context) ([]domain.PaperRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+paperColumns+" FROM papers ORDER BY url")
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	records := []domain.PaperRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return records, nil
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrStoreClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM papers").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of records per status.
func (s *Store) CountByStatus(ctx context.Context) (map[domain.PaperStatus]int, error) {
	if s.closed.Load() {
		return nil, domain.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM papers GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.PaperStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[domain.PaperStatus(status)] = n
	}
	return counts, rows.Err()
}

// Snapshot writes a consistent single-file copy of the database.
// When dest is an existing directory the copy is named after the store
// file with a timestamp suffix. The path written is returned.
func (s *Store) Snapshot(ctx context.Context, dest string) (string, error) {
	if s.closed.Load() {
		return "", domain.ErrStoreClosed
	}
	if info, err := os.Stat(dest); err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%w: %s already exists", domain.ErrInvalidInput, dest)
		}
		dest = filepath.Join(dest, SnapshotName(s.path, time.Now()))
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", dest, err)
	}
	return dest, nil
}

// SnapshotName returns the file name used for a snapshot of storePath taken at t,
// e.g. papers_2024-01-02_15-04-05.db.
func SnapshotName(storePath string, t time.Time) string {
	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".db"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_" + t.Format(snapshotLayout) + ext
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.PaperRecord, error) {
	var (
		r                  domain.PaperRecord
		status             string
		authors, keywords  string
		createdAt, updated sql.NullFloat64
	)
	err := row.Scan(
		&r.URL, &status, &r.Title, &authors, &keywords, &r.Abstract, &r.PublishedDate,
		&r.Summary, &r.Institution, &r.Location, &r.Identifier, &r.Text, &r.Blob, &r.Embedding,
		&r.EncodedPic, &r.FilePath, &createdAt, &updated,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.PaperStatus(status)
	if r.Authors, err = unmarshalStrings(authors); err != nil {
		return nil, fmt.Errorf("unmarshalling authors: %w", err)
	}
	if r.Keywords, err = unmarshalStrings(keywords); err != nil {
		return nil, fmt.Errorf("unmarshalling keywords: %w", err)
	}
	r.CreatedAt = fromUnixSeconds(createdAt)
	r.UpdatedAt = fromUnixSeconds(updated)
	return &r, nil
}

// marshalStrings encodes a list as a JSON array, never null.
func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func unmarshalStrings(s string) ([]string, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var v []string
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, nil
	}
	return v, nil
}

// nullBytes stores empty byte slices as NULL.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// toUnixSeconds stores a timestamp as fractional unix seconds; zero is NULL.
func toUnixSeconds(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return float64(t.UnixMicro()) / 1e6
}

func fromUnixSeconds(v sql.NullFloat64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.UnixMicro(int64(math.Round(v.Float64 * 1e6)))
}
