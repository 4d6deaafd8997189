package index

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	page_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pages (
	id            INTEGER PRIMARY KEY,
	document_key  TEXT NOT NULL REFERENCES documents(key) ON DELETE CASCADE,
	page_number   INTEGER NOT NULL,
	text          TEXT NOT NULL,
	header        TEXT NOT NULL,
	footer        TEXT NOT NULL,
	fonts         TEXT NOT NULL,
	objects       TEXT NOT NULL,
	has_amount    INTEGER NOT NULL,
	has_reference INTEGER NOT NULL,
	word_count    INTEGER NOT NULL,
	UNIQUE (document_key, page_number)
);

CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(text);
`

// Document pairs a document record with its page records.
type Document struct {
	Record DocumentRecord
	Pages  []PageRecord
}

// Store is the durable cache index. All mutation is serialized through
// a single writer mutex; reads go straight to SQLite and may run
// concurrently with each other.
type Store struct {
	db   *sql.DB
	path string

	// mu is the index-mutation critical section. Reconstruction work
	// must never run under it.
	mu sync.Mutex
}

// Open opens (creating if needed) a store at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure index: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply index schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or fully replaces one document and its pages. The
// mutation is atomic for this document only; a failure here never
// affects other documents. Transient busy errors are retried.
func (s *Store) Upsert(doc DocumentRecord, pages []PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return retry.Do(
		func() error { return s.writeDocument(doc, pages) },
		retry.Attempts(3),
		retry.Delay(25*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

func (s *Store) writeDocument(doc DocumentRecord, pages []PageRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if err := insertDocument(tx, doc, pages); err != nil {
		return fmt.Errorf("upsert %s: %w", doc.Key, err)
	}
	return tx.Commit()
}

// insertDocument replaces a document's rows inside an open transaction.
func insertDocument(tx *sql.Tx, doc DocumentRecord, pages []PageRecord) error {
	_, err := tx.Exec(
		`DELETE FROM pages_fts WHERE rowid IN (SELECT id FROM pages WHERE document_key = ?)`,
		doc.Key)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE document_key = ?`, doc.Key); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO documents (key, source, mode, created_at, page_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			source = excluded.source,
			mode = excluded.mode,
			created_at = excluded.created_at,
			page_count = excluded.page_count`,
		doc.Key, doc.Source, doc.Mode, doc.CreatedAt.UTC().Format(time.RFC3339), doc.PageCount)
	if err != nil {
		return err
	}

	for _, p := range pages {
		res, err := tx.Exec(
			`INSERT INTO pages
				(document_key, page_number, text, header, footer, fonts, objects,
				 has_amount, has_reference, word_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.Key, p.Number, p.Text, p.Header, p.Footer,
			strings.Join(p.Fonts, "\n"), strings.Join(p.Objects, "\n"),
			boolInt(p.Flags.HasAmount), boolInt(p.Flags.HasReference), p.Flags.WordCount)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO pages_fts (rowid, text) VALUES (?, ?)`,
			id, normalizeText(p.Text)); err != nil {
			return err
		}
	}

	return nil
}

// Remove evicts one document from the index.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM pages_fts WHERE rowid IN (SELECT id FROM pages WHERE document_key = ?)`,
		key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE document_key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return tx.Commit()
}

// Rebuild fully supersedes the index with the given documents, after
// writing a timestamped backup of the prior index file. It never
// merges: rebuilding twice from the same artifacts yields the same
// index. The returned path is the backup file, or "" when there was
// nothing to back up.
func (s *Store) Rebuild(docs []Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	backupPath, err := s.backup()
	if err != nil {
		return "", fmt.Errorf("back up index: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return backupPath, fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM pages_fts`,
		`DELETE FROM pages`,
		`DELETE FROM documents`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return backupPath, fmt.Errorf("clear index: %w", err)
		}
	}

	for _, doc := range docs {
		if err := insertDocument(tx, doc.Record, doc.Pages); err != nil {
			return backupPath, fmt.Errorf("rebuild %s: %w", doc.Record.Key, err)
		}
	}

	return backupPath, tx.Commit()
}

// backup copies the current index file aside. A store with no file yet
// (or an in-memory store) has nothing to back up.
func (s *Store) backup() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) || strings.Contains(s.path, ":memory:") {
			return "", nil
		}
		return "", err
	}

	name := fmt.Sprintf("%s.%s.%s.bak",
		s.path, time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Document returns one document record by key.
func (s *Store) Document(key string) (DocumentRecord, error) {
	row := s.db.QueryRow(
		`SELECT key, source, mode, created_at, page_count FROM documents WHERE key = ?`, key)
	return scanDocument(row)
}

// DocumentAt returns the document at a 0-based ingestion position.
func (s *Store) DocumentAt(pos int) (DocumentRecord, error) {
	row := s.db.QueryRow(
		`SELECT key, source, mode, created_at, page_count
		 FROM documents ORDER BY rowid LIMIT 1 OFFSET ?`, pos)
	return scanDocument(row)
}

// Documents returns all document records in ingestion order.
func (s *Store) Documents() ([]DocumentRecord, error) {
	rows, err := s.db.Query(
		`SELECT key, source, mode, created_at, page_count FROM documents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Pages returns a document's page records in page order.
func (s *Store) Pages(key string) ([]PageRecord, error) {
	rows, err := s.db.Query(
		`SELECT document_key, page_number, text, header, footer, fonts, objects,
			has_amount, has_reference, word_count
		 FROM pages WHERE document_key = ? ORDER BY page_number`, key)
	if err != nil {
		return nil, fmt.Errorf("load pages for %s: %w", key, err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// Len returns the number of documents in the index.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (DocumentRecord, error) {
	var doc DocumentRecord
	var createdAt string
	if err := row.Scan(&doc.Key, &doc.Source, &doc.Mode, &createdAt, &doc.PageCount); err != nil {
		return DocumentRecord{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	doc.CreatedAt = t
	return doc, nil
}

func scanPage(row rowScanner) (PageRecord, error) {
	var p PageRecord
	var fonts, objects string
	var hasAmount, hasReference int
	err := row.Scan(&p.DocumentKey, &p.Number, &p.Text, &p.Header, &p.Footer,
		&fonts, &objects, &hasAmount, &hasReference, &p.Flags.WordCount)
	if err != nil {
		return PageRecord{}, err
	}
	p.Fonts = splitList(fonts)
	p.Objects = splitList(objects)
	p.Flags.HasAmount = hasAmount != 0
	p.Flags.HasReference = hasReference != 0
	return p, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
