package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/kpe/pkg/kpe/store"
)

const metaTotalDocs = "total_docs"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// PRAGMAs are per connection and writers must not race for the lock.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS doc_freq (
	term TEXT PRIMARY KEY,
	df INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS extractions (
	doc_id TEXT PRIMARY KEY,
	source TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS keyphrases (
	doc_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	text TEXT NOT NULL,
	weight REAL NOT NULL,
	lexical_form TEXT NOT NULL,
	PRIMARY KEY(doc_id, rank),
	FOREIGN KEY(doc_id) REFERENCES extractions(doc_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_keyphrases_lexical ON keyphrases(lexical_form);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertDocFreq updates the document frequency for a term
func (s *sqliteStore) UpsertDocFreq(ctx context.Context, term string, df int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO doc_freq (term, df) VALUES (?, ?)
ON CONFLICT(term) DO UPDATE SET df=excluded.df;
`, term, df)
	return err
}

// UpsertDocFreqs updates many document frequencies in a single transaction.
func (s *sqliteStore) UpsertDocFreqs(ctx context.Context, dfs map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO doc_freq (term, df) VALUES (?, ?)
ON CONFLICT(term) DO UPDATE SET df=excluded.df;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for term, df := range dfs {
		if _, err := stmt.ExecContext(ctx, term, df); err != nil {
			return fmt.Errorf("upsert df %q: %w", term, err)
		}
	}
	return tx.Commit()
}

// DocFreq retrieves the document frequency for a term
func (s *sqliteStore) DocFreq(ctx context.Context, term string) (int64, error) {
	var df int64
	err := s.db.QueryRowContext(ctx, `SELECT df FROM doc_freq WHERE term=?`, term).Scan(&df)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return df, err
}

// TotalDocs returns the recorded corpus size, zero when never set.
func (s *sqliteStore) TotalDocs(ctx context.Context) (int64, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, metaTotalDocs).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// SetTotalDocs records the corpus size.
func (s *sqliteStore) SetTotalDocs(ctx context.Context, n int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO meta (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value;
`, metaTotalDocs, strconv.FormatInt(n, 10))
	return err
}

// SaveKeyphrases replaces the extraction stored for e.DocID.
func (s *sqliteStore) SaveKeyphrases(ctx context.Context, e store.Extraction) error {
	if e.DocID == "" {
		return fmt.Errorf("save keyphrases: empty document id")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO extractions (doc_id, source, created_at) VALUES (?, ?, ?)
ON CONFLICT(doc_id) DO UPDATE SET source=excluded.source, created_at=excluded.created_at;
`, e.DocID, e.Source, created.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM keyphrases WHERE doc_id=?`, e.DocID); err != nil {
		return err
	}

	if len(e.Keyphrases) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO keyphrases (doc_id, rank, text, weight, lexical_form) VALUES (?, ?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, kp := range e.Keyphrases {
			if _, err := stmt.ExecContext(ctx, e.DocID, i, kp.Text, kp.Weight, kp.LexicalForm); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Keyphrases loads the extraction stored for docID.
func (s *sqliteStore) Keyphrases(ctx context.Context, docID string) (store.Extraction, bool, error) {
	e := store.Extraction{DocID: docID}
	var source sql.NullString
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT source, created_at FROM extractions WHERE doc_id=?`, docID).Scan(&source, &created)
	if err == sql.ErrNoRows {
		return store.Extraction{}, false, nil
	}
	if err != nil {
		return store.Extraction{}, false, err
	}
	e.Source = source.String
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return store.Extraction{}, false, fmt.Errorf("parse created_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT text, weight, lexical_form
FROM keyphrases
WHERE doc_id = ?
ORDER BY rank ASC;
`, docID)
	if err != nil {
		return store.Extraction{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var kp store.Keyphrase
		if err := rows.Scan(&kp.Text, &kp.Weight, &kp.LexicalForm); err != nil {
			return store.Extraction{}, false, err
		}
		e.Keyphrases = append(e.Keyphrases, kp)
	}
	if err := rows.Err(); err != nil {
		return store.Extraction{}, false, err
	}
	return e, true, nil
}
