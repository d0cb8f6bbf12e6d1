// Package sqlite provides a SQLite-backed memory driver, so a mock service
// can keep its documents across restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/marcus/pkg/llm"
	"github.com/papercomputeco/marcus/pkg/memory"
)

// Driver implements memory.Driver using SQLite.
type Driver struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config holds configuration for the SQLite memory driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string
}

// NewDriver opens (or creates) the database and its schema.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.DBPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memory_documents (
			collection TEXT NOT NULL,
			doc_id TEXT NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (collection, doc_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	logger.Info("sqlite memory driver initialized", "db_path", c.DBPath)

	return &Driver{
		db:     db,
		logger: logger,
	}, nil
}

func (d *Driver) Add(ctx context.Context, collection string, docs []llm.Document) ([]string, error) {
	docs = memory.AssignIDs(docs)

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memory_documents (collection, doc_id, text, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, doc_id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		metadata, err := encodeMetadata(doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encoding metadata for %s: %w", doc.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, doc.ID, doc.Text, metadata); err != nil {
			return nil, fmt.Errorf("inserting document %s: %w", doc.ID, err)
		}
		ids = append(ids, doc.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("stored documents", "collection", collection, "count", len(ids))
	return ids, nil
}

func (d *Driver) Get(ctx context.Context, collection string, ids []string) ([]llm.Document, error) {
	if len(ids) == 0 {
		return []llm.Document{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}

	query := `SELECT doc_id, text, metadata FROM memory_documents
		WHERE collection = ? AND doc_id IN (` + placeholders + `)`

	found, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]llm.Document, len(found))
	for _, doc := range found {
		byID[doc.ID] = doc
	}

	result := make([]llm.Document, 0, len(found))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		result = append(result, doc)
	}
	return result, nil
}

func (d *Driver) Delete(ctx context.Context, collection string, ids []string) ([]string, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM memory_documents WHERE collection = ? AND doc_id = ?`,
			collection, id,
		)
		if err != nil {
			return nil, fmt.Errorf("deleting document %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("deleting document %s: %w", id, err)
		}
		if n > 0 {
			deleted = append(deleted, id)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted documents", "collection", collection, "count", len(deleted))
	return deleted, nil
}

func (d *Driver) Search(ctx context.Context, collection, query string, k int) ([]llm.ScoredDocument, error) {
	docs, err := d.query(ctx,
		`SELECT doc_id, text, metadata FROM memory_documents WHERE collection = ?`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	return memory.Rank(query, docs, k), nil
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) query(ctx context.Context, query string, args ...any) ([]llm.Document, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []llm.Document
	for rows.Next() {
		var (
			doc      llm.Document
			metadata string
		)
		if err := rows.Scan(&doc.ID, &doc.Text, &metadata); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata for %s: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
