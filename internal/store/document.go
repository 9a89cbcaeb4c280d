package store

import (
	"context"
	"database/sql"
	"errors"
)

// InsertDocument stores a new document. Returns ErrConflict if the id exists.
func (db *DB) InsertDocument(ctx context.Context, d *Doc) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.Collection, d.ID, d.Data, d.CreatedAt, d.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// PutDocument creates or replaces a document, keeping created_at of an existing row.
func (db *DB) PutDocument(ctx context.Context, d *Doc) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		d.Collection, d.ID, d.Data, d.CreatedAt, d.UpdatedAt)
	return err
}

// MergeDocument applies patch (a JSON object) to an existing document.
// Returns false when the document does not exist.
func (db *DB) MergeDocument(ctx context.Context, collection, id, patch string, updatedAt int64) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET data = json_patch(data, ?), updated_at = ?
		WHERE collection = ? AND id = ?`,
		patch, updatedAt, collection, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteDocument removes a document and reports whether it existed.
func (db *DB) DeleteDocument(ctx context.Context, collection, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetDocument returns one document. Returns nil, nil when absent.
func (db *DB) GetDocument(ctx context.Context, collection, id string) (*Doc, error) {
	var d Doc
	err := db.QueryRowContext(ctx, `
		SELECT collection, id, data, created_at, updated_at
		FROM documents WHERE collection = ? AND id = ?`, collection, id).
		Scan(&d.Collection, &d.ID, &d.Data, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
