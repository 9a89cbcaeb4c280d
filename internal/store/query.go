package store

import (
	"context"
	"strings"

	"github.com/matheus3301/classnotes/internal/docstore"
)

var sqlOps = map[docstore.Op]string{
	docstore.Equal:        "=",
	docstore.Less:         "<",
	docstore.LessEqual:    "<=",
	docstore.Greater:      ">",
	docstore.GreaterEqual: ">=",
}

// QueryDocuments runs a validated docstore query against the documents table.
// Filters and sort keys address top-level JSON fields of the payload.
func (db *DB) QueryDocuments(ctx context.Context, q docstore.Query) ([]Doc, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	query, args := buildQuery(q)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []Doc
	for rows.Next() {
		var d Doc
		if err := rows.Scan(&d.Collection, &d.ID, &d.Data, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// buildQuery assumes q has been validated, so field names and operators are safe.
func buildQuery(q docstore.Query) (string, []any) {
	var sb strings.Builder
	args := []any{q.Collection}
	sb.WriteString("SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = ?")

	for _, f := range q.Filters {
		sb.WriteString(" AND json_extract(data, ?) ")
		sb.WriteString(sqlOps[f.Op])
		sb.WriteString(" ?")
		args = append(args, "$."+f.Field, f.Value)
	}

	sb.WriteString(" ORDER BY ")
	for _, o := range q.Orders {
		sb.WriteString("json_extract(data, ?) ")
		if o.Direction == docstore.Desc {
			sb.WriteString("DESC, ")
		} else {
			sb.WriteString("ASC, ")
		}
		args = append(args, "$."+o.Field)
	}
	sb.WriteString("created_at, id")

	if q.Max > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Max)
	}
	return sb.String(), args
}
