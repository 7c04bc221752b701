// Package postgres implements the repository interfaces on PostgreSQL
// through pgx.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/OnlineStore/pkg/database"
)

const defaultPerPage = 20

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func limitOffset(page, perPage int) (int, int) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}
	return perPage, offset
}

func collectIDs(ctx context.Context, q database.DBTX, query string, args ...any) ([]int64, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
