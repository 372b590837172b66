package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

type countRow struct {
	Total int `json:"total"`
}

func countTable(ctx context.Context, db *surrealdb.DB, table string) (int, error) {
	query := fmt.Sprintf("SELECT count() AS total FROM %s GROUP ALL", table)
	row, err := QueryOne[countRow](ctx, db, query, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	if row == nil {
		return 0, nil
	}
	return row.Total, nil
}
