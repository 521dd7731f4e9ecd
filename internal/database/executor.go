package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// Query executes a raw SurrealQL query with parameters and returns the rows
// of its first statement, unmarshalled into T.
//
// Example:
//
//	query := "SELECT * FROM message WHERE roomId = $room"
//	rows, err := Query[surrealMessage](ctx, db, query, map[string]any{"room": "lobby"})
func Query[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) ([]T, error) {
	queryResults, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	if queryResults == nil || len(*queryResults) == 0 {
		return nil, nil
	}
	first := (*queryResults)[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("query returned status %s", first.Status)
	}
	return first.Result, nil
}

// Execute runs a statement that doesn't return rows (CREATE, DEFINE, DELETE)
// and discards the response.
func Execute(ctx context.Context, db *surrealdb.DB, query string, params map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	return nil
}
