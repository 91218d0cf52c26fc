package store

import "database/sql"

// querier is satisfied by both *sql.DB and *sql.Tx so store methods can run
// standalone or inside an award transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
