// Package store provides database access methods for all PromptBuddy
// entities. Each store struct wraps a queryable handle and exposes typed
// query methods. Stores are constructed with a *sql.DB; WithTx rebinds a
// store to a caller-supplied transaction so multi-step operations (such as
// an import) run as one atomic unit.
package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors returned by store methods. Callers distinguish these
// from wrapped infrastructure failures.
var (
	// ErrNotFound is returned by mutating methods that matched zero rows.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an optimistic-concurrency check fails:
	// the stored row is newer than the version the caller last saw.
	ErrConflict = errors.New("conflict: server version is newer")
)

// DBTX is the queryable subset of *sql.DB and *sql.Tx. Store methods run
// against whichever the store is bound to, so the same code serves both
// standalone calls and ambient transactions.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// runInTx executes fn inside a transaction. If db is already a transaction
// (the store was rebound via WithTx), fn runs directly on it and commit is
// left to the owner of that transaction.
func runInTx(db DBTX, fn func(q DBTX) error) error {
	sqlDB, ok := db.(*sql.DB)
	if !ok {
		return fn(db)
	}

	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Pagination describes the page window of a List result.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// newPagination normalizes page/limit and computes the page count.
func newPagination(page, limit, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// placeholders returns "$start, $start+1, …" for n parameters, used to
// build IN clauses.
func placeholders(start, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("$%d", start+i)
	}
	return out
}
